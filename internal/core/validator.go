package core

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// errCodeValidationInvalidField is the generic field-rule failure code; the
// validation_ prefix maps it to 400.
const errCodeValidationInvalidField types.ErrorCode = "validation_invalid_field"

// Validator wraps go-playground/validator and translates rule failures into
// structured AppErrors with per-field details.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator. Field names in error details use the
// json tag so clients see the wire name, not the Go identifier.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates a struct against its `validate` tags. On failure it
// returns a *types.AppError whose code reflects the first failing rule and
// whose Details map each failing field to a human-readable rule description.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the caller passed a non-struct.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation target must be a struct", err)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = ruleMessage(fe)
	}

	code := codeForRule(validationErrs[0])
	return types.NewAppErrorWithDetails(code, "request validation failed", nil, details)
}

// codeForRule maps a failing validation rule to the error taxonomy.
func codeForRule(fe validator.FieldError) types.ErrorCode {
	switch fe.Tag() {
	case "required":
		return types.ErrCodeValidationMissingField
	case "email":
		return types.ErrCodeValidationInvalidEmail
	case "e164":
		return types.ErrCodeValidationInvalidPhone
	default:
		return errCodeValidationInvalidField
	}
}

// ruleMessage renders a short description of the failing rule for the Details map.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid E.164 phone number"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "failed rule: " + fe.Tag()
	}
}
