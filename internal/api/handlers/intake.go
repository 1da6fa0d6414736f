package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shahbazasghar1038/injury-back-end/internal/core"
	"github.com/shahbazasghar1038/injury-back-end/internal/external"
	"github.com/shahbazasghar1038/injury-back-end/internal/types"
)

// intakeUploadFolder is the object-store prefix for intake documents.
const intakeUploadFolder = "intake"

// --- Service Interfaces ---

// IntakeStore is the slice of db.IntakeRepository the handler uses.
type IntakeStore interface {
	Insert(ctx context.Context, in *types.Intake) error
	List(ctx context.Context) ([]types.Intake, error)
}

// --- Request Models ---

// IntakeFileInput is a base64-encoded document embedded in the intake body.
type IntakeFileInput struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Data        string `json:"data" validate:"required"`
}

// CreateIntakeRequest is the request body for POST /v1/intake. The insurance
// file is optional.
type CreateIntakeRequest struct {
	FullName      string           `json:"full_name" validate:"required,min=2"`
	Email         string           `json:"email" validate:"required,email"`
	Phone         string           `json:"phone" validate:"omitempty,e164"`
	AccidentDate  *time.Time       `json:"accident_date"`
	Description   string           `json:"description"`
	InsuranceFile *IntakeFileInput `json:"insurance_file"`
}

// --- Handler ---

// IntakeHandler captures public lead submissions, optionally uploading the
// defendant-insurance document to object storage.
type IntakeHandler struct {
	intakes      IntakeStore
	documents    external.DocumentStore
	maxBodyBytes int64
	validator    *core.Validator
	logger       *slog.Logger
}

// NewIntakeHandler creates an IntakeHandler. maxBodyBytes bounds the request
// body; it must be large enough for the base64-encoded upload.
func NewIntakeHandler(
	intakes IntakeStore,
	documents external.DocumentStore,
	maxBodyBytes int64,
	v *core.Validator,
	l *slog.Logger,
) *IntakeHandler {
	if l == nil {
		l = slog.Default()
	}
	return &IntakeHandler{
		intakes:      intakes,
		documents:    documents,
		maxBodyBytes: maxBodyBytes,
		validator:    v,
		logger:       l,
	}
}

// RegisterRoutes mounts the intake routes. Submission is public; listing is
// authenticated.
func (h *IntakeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/intake", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
	})
}

// Create handles POST /v1/intake.
func (h *IntakeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIntakeRequest
	if err := core.DecodeJSONLimit(w, r, &req, h.maxBodyBytes); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	var fileURL string
	if req.InsuranceFile != nil {
		url, err := h.uploadInsuranceFile(r.Context(), req.InsuranceFile)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		fileURL = url
	}

	intake := &types.Intake{
		ID:               uuid.NewString(),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		AccidentDate:     req.AccidentDate,
		Description:      req.Description,
		InsuranceFileURL: fileURL,
	}
	if err := h.intakes.Insert(r.Context(), intake); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: intake})
}

// List handles GET /v1/intake.
func (h *IntakeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.intakes.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: list})
}

// uploadInsuranceFile decodes the embedded document and stores it, returning
// the public URL.
func (h *IntakeHandler) uploadInsuranceFile(ctx context.Context, file *IntakeFileInput) (string, error) {
	data, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeValidationInvalidFile,
			"insurance file data must be base64 encoded",
			err,
		)
	}

	return h.documents.Upload(ctx, intakeUploadFolder, file.Filename, file.ContentType, data)
}
