package types

// redactedPlaceholder replaces secret values anywhere they would be printed.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (API keys, signing secrets, database
// passwords) and refuses to reveal it through fmt or JSON encoding. Both
// String() and MarshalJSON() emit a redacted placeholder.
//
// Call Unmask() at the single point where the plaintext is actually needed,
// such as building an Authorization header or a connection string.
type SecretString string

// String returns the redacted placeholder. Invoked by the fmt package via
// the Stringer interface, so %v/%s formatting never leaks the value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string so config
// dumps and structured logs never carry the plaintext.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string {
	return string(s)
}
