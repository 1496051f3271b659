package generation

import (
	"errors"
	"fmt"
)

// Kind is the closed taxonomy of generation failures. Every whole-request
// failure surfaces as a ClassifiedError carrying exactly one Kind.
type Kind string

// The complete set of failure kinds. The set is closed: classification
// prefers falling through to KindUnknown over guessing a wrong kind.
const (
	KindAuthentication  Kind = "authentication"
	KindRateLimited     Kind = "rate_limited"
	KindContentBlocked  Kind = "content_blocked"
	KindDataFormat      Kind = "data_format"
	KindCredentialScope Kind = "credential_scope"
	KindValidation      Kind = "validation"
	KindUnknown         Kind = "unknown"
)

// Sentinel errors used by the orchestration core. Classify maps them to
// their taxonomy kinds via errors.Is, so wrapped forms classify correctly.
var (
	// ErrMalformedResponse is returned when a provider response cannot be
	// parsed into the expected structure.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrMissingPayload is returned when a long-running operation reports
	// done without a resolvable success payload.
	ErrMissingPayload = errors.New("operation completed without a result payload")
)

// userMessages maps each kind to its fixed, user-facing message template.
// KindUnknown is absent: it passes the provider's message through verbatim.
var userMessages = map[Kind]string{
	KindAuthentication:  "The configured API credential was rejected. Check that the key is valid.",
	KindRateLimited:     "The provider is rate limiting requests. Try again in a moment.",
	KindContentBlocked:  "The request was blocked by the provider's content safety filters.",
	KindDataFormat:      "The provider returned a response that could not be understood.",
	KindCredentialScope: "The credential does not have access to this operation. Re-authenticate and try again.",
	KindValidation:      "The request is missing required input.",
}

// ClassifiedError is a provider failure mapped onto the closed taxonomy.
// Message always preserves the original failure text unmodified.
type ClassifiedError struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, supporting errors.Is/errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// UserMessage returns the stable, human-readable message for this error's
// kind. KindUnknown returns the original provider message untranslated.
func (e *ClassifiedError) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return e.Message
}

// NewValidationError creates a KindValidation error for a locally-detected
// missing-input condition. These are raised before any network call.
func NewValidationError(message string) *ClassifiedError {
	return &ClassifiedError{Kind: KindValidation, Message: message}
}

// NewDataFormatError wraps a parse failure as a KindDataFormat error.
func NewDataFormatError(cause error) *ClassifiedError {
	return &ClassifiedError{
		Kind:    KindDataFormat,
		Message: cause.Error(),
		cause:   cause,
	}
}
