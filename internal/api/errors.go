package api

import (
	"errors"
	"net/http"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/generation"
	"github.com/museworks/muse-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients. Classified
// generation failures map by kind; everything else is an internal error.
func MapErrorToStatusCode(err error) int {
	var classified *generation.ClassifiedError
	if errors.As(err, &classified) {
		switch classified.Kind {
		case generation.KindValidation:
			return http.StatusBadRequest
		case generation.KindAuthentication, generation.KindCredentialScope:
			return http.StatusUnauthorized
		case generation.KindRateLimited:
			return http.StatusTooManyRequests
		case generation.KindContentBlocked:
			return http.StatusUnprocessableEntity
		case generation.KindDataFormat:
			return http.StatusBadGateway
		default:
			return http.StatusInternalServerError
		}
	}

	switch {
	case store.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Classified failures use their stable per-kind message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var classified *generation.ClassifiedError
	if errors.As(err, &classified) {
		return classified.UserMessage()
	}

	switch {
	case store.IsNotFoundError(err):
		return "Generation not found"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrInvalidMode):
		return "Invalid request data"
	default:
		return "An unexpected error occurred"
	}
}
