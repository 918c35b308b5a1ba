package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPartialCredential = errors.New("credential requires both access and refresh tokens")
	ErrTransport         = errors.New("network error")
	ErrMalformedPayload  = errors.New("malformed push payload")
	ErrValidation        = errors.New("validation failed")
	ErrChannelBusy       = errors.New("notification channel already open")
	ErrChannelClosed     = errors.New("notification channel closed")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrForbiddenView     = errors.New("view not available for this session")
	ErrProfileMalformed  = errors.New("profile response malformed")
)

// APIError is a rejection returned by the storefront API. Detail is the
// server's detail message, the raw body, or an operation-specific fallback.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront api: %d: %s", e.Status, e.Detail)
}

// UserMessage returns the text shown next to the form or view that issued the
// failed call.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, ErrTransport):
		return "Network error"
	default:
		return err.Error()
	}
}
