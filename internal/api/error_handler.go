package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/service"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Surfaces storefront rejections with the server's own message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Rejections from the storefront API keep their 4xx status; anything else
	// is an upstream failure.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, apiErr.Detail
		}
		return http.StatusBadGateway, apiErr.Detail
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrProfileMalformed):
		return http.StatusBadGateway, domain.UserMessage(err)
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not logged in"
	case errors.Is(err, domain.ErrForbiddenView):
		return http.StatusForbidden, "view not available for this session"
	case errors.Is(err, domain.ErrChannelClosed):
		return http.StatusServiceUnavailable, "notification channel closed"
	case errors.Is(err, service.ErrControllerClosed):
		return http.StatusServiceUnavailable, "shutting down"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
