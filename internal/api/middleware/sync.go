package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Syncer re-reads the stored credential.
type Syncer interface {
	Sync(ctx context.Context) error
}

// SyncSession picks up credential changes made by other processes sharing the
// store before the request is served. A failed sync is logged and the request
// proceeds against the current session.
func SyncSession(s Syncer, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := s.Sync(c.Request().Context()); err != nil {
				log.Warn().Err(err).Str("path", c.Path()).Msg("session sync failed")
			}
			return next(c)
		}
	}
}
