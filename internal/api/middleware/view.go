package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// DashboardKey is the echo context key holding the request's domain.Dashboard.
const DashboardKey = "dashboard"

// DashboardSource exposes the currently selected dashboard.
type DashboardSource interface {
	Dashboard() domain.Dashboard
}

// RequireView lets the request through only when the selected dashboard is one
// of views. Without a session the request is rejected with 401, with the wrong
// session with 403.
func RequireView(src DashboardSource, views ...domain.DashboardView) echo.MiddlewareFunc {
	allowed := make(map[domain.DashboardView]struct{}, len(views))
	for _, v := range views {
		allowed[v] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dash := src.Dashboard()
			if _, ok := allowed[dash.View]; !ok {
				if dash.View == domain.ViewUnauthenticated {
					return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
				}
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			c.Set(DashboardKey, dash)
			return next(c)
		}
	}
}
