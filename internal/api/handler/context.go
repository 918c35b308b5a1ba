package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/api/middleware"
	"github.com/99minutos/storefront-client/internal/core/domain"
)

// ctxDashboard returns the dashboard injected by middleware.RequireView. Its
// absence means the route was registered without the gate.
func ctxDashboard(c echo.Context) (domain.Dashboard, error) {
	dash, ok := c.Get(middleware.DashboardKey).(domain.Dashboard)
	if !ok || dash.View == domain.ViewUnauthenticated {
		return domain.Dashboard{}, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return dash, nil
}
