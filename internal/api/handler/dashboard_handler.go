package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type DashboardHandler struct {
	sessions ports.SessionManager
	catalog  ports.CatalogService
}

func NewDashboardHandler(sessions ports.SessionManager, catalog ports.CatalogService) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, catalog: catalog}
}

// Get renders the dashboard selected for the current session: the client view
// carries the notification log, the admin view the category selector.
//
// @Summary      Selected dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Router       /dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	dash := h.sessions.Dashboard()
	resp := dashboardResponse{View: string(dash.View)}

	switch dash.View {
	case domain.ViewClient:
		resp.Identity = int64(dash.Identity)
		// The session may have changed since Dashboard was read.
		if events, err := h.sessions.Notifications(); err == nil {
			resp.Notifications = events
		}
	case domain.ViewAdmin:
		resp.Identity = int64(dash.Identity)
		resp.Categories = h.catalog.CategoryOptions(c.Request().Context())
	}
	return c.JSON(http.StatusOK, resp)
}
