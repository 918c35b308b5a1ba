package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type SessionHandler struct {
	sessions ports.SessionManager
}

func NewSessionHandler(sessions ports.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Login exchanges username and password for a stored credential and resolves
// the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.LoginInput  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req domain.LoginInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.sessions.Login(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(h.sessions.Outcome()))
}

// Logout clears the stored credential.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

// Get returns the current session outcome.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.sessions.Outcome()))
}
