package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/ports"
)

const streamHeartbeat = 15 * time.Second

type NotificationHandler struct {
	sessions ports.SessionManager
	log      zerolog.Logger
}

func NewNotificationHandler(sessions ports.SessionManager, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{sessions: sessions, log: log}
}

// List returns the client dashboard's order-status log, most recent first.
//
// @Summary      Order notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	events, err := h.sessions.Notifications()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationsResponse{Events: events})
}

// Stream relays new order-status events as Server-Sent Events until the
// client disconnects or the session's channel is closed.
//
// @Summary      Order notification stream
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	dash, err := ctxDashboard(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	events, err := h.sessions.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	log := h.log.With().Int64("identity", int64(dash.Identity)).Logger()
	log.Debug().Msg("notification stream opened")
	defer log.Debug().Msg("notification stream closed")

	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: order_status\ndata: %s\n\n", data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
