package handler

import (
	"time"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	Status    string          `json:"status"`
	Identity  int64           `json:"identity,omitempty"`
	Role      string          `json:"role,omitempty"`
	Profile   *domain.Profile `json:"profile,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type dashboardResponse struct {
	View          string                     `json:"view"`
	Identity      int64                      `json:"identity,omitempty"`
	Notifications []domain.NotificationEvent `json:"notifications,omitempty"`
	Categories    []domain.Option            `json:"categories,omitempty"`
}

type notificationsResponse struct {
	Events []domain.NotificationEvent `json:"events"`
}

type categoriesResponse struct {
	Options []domain.Option `json:"options"`
}

func toSessionResponse(out domain.SessionOutcome) sessionResponse {
	resp := sessionResponse{Status: string(out.Kind())}
	switch o := out.(type) {
	case domain.Resolved:
		p := o.Session.Profile
		resp.Identity = int64(o.Session.Identity)
		resp.Role = o.Session.Role.String()
		resp.Profile = &p
		if !o.Session.ExpiresAt.IsZero() {
			exp := o.Session.ExpiresAt
			resp.ExpiresAt = &exp
		}
	case domain.ResolutionFailed:
		resp.Error = domain.UserMessage(o.Reason)
	}
	return resp
}
