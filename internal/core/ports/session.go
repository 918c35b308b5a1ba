package ports

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// SessionResolver turns a credential into a session outcome. A nil credential
// means none is stored.
type SessionResolver interface {
	Resolve(ctx context.Context, cred *domain.Credential) domain.SessionOutcome
}

// SessionManager is the session surface the dashboard API drives.
type SessionManager interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Sync(ctx context.Context) error
	Outcome() domain.SessionOutcome
	Dashboard() domain.Dashboard
	Notifications() ([]domain.NotificationEvent, error)
	SubscribeNotifications(ctx context.Context) (<-chan domain.NotificationEvent, error)
}
