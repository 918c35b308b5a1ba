package handler

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

type stubSessions struct {
	loginFn  func(ctx context.Context, username, password string) error
	outcome  domain.SessionOutcome
	dash     domain.Dashboard
	events   []domain.NotificationEvent
	eventErr error
	stream   chan domain.NotificationEvent
	logouts  int
}

func (s *stubSessions) Login(ctx context.Context, username, password string) error {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessions) Logout(context.Context) error {
	s.logouts++
	s.outcome = domain.Unauthenticated{}
	return nil
}

func (s *stubSessions) Sync(context.Context) error { return nil }

func (s *stubSessions) Outcome() domain.SessionOutcome {
	if s.outcome == nil {
		return domain.Unauthenticated{}
	}
	return s.outcome
}

func (s *stubSessions) Dashboard() domain.Dashboard { return s.dash }

func (s *stubSessions) Notifications() ([]domain.NotificationEvent, error) {
	return s.events, s.eventErr
}

func (s *stubSessions) SubscribeNotifications(context.Context) (<-chan domain.NotificationEvent, error) {
	if s.eventErr != nil {
		return nil, s.eventErr
	}
	return s.stream, nil
}

type stubCatalog struct {
	options []domain.Option
	added   []domain.ProductInput
	addErr  error
}

func (s *stubCatalog) CategoryOptions(context.Context) []domain.Option { return s.options }

func (s *stubCatalog) AddProduct(_ context.Context, in domain.ProductInput) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, in)
	return nil
}

type stubAccounts struct {
	registered []domain.RegisterInput
	err        error
}

func (s *stubAccounts) Register(_ context.Context, in domain.RegisterInput) error {
	if s.err != nil {
		return s.err
	}
	s.registered = append(s.registered, in)
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
