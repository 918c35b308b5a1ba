package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

func TestAccountService_Register(t *testing.T) {
	api := &stubAPI{}
	svc := NewAccountService(api, zerolog.Nop())
	in := domain.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "pw", Password2: "pw"}

	if err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(api.registered) != 1 || api.registered[0].Username != "alice" {
		t.Fatalf("expected registration forwarded, got %+v", api.registered)
	}
}

func TestAccountService_Register_Rejected(t *testing.T) {
	body := `{"username":["A user with that username already exists."]}`
	api := &stubAPI{registerErr: &domain.APIError{Status: 400, Detail: body}}
	svc := NewAccountService(api, zerolog.Nop())

	err := svc.Register(context.Background(), domain.RegisterInput{Username: "alice"})
	if got := domain.UserMessage(err); got != body {
		t.Fatalf("expected raw body surfaced, got %q", got)
	}
}
