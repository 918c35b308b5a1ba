package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestSessionResolver_NoCredential(t *testing.T) {
	api := &stubAPI{}
	r := NewSessionResolver(api, 0, zerolog.Nop())

	if got := r.Resolve(context.Background(), nil); got.Kind() != domain.OutcomeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got.Kind())
	}
	partial := &domain.Credential{Access: "t1"}
	if got := r.Resolve(context.Background(), partial); got.Kind() != domain.OutcomeUnauthenticated {
		t.Fatalf("expected unauthenticated for partial credential, got %s", got.Kind())
	}
	if api.calls() != 0 {
		t.Fatalf("expected no profile call, got %d", api.calls())
	}
}

func TestSessionResolver_RoleFromStaffFlag(t *testing.T) {
	api := &stubAPI{profiles: map[string]domain.Profile{
		"client-token": {ID: 7, Username: "alice", IsStaff: false},
		"admin-token":  {ID: 1, Username: "root", IsStaff: true},
	}}
	r := NewSessionResolver(api, time.Second, zerolog.Nop())

	cases := []struct {
		token    string
		wantKind domain.OutcomeKind
		wantRole domain.Role
		wantID   domain.UserID
	}{
		{"client-token", domain.OutcomeResolvedClient, domain.RoleClient, 7},
		{"admin-token", domain.OutcomeResolvedAdmin, domain.RoleAdmin, 1},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			out := r.Resolve(context.Background(), &domain.Credential{Access: tc.token, Refresh: "r"})
			if out.Kind() != tc.wantKind {
				t.Fatalf("expected %s, got %s", tc.wantKind, out.Kind())
			}
			res := out.(domain.Resolved)
			if res.Session.Role != tc.wantRole {
				t.Fatalf("expected role %s, got %s", tc.wantRole, res.Session.Role)
			}
			if res.Session.Identity != tc.wantID {
				t.Fatalf("expected identity %d, got %d", tc.wantID, res.Session.Identity)
			}
		})
	}
	if api.calls() != 2 {
		t.Fatalf("expected one profile call per resolution, got %d", api.calls())
	}
}

func TestSessionResolver_Failures(t *testing.T) {
	cred := &domain.Credential{Access: "expired", Refresh: "r"}

	t.Run("rejected token", func(t *testing.T) {
		r := NewSessionResolver(&stubAPI{}, 0, zerolog.Nop())
		out := r.Resolve(context.Background(), cred)
		failed, ok := out.(domain.ResolutionFailed)
		if !ok {
			t.Fatalf("expected ResolutionFailed, got %T", out)
		}
		var apiErr *domain.APIError
		if !errors.As(failed.Reason, &apiErr) || apiErr.Status != 401 {
			t.Fatalf("expected wrapped 401 APIError, got %v", failed.Reason)
		}
	})

	t.Run("transport", func(t *testing.T) {
		api := &stubAPI{profileErr: domain.ErrTransport}
		r := NewSessionResolver(api, 0, zerolog.Nop())
		failed, ok := r.Resolve(context.Background(), cred).(domain.ResolutionFailed)
		if !ok || !errors.Is(failed.Reason, domain.ErrTransport) {
			t.Fatalf("expected transport failure, got %+v", failed)
		}
	})

	t.Run("profile without id", func(t *testing.T) {
		api := &stubAPI{profiles: map[string]domain.Profile{"expired": {Username: "ghost"}}}
		r := NewSessionResolver(api, 0, zerolog.Nop())
		failed, ok := r.Resolve(context.Background(), cred).(domain.ResolutionFailed)
		if !ok || !errors.Is(failed.Reason, domain.ErrProfileMalformed) {
			t.Fatalf("expected malformed profile failure, got %+v", failed)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		api := &stubAPI{block: make(chan struct{})}
		r := NewSessionResolver(api, 20*time.Millisecond, zerolog.Nop())
		failed, ok := r.Resolve(context.Background(), cred).(domain.ResolutionFailed)
		if !ok || !errors.Is(failed.Reason, context.DeadlineExceeded) {
			t.Fatalf("expected deadline failure, got %+v", failed)
		}
	})
}

func TestSessionResolver_ExpiryFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	api := &stubAPI{profiles: map[string]domain.Profile{token: {ID: 7}}}
	r := NewSessionResolver(api, 0, zerolog.Nop())

	res, ok := r.Resolve(context.Background(), &domain.Credential{Access: token, Refresh: "r"}).(domain.Resolved)
	if !ok {
		t.Fatalf("expected resolved session")
	}
	if !res.Session.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, res.Session.ExpiresAt)
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if got := tokenExpiry("t1"); !got.IsZero() {
		t.Fatalf("expected zero expiry for opaque token, got %v", got)
	}
}
