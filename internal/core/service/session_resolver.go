package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
	"github.com/99minutos/storefront-client/internal/pkg/metrics"
)

// SessionResolver exchanges a stored credential for a session by calling the
// profile endpoint once. It never touches the credential store.
type SessionResolver struct {
	api     ports.StorefrontAPI
	timeout time.Duration
	log     zerolog.Logger
}

// NewSessionResolver returns a resolver. A timeout <= 0 leaves the profile
// call bounded only by the caller's context.
func NewSessionResolver(api ports.StorefrontAPI, timeout time.Duration, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		api:     api,
		timeout: timeout,
		log:     log.With().Str("component", "session_resolver").Logger(),
	}
}

// Resolve classifies cred into Resolved, Unauthenticated or ResolutionFailed.
func (r *SessionResolver) Resolve(ctx context.Context, cred *domain.Credential) domain.SessionOutcome {
	if cred == nil || !cred.Valid() {
		metrics.SessionResolutionsTotal.WithLabelValues(string(domain.OutcomeUnauthenticated)).Inc()
		return domain.Unauthenticated{}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	outcome := r.fetch(ctx, cred)
	kind := string(outcome.Kind())

	metrics.SessionResolutionsTotal.WithLabelValues(kind).Inc()
	metrics.SessionResolutionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	return outcome
}

func (r *SessionResolver) fetch(ctx context.Context, cred *domain.Credential) domain.SessionOutcome {
	profile, err := r.api.Profile(ctx, cred.Access)
	if err != nil {
		r.log.Warn().Err(err).Msg("profile fetch failed")
		return domain.ResolutionFailed{Reason: fmt.Errorf("resolve session: %w", err)}
	}
	if profile.ID <= 0 {
		r.log.Warn().Int64("id", int64(profile.ID)).Msg("profile without identity")
		return domain.ResolutionFailed{Reason: fmt.Errorf("resolve session: %w", domain.ErrProfileMalformed)}
	}

	session := domain.Session{
		Identity:  profile.ID,
		Role:      domain.RoleFromStaff(profile.IsStaff),
		Profile:   profile,
		ExpiresAt: tokenExpiry(cred.Access),
	}

	r.log.Info().
		Str("identity", session.Identity.String()).
		Str("role", session.Role.String()).
		Msg("session resolved")

	return domain.Resolved{Session: session}
}

// tokenExpiry reads the exp claim without verifying the signature; the server
// remains the authority on token validity. Returns zero for non-JWT tokens.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}
