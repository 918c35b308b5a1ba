package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type AccountService struct {
	api    ports.StorefrontAPI
	logger zerolog.Logger
}

func NewAccountService(api ports.StorefrontAPI, logger zerolog.Logger) *AccountService {
	return &AccountService{api: api, logger: logger}
}

// Register creates an account. It does not log the new user in; the caller
// moves to the login form on success.
func (s *AccountService) Register(ctx context.Context, in domain.RegisterInput) error {
	if err := s.api.Register(ctx, in); err != nil {
		s.logger.Info().Err(err).Str("username", in.Username).Msg("registration rejected")
		return err
	}
	s.logger.Info().Str("username", in.Username).Bool("is_staff", in.IsStaff).Msg("account registered")
	return nil
}
