package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

type CatalogService struct {
	api    ports.StorefrontAPI
	tokens ports.TokenSource
	logger zerolog.Logger
}

func NewCatalogService(api ports.StorefrontAPI, tokens ports.TokenSource, logger zerolog.Logger) *CatalogService {
	return &CatalogService{api: api, tokens: tokens, logger: logger}
}

// CategoryOptions returns the category selector: the placeholder first, then
// one option per category in server order. An unreachable catalog yields the
// placeholder alone.
func (s *CatalogService) CategoryOptions(ctx context.Context) []domain.Option {
	cats := s.api.Categories(ctx)
	opts := make([]domain.Option, 0, len(cats)+1)
	opts = append(opts, domain.CategoryPlaceholder)
	for _, c := range cats {
		opts = append(opts, domain.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name})
	}
	return opts
}

// AddProduct submits in with the stored access token. Without a stored token
// the request goes out unauthenticated and the server's rejection is returned.
func (s *CatalogService) AddProduct(ctx context.Context, in domain.ProductInput) error {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		s.logger.Warn().Msg("adding product without a stored access token")
	}

	if err := s.api.CreateProduct(ctx, token, in); err != nil {
		s.logger.Info().Err(err).Str("name", in.Name).Msg("product rejected")
		return err
	}
	s.logger.Info().Str("name", in.Name).Str("category_id", in.CategoryID).Msg("product added")
	return nil
}
