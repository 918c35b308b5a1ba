package ports

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// CatalogService backs the admin dashboard.
type CatalogService interface {
	CategoryOptions(ctx context.Context) []domain.Option
	AddProduct(ctx context.Context, in domain.ProductInput) error
}

// AccountService backs the registration form.
type AccountService interface {
	Register(ctx context.Context, in domain.RegisterInput) error
}
