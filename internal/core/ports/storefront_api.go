package ports

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// StorefrontAPI is the REST server the client talks to. Rejections are
// returned as *domain.APIError, transport failures wrap domain.ErrTransport.
type StorefrontAPI interface {
	Login(ctx context.Context, username, password string) (domain.Credential, error)
	Register(ctx context.Context, in domain.RegisterInput) error
	Profile(ctx context.Context, accessToken string) (domain.Profile, error)
	// Categories never fails: any error degrades to an empty list.
	Categories(ctx context.Context) []domain.Category
	// CreateProduct omits the Authorization header when accessToken is empty.
	CreateProduct(ctx context.Context, accessToken string, in domain.ProductInput) error
}

// TokenSource yields the stored access token, or "" when none is stored.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
