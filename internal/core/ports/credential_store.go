package ports

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// CredentialStore persists the access/refresh token pair. Implementations do
// no network validation of token contents.
type CredentialStore interface {
	// Save persists both tokens; no reader may observe only one of them written.
	Save(ctx context.Context, cred domain.Credential) error
	// Load returns the stored credential. ok is false when nothing (or only half
	// a pair) is stored.
	Load(ctx context.Context) (cred domain.Credential, ok bool, err error)
	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
