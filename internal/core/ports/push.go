package ports

import (
	"context"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// PushConn is one live push connection.
type PushConn interface {
	// Read blocks until the next message arrives or the connection ends.
	Read() ([]byte, error)
	// Close releases the connection and unblocks a pending Read.
	Close() error
}

// PushDialer opens the per-identity push connection.
type PushDialer interface {
	Dial(ctx context.Context, identity domain.UserID) (PushConn, error)
}
