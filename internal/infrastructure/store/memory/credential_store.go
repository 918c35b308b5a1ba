// Package memory is a process-local credential store.
package memory

import (
	"context"
	"sync"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

type CredentialStore struct {
	mu   sync.RWMutex
	cred domain.Credential
	ok   bool
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	if !cred.Valid() {
		return domain.ErrPartialCredential
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.ok = cred, true
	return nil
}

func (s *CredentialStore) Load(context.Context) (domain.Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.ok, nil
}

func (s *CredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.ok = domain.Credential{}, false
	return nil
}
