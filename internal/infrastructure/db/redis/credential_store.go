package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

// CredentialStore keeps the token pair under two keys:
// <prefix>access_token and <prefix>refresh_token.
type CredentialStore struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewCredentialStore wraps client. prefix namespaces the keys, e.g. "storefront:".
func NewCredentialStore(client *redis.Client, prefix string, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: prefix,
		log:    log.With().Str("component", "redis_credential_store").Logger(),
	}
}

// Save writes both keys in one MULTI/EXEC so no reader sees half a pair.
func (s *CredentialStore) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Valid() {
		return domain.ErrPartialCredential
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(domain.AccessTokenKey), cred.Access, 0)
		p.Set(ctx, s.key(domain.RefreshTokenKey), cred.Refresh, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (domain.Credential, bool, error) {
	vals, err := s.client.MGet(ctx, s.key(domain.AccessTokenKey), s.key(domain.RefreshTokenKey)).Result()
	if err != nil {
		return domain.Credential{}, false, fmt.Errorf("load credential: %w", err)
	}

	access, _ := vals[0].(string)
	refresh, _ := vals[1].(string)
	switch {
	case access == "" && refresh == "":
		return domain.Credential{}, false, nil
	case access == "" || refresh == "":
		s.log.Warn().Bool("has_access", access != "").Bool("has_refresh", refresh != "").Msg("partial credential stored, treating as absent")
		return domain.Credential{}, false, nil
	}
	return domain.Credential{Access: access, Refresh: refresh}, true, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(domain.AccessTokenKey), s.key(domain.RefreshTokenKey)).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CredentialStore) key(name string) string {
	return s.prefix + name
}
