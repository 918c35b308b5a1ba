package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

const collectionCredentials = "credentials"

// CredentialStore keeps the token pair in a single document so that a save is
// atomic without a transaction.
type CredentialStore struct {
	col *mongo.Collection
	id  string
}

// NewCredentialStore stores the pair under document id (the client's slot).
func NewCredentialStore(db *mongo.Database, id string) *CredentialStore {
	return &CredentialStore{col: db.Collection(collectionCredentials), id: id}
}

type credentialDoc struct {
	ID           string `bson:"_id"`
	AccessToken  string `bson:"access_token"`
	RefreshToken string `bson:"refresh_token"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (s *CredentialStore) Save(ctx context.Context, cred domain.Credential) error {
	if !cred.Valid() {
		return domain.ErrPartialCredential
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := credentialDoc{
		ID:           s.id,
		AccessToken:  cred.Access,
		RefreshToken: cred.Refresh,
		UpdatedAt:    time.Now().Unix(),
	}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": s.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (domain.Credential, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc credentialDoc
	err := s.col.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Credential{}, false, nil
	}
	if err != nil {
		return domain.Credential{}, false, fmt.Errorf("load credential: %w", err)
	}

	cred := domain.Credential{Access: doc.AccessToken, Refresh: doc.RefreshToken}
	if !cred.Valid() {
		return domain.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": s.id}); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, readpref.Primary())
}
