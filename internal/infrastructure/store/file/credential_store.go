// Package file persists the credential in a local JSON file, optionally
// sealed with a passphrase.
package file

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/99minutos/storefront-client/internal/core/domain"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var (
	ErrPassphraseRequired = errors.New("credential file is sealed and no passphrase is configured")
	ErrDecrypt            = errors.New("credential file could not be opened with the configured passphrase")
)

// record is the on-disk layout. Sealed files carry only Salt and Box; Box is
// the secretbox nonce followed by the sealed JSON of a plain record.
type record struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Salt         []byte `json:"salt,omitempty"`
	Box          []byte `json:"box,omitempty"`
}

// CredentialStore writes the pair to a single file with a temp file and
// rename, so readers see either the old pair or the new one.
type CredentialStore struct {
	path       string
	passphrase []byte
	log        zerolog.Logger

	mu   sync.Mutex
	salt []byte
	key  *[keySize]byte
}

// NewCredentialStore stores the credential at path. An empty passphrase
// writes plaintext.
func NewCredentialStore(path, passphrase string, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{
		path:       path,
		passphrase: []byte(passphrase),
		log:        log.With().Str("component", "file_credential_store").Str("path", path).Logger(),
	}
}

func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	if !cred.Valid() {
		return domain.ErrPartialCredential
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{AccessToken: cred.Access, RefreshToken: cred.Refresh}
	if len(s.passphrase) > 0 {
		sealed, err := s.seal(rec)
		if err != nil {
			return err
		}
		rec = sealed
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	return s.writeAtomic(data)
}

func (s *CredentialStore) Load(context.Context) (domain.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Credential{}, false, nil
	}
	if err != nil {
		return domain.Credential{}, false, fmt.Errorf("read credential: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Credential{}, false, fmt.Errorf("decode credential: %w", err)
	}
	if len(rec.Box) > 0 {
		if rec, err = s.open(rec); err != nil {
			return domain.Credential{}, false, err
		}
	}

	cred := domain.Credential{Access: rec.AccessToken, Refresh: rec.RefreshToken}
	if !cred.Valid() {
		if cred.Access != "" || cred.Refresh != "" {
			s.log.Warn().Msg("partial credential stored, treating as absent")
		}
		return domain.Credential{}, false, nil
	}
	return cred, true, nil
}

func (s *CredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod credential: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) seal(rec record) (record, error) {
	if s.key == nil {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return record{}, fmt.Errorf("generate salt: %w", err)
		}
		s.salt, s.key = salt, s.deriveKey(salt)
	}

	plain, err := json.Marshal(rec)
	if err != nil {
		return record{}, fmt.Errorf("encode credential: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return record{}, fmt.Errorf("generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], plain, &nonce, s.key)
	return record{Salt: s.salt, Box: box}, nil
}

func (s *CredentialStore) open(rec record) (record, error) {
	if len(s.passphrase) == 0 {
		return record{}, ErrPassphraseRequired
	}
	if len(rec.Box) < nonceSize {
		return record{}, ErrDecrypt
	}

	key := s.key
	if key == nil || !bytes.Equal(s.salt, rec.Salt) {
		key = s.deriveKey(rec.Salt)
		s.salt, s.key = rec.Salt, key
	}

	var nonce [nonceSize]byte
	copy(nonce[:], rec.Box[:nonceSize])
	plain, ok := secretbox.Open(nil, rec.Box[nonceSize:], &nonce, key)
	if !ok {
		return record{}, ErrDecrypt
	}

	var out record
	if err := json.Unmarshal(plain, &out); err != nil {
		return record{}, fmt.Errorf("decode sealed credential: %w", err)
	}
	return out, nil
}

func (s *CredentialStore) deriveKey(salt []byte) *[keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, keySize))
	return &key
}
