package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

// stubAPI answers Profile from a token → profile table.
type stubAPI struct {
	mu           sync.Mutex
	profiles     map[string]domain.Profile
	profileErr   error
	profileCalls int
	block        chan struct{} // when set, Profile waits on it

	loginCred domain.Credential
	loginErr  error

	categories []domain.Category
	created    []domain.ProductInput
	lastToken  string
	createErr  error

	registered  []domain.RegisterInput
	registerErr error
}

func (a *stubAPI) Login(_ context.Context, _, _ string) (domain.Credential, error) {
	return a.loginCred, a.loginErr
}

func (a *stubAPI) Register(_ context.Context, in domain.RegisterInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.registerErr != nil {
		return a.registerErr
	}
	a.registered = append(a.registered, in)
	return nil
}

func (a *stubAPI) Profile(ctx context.Context, token string) (domain.Profile, error) {
	a.mu.Lock()
	a.profileCalls++
	block := a.block
	a.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.Profile{}, ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profileErr != nil {
		return domain.Profile{}, a.profileErr
	}
	p, ok := a.profiles[token]
	if !ok {
		return domain.Profile{}, &domain.APIError{Status: 401, Detail: "Given token not valid for any token type"}
	}
	return p, nil
}

func (a *stubAPI) Categories(context.Context) []domain.Category {
	return a.categories
}

func (a *stubAPI) CreateProduct(_ context.Context, token string, in domain.ProductInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastToken = token
	if a.createErr != nil {
		return a.createErr
	}
	a.created = append(a.created, in)
	return nil
}

func (a *stubAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profileCalls
}

// stubStore is an in-memory CredentialStore.
type stubStore struct {
	mu      sync.Mutex
	cred    domain.Credential
	ok      bool
	loadErr error
	clears  int
}

func (s *stubStore) Save(_ context.Context, c domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.ok = c, true
	return nil
}

func (s *stubStore) Load(context.Context) (domain.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, s.ok, s.loadErr
}

func (s *stubStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.ok = domain.Credential{}, false
	s.clears++
	return nil
}

func (s *stubStore) stored() (domain.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, s.ok
}

// stubConn delivers queued messages, then blocks until closed.
type stubConn struct {
	msgs   chan []byte
	closed chan struct{}
	once   sync.Once
	closes atomic.Int32
}

func newStubConn(buffer int) *stubConn {
	return &stubConn{msgs: make(chan []byte, buffer), closed: make(chan struct{})}
}

func (c *stubConn) Read() ([]byte, error) {
	select {
	case m, ok := <-c.msgs:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *stubConn) Close() error {
	c.closes.Add(1)
	c.once.Do(func() { close(c.closed) })
	return nil
}

// drop simulates the server ending the connection.
func (c *stubConn) drop() { close(c.msgs) }

// stubDialer hands out connections in order and records each dial.
type stubDialer struct {
	mu      sync.Mutex
	conns   []*stubConn
	dials   []domain.UserID
	dialErr error
	dialed  chan domain.UserID
}

func newStubDialer(conns ...*stubConn) *stubDialer {
	return &stubDialer{conns: conns, dialed: make(chan domain.UserID, 64)}
}

func (d *stubDialer) Dial(_ context.Context, id domain.UserID) (ports.PushConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, id)
	d.dialed <- id
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if len(d.conns) == 0 {
		return nil, errors.New("connection refused")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *stubDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

func (d *stubDialer) identities() []domain.UserID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.UserID(nil), d.dials...)
}

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) AccessToken(context.Context) (string, error) { return s.token, s.err }
