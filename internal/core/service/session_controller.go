package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
	"github.com/99minutos/storefront-client/internal/pkg/metrics"
)

// FailurePolicy decides what happens to the stored credential when a present
// credential fails to resolve.
type FailurePolicy string

const (
	// KeepCredentialOnFailure drops the in-memory session only.
	KeepCredentialOnFailure FailurePolicy = "keep"
	// ClearCredentialOnFailure also clears the credential store.
	ClearCredentialOnFailure FailurePolicy = "clear"
)

// ErrControllerClosed is returned by Login after Close.
var ErrControllerClosed = errors.New("session controller closed")

// ControllerOptions tunes a SessionController.
type ControllerOptions struct {
	FailurePolicy FailurePolicy
	Reconnect     ReconnectPolicy
}

// SessionController is the only writer of the credential and the session. It
// derives the dashboard on every session change and owns the notification
// channel of the client dashboard: acquired when the session enters the
// client-resolved state for an identity, released when that state is left or
// superseded.
type SessionController struct {
	store    ports.CredentialStore
	api      ports.StorefrontAPI
	resolver ports.SessionResolver
	dialer   ports.PushDialer
	opts     ControllerOptions
	log      zerolog.Logger

	// writeMu serializes transitions. It is never held across a network call
	// other than the channel teardown, which is local.
	writeMu sync.Mutex
	// epoch counts the controller's own writes to the store.
	epoch    uint64
	inflight *resolution
	initOnce sync.Once
	initErr  error

	mu           sync.RWMutex
	outcome      domain.SessionOutcome
	dashboard    domain.Dashboard
	channel      *NotificationChannel
	resolvedFrom *domain.Credential
	resolvedOnce bool
	closed       bool
}

// resolution is one profile fetch for one credential value. Callers asking for
// the same credential while it runs wait on done instead of fetching again.
type resolution struct {
	cred   *domain.Credential
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewSessionController returns a controller in the Unauthenticated state.
// Call Init once to pick up a stored credential.
func NewSessionController(
	store ports.CredentialStore,
	api ports.StorefrontAPI,
	resolver ports.SessionResolver,
	dialer ports.PushDialer,
	opts ControllerOptions,
	log zerolog.Logger,
) *SessionController {
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = KeepCredentialOnFailure
	}
	return &SessionController{
		store:     store,
		api:       api,
		resolver:  resolver,
		dialer:    dialer,
		opts:      opts,
		log:       log.With().Str("component", "session_controller").Logger(),
		outcome:   domain.Unauthenticated{},
		dashboard: domain.Dashboard{View: domain.ViewUnauthenticated},
	}
}

// Init reads the credential store once and resolves whatever it holds.
// Subsequent calls return the first call's error without touching the store.
func (c *SessionController) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.reload(ctx)
	})
	return c.initErr
}

// Sync re-reads the credential store and resolves it only if the credential
// differs from the one the current session was resolved from. Callers that load
// the same credential while it is being resolved share that resolution.
func (c *SessionController) Sync(ctx context.Context) error {
	return c.reload(ctx)
}

func (c *SessionController) reload(ctx context.Context) error {
	epoch := c.currentEpoch()

	cred, ok, err := c.store.Load(ctx)
	recordCredentialOp("load", err)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}

	var credPtr *domain.Credential
	if ok {
		credPtr = &cred
	}

	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		return nil
	}
	if r := c.inflight; r != nil && sameCredential(r.cred, credPtr) {
		c.writeMu.Unlock()
		return c.await(ctx, r)
	}
	// The controller wrote the store after this read; that transition
	// resolves what it wrote.
	if epoch != c.epoch {
		c.writeMu.Unlock()
		return nil
	}
	r := c.beginLocked(ctx, credPtr)
	c.writeMu.Unlock()

	if r == nil {
		c.log.Debug().Msg("credential unchanged, skipping resolution")
		return nil
	}
	return c.await(ctx, r)
}

// Login exchanges username and password for a credential, persists it, and
// resolves the new session. A rejected login leaves the current session as is.
func (c *SessionController) Login(ctx context.Context, username, password string) error {
	cred, err := c.api.Login(ctx, username, password)
	if err != nil {
		c.log.Info().Err(err).Str("username", username).Msg("login rejected")
		return err
	}

	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		return ErrControllerClosed
	}
	err = c.store.Save(ctx, cred)
	recordCredentialOp("save", err)
	if err != nil {
		c.writeMu.Unlock()
		return fmt.Errorf("save credential: %w", err)
	}
	c.epoch++
	r := c.beginLocked(ctx, &cred)
	c.writeMu.Unlock()

	c.log.Info().Str("username", username).Msg("logged in")

	if r == nil {
		return nil
	}
	return c.await(ctx, r)
}

// Logout clears the credential, drops the session and closes the channel.
func (c *SessionController) Logout(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.epoch++
	c.abandonLocked()
	err := c.store.Clear(ctx)
	recordCredentialOp("clear", err)
	c.applyLocked(domain.Unauthenticated{}, nil)

	c.log.Info().Msg("logged out")
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Close tears down the owning view: the channel is closed and later
// transitions are ignored. The stored credential is kept.
func (c *SessionController) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.abandonLocked()

	c.mu.Lock()
	ch := c.channel
	c.channel = nil
	c.mu.Unlock()

	if ch != nil {
		return ch.Close()
	}
	return nil
}

// Outcome returns the current session outcome.
func (c *SessionController) Outcome() domain.SessionOutcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outcome
}

// Dashboard returns the dashboard selected for the current outcome.
func (c *SessionController) Dashboard() domain.Dashboard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard
}

// Notifications returns the client dashboard's event log, most recent first.
func (c *SessionController) Notifications() ([]domain.NotificationEvent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.channelErrLocked(); err != nil {
		return nil, err
	}
	return c.channel.Log(), nil
}

// SubscribeNotifications streams events appended to the client dashboard's
// log. It returns ErrChannelClosed once the push connection has dropped.
func (c *SessionController) SubscribeNotifications(ctx context.Context) (<-chan domain.NotificationEvent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.channelErrLocked(); err != nil {
		return nil, err
	}
	return c.channel.Subscribe(ctx)
}

func (c *SessionController) channelErrLocked() error {
	switch {
	case c.channel != nil:
		return nil
	case c.dashboard.View == domain.ViewUnauthenticated:
		return domain.ErrNotAuthenticated
	default:
		return domain.ErrForbiddenView
	}
}

// ChannelState reports the state of the client dashboard's channel.
func (c *SessionController) ChannelState() ChannelState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channel == nil {
		return ChannelClosed
	}
	return c.channel.State()
}

// AccessToken returns the stored access token, or "" when none is stored.
func (c *SessionController) AccessToken(ctx context.Context) (string, error) {
	cred, ok, err := c.store.Load(ctx)
	recordCredentialOp("load", err)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return cred.Access, nil
}

func (c *SessionController) currentEpoch() uint64 {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.epoch
}

// beginLocked returns the resolution serving cred, starting one unless cred is
// the credential the current session came from. A running resolution for a
// different credential is superseded. writeMu must be held.
func (c *SessionController) beginLocked(ctx context.Context, cred *domain.Credential) *resolution {
	if r := c.inflight; r != nil && sameCredential(r.cred, cred) {
		return r
	}
	c.abandonLocked()
	if c.alreadyResolved(cred) {
		return nil
	}

	var credCopy *domain.Credential
	if cred != nil {
		cp := *cred
		credCopy = &cp
	}
	// The fetch belongs to the controller, not to the caller that triggered
	// it: a caller going away must not turn into a failed resolution.
	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &resolution{cred: credCopy, ctx: rctx, cancel: cancel, done: make(chan struct{})}
	c.inflight = r
	go c.resolve(r)
	return r
}

// abandonLocked cancels the running resolution; its result will be dropped.
// writeMu must be held.
func (c *SessionController) abandonLocked() {
	if c.inflight != nil {
		c.inflight.cancel()
		c.inflight = nil
	}
}

// await waits for r or for the caller to give up. A caller giving up does not
// stop r.
func (c *SessionController) await(ctx context.Context, r *resolution) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SessionController) alreadyResolved(cred *domain.Credential) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.resolvedOnce {
		return false
	}
	return sameCredential(cred, c.resolvedFrom)
}

func (c *SessionController) resolve(r *resolution) {
	defer close(r.done)
	defer r.cancel()

	outcome := c.resolver.Resolve(r.ctx, r.cred)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed || c.inflight != r || r.ctx.Err() != nil {
		c.log.Debug().Str("outcome", string(outcome.Kind())).Msg("discarding stale resolution")
		return
	}
	c.inflight = nil

	if failed, ok := outcome.(domain.ResolutionFailed); ok {
		r.err = failed.Reason
		if c.opts.FailurePolicy == ClearCredentialOnFailure {
			c.epoch++
			cerr := c.store.Clear(r.ctx)
			recordCredentialOp("clear", cerr)
			if cerr != nil {
				c.log.Error().Err(cerr).Msg("failed to clear credential after resolution failure")
			}
		}
	}

	c.applyLocked(outcome, r.cred)
}

// applyLocked installs outcome and reconciles the channel with the selected
// dashboard. The old channel is always closed before a new one is opened.
// writeMu must be held.
func (c *SessionController) applyLocked(outcome domain.SessionOutcome, cred *domain.Credential) {
	dash := domain.SelectDashboard(outcome)

	c.mu.RLock()
	current := c.channel
	c.mu.RUnlock()

	if current != nil {
		id, live := current.Identity()
		if !dash.WantsChannel() || !live || id != dash.Identity {
			c.mu.Lock()
			c.channel = nil
			c.mu.Unlock()
			if err := current.Close(); err != nil {
				c.log.Warn().Err(err).Msg("channel close failed")
			}
			current = nil
		}
	}

	var next *NotificationChannel
	if dash.WantsChannel() && current == nil {
		next = NewNotificationChannel(c.dialer, c.opts.Reconnect, c.log)
		if _, err := next.Open(dash.Identity); err != nil {
			c.log.Error().Err(err).Msg("channel open failed")
			next = nil
		}
	}

	var resolvedFrom *domain.Credential
	if cred != nil {
		cp := *cred
		resolvedFrom = &cp
	}

	c.mu.Lock()
	c.outcome = outcome
	c.dashboard = dash
	if next != nil {
		c.channel = next
	}
	c.resolvedFrom = resolvedFrom
	c.resolvedOnce = true
	c.mu.Unlock()

	c.log.Info().
		Str("outcome", string(outcome.Kind())).
		Str("view", string(dash.View)).
		Msg("session changed")
}

func recordCredentialOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CredentialOpsTotal.WithLabelValues(op, result).Inc()
}

func sameCredential(a, b *domain.Credential) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
