package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
	"github.com/99minutos/storefront-client/internal/pkg/metrics"
)

const subscriberBuffer = 16

// ChannelState is the lifecycle state of a NotificationChannel.
type ChannelState string

const (
	ChannelClosed ChannelState = "closed"
	ChannelOpen   ChannelState = "open"
)

// ChannelHandle is the live connection bound to exactly one identity.
// Its connection is closed at most once.
type ChannelHandle struct {
	ID       uuid.UUID
	Identity domain.UserID

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	conn     ports.PushConn
	released bool
}

// attach binds conn to the handle. It reports false when the handle was
// released while dialing; the caller then owns conn.
func (h *ChannelHandle) attach(conn ports.PushConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return false
	}
	h.conn = conn
	return true
}

// detach closes conn if the handle still owns it.
func (h *ChannelHandle) detach(conn ports.PushConn) error {
	h.mu.Lock()
	if h.conn != conn {
		h.mu.Unlock()
		return nil
	}
	h.conn = nil
	h.mu.Unlock()
	return conn.Close()
}

// release cancels any dial or backoff in flight and closes the current connection.
func (h *ChannelHandle) release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	conn := h.conn
	h.conn = nil
	h.mu.Unlock()

	h.cancel()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// NotificationChannel streams order-status events for one identity at a time
// into a most-recent-first log.
type NotificationChannel struct {
	dialer ports.PushDialer
	policy ReconnectPolicy
	log    zerolog.Logger

	mu      sync.Mutex
	state   ChannelState
	handle  *ChannelHandle
	events  []domain.NotificationEvent // oldest first
	subs    map[int]chan domain.NotificationEvent
	nextSub int
}

// NewNotificationChannel returns a Closed channel.
func NewNotificationChannel(dialer ports.PushDialer, policy ReconnectPolicy, log zerolog.Logger) *NotificationChannel {
	return &NotificationChannel{
		dialer: dialer,
		policy: policy,
		log:    log.With().Str("component", "notification_channel").Logger(),
		state:  ChannelClosed,
		subs:   make(map[int]chan domain.NotificationEvent),
	}
}

// Open moves the channel to Open(identity) and starts connecting in the
// background. Opening while a handle is live is refused with ErrChannelBusy;
// the previous handle must be closed first.
func (c *NotificationChannel) Open(identity domain.UserID) (*ChannelHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return nil, domain.ErrChannelBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &ChannelHandle{
		ID:       uuid.New(),
		Identity: identity,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.handle = h
	c.state = ChannelOpen
	metrics.PushChannelsOpen.Inc()

	c.log.Info().
		Str("handle", h.ID.String()).
		Str("identity", identity.String()).
		Msg("channel opened")

	go c.run(ctx, h)
	return h, nil
}

// Close tears the channel down synchronously: the connection is closed, the
// read goroutine has exited, and the log is discarded when Close returns.
// Closing a Closed channel is a no-op.
func (c *NotificationChannel) Close() error {
	c.mu.Lock()
	h := c.handle
	if h != nil {
		c.handle = nil
		metrics.PushChannelsOpen.Dec()
	}
	c.state = ChannelClosed
	c.events = nil
	c.closeSubscribersLocked()
	c.mu.Unlock()

	if h == nil {
		return nil
	}

	err := h.release()
	<-h.done

	c.log.Info().
		Str("handle", h.ID.String()).
		Str("identity", h.Identity.String()).
		Msg("channel closed")
	return err
}

// State returns the current lifecycle state.
func (c *NotificationChannel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Identity returns the identity of the live handle, if any.
func (c *NotificationChannel) Identity() (domain.UserID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return 0, false
	}
	return c.handle.Identity, true
}

// Log returns a copy of the received events, most recent first.
func (c *NotificationChannel) Log() []domain.NotificationEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.NotificationEvent, len(c.events))
	for i, ev := range c.events {
		out[len(c.events)-1-i] = ev
	}
	return out
}

// Subscribe returns a channel receiving every event appended after the call.
// It is closed when ctx ends or the notification channel closes, by Close or
// by a transport drop. Slow subscribers miss events rather than stall the read
// loop. Subscribing to a Closed channel returns ErrChannelClosed.
func (c *NotificationChannel) Subscribe(ctx context.Context) (<-chan domain.NotificationEvent, error) {
	c.mu.Lock()
	if c.handle == nil {
		c.mu.Unlock()
		return nil, domain.ErrChannelClosed
	}
	ch := make(chan domain.NotificationEvent, subscriberBuffer)
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}()

	return ch, nil
}

func (c *NotificationChannel) run(ctx context.Context, h *ChannelHandle) {
	defer close(h.done)

	log := c.log.With().Str("handle", h.ID.String()).Str("identity", h.Identity.String()).Logger()
	attempt := 0

	for {
		conn, err := c.dialer.Dial(ctx, h.Identity)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			if attempt > 0 {
				metrics.PushReconnectsTotal.WithLabelValues("error").Inc()
			}
			log.Warn().Err(err).Msg("push dial failed")
		case !h.attach(conn):
			_ = conn.Close()
			return
		default:
			if attempt > 0 {
				metrics.PushReconnectsTotal.WithLabelValues("ok").Inc()
			}
			attempt = 0
			readErr := c.readLoop(h, conn)
			if cerr := h.detach(conn); cerr != nil {
				log.Debug().Err(cerr).Msg("push close after drop")
			}
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(readErr).Msg("push connection dropped")
		}

		if attempt >= c.policy.MaxAttempts {
			if c.policy.Enabled() {
				metrics.PushReconnectsTotal.WithLabelValues("abandoned").Inc()
			}
			c.markClosed(h)
			return
		}
		wait := c.policy.Backoff(attempt)
		attempt++
		log.Info().Dur("backoff", wait).Int("attempt", attempt).Msg("reconnecting")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// The identity may have been superseded while waiting.
		if !c.isCurrent(h) {
			return
		}
	}
}

// readLoop delivers messages in transport order until the connection ends or
// the handle is no longer current.
func (c *NotificationChannel) readLoop(h *ChannelHandle, conn ports.PushConn) error {
	for {
		payload, err := conn.Read()
		if err != nil {
			return err
		}

		ev, err := domain.DecodeNotification(payload)
		if err != nil {
			metrics.PushMalformedTotal.Inc()
			c.log.Warn().Err(err).Str("handle", h.ID.String()).Msg("dropping malformed push payload")
			continue
		}

		if !c.append(h, ev) {
			return errors.New("handle released")
		}
	}
}

func (c *NotificationChannel) append(h *ChannelHandle, ev domain.NotificationEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != h {
		return false
	}

	c.events = append(c.events, ev)
	metrics.PushEventsTotal.WithLabelValues(metrics.StatusLabel(string(ev.Status))).Inc()

	for _, sub := range c.subs {
		select {
		case sub <- ev:
		default:
			metrics.PushSubscriberDropsTotal.Inc()
		}
	}
	return true
}

func (c *NotificationChannel) isCurrent(h *ChannelHandle) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle == h
}

// markClosed returns the channel to Closed after a transport drop that is not
// followed by a reconnect. The log is kept: the owning view is still mounted.
// Subscribers are released since no further events can arrive.
func (c *NotificationChannel) markClosed(h *ChannelHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != h {
		return
	}
	c.handle = nil
	c.state = ChannelClosed
	c.closeSubscribersLocked()
	metrics.PushChannelsOpen.Dec()
	h.cancel()

	c.log.Info().
		Str("handle", h.ID.String()).
		Str("identity", h.Identity.String()).
		Msg("channel closed by transport")
}

func (c *NotificationChannel) closeSubscribersLocked() {
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}
