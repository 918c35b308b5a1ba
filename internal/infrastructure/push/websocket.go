// Package push dials the per-user order-status websocket.
package push

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-client/internal/core/domain"
	"github.com/99minutos/storefront-client/internal/core/ports"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	closeGracePeriod        = time.Second
)

// Dialer opens ws(s)://<base>/ws/orders/<id>/ connections.
type Dialer struct {
	baseURL string
	ws      websocket.Dialer
	log     zerolog.Logger
}

// NewDialer returns a Dialer for baseURL (ws:// or wss://). A handshake
// timeout <= 0 falls back to ten seconds.
func NewDialer(baseURL string, handshakeTimeout time.Duration, log zerolog.Logger) *Dialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}
	return &Dialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		ws:      websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		log:     log.With().Str("component", "push_dialer").Logger(),
	}
}

// URL returns the push endpoint for identity.
func (d *Dialer) URL(identity domain.UserID) string {
	return fmt.Sprintf("%s/ws/orders/%d/", d.baseURL, int64(identity))
}

func (d *Dialer) Dial(ctx context.Context, identity domain.UserID) (ports.PushConn, error) {
	url := d.URL(identity)
	conn, _, err := d.ws.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	d.log.Debug().Str("url", url).Msg("push connected")
	return &Conn{conn: conn}, nil
}

// Conn adapts a websocket connection to ports.PushConn.
type Conn struct {
	conn *websocket.Conn
	once sync.Once
	err  error
}

// Read returns the next text or binary message.
func (c *Conn) Read() ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}

// Close sends a normal close frame and closes the socket. Only the first call
// has any effect; a pending Read returns an error.
func (c *Conn) Close() error {
	c.once.Do(func() {
		// Best effort: the peer may already be gone.
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod),
		)
		c.err = c.conn.Close()
	})
	return c.err
}
