package service

import (
	"math"
	"math/rand"
	"time"
)

// ReconnectPolicy bounds automatic reconnection of a dropped push connection.
// The zero value disables reconnection.
type ReconnectPolicy struct {
	// MaxAttempts is the number of consecutive reconnect attempts after a drop.
	MaxAttempts int
	// InitialBackoff is the wait before the first attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration
	// Multiplier grows the wait after each failed attempt.
	Multiplier float64
	// Jitter adds up to this fraction of randomness to each wait (0.0 to 1.0).
	Jitter float64
}

// DefaultReconnectPolicy returns the hardening defaults used when reconnection
// is enabled with only an attempt count.
func DefaultReconnectPolicy(maxAttempts int) ReconnectPolicy {
	return ReconnectPolicy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// Enabled reports whether any reconnect attempt is allowed.
func (p ReconnectPolicy) Enabled() bool {
	return p.MaxAttempts > 0
}

// Backoff returns the wait before attempt n (0-based).
func (p ReconnectPolicy) Backoff(n int) time.Duration {
	initial := p.InitialBackoff
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(initial) * math.Pow(mult, float64(n))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * rand.Float64()
	}
	return time.Duration(d)
}
