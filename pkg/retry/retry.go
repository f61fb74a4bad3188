// Package retry provides capped exponential backoff with jitter. The stream
// supervisor uses it to pace reconnect attempts after a dropped channel.
package retry

import (
	"math/rand"
	"time"
)

// Config defines backoff behavior
type Config struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, default 0.1 for +/-10% jitter to prevent thundering herd
}

// DefaultConfig returns sensible defaults for stream reconnects
// 500ms initial delay, capped at 30s, doubling each time, with 10% jitter
func DefaultConfig() *Config {
	return &Config{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// applyJitter adds random jitter to a delay to prevent thundering herd.
// Jitter is calculated as: delay +/- (delay * jitterFactor * random(-1 to +1))
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Backoff tracks the delay sequence across attempts. Not safe for concurrent
// use; each owner keeps its own instance.
type Backoff struct {
	cfg   *Config
	delay time.Duration
}

// NewBackoff creates a Backoff starting at the configured initial delay.
func NewBackoff(cfg *Config) *Backoff {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Backoff{cfg: cfg, delay: cfg.InitialDelay}
}

// Next returns the jittered delay for the current attempt and advances the
// sequence toward MaxDelay.
func (b *Backoff) Next() time.Duration {
	d := applyJitter(b.delay, b.cfg.JitterFactor)

	b.delay = time.Duration(float64(b.delay) * b.cfg.Multiplier)
	if b.delay > b.cfg.MaxDelay {
		b.delay = b.cfg.MaxDelay
	}

	return d
}

// Reset restores the sequence to the initial delay. Called after a
// connection has stayed healthy long enough.
func (b *Backoff) Reset() {
	b.delay = b.cfg.InitialDelay
}
