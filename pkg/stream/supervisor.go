package stream

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/locationscout/scout-engine/pkg/apperrors"
	"github.com/locationscout/scout-engine/pkg/retry"
)

// Supervisor keeps a stream channel open across transient network failures.
// When the channel errors it opens a fresh one with capped exponential
// backoff. Nothing is buffered server-side, so missed events are not
// replayed; consumption simply resumes with new ones.
type Supervisor struct {
	client       *Client
	backoffCfg   *retry.Config
	healthyAfter time.Duration
	logger       *zap.Logger
}

// NewSupervisor wraps client with reconnect behavior. backoffCfg may be nil
// for defaults. healthyAfter is how long a connection must stay up before
// the backoff resets.
func NewSupervisor(client *Client, backoffCfg *retry.Config, healthyAfter time.Duration, logger *zap.Logger) *Supervisor {
	if backoffCfg == nil {
		backoffCfg = retry.DefaultConfig()
	}
	return &Supervisor{
		client:       client,
		backoffCfg:   backoffCfg,
		healthyAfter: healthyAfter,
		logger:       logger.Named("stream-supervisor"),
	}
}

// Run blocks, holding one channel open until ctx is canceled or the client
// is closed by its owner. It returns ctx.Err() on cancellation and nil if
// the channel was closed deliberately.
func (s *Supervisor) Run(ctx context.Context) error {
	backoff := retry.NewBackoff(s.backoffCfg)

	for {
		openedAt := time.Now()
		err := s.client.Open(ctx)
		if errors.Is(err, apperrors.ErrStreamClosed) {
			// Owner closed the client while we were between channels
			// (mid-dial or waiting out a backoff); supervision ends with it.
			return nil
		}
		if err == nil {
			select {
			case <-ctx.Done():
				s.client.Close()
				return ctx.Err()
			case <-s.client.Done():
				err = s.client.Err()
				if err == nil {
					// Owner closed the channel; supervision ends with it.
					return nil
				}
			}
			if time.Since(openedAt) >= s.healthyAfter {
				backoff.Reset()
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := backoff.Next()
		s.logger.Warn("Stream down, reconnecting",
			zap.Error(err),
			zap.Duration("retry_in", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
