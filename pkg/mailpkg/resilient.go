package mailpkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned when a message could not be delivered after all attempts
// or when the breaker is open.
var ErrUnavailable = errors.New("mail delivery unavailable")

// ResilientConfig configures retries and the circuit breaker around a Sender.
type ResilientConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a probe.
	OpenTimeout time.Duration
}

// DefaultResilientConfig returns the settings used by the server.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxRetries:          2,
		InitialInterval:     200 * time.Millisecond,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// ResilientSender retries failed deliveries with exponential backoff and stops
// calling the wrapped Sender while it keeps failing.
type ResilientSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker
	cfg     ResilientConfig
	logger  zerolog.Logger
}

// NewResilientSender wraps next.
func NewResilientSender(next Sender, cfg ResilientConfig, logger zerolog.Logger) *ResilientSender {
	settings := gobreaker.Settings{
		Name:    "mail",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &ResilientSender{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
		cfg:     cfg,
		logger:  logger,
	}
}

// Send implements Sender.
func (s *ResilientSender) Send(ctx context.Context, msg Message) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.cfg.MaxRetries), ctx)

	op := func() error {
		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.next.Send(ctx, msg)
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}

		return err
	}

	if err := backoff.Retry(op, policy); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("to", msg.To).Msg("mail delivery failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}
