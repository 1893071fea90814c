package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

var _ Provider = (*GuardedProvider)(nil)

// Circuit breaker defaults. The breaker opens once more than
// MaxFailingRequests requests were seen and at least FailingRatio of them
// failed at the transport level.
const (
	DefaultMaxFailingRequests = 10
	DefaultFailingRatio       = 0.6
	DefaultOpenTimeout        = 30 * time.Second
	DefaultRequestsPerSecond  = 10
)

// GuardConfig tunes a GuardedProvider. Zero fields take the defaults.
type GuardConfig struct {
	Name               string
	MaxFailingRequests uint32
	FailingRatio       float64
	OpenTimeout        time.Duration
	RequestsPerSecond  int
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.Name == "" {
		c.Name = "provider"
	}
	if c.MaxFailingRequests == 0 {
		c.MaxFailingRequests = DefaultMaxFailingRequests
	}
	if c.FailingRatio == 0 {
		c.FailingRatio = DefaultFailingRatio
	}
	if c.OpenTimeout == 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return c
}

// GuardedProvider wraps a Provider with a client-side rate limit and a
// circuit breaker. Only transport failures count against the breaker; a
// node rejecting a transaction is a valid answer.
type GuardedProvider struct {
	next    Provider
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
	log     *log.Entry
}

// NewGuardedProvider wraps next.
func NewGuardedProvider(next Provider, cfg GuardConfig, logger *log.Logger) *GuardedProvider {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.StandardLogger()
	}
	entry := logger.WithField("component", cfg.Name)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > cfg.MaxFailingRequests && failureRatio >= cfg.FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			entry.WithFields(log.Fields{"from": from.String(), "to": to.String()}).Warn("circuit breaker state change")
		},
	})

	return &GuardedProvider{
		next:    next,
		cb:      cb,
		limiter: ratelimit.New(cfg.RequestsPerSecond),
		log:     entry,
	}
}

// State reports the breaker state.
func (g *GuardedProvider) State() gobreaker.State {
	return g.cb.State()
}

func (g *GuardedProvider) FetchUTXOs(ctx context.Context, address string) ([]*UTXO, error) {
	return guard(ctx, g, "fetch_utxos", func() ([]*UTXO, error) {
		return g.next.FetchUTXOs(ctx, address)
	})
}

func (g *GuardedProvider) GetBalance(ctx context.Context, address string) (*Balance, error) {
	return guard(ctx, g, "get_balance", func() (*Balance, error) {
		return g.next.GetBalance(ctx, address)
	})
}

func (g *GuardedProvider) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return guard(ctx, g, "broadcast_tx", func() (string, error) {
		return g.next.BroadcastTx(ctx, rawTxHex)
	})
}

// passthrough carries a non-transport error through the breaker without
// counting it as a failure.
type passthrough struct{ err error }

func guard[T any](ctx context.Context, g *GuardedProvider, op string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	g.limiter.Take()

	res, err := g.cb.Execute(func() (interface{}, error) {
		v, err := fn()
		if err != nil && !isTransportError(err) {
			return passthrough{err}, nil
		}
		return v, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.log.WithField("op", op).Debug("short-circuited")
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		g.log.WithField("op", op).WithError(err).Warn("provider call failed")
		return zero, err
	}
	if p, ok := res.(passthrough); ok {
		return zero, p.err
	}
	return res.(T), nil
}

func isTransportError(err error) bool {
	return errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, context.DeadlineExceeded)
}
