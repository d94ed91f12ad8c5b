package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/kindred/pkg/types"
)

// BreakerConfig holds the configuration for the store circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip the circuit.
	// Default: 5
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning to half-open.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxRequests is the number of requests allowed through while half-open.
	// Default: 1
	HalfOpenMaxRequests uint32
}

// Normalize applies defaults to the BreakerConfig.
func (c *BreakerConfig) Normalize() {
	if c.MaxFailures == 0 {
		c.MaxFailures = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HalfOpenMaxRequests == 0 {
		c.HalfOpenMaxRequests = 1
	}
}

// BreakerStore wraps a RelationshipStore with a circuit breaker so that a
// failing backend is shed quickly instead of tying up request goroutines.
// It does not retry; retry policy belongs to the caller.
//
// ErrNotFound, ErrInvalidInput and context cancellation are treated as
// successful calls for the purpose of tripping the circuit.
type BreakerStore struct {
	inner   RelationshipStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner RelationshipStore, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	cfg.Normalize()
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "RelationshipStore",
		MaxRequests: cfg.HalfOpenMaxRequests,
		Interval:    0, // Don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, ErrInvalidInput) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

// FetchEdgesTouching implements RelationshipStore.
func (b *BreakerStore) FetchEdgesTouching(ctx context.Context, personID string) ([]types.RelationshipEdge, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.inner.FetchEdgesTouching(ctx, personID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]types.RelationshipEdge), nil
}

// FetchAllEdgesReachableFrom implements RelationshipStore.
func (b *BreakerStore) FetchAllEdgesReachableFrom(ctx context.Context, personID string, maxDepth int) ([]types.RelationshipEdge, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.inner.FetchAllEdgesReachableFrom(ctx, personID, maxDepth)
	})
	if err != nil {
		return nil, err
	}
	return res.([]types.RelationshipEdge), nil
}

// GetPerson implements RelationshipStore.
func (b *BreakerStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	res, err := b.execute(func() (interface{}, error) {
		return b.inner.GetPerson(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*types.Person), nil
}

// Close closes the wrapped store.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}

// Unwrap returns the wrapped store.
func (b *BreakerStore) Unwrap() RelationshipStore {
	return b.inner
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := b.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, err
}
