package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"deedgate/internal/sentinel"
	"deedgate/pkg/domain"
	"deedgate/pkg/platform/circuit"
)

// Guarded fails ledger calls fast while the circuit breaker is open, so a stalled RPC
// endpoint turns into immediate retryable errors instead of piling up requests.
// Only transport failures count against the breaker; a negative answer or a reverted
// transaction means the ledger is reachable.
type Guarded struct {
	next    Ledger
	breaker *circuit.Breaker
	metrics *Metrics
	logger  *slog.Logger
}

type GuardedOption func(*Guarded)

func WithGuardMetrics(m *Metrics) GuardedOption {
	return func(g *Guarded) { g.metrics = m }
}

func WithGuardLogger(l *slog.Logger) GuardedOption {
	return func(g *Guarded) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGuarded(next Ledger, breaker *circuit.Breaker, opts ...GuardedOption) *Guarded {
	if next == nil {
		panic("ledger.NewGuarded: next ledger is required")
	}
	if breaker == nil {
		breaker = circuit.New("ledger")
	}
	g := &Guarded{next: next, breaker: breaker, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guarded) IsRegistered(ctx context.Context, hash domain.RecordHash) (bool, error) {
	var registered bool
	err := g.do(ctx, MethodIsRegistered, func() error {
		var err error
		registered, err = g.next.IsRegistered(ctx, hash)
		return err
	})
	return registered, err
}

func (g *Guarded) RegisterHash(ctx context.Context, hash domain.RecordHash) (Receipt, error) {
	var receipt Receipt
	err := g.do(ctx, MethodRegisterHash, func() error {
		var err error
		receipt, err = g.next.RegisterHash(ctx, hash)
		return err
	})
	return receipt, err
}

func (g *Guarded) CreateListing(ctx context.Context, id domain.ContractID, priceWei *big.Int) (Receipt, error) {
	var receipt Receipt
	err := g.do(ctx, MethodCreateListing, func() error {
		var err error
		receipt, err = g.next.CreateListing(ctx, id, priceWei)
		return err
	})
	return receipt, err
}

func (g *Guarded) Listing(ctx context.Context, id domain.ContractID) (*Listing, error) {
	var listing *Listing
	err := g.do(ctx, MethodListing, func() error {
		var err error
		listing, err = g.next.Listing(ctx, id)
		return err
	})
	return listing, err
}

func (g *Guarded) do(ctx context.Context, method string, call func() error) error {
	if !g.breaker.Allow() {
		g.metrics.IncBreakerReject()
		return fmt.Errorf("ledger %s: circuit %s open: %w", method, g.breaker.Name(), sentinel.ErrUnavailable)
	}

	err := call()
	if err != nil && errors.Is(err, sentinel.ErrUnavailable) {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.metrics.SetBreakerOpen(true)
			g.logger.ErrorContext(ctx, "circuit breaker opened",
				"circuit", g.breaker.Name(),
				"method", method,
				"error", err,
			)
		}
		return err
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.metrics.SetBreakerOpen(false)
		g.logger.InfoContext(ctx, "circuit breaker closed", "circuit", g.breaker.Name())
	}
	return err
}

var _ Ledger = (*Guarded)(nil)
