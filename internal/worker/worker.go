// Package worker drives pending orders through the claim and process cycle.
//
// Any number of worker processes may poll the same store. Coordination is
// entirely per-row: the store's conditional update on locked_at is the only
// lock, so a lost claim means another worker owns the order and the row is
// simply skipped.
package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/henriquexaud/OrdersAPI/internal/config"
	"github.com/henriquexaud/OrdersAPI/internal/domain"
)

// Store is the slice of the order store the worker needs.
type Store interface {
	FetchPending(ctx context.Context, limit, maxAttempts int) ([]*domain.Order, error)
	TryClaim(ctx context.Context, id string) (bool, error)
	MarkProcessed(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, message string) error
}

// ProcessFunc performs the work for one claimed order. An error return
// records a failed attempt on the row.
type ProcessFunc func(ctx context.Context, o *domain.Order) error

const maxPollJitter = 150 * time.Millisecond

type Worker struct {
	store        Store
	log          *zap.Logger
	process      ProcessFunc
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
}

type Option func(*Worker)

// WithProcessFunc replaces the simulated processing step.
func WithProcessFunc(fn ProcessFunc) Option {
	return func(w *Worker) { w.process = fn }
}

func New(store Store, cfg config.Config, log *zap.Logger, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		log:          log,
		process:      simulateProcessing(cfg.ProcessingDelay()),
		pollInterval: cfg.PollInterval(),
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the store until ctx is cancelled. Cancellation is only observed
// at iteration boundaries: a batch in progress is always drained, so no
// claim is abandoned mid-order. Pass-level failures are transient; the loop
// logs them and retries after the next sleep.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started",
		zap.Duration("pollInterval", w.pollInterval),
		zap.Int("batchSize", w.batchSize),
		zap.Int("maxAttempts", w.maxAttempts))

	for {
		if err := w.runOnce(ctx); err != nil {
			w.log.Error("worker pass failed, will retry", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return
		case <-time.After(w.pollInterval + pollJitter()):
		}
	}
}

// runOnce fetches one eligible batch and drives each order through claim and
// process sequentially, oldest first.
func (w *Worker) runOnce(ctx context.Context) error {
	orders, err := w.store.FetchPending(ctx, w.batchSize, w.maxAttempts)
	if err != nil {
		return errors.Wrap(err, "fetch pending orders")
	}

	for _, o := range orders {
		claimed, err := w.store.TryClaim(ctx, o.ID)
		if err != nil {
			w.log.Error("claim failed", zap.String("orderId", o.OrderID), zap.Error(err))
			continue
		}
		if !claimed {
			// Another worker got there first. Not an error.
			continue
		}
		w.processOrder(ctx, o)
	}
	return nil
}

// processOrder resolves one claimed order: either the row goes terminal
// PROCESSED, or the failure is recorded and the claim released for a retry.
// Every path clears locked_at.
func (w *Worker) processOrder(ctx context.Context, o *domain.Order) {
	log := w.log.With(zap.String("orderId", o.OrderID))
	log.Info("processing order")

	err := w.process(ctx, o)
	if err == nil {
		if err = w.store.MarkProcessed(ctx, o.ID); err == nil {
			log.Info("order processed")
			return
		}
	}

	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	if ferr := w.store.MarkFailed(ctx, o.ID, msg); ferr != nil {
		log.Error("failed to record processing failure", zap.Error(ferr))
		return
	}

	attempts := o.Attempts + 1
	if attempts >= w.maxAttempts {
		log.Error("max attempts reached", zap.Int("attempts", attempts), zap.Error(err))
	} else {
		log.Error("processing failed, will retry", zap.Int("attempts", attempts), zap.Error(err))
	}
}

// simulateProcessing stands in for real work. The sleep is deliberately not
// cancellable: an order claimed before shutdown finishes its pass.
func simulateProcessing(delay time.Duration) ProcessFunc {
	return func(context.Context, *domain.Order) error {
		time.Sleep(delay)
		return nil
	}
}

// pollJitter desynchronizes multiple workers polling the same store.
func pollJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxPollJitter)))
}
