// Package worker mirrors the persisted ledger state to a snapshot sink,
// driven by AMQP change messages with a periodic reconcile pass as backstop.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflow/internal/amqp"
	"cashflow/internal/csvio"
	applog "cashflow/internal/log"
	"cashflow/internal/persist"
	"cashflow/internal/sink"
)

type SnapshotWorker struct {
	adapter  *persist.Adapter
	sink     sink.Sink
	amqp     *amqp.Client
	interval time.Duration
	logger   *applog.Logger
}

func NewSnapshotWorker(adapter *persist.Adapter, s sink.Sink, client *amqp.Client, interval time.Duration, logger *applog.Logger) *SnapshotWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	}
	return &SnapshotWorker{
		adapter:  adapter,
		sink:     s,
		amqp:     client,
		interval: interval,
		logger:   logger,
	}
}

// HandleChange flushes the current persisted state to the sink in response
// to one change message.
func (w *SnapshotWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.DebugContext(ctx, "handling ledger change",
		applog.FieldOperation, msg.Op,
		applog.FieldTransactionID, msg.EntityID)
	return w.Flush(ctx)
}

// Flush loads the persisted snapshot and writes it to the sink.
func (w *SnapshotWorker) Flush(ctx context.Context) error {
	state := w.adapter.Load(ctx)
	doc := csvio.Document{
		Transactions: state.Transactions,
		Opening:      state.Opening,
		Start:        state.Start,
		End:          state.End,
	}
	if err := w.sink.Write(ctx, doc); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	w.logger.InfoContext(ctx, "snapshot written",
		applog.FieldRows, len(doc.Transactions),
		applog.FieldOpening, doc.Opening.Cents)
	return nil
}

// Run consumes change messages and reconciles periodically until the
// context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.amqp != nil {
		g.Go(func() error {
			return w.amqp.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangedMessage) error {
				return w.HandleChange(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.Flush(ctx); err != nil {
					w.logger.ErrorContext(ctx, "periodic snapshot failed", applog.FieldError, err)
				}
			}
		}
	})

	return g.Wait()
}
