package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/csvio"
	"cashflow/internal/ledger"
	"cashflow/internal/persist"
	"cashflow/internal/persist/memory"
)

type captureSink struct {
	docs []csvio.Document
	err  error
}

func (c *captureSink) Write(_ context.Context, doc csvio.Document) error {
	if c.err != nil {
		return c.err
	}
	c.docs = append(c.docs, doc)
	return nil
}

func seededAdapter(t *testing.T) *persist.Adapter {
	t.Helper()
	ctx := context.Background()
	a := persist.NewAdapter(memory.New(), nil)
	if err := a.SetSaveProgress(ctx, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	err := a.Save(ctx, ledger.Snapshot{
		Transactions: []core.Transaction{
			{ID: core.NewID(), Name: "Rent", Amount: core.Money{Cents: -50000}, Date: core.NewDate(2024, time.March, 2)},
		},
		Templates:    core.SeedTemplates(),
		Opening:      core.Money{Cents: 100000},
		Start:        core.NewDate(2024, time.March, 1),
		End:          core.NewDate(2024, time.March, 31),
		SaveProgress: true,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return a
}

func TestHandleChangeFlushesToSink(t *testing.T) {
	sink := &captureSink{}
	w := NewSnapshotWorker(seededAdapter(t), sink, nil, time.Minute, nil)

	msg := amqp.NewLedgerChangedMessage("add_transaction", "tx-1")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("handle change: %v", err)
	}

	if len(sink.docs) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(sink.docs))
	}
	doc := sink.docs[0]
	if len(doc.Transactions) != 1 || doc.Transactions[0].Name != "Rent" {
		t.Fatalf("unexpected snapshot: %+v", doc.Transactions)
	}
	if doc.Opening.Cents != 100000 {
		t.Fatalf("opening = %d", doc.Opening.Cents)
	}
}

func TestFlushPropagatesSinkError(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	w := NewSnapshotWorker(seededAdapter(t), sink, nil, time.Minute, nil)

	if err := w.Flush(context.Background()); err == nil {
		t.Fatalf("expected sink error to propagate")
	}
}

func TestRunPeriodicFlush(t *testing.T) {
	sink := &captureSink{}
	w := NewSnapshotWorker(seededAdapter(t), sink, nil, 10*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run should end with the context, got %v", err)
	}
	if len(sink.docs) == 0 {
		t.Fatalf("expected at least one periodic flush")
	}
}
