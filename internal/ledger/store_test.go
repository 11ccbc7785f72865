package ledger

import (
	"errors"
	"testing"
	"time"

	"cashflow/internal/core"
)

func mar(day int) core.Date {
	return core.NewDate(2024, time.March, day)
}

func newTestStore() *Store {
	return New(Snapshot{Start: mar(1), End: mar(31)})
}

func TestNewFillsDefaults(t *testing.T) {
	s := New(Snapshot{})
	st := s.Snapshot()
	if len(st.Templates) != 3 {
		t.Fatalf("expected seed templates, got %d", len(st.Templates))
	}
	if st.Start.IsZero() || st.End.IsZero() || st.Start.After(st.End.Time) {
		t.Fatalf("expected month bounds, got %v..%v", st.Start, st.End)
	}
	if st.Start.Day() != 1 {
		t.Fatalf("range should start on the 1st, got %d", st.Start.Day())
	}
}

func TestAddTemplateGuards(t *testing.T) {
	s := newTestStore()
	before := len(s.Snapshot().Templates)

	if _, err := s.AddTemplate("", core.Money{Cents: 100}, ""); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := s.AddTemplate("Gym", core.Money{}, ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if got := len(s.Snapshot().Templates); got != before {
		t.Fatalf("guarded ops must be no-ops, templates %d -> %d", before, got)
	}

	tpl, err := s.AddTemplate("Gym", core.Money{Cents: -4500}, "")
	if err != nil {
		t.Fatalf("add template: %v", err)
	}
	if tpl.Color != core.DefaultColor {
		t.Fatalf("expected default color, got %q", tpl.Color)
	}
	if tpl.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestRemoveTemplateLeavesScheduledTransactions(t *testing.T) {
	s := newTestStore()
	tpl, _ := s.AddTemplate("Rent", core.Money{Cents: -120000}, "#dc3545")

	payload := core.Transaction{Name: tpl.Name, Amount: tpl.Amount, Color: tpl.Color}
	if _, err := s.AddTransaction(mar(2), payload); err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if _, err := s.AddTransaction(mar(9), payload); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if err := s.RemoveTemplate(tpl.ID); err != nil {
		t.Fatalf("remove template: %v", err)
	}
	st := s.Snapshot()
	for _, tp := range st.Templates {
		if tp.ID == tpl.ID {
			t.Fatalf("template still present after removal")
		}
	}
	if len(st.Transactions) != 2 {
		t.Fatalf("scheduled transactions must survive template removal, got %d", len(st.Transactions))
	}

	if err := s.RemoveTemplate(tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second removal should report ErrNotFound, got %v", err)
	}
}

func TestAddTransactionNoDedup(t *testing.T) {
	s := newTestStore()
	payload := core.Transaction{Name: "Coffee", Amount: core.Money{Cents: -450}}

	a, _ := s.AddTransaction(mar(5), payload)
	b, _ := s.AddTransaction(mar(5), payload)
	if a.ID == b.ID {
		t.Fatalf("identical drops must yield distinct entries")
	}
	if got := len(s.Snapshot().Transactions); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestMoveTransaction(t *testing.T) {
	s := newTestStore()
	first, _ := s.AddTransaction(mar(5), core.Transaction{Name: "Coffee", Amount: core.Money{Cents: -450}})
	second, _ := s.AddTransaction(mar(6), core.Transaction{Name: "Lunch", Amount: core.Money{Cents: -1200}})

	moved, err := s.MoveTransaction(first.ID, mar(20))
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ID != first.ID {
		t.Fatalf("move must keep the id")
	}
	if moved.Date.DayKey() != "Mar 20" {
		t.Fatalf("moved to %s, want Mar 20", moved.Date.DayKey())
	}

	st := s.Snapshot()
	if len(st.Transactions) != 2 {
		t.Fatalf("move must not change the entry count, got %d", len(st.Transactions))
	}
	// Like a drop, the moved entry lands at the end of the list.
	if st.Transactions[0].ID != second.ID || st.Transactions[1].ID != first.ID {
		t.Fatalf("unexpected order after move: %v, %v", st.Transactions[0].Name, st.Transactions[1].Name)
	}

	if _, err := s.MoveTransaction("missing", mar(21)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveDisambiguatesValueTwins(t *testing.T) {
	// Two value-identical entries: the ID keeps the move from touching the twin.
	s := newTestStore()
	payload := core.Transaction{Name: "Rent", Amount: core.Money{Cents: -120000}}
	twinA, _ := s.AddTransaction(mar(2), payload)
	twinB, _ := s.AddTransaction(mar(2), payload)

	if _, err := s.MoveTransaction(twinA.ID, mar(3)); err != nil {
		t.Fatalf("move: %v", err)
	}
	for _, tx := range s.Snapshot().Transactions {
		switch tx.ID {
		case twinA.ID:
			if tx.Date.DayKey() != "Mar 3" {
				t.Fatalf("moved twin at %s, want Mar 3", tx.Date.DayKey())
			}
		case twinB.ID:
			if tx.Date.DayKey() != "Mar 2" {
				t.Fatalf("untouched twin at %s, want Mar 2", tx.Date.DayKey())
			}
		}
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestStore()
	tx, _ := s.AddTransaction(mar(5), core.Transaction{Name: "Coffee", Amount: core.Money{Cents: -450}})

	updated, err := s.UpdateTransaction(tx.ID, core.Transaction{Name: "Espresso", Amount: core.Money{Cents: -500}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Espresso" || updated.Amount.Cents != -500 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Date.DayKey() != "Mar 5" {
		t.Fatalf("update must not change the date")
	}

	if _, err := s.UpdateTransaction("missing", core.Transaction{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClosingBalanceIgnoresRange(t *testing.T) {
	s := newTestStore()
	s.SetOpening(core.Money{Cents: 100000})
	s.AddTransaction(mar(2), core.Transaction{Name: "Rent", Amount: core.Money{Cents: -50000}})
	// Outside the visible range.
	s.AddTransaction(core.NewDate(2024, time.June, 1), core.Transaction{Name: "Bonus", Amount: core.Money{Cents: 10000}})

	if got := s.ClosingBalance(); got.Cents != 60000 {
		t.Fatalf("closing balance = %d, want 60000", got.Cents)
	}
	if buckets := s.VisibleBuckets(); len(buckets["Jun 1"]) != 0 {
		t.Fatalf("out-of-range entry must not be rendered")
	}
}

func TestSetRangeGuard(t *testing.T) {
	s := newTestStore()
	if err := s.SetRange(mar(10), mar(5)); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	st := s.Snapshot()
	if st.Start.DayKey() != "Mar 1" || st.End.DayKey() != "Mar 31" {
		t.Fatalf("failed SetRange must not alter state")
	}
}

func TestResetToDefaultsIdempotent(t *testing.T) {
	persistedStart, persistedEnd := mar(10), mar(20)
	s := New(Snapshot{Start: mar(1), End: mar(31)}, WithRangeDefaults(func() (core.Date, core.Date, bool) {
		return persistedStart, persistedEnd, true
	}))
	s.SetOpening(core.Money{Cents: 5000})
	s.AddTransaction(mar(5), core.Transaction{Name: "Coffee", Amount: core.Money{Cents: -450}})

	first := s.ResetToDefaults()
	second := s.ResetToDefaults()

	for i, st := range []Snapshot{first, second} {
		if len(st.Transactions) != 0 || st.Opening.Cents != 0 {
			t.Fatalf("reset %d left residue: %+v", i, st)
		}
		if len(st.Templates) != 3 {
			t.Fatalf("reset %d expected seed templates, got %d", i, len(st.Templates))
		}
		if !st.Start.Equal(persistedStart.Time) || !st.End.Equal(persistedEnd.Time) {
			t.Fatalf("reset %d should restore persisted range, got %v..%v", i, st.Start, st.End)
		}
	}
	for i := range first.Templates {
		if first.Templates[i].Name != second.Templates[i].Name ||
			first.Templates[i].Amount != second.Templates[i].Amount {
			t.Fatalf("resets disagree on template %d", i)
		}
	}
}

func TestReplaceIsAtomicFullReplace(t *testing.T) {
	s := newTestStore()
	s.AddTransaction(mar(5), core.Transaction{Name: "Old", Amount: core.Money{Cents: -100}})
	tplCount := len(s.Snapshot().Templates)

	imported := []core.Transaction{
		{Name: "New", Amount: core.Money{Cents: 100}, Date: mar(2)},
	}
	st := s.Replace(imported, core.Money{Cents: 7700}, mar(1), mar(15))

	if len(st.Transactions) != 1 || st.Transactions[0].Name != "New" {
		t.Fatalf("replace must not merge: %+v", st.Transactions)
	}
	if st.Transactions[0].ID == "" {
		t.Fatalf("replace must assign ids to imported entries")
	}
	if st.Opening.Cents != 7700 || st.End.DayKey() != "Mar 15" {
		t.Fatalf("replace did not apply scalars: %+v", st)
	}
	if len(st.Templates) != tplCount {
		t.Fatalf("replace must not touch templates")
	}
}

func TestChangeHookFiresOnMutations(t *testing.T) {
	s := newTestStore()
	var calls int
	s.OnChange(func(Snapshot) { calls++ })

	s.AddTransaction(mar(5), core.Transaction{Name: "Coffee", Amount: core.Money{Cents: -450}})
	s.SetOpening(core.Money{Cents: 1})
	s.SetSaveProgress(true)
	s.ResetToDefaults()

	if calls != 4 {
		t.Fatalf("expected 4 change notifications, got %d", calls)
	}

	// Guarded no-ops stay silent.
	calls = 0
	s.AddTemplate("", core.Money{Cents: 1}, "")
	s.RemoveTransaction("missing")
	if calls != 0 {
		t.Fatalf("failed ops must not notify, got %d", calls)
	}
}
