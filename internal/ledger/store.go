// Package ledger holds the in-memory planner state and its mutation rules.
// All operations are synchronous state transitions under a single lock: an
// operation either fully applies or leaves the state untouched.
package ledger

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cashflow/internal/core"
)

// ErrNotFound reports an ID-keyed lookup that matched nothing. Callers at
// the edges treat it as "nothing to do" rather than a failure.
var ErrNotFound = errors.New("no matching entry")

// Snapshot is a consistent copy of the full planner state, safe to hand to
// persistence, export, and rendering code.
type Snapshot struct {
	Transactions []core.Transaction `json:"transactions"`
	Templates    []core.Template    `json:"templates"`
	Opening      core.Money         `json:"openingBalance"`
	Start        core.Date          `json:"startDate"`
	End          core.Date          `json:"endDate"`
	SaveProgress bool               `json:"saveProgress"`
}

// RangeDefaults supplies the date range used by ResetToDefaults: the
// last-persisted range when one exists, else the current month's bounds.
type RangeDefaults func() (start, end core.Date, ok bool)

// Store owns the planner state. A registered change hook receives a
// snapshot after every successful mutation.
type Store struct {
	mu            sync.Mutex
	state         Snapshot
	rangeDefaults RangeDefaults
	onChange      func(Snapshot)
	logger        *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRangeDefaults sets the reset-time range source.
func WithRangeDefaults(fn RangeDefaults) Option {
	return func(s *Store) { s.rangeDefaults = fn }
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store from an initial snapshot, filling gaps with defaults:
// seed templates when none are present and the current month's bounds when
// the range is unset.
func New(initial Snapshot, opts ...Option) *Store {
	s := &Store{state: initial, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.state.Templates) == 0 {
		s.state.Templates = core.SeedTemplates()
	}
	if s.state.Start.IsZero() || s.state.End.IsZero() {
		s.state.Start, s.state.End = core.MonthBounds(time.Now())
	}
	return s
}

// OnChange registers the change hook. Must be called before the store is
// shared; the hook runs outside the lock.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.onChange = fn
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Store) copyState() Snapshot {
	cp := s.state
	cp.Transactions = append([]core.Transaction(nil), s.state.Transactions...)
	cp.Templates = append([]core.Template(nil), s.state.Templates...)
	return cp
}

// notify runs the change hook with a state copy taken under the lock.
func (s *Store) notify(cp Snapshot) {
	if s.onChange != nil {
		s.onChange(cp)
	}
}

// AddTemplate appends a new chip to the tray. Empty names and zero amounts
// leave the state unchanged.
func (s *Store) AddTemplate(name string, amount core.Money, color string) (core.Template, error) {
	if color == "" {
		color = core.DefaultColor
	}
	tpl := core.Template{ID: core.NewID(), Name: strings.TrimSpace(name), Amount: amount, Color: color}
	if err := tpl.Validate(); err != nil {
		return core.Template{}, err
	}

	s.mu.Lock()
	s.state.Templates = append(s.state.Templates, tpl)
	cp := s.copyState()
	s.mu.Unlock()

	s.logger.Info("template added", "template_id", tpl.ID, "name", tpl.Name, "amount_cents", tpl.Amount.Cents)
	s.notify(cp)
	return tpl, nil
}

// UpdateTemplate replaces the fields of the template with the given ID.
func (s *Store) UpdateTemplate(id string, fields core.Template) (core.Template, error) {
	fields.ID = id
	if fields.Color == "" {
		fields.Color = core.DefaultColor
	}
	if err := fields.Validate(); err != nil {
		return core.Template{}, err
	}

	s.mu.Lock()
	idx := -1
	for i, t := range s.state.Templates {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return core.Template{}, ErrNotFound
	}
	s.state.Templates[idx] = fields
	cp := s.copyState()
	s.mu.Unlock()

	s.notify(cp)
	return fields, nil
}

// RemoveTemplate drops a chip from the tray. Scheduled transactions stamped
// from it are copies and remain untouched.
func (s *Store) RemoveTemplate(id string) error {
	s.mu.Lock()
	idx := -1
	for i, t := range s.state.Templates {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.state.Templates = append(s.state.Templates[:idx], s.state.Templates[idx+1:]...)
	cp := s.copyState()
	s.mu.Unlock()

	s.notify(cp)
	return nil
}

// AddTransaction stamps a dated copy of the payload onto the calendar. There
// is no de-duplication: scheduling the same payload twice yields two entries.
func (s *Store) AddTransaction(date core.Date, payload core.Transaction) (core.Transaction, error) {
	tx := core.Transaction{
		ID:     core.NewID(),
		Name:   strings.TrimSpace(payload.Name),
		Amount: payload.Amount,
		Color:  payload.Color,
		Date:   date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.state.Transactions = append(s.state.Transactions, tx)
	cp := s.copyState()
	s.mu.Unlock()

	s.logger.Info("transaction scheduled", "transaction_id", tx.ID, "name", tx.Name, "day_key", tx.Date.DayKey())
	s.notify(cp)
	return tx, nil
}

// RemoveTransaction deletes the transaction with the given ID.
func (s *Store) RemoveTransaction(id string) error {
	s.mu.Lock()
	idx := s.findTransaction(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.state.Transactions = append(s.state.Transactions[:idx], s.state.Transactions[idx+1:]...)
	cp := s.copyState()
	s.mu.Unlock()

	s.notify(cp)
	return nil
}

// UpdateTransaction merges name, amount, and color into the matching
// transaction in place; the date is changed through MoveTransaction.
func (s *Store) UpdateTransaction(id string, fields core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	idx := s.findTransaction(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotFound
	}
	updated := s.state.Transactions[idx]
	if name := strings.TrimSpace(fields.Name); name != "" {
		updated.Name = name
	}
	if fields.Amount.Cents != 0 {
		updated.Amount = fields.Amount
	}
	if fields.Color != "" {
		updated.Color = fields.Color
	}
	if err := updated.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.state.Transactions[idx] = updated
	cp := s.copyState()
	s.mu.Unlock()

	s.notify(cp)
	return updated, nil
}

// MoveTransaction reparents a transaction under a new date as a single
// atomic operation. The entry keeps its ID and, like a drop, moves to the
// end of the list.
func (s *Store) MoveTransaction(id string, newDate core.Date) (core.Transaction, error) {
	if err := newDate.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	idx := s.findTransaction(id)
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, ErrNotFound
	}
	moved := s.state.Transactions[idx]
	moved.Date = newDate
	s.state.Transactions = append(s.state.Transactions[:idx], s.state.Transactions[idx+1:]...)
	s.state.Transactions = append(s.state.Transactions, moved)
	cp := s.copyState()
	s.mu.Unlock()

	s.logger.Info("transaction moved", "transaction_id", moved.ID, "day_key", moved.Date.DayKey())
	s.notify(cp)
	return moved, nil
}

// ClosingBalance is the opening balance plus all transaction amounts,
// including entries outside the visible range.
func (s *Store) ClosingBalance() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ClosingBalance(s.state.Opening, s.state.Transactions)
}

// SetOpening replaces the opening balance.
func (s *Store) SetOpening(m core.Money) {
	s.mu.Lock()
	s.state.Opening = m
	cp := s.copyState()
	s.mu.Unlock()
	s.notify(cp)
}

// SetRange replaces the visible date range. The start must not land after
// the end.
func (s *Store) SetRange(start, end core.Date) error {
	if err := start.Validate(); err != nil {
		return err
	}
	if err := end.Validate(); err != nil {
		return err
	}
	if start.After(end.Time) {
		return core.ErrInvalidRange
	}

	s.mu.Lock()
	s.state.Start, s.state.End = start, end
	cp := s.copyState()
	s.mu.Unlock()
	s.notify(cp)
	return nil
}

// SetSaveProgress flips the persistence toggle.
func (s *Store) SetSaveProgress(on bool) {
	s.mu.Lock()
	s.state.SaveProgress = on
	cp := s.copyState()
	s.mu.Unlock()
	s.notify(cp)
}

// ResetToDefaults clears all transactions, reseeds the template tray,
// zeroes the opening balance, and restores the date range from the
// configured defaults. Calling it twice in a row is idempotent apart from
// freshly generated template IDs.
func (s *Store) ResetToDefaults() Snapshot {
	start, end, ok := core.Date{}, core.Date{}, false
	if s.rangeDefaults != nil {
		start, end, ok = s.rangeDefaults()
	}
	if !ok {
		start, end = core.MonthBounds(time.Now())
	}

	s.mu.Lock()
	s.state.Transactions = nil
	s.state.Templates = core.SeedTemplates()
	s.state.Opening = core.Money{}
	s.state.Start, s.state.End = start, end
	cp := s.copyState()
	s.mu.Unlock()

	s.logger.Info("state reset to defaults", "start", start.DayKey(), "end", end.DayKey())
	s.notify(cp)
	return cp
}

// Replace atomically overwrites transactions, opening balance, and date
// range from an imported document. Templates and the persistence toggle are
// untouched; there is no merge with the pre-existing state.
func (s *Store) Replace(txs []core.Transaction, opening core.Money, start, end core.Date) Snapshot {
	for i := range txs {
		if txs[i].ID == "" {
			txs[i].ID = core.NewID()
		}
	}

	s.mu.Lock()
	s.state.Transactions = append([]core.Transaction(nil), txs...)
	s.state.Opening = opening
	if !start.IsZero() && !end.IsZero() && !start.After(end.Time) {
		s.state.Start, s.state.End = start, end
	}
	cp := s.copyState()
	s.mu.Unlock()

	s.notify(cp)
	return cp
}

// VisibleBuckets groups transactions by day key for every day in the
// current range. Entries whose date falls outside the range are retained in
// state but absent here.
func (s *Store) VisibleBuckets() map[string][]core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make(map[string][]core.Transaction)
	for _, t := range s.state.Transactions {
		if t.Date.Before(s.state.Start.Time) || t.Date.After(s.state.End.Time) {
			continue
		}
		key := t.Date.DayKey()
		buckets[key] = append(buckets[key], t)
	}
	return buckets
}

// findTransaction must be called with the lock held.
func (s *Store) findTransaction(id string) int {
	for i, t := range s.state.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}
