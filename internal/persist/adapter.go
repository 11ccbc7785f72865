package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

// Adapter couples a KV store to the ledger's change hook.
type Adapter struct {
	kv     KV
	logger *slog.Logger
}

func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Writes converts a snapshot into the five state writes. Pure; no I/O.
func Writes(s ledger.Snapshot) ([]Write, error) {
	txs, err := json.Marshal(s.Transactions)
	if err != nil {
		return nil, err
	}
	tpls, err := json.Marshal(s.Templates)
	if err != nil {
		return nil, err
	}
	return []Write{
		{KeyTransactions, string(txs)},
		{KeyTemplates, string(tpls)},
		{KeyOpening, strconv.FormatInt(s.Opening.Cents, 10)},
		{KeyStartDate, s.Start.Format(time.RFC3339)},
		{KeyEndDate, s.End.Format(time.RFC3339)},
	}, nil
}

// Save snapshots the five state fields to the store. Gated on the
// persistence toggle: with SaveProgress off it does nothing.
func (a *Adapter) Save(ctx context.Context, s ledger.Snapshot) error {
	if !s.SaveProgress {
		return nil
	}
	writes, err := Writes(s)
	if err != nil {
		return err
	}
	for _, w := range writes {
		if err := a.kv.Set(ctx, w.Key, w.Value); err != nil {
			return err
		}
	}
	return nil
}

// SetSaveProgress records the toggle position. Turning it off purges the
// five state keys immediately; in-memory state is untouched by design of
// the caller.
func (a *Adapter) SetSaveProgress(ctx context.Context, on bool) error {
	if err := a.kv.Set(ctx, KeySaveProgress, strconv.FormatBool(on)); err != nil {
		return err
	}
	if on {
		return nil
	}
	for _, key := range StateKeys {
		if err := a.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Load rehydrates a snapshot from the store. Every field falls back to its
// default independently: absent or malformed values never poison the rest.
// Defaults: no transactions, seed templates, zero opening balance, current
// month bounds, persistence off.
func (a *Adapter) Load(ctx context.Context) ledger.Snapshot {
	return a.load(ctx, time.Now())
}

func (a *Adapter) load(ctx context.Context, now time.Time) ledger.Snapshot {
	var s ledger.Snapshot

	if raw, ok := a.get(ctx, KeyTransactions); ok {
		if err := json.Unmarshal([]byte(raw), &s.Transactions); err != nil {
			a.logger.Warn("discarding malformed persisted transactions", "error", err)
			s.Transactions = nil
		}
	}

	if raw, ok := a.get(ctx, KeyTemplates); ok {
		if err := json.Unmarshal([]byte(raw), &s.Templates); err != nil {
			a.logger.Warn("discarding malformed persisted templates", "error", err)
			s.Templates = nil
		}
	}
	if len(s.Templates) == 0 {
		s.Templates = core.SeedTemplates()
	}

	if raw, ok := a.get(ctx, KeyOpening); ok {
		if cents, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.Opening = core.Money{Cents: cents}
		} else {
			a.logger.Warn("discarding malformed persisted opening balance", "value", raw)
		}
	}

	monthStart, monthEnd := core.MonthBounds(now)
	s.Start = a.getDate(ctx, KeyStartDate, monthStart)
	s.End = a.getDate(ctx, KeyEndDate, monthEnd)
	if s.Start.After(s.End.Time) {
		s.Start, s.End = monthStart, monthEnd
	}

	if raw, ok := a.get(ctx, KeySaveProgress); ok {
		s.SaveProgress = raw == "true"
	}

	return s
}

// PersistedRange returns the stored date range, if one is present and valid.
// ResetToDefaults restores this range in preference to the current month.
func (a *Adapter) PersistedRange(ctx context.Context) (core.Date, core.Date, bool) {
	start, okS := a.parseDate(ctx, KeyStartDate)
	end, okE := a.parseDate(ctx, KeyEndDate)
	if !okS || !okE || start.After(end.Time) {
		return core.Date{}, core.Date{}, false
	}
	return start, end, true
}

func (a *Adapter) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		a.logger.Warn("kv read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (a *Adapter) getDate(ctx context.Context, key string, fallback core.Date) core.Date {
	if d, ok := a.parseDate(ctx, key); ok {
		return d
	}
	return fallback
}

func (a *Adapter) parseDate(ctx context.Context, key string) (core.Date, bool) {
	raw, ok := a.get(ctx, key)
	if !ok {
		return core.Date{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		a.logger.Warn("discarding malformed persisted date", "key", key, "value", raw)
		return core.Date{}, false
	}
	return core.Date{Time: t}, true
}
