package core

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	d := NewDate(2024, time.March, 2)
	if got := d.DayKey(); got != "Mar 2" {
		t.Fatalf("DayKey = %q, want %q", got, "Mar 2")
	}
}

func TestResolveDayKey(t *testing.T) {
	start := NewDate(2024, time.March, 1)
	end := NewDate(2024, time.March, 31)

	d, ok := ResolveDayKey("Mar 15", start, end)
	if !ok || d.Year() != 2024 || d.Month() != time.March || d.Day() != 15 {
		t.Fatalf("resolve in range: got %v ok=%v", d, ok)
	}

	// Outside the range: retained with the start year, but flagged.
	d, ok = ResolveDayKey("Jun 1", start, end)
	if ok {
		t.Fatalf("expected ok=false for out-of-range key")
	}
	if d.Year() != 2024 {
		t.Fatalf("out-of-range key should keep start year, got %d", d.Year())
	}

	if _, ok := ResolveDayKey("garbage", start, end); ok {
		t.Fatalf("expected ok=false for malformed key")
	}
}

func TestResolveDayKeyAcrossYearBoundary(t *testing.T) {
	start := NewDate(2024, time.December, 20)
	end := NewDate(2025, time.January, 10)

	d, ok := ResolveDayKey("Jan 5", start, end)
	if !ok || d.Year() != 2025 {
		t.Fatalf("Jan 5 should resolve into 2025, got %v ok=%v", d, ok)
	}
	d, ok = ResolveDayKey("Dec 25", start, end)
	if !ok || d.Year() != 2024 {
		t.Fatalf("Dec 25 should resolve into 2024, got %v ok=%v", d, ok)
	}
}

func TestTemplateValidate(t *testing.T) {
	cases := []struct {
		name string
		tpl  Template
		err  error
	}{
		{"valid", Template{Name: "Rent", Amount: Money{Cents: -120000}, Color: "#dc3545"}, nil},
		{"no color", Template{Name: "Rent", Amount: Money{Cents: -120000}}, nil},
		{"empty name", Template{Name: "  ", Amount: Money{Cents: 100}}, ErrEmptyName},
		{"zero amount", Template{Name: "x", Amount: Money{}}, ErrInvalidAmount},
		{"bad color", Template{Name: "x", Amount: Money{Cents: 1}, Color: "blue"}, ErrInvalidColor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tpl.Validate(); err != tc.err {
				t.Fatalf("Validate() = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestClosingBalance(t *testing.T) {
	txs := []Transaction{
		{Name: "Rent", Amount: Money{Cents: -50000}, Date: NewDate(2024, time.March, 2)},
		// Outside any visible range, still counted.
		{Name: "Bonus", Amount: Money{Cents: 10000}, Date: NewDate(2030, time.June, 1)},
	}
	got := ClosingBalance(Money{Cents: 100000}, txs)
	if got.Cents != 60000 {
		t.Fatalf("ClosingBalance = %d, want 60000", got.Cents)
	}

	if got := ClosingBalance(Money{Cents: 42}, nil); got.Cents != 42 {
		t.Fatalf("ClosingBalance with no transactions = %d, want 42", got.Cents)
	}
}

func TestSeedTemplates(t *testing.T) {
	seeds := SeedTemplates()
	if len(seeds) != 3 {
		t.Fatalf("expected 3 seed templates, got %d", len(seeds))
	}
	ids := map[string]bool{}
	for _, s := range seeds {
		if err := s.Validate(); err != nil {
			t.Fatalf("seed %q invalid: %v", s.Name, err)
		}
		if ids[s.ID] {
			t.Fatalf("duplicate seed id %q", s.ID)
		}
		ids[s.ID] = true
	}
	if seeds[0].Name != "Paycheck" || seeds[0].Amount.Cents != 200000 {
		t.Fatalf("unexpected first seed: %+v", seeds[0])
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC))
	if start.Day() != 1 || start.Month() != time.February {
		t.Fatalf("unexpected start: %v", start)
	}
	if end.Day() != 29 || end.Month() != time.February {
		t.Fatalf("unexpected end: %v", end)
	}
}
