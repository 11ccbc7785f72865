package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayKeyLayout is the year-less display format used to bucket transactions
// onto calendar cells and in the CSV interchange format (e.g. "Jan 5").
const DayKeyLayout = "Jan 2"

// DefaultColor is the chip color applied when none is chosen.
const DefaultColor = "#007bff"

type (
	// Date wraps time.Time; the full date is the authoritative key, the
	// year-less day key is derived at render/export time only.
	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. Positive is income, negative
	// is expense.
	Money struct {
		Cents int64
	}

	// Template is a reusable named amount+color pattern from which dated
	// transactions are stamped.
	Template struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
		Color  string `json:"color"`
	}

	// Transaction is a dated, independent copy of a template's fields,
	// placed on the calendar. It never references its origin template.
	Transaction struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
		Color  string `json:"color,omitempty"`
		Date   Date   `json:"date"`
	}
)

var (
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidColor  = errors.New("invalid color")
	ErrInvalidRange  = errors.New("start date after end date")
	ErrInvalidDate   = errors.New("invalid date")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewID generates a stable unique identifier for templates and transactions.
func NewID() string {
	return uuid.NewString()
}

// NewDate creates a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayKey returns the year-less "MMM d" string for this date.
func (d Date) DayKey() string {
	return d.Format(DayKeyLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ResolveDayKey maps a year-less day key back to a concrete date using the
// date range as year context. Keys that fall inside [start, end] resolve to
// the matching in-range day; keys outside the range keep the start year and
// report ok=false (such entries are retained but not rendered).
func ResolveDayKey(key string, start, end Date) (Date, bool) {
	parsed, err := time.Parse(DayKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return Date{}, false
	}
	for year := start.Year(); year <= end.Year(); year++ {
		candidate := NewDate(year, parsed.Month(), parsed.Day())
		if !candidate.Before(start.Time) && !candidate.After(end.Time) {
			return candidate, true
		}
	}
	return NewDate(start.Year(), parsed.Month(), parsed.Day()), false
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if t.Color != "" && !colorPattern.MatchString(t.Color) {
		return ErrInvalidColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	return t.Date.Validate()
}

// SeedTemplates returns the default chip tray contents.
func SeedTemplates() []Template {
	return []Template{
		{ID: NewID(), Name: "Paycheck", Amount: Money{Cents: 200000}, Color: "#007bff"},
		{ID: NewID(), Name: "Rent", Amount: Money{Cents: -120000}, Color: "#dc3545"},
		{ID: NewID(), Name: "Groceries", Amount: Money{Cents: -20000}, Color: "#28a745"},
	}
}

// ClosingBalance is the opening balance plus the sum of all transaction
// amounts, whether or not they fall inside the visible date range.
func ClosingBalance(opening Money, txs []Transaction) Money {
	total := opening.Cents
	for _, t := range txs {
		total += t.Amount.Cents
	}
	return Money{Cents: total}
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (Date, Date) {
	start := NewDate(t.Year(), t.Month(), 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return start, end
}
