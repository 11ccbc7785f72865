// Package csvio implements the CSV interchange format: a Date, Transaction,
// Amount, Balance table with boundary rows carrying the date range and the
// opening balance, and a running balance accumulated row by row.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cashflow/internal/core"
)

// Filename is the canonical export file name.
const Filename = "cashflow.csv"

// Header is the fixed column set, in order.
var Header = []string{"Date", "Transaction", "Amount", "Balance"}

// Document is the decoded ledger content of a CSV file.
type Document struct {
	Transactions []core.Transaction
	Opening      core.Money
	Start        core.Date
	End          core.Date
}

// EncodeRows produces the data rows (header excluded): a start boundary row,
// one row per transaction in list order with the running balance, and an end
// boundary row. Boundary rows carry empty Transaction and Amount columns.
func EncodeRows(txs []core.Transaction, opening core.Money, start, end core.Date) [][]string {
	rows := make([][]string, 0, len(txs)+2)
	running := opening.Cents

	rows = append(rows, []string{start.DayKey(), "", "", core.FormatCents(running)})
	for _, t := range txs {
		running += t.Amount.Cents
		rows = append(rows, []string{
			t.Date.DayKey(),
			t.Name,
			core.FormatCents(t.Amount.Cents),
			core.FormatCents(running),
		})
	}
	rows = append(rows, []string{end.DayKey(), "", "", core.FormatCents(running)})

	return rows
}

// Encode writes the header and all rows to w in CSV form.
func Encode(w io.Writer, txs []core.Transaction, opening core.Money, start, end core.Date) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range EncodeRows(txs, opening, start, end) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode parses headerful CSV text back into a Document. The first data row
// yields the opening balance and start date, the last yields the end date,
// and interior rows become transactions in order. The "MMM d" format does
// not carry a year; decode anchors the start date to the current year and
// resolves every other date against the resulting range.
//
// Fewer than two data rows is a degenerate input: Decode returns an empty
// Document without error. Interior rows with unparseable amounts or dates
// are skipped.
func Decode(r io.Reader) (Document, error) {
	return decode(r, time.Now())
}

func decode(r io.Reader, now time.Time) (Document, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return Document{}, nil
	}

	col := headerIndex(records[0])
	data := records[1:]
	if len(data) < 2 {
		return Document{}, nil
	}

	var doc Document

	first, last := data[0], data[len(data)-1]
	if cents, err := core.ParseCents(field(first, col, "Balance")); err == nil {
		doc.Opening = core.Money{Cents: cents}
	}
	doc.Start = anchorDayKey(field(first, col, "Date"), now.Year())
	doc.End = anchorDayKey(field(last, col, "Date"), now.Year())
	// A range wrapping the year boundary decodes with end before start;
	// push the end into the following year.
	if !doc.End.IsZero() && !doc.Start.IsZero() && doc.End.Before(doc.Start.Time) {
		doc.End = core.Date{Time: doc.End.AddDate(1, 0, 0)}
	}

	for _, row := range data[1 : len(data)-1] {
		cents, err := core.ParseCents(field(row, col, "Amount"))
		if err != nil {
			continue
		}
		date, _ := core.ResolveDayKey(field(row, col, "Date"), doc.Start, doc.End)
		if date.IsZero() {
			continue
		}
		doc.Transactions = append(doc.Transactions, core.Transaction{
			ID:     core.NewID(),
			Name:   field(row, col, "Transaction"),
			Amount: core.Money{Cents: cents},
			Date:   date,
		})
	}

	return doc, nil
}

// headerIndex maps canonical column names to their positions, tolerating
// case and surrounding whitespace.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, h := range row {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// anchorDayKey parses a boundary-row day key into a concrete date in the
// given year. The year is implementation-defined by the format.
func anchorDayKey(key string, year int) core.Date {
	parsed, err := time.Parse(core.DayKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return core.Date{}
	}
	return core.NewDate(year, parsed.Month(), parsed.Day())
}
