package core

import (
	"testing"
	"time"
)

func TestBuildGridShape(t *testing.T) {
	// 2024-03-01 is a Friday: 5 leading placeholders (Sun-Thu), 3 real
	// days at columns 5, 6, 0, then trailing padding to fill week 2.
	start := NewDate(2024, time.March, 1)
	end := NewDate(2024, time.March, 3)

	weeks := BuildGrid(start, end)
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	for i, w := range weeks {
		if len(w) != 7 {
			t.Fatalf("week %d has %d cells, want 7", i, len(w))
		}
	}
	for col := 0; col < 5; col++ {
		if weeks[0][col] != nil {
			t.Fatalf("expected leading placeholder at column %d", col)
		}
	}
	if weeks[0][5] == nil || weeks[0][5].Key != "Mar 1" {
		t.Fatalf("Mar 1 should sit at week 0 column 5: %+v", weeks[0][5])
	}
	if weeks[0][6] == nil || weeks[0][6].Key != "Mar 2" {
		t.Fatalf("Mar 2 should sit at week 0 column 6: %+v", weeks[0][6])
	}
	if weeks[1][0] == nil || weeks[1][0].Key != "Mar 3" {
		t.Fatalf("Mar 3 should sit at week 1 column 0: %+v", weeks[1][0])
	}
	for col := 1; col < 7; col++ {
		if weeks[1][col] != nil {
			t.Fatalf("expected trailing placeholder at week 1 column %d", col)
		}
	}
}

func TestBuildGridProperties(t *testing.T) {
	ranges := []struct {
		start, end Date
	}{
		{NewDate(2024, time.March, 1), NewDate(2024, time.March, 31)},
		{NewDate(2024, time.February, 1), NewDate(2024, time.February, 29)},
		{NewDate(2024, time.December, 20), NewDate(2025, time.January, 10)},
		{NewDate(2024, time.June, 5), NewDate(2024, time.June, 5)},
	}
	for _, r := range ranges {
		weeks := BuildGrid(r.start, r.end)
		nonNil := 0
		for _, w := range weeks {
			if len(w) != 7 {
				t.Fatalf("week length %d, want 7", len(w))
			}
			for col, cell := range w {
				if cell == nil {
					continue
				}
				nonNil++
				if int(cell.Date.Weekday()) != col {
					t.Fatalf("cell %s at column %d, weekday %d", cell.Key, col, cell.Date.Weekday())
				}
			}
		}
		if want := DayCount(r.start, r.end); nonNil != want {
			t.Fatalf("grid has %d cells, range has %d days", nonNil, want)
		}
	}
}

func TestBuildGridLastWeekPadding(t *testing.T) {
	// 2024-03-30 is a Saturday: the last week must end flush, no padding.
	weeks := BuildGrid(NewDate(2024, time.March, 24), NewDate(2024, time.March, 30))
	if len(weeks) != 1 {
		t.Fatalf("expected 1 week, got %d", len(weeks))
	}
	for col, cell := range weeks[0] {
		if cell == nil {
			t.Fatalf("unexpected placeholder at column %d when range ends on Saturday", col)
		}
	}
}

func TestBuildGridDegenerate(t *testing.T) {
	if g := BuildGrid(NewDate(2024, time.March, 3), NewDate(2024, time.March, 1)); g != nil {
		t.Fatalf("inverted range should yield nil grid")
	}
	if g := BuildGrid(Date{}, Date{}); g != nil {
		t.Fatalf("zero dates should yield nil grid")
	}
}
