package core

// Day is one renderable calendar cell.
type Day struct {
	Date Date   `json:"date"`
	Key  string `json:"key"`
}

// Weekdays is the column header row of the calendar grid.
var Weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BuildGrid enumerates every day in [start, end] inclusive and partitions
// them into week rows of exactly 7 cells. Leading nil placeholders align the
// first day to its weekday column (Sunday = column 0); trailing nils pad the
// last week to 7. Every non-nil cell's column index equals its weekday.
func BuildGrid(start, end Date) [][]*Day {
	if start.IsZero() || end.IsZero() || start.After(end.Time) {
		return nil
	}

	cells := make([]*Day, 0, 42)
	for i := 0; i < int(start.Weekday()); i++ {
		cells = append(cells, nil)
	}
	for d := start.Time; !d.After(end.Time); d = d.AddDate(0, 0, 1) {
		day := Date{Time: d}
		cells = append(cells, &Day{Date: day, Key: day.DayKey()})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, nil)
	}

	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// DayCount returns the number of days in [start, end] inclusive.
func DayCount(start, end Date) int {
	if start.IsZero() || end.IsZero() || start.After(end.Time) {
		return 0
	}
	return int(end.Sub(start.Time).Hours()/24) + 1
}
