package core

import (
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM form accepted on the command line.
const MonthLayout = "2006-01"

// Month is a month in a specific year. Every aggregation is windowed by one.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns a normalized Month; out of range months roll into the
// neighbouring years the same way time.Date does.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the Month in which a time occurs in that time's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return Month{Year: year, Month: month}
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns a human form such as "June 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// AddMonths shifts the month by n, crossing year boundaries as needed.
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.Year, m.Month+time.Month(n))
}

// Previous returns the month before m; January wraps to December of the
// prior year.
func (m Month) Previous() Month {
	return m.AddMonths(-1)
}

// Contains reports whether the date falls in the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && time.Month(d.Month()) == m.Month
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
