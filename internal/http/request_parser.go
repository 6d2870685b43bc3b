package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// parseMonth reads the optional year and month query parameters, each
// defaulting to now's.
func parseMonth(q url.Values, now time.Time) (core.Month, error) {
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return core.Month{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return core.Month{}, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return core.NewMonth(year, time.Month(month)), nil
}

// parseTransactionQuery reads from, to, repeated category and limit.
func parseTransactionQuery(q url.Values) (report.Filter, int, error) {
	var f report.Filter
	var err error

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return f, 0, fmt.Errorf("invalid from date %q", v)
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return f, 0, fmt.Errorf("invalid to date %q", v)
		}
	}
	if !f.From.IsEmpty() && !f.To.IsEmpty() && f.To.Before(f.From.Time) {
		return f, 0, errors.New("from must not be after to")
	}

	for _, c := range q["category"] {
		if c = strings.TrimSpace(c); c != "" {
			f.Categories = append(f.Categories, c)
		}
	}

	limit := defaultListLimit
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			return f, 0, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
		}
		limit = n
	}
	return f, limit, nil
}
