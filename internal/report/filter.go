package report

import (
	"sort"
	"strings"

	"fintrack/internal/core"
)

// Filter selects transactions for the list views. Zero dates are open
// bounds; an empty category set matches every category.
type Filter struct {
	From       core.Date
	To         core.Date
	Categories []string
}

// Apply returns the matching transactions in ledger order.
func (f Filter) Apply(ledger core.Ledger) core.Ledger {
	cats := map[string]bool{}
	for _, c := range f.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cats[c] = true
		}
	}
	out := core.Ledger{}
	for _, tx := range ledger {
		if !f.From.IsEmpty() && tx.Date.Before(f.From.Time) {
			continue
		}
		if !f.To.IsEmpty() && tx.Date.After(f.To.Time) {
			continue
		}
		if len(cats) > 0 && !cats[strings.ToLower(strings.TrimSpace(tx.Category))] {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// NewestFirst returns a copy sorted by date, newest first. Transactions on
// the same day keep the reverse of their file order, so the latest append
// comes first.
func NewestFirst(ledger core.Ledger) core.Ledger {
	out := make(core.Ledger, len(ledger))
	for i, tx := range ledger {
		out[len(ledger)-1-i] = tx
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Recent returns the n newest transactions.
func Recent(ledger core.Ledger, n int) core.Ledger {
	sorted := NewestFirst(ledger)
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// DistinctCategories lists every category once, in first-seen order.
func DistinctCategories(ledger core.Ledger) []string {
	var out []string
	seen := map[string]bool{}
	for _, tx := range ledger {
		key := strings.ToLower(strings.TrimSpace(tx.Category))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx.Category)
	}
	return out
}

// DateBounds returns the earliest and latest transaction dates. ok is false
// for an empty ledger.
func DateBounds(ledger core.Ledger) (first, last core.Date, ok bool) {
	for i, tx := range ledger {
		if i == 0 || tx.Date.Before(first.Time) {
			first = tx.Date
		}
		if i == 0 || tx.Date.After(last.Time) {
			last = tx.Date
		}
	}
	return first, last, len(ledger) > 0
}
