package report

import (
	"sort"
	"strings"

	"fintrack/internal/core"
)

// Breakdown is the per-category sum of one kind in one month, largest first.
type Breakdown struct {
	Month core.Month
	Kind  core.Kind
	Items []core.CategoryAmount
	Total core.Money
}

// Share is a breakdown item with its percentage of the breakdown total.
type Share struct {
	core.CategoryAmount
	Percent float64
}

// CategoryBreakdown groups the transactions of kind in m by category.
// Categories match case-insensitively and keep the first spelling seen.
// Items are sorted by amount, descending; ties keep first-seen order.
// A breakdown whose total is zero has no items.
func CategoryBreakdown(ledger core.Ledger, m core.Month, kind core.Kind) Breakdown {
	b := Breakdown{Month: m, Kind: kind}
	index := map[string]int{}
	for _, tx := range ledger {
		if tx.Kind != kind || !m.Contains(tx.Date) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Category))
		i, ok := index[key]
		if !ok {
			i = len(b.Items)
			index[key] = i
			b.Items = append(b.Items, core.CategoryAmount{Name: tx.Category})
		}
		b.Items[i].Amount = b.Items[i].Amount.Add(tx.Amount)
		b.Total = b.Total.Add(tx.Amount)
	}
	if b.Total.IsZero() {
		b.Items = nil
		return b
	}
	sort.SliceStable(b.Items, func(i, j int) bool {
		return b.Items[i].Amount.Cents > b.Items[j].Amount.Cents
	})
	return b
}

// Percentages returns every item with its share of the total.
func (b Breakdown) Percentages() []Share {
	out := make([]Share, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, Share{CategoryAmount: it, Percent: PercentageOf(it.Amount, b.Total)})
	}
	return out
}

// IsEmpty reports whether the breakdown has nothing to show.
func (b Breakdown) IsEmpty() bool {
	return len(b.Items) == 0
}

// TopN returns the n largest items (fewer if the breakdown is shorter).
func TopN(b Breakdown, n int) []core.CategoryAmount {
	if n <= 0 {
		return nil
	}
	if n > len(b.Items) {
		n = len(b.Items)
	}
	return append([]core.CategoryAmount(nil), b.Items[:n]...)
}
