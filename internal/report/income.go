package report

import (
	"strings"

	"fintrack/internal/core"
)

// Comparison is the month-over-month change in total income.
type Comparison struct {
	Current       core.Month
	Previous      core.Month
	CurrentTotal  core.Money
	PreviousTotal core.Money
	// HasPrevious is false when the previous month had no income; PctChange
	// is meaningless then.
	HasPrevious bool
	PctChange   float64
}

// IncomeComparison compares the income of m with the month before it.
func IncomeComparison(ledger core.Ledger, m core.Month) Comparison {
	prev := m.Previous()
	c := Comparison{
		Current:       m,
		Previous:      prev,
		CurrentTotal:  MonthlyTotals(ledger, m).Income,
		PreviousTotal: MonthlyTotals(ledger, prev).Income,
	}
	if c.PreviousTotal.Cents > 0 {
		c.HasPrevious = true
		c.PctChange = float64(c.CurrentTotal.Cents-c.PreviousTotal.Cents) * 100 / float64(c.PreviousTotal.Cents)
	}
	return c
}

// IncomeSources sums the income of m per source category in first-seen
// order.
func IncomeSources(ledger core.Ledger, m core.Month) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := map[string]int{}
	for _, tx := range ledger {
		if !tx.Kind.IsIncome() || !m.Contains(tx.Date) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Category))
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.CategoryAmount{Name: tx.Category})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}
