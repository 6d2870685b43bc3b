package report

import (
	"sort"

	"fintrack/internal/core"
)

// DayPoint is one day of the income vs expense trend.
type DayPoint struct {
	Day     int
	Income  core.Money
	Expense core.Money
}

// DailyTrend buckets the income and expense of m by day of month. Only days
// with at least one income or expense appear; a kind absent on a day is 0.
func DailyTrend(ledger core.Ledger, m core.Month) []DayPoint {
	byDay := map[int]*DayPoint{}
	for _, tx := range ledger {
		if !m.Contains(tx.Date) || (!tx.Kind.IsIncome() && !tx.Kind.IsExpense()) {
			continue
		}
		p, ok := byDay[tx.Date.Day()]
		if !ok {
			p = &DayPoint{Day: tx.Date.Day()}
			byDay[p.Day] = p
		}
		if tx.Kind.IsIncome() {
			p.Income = p.Income.Add(tx.Amount)
		} else {
			p.Expense = p.Expense.Add(tx.Amount)
		}
	}
	out := make([]DayPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
