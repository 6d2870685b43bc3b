package report

import (
	"strings"

	"fintrack/internal/core"
)

// Status classifies a category's utilization.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "Warning"
	StatusOver    Status = "Over"
)

// Utilization thresholds, in percent.
const (
	WarningThreshold = 70.0
	OverThreshold    = 100.0
)

// ClassifyUtilization maps a utilization percentage to its status:
// below 70 is OK, 70 to 100 inclusive is Warning, above 100 is Over.
func ClassifyUtilization(pct float64) Status {
	switch {
	case pct < WarningThreshold:
		return StatusOK
	case pct <= OverThreshold:
		return StatusWarning
	default:
		return StatusOver
	}
}

// BudgetRow is budget vs actual for one category in one month.
type BudgetRow struct {
	Category       string
	Budget         core.Money
	Spent          core.Money
	Remaining      core.Money // may be negative
	UtilizationPct float64
	Status         Status
}

// BudgetSummary aggregates every row.
type BudgetSummary struct {
	TotalBudget    core.Money
	TotalSpent     core.Money
	TotalRemaining core.Money
	UtilizationPct float64
	OverBudget     []string
}

// Utilization is the budget-vs-actual view of one month.
type Utilization struct {
	Month   core.Month
	Rows    []BudgetRow
	Summary BudgetSummary
}

// BudgetUtilization compares each category's expense in m with its limit.
//
// Rows follow categories (the canonical set), then any budgeted category not
// already covered, in budget order. A category without a budget entry has a
// limit of 0 and a utilization of 0. Matching between categories, budget keys
// and transactions is case-insensitive. Budget keys differing only in case
// share one row whose limit is their sum.
func BudgetUtilization(ledger core.Ledger, budget core.Budget, m core.Month, categories []string) Utilization {
	names := make([]string, 0, len(categories)+len(budget))
	seen := map[string]bool{}
	for _, c := range append(append([]string(nil), categories...), budget.Categories()...) {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, c)
	}

	spent := map[string]core.Money{}
	for _, tx := range ledger {
		if !tx.Kind.IsExpense() || !m.Contains(tx.Date) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Category))
		spent[key] = spent[key].Add(tx.Amount)
	}

	u := Utilization{Month: m, Rows: make([]BudgetRow, 0, len(names))}
	for _, name := range names {
		limit, _ := budget.SumFold(name)
		row := BudgetRow{
			Category: name,
			Budget:   limit,
			Spent:    spent[strings.ToLower(strings.TrimSpace(name))],
		}
		row.Remaining = row.Budget.Sub(row.Spent)
		row.UtilizationPct = PercentageOf(row.Spent, row.Budget)
		row.Status = ClassifyUtilization(row.UtilizationPct)

		u.Summary.TotalBudget = u.Summary.TotalBudget.Add(row.Budget)
		u.Summary.TotalSpent = u.Summary.TotalSpent.Add(row.Spent)
		if row.Status == StatusOver {
			u.Summary.OverBudget = append(u.Summary.OverBudget, name)
		}
		u.Rows = append(u.Rows, row)
	}
	u.Summary.TotalRemaining = u.Summary.TotalBudget.Sub(u.Summary.TotalSpent)
	u.Summary.UtilizationPct = PercentageOf(u.Summary.TotalSpent, u.Summary.TotalBudget)
	return u
}
