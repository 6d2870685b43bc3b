// Package export writes a month's report to external destinations. Row
// building is shared; each destination only decides where rows go.
package export

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

// Exporter writes a report and returns a reference to what it wrote, such
// as a file path or a sheet range.
type Exporter interface {
	Export(ctx context.Context, r Report) (ref string, err error)
}

// Report is everything exported for one month.
type Report struct {
	Month        core.Month
	Transactions core.Ledger
	Totals       report.Totals
	Expenses     report.Breakdown
	Income       report.Breakdown
	Budget       report.Utilization
}

// BuildReport computes the exported views of m.
func BuildReport(l core.Ledger, budget core.Budget, m core.Month, categories []string) Report {
	return Report{
		Month:        m,
		Transactions: report.NewestFirst(report.InMonth(l, m)),
		Totals:       report.MonthlyTotals(l, m),
		Expenses:     report.CategoryBreakdown(l, m, core.KindExpense),
		Income:       report.CategoryBreakdown(l, m, core.KindIncome),
		Budget:       report.BudgetUtilization(l, budget, m, categories),
	}
}

// TransactionHeader names the columns of TransactionRows.
var TransactionHeader = []any{"Date", "Type", "Category", "Description", "Amount"}

// TransactionRows returns one row per transaction, header first. Amounts
// are in major units.
func TransactionRows(r Report) [][]any {
	rows := make([][]any, 0, len(r.Transactions)+1)
	rows = append(rows, TransactionHeader)
	for _, tx := range r.Transactions {
		rows = append(rows, []any{
			tx.Date.String(),
			string(tx.Kind),
			ledger.DisplayCategory(tx.Category),
			tx.Description,
			major(tx.Amount),
		})
	}
	return rows
}

// SummaryRows returns the totals block followed by the expense breakdown
// and the budget table, separated by blank rows.
func SummaryRows(r Report) [][]any {
	rows := [][]any{
		{"Month", r.Month.String()},
		{"Total income", major(r.Totals.Income)},
		{"Total expenses", major(r.Totals.Expense)},
		{"Balance", major(r.Totals.Balance)},
		{"Savings rate %", round1(r.Totals.SavingsRate * 100)},
		{},
		{"Category", "Spent", "Share %"},
	}
	for _, s := range r.Expenses.Percentages() {
		rows = append(rows, []any{ledger.DisplayCategory(s.Name), major(s.Amount), round1(s.Percent)})
	}
	if len(r.Budget.Rows) > 0 {
		rows = append(rows, []any{}, []any{"Budget category", "Budget", "Spent", "Remaining", "Used %", "Status"})
		for _, b := range r.Budget.Rows {
			rows = append(rows, []any{
				b.Category, major(b.Budget), major(b.Spent), major(b.Remaining), round1(b.UtilizationPct), string(b.Status),
			})
		}
	}
	return rows
}

func major(m core.Money) float64 {
	return m.Major().InexactFloat64()
}

func round1(f float64) float64 {
	return decimal.NewFromFloat(f).Round(1).InexactFloat64()
}
