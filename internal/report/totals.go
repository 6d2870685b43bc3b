// Package report derives every aggregate view from a loaded ledger and
// budget. All functions are pure: the caller passes the month or dates to
// report on, nothing here reads the clock.
//
// Only the Income and Expense kinds contribute to totals. Transactions with
// any other kind are listed by Filter and NewestFirst but ignored by every
// aggregate.
package report

import "fintrack/internal/core"

// Totals is the income/expense summary of one month.
type Totals struct {
	Month       core.Month
	Income      core.Money
	Expense     core.Money
	Balance     core.Money
	SavingsRate float64 // balance / income, 0 when there is no income
}

// InMonth returns the transactions dated within m, in ledger order.
func InMonth(ledger core.Ledger, m core.Month) core.Ledger {
	out := core.Ledger{}
	for _, tx := range ledger {
		if m.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthlyTotals sums income and expense for m.
func MonthlyTotals(ledger core.Ledger, m core.Month) Totals {
	t := Totals{Month: m}
	for _, tx := range ledger {
		if !m.Contains(tx.Date) {
			continue
		}
		switch {
		case tx.Kind.IsIncome():
			t.Income = t.Income.Add(tx.Amount)
		case tx.Kind.IsExpense():
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	if t.Income.Cents > 0 {
		t.SavingsRate = float64(t.Balance.Cents) / float64(t.Income.Cents)
	}
	return t
}

// PercentageOf returns amount as a percentage of total, 0 when total is 0.
func PercentageOf(amount, total core.Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(amount.Cents) * 100 / float64(total.Cents)
}
