package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders report values with one Formatter.
type View struct {
	F Formatter
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func empty(msg string) string {
	return mutedStyle.Render(msg) + "\n"
}

// Transactions lists tx in the given order.
func (v View) Transactions(tx core.Ledger) string {
	if len(tx) == 0 {
		return empty("No transactions found.")
	}
	t := newTable("Date", "Type", "Category", "Description", "Amount")
	for _, x := range tx {
		amount := v.F.Money(x.Amount)
		switch {
		case x.Kind.IsIncome():
			amount = incomeStyle.Render(amount)
		case x.Kind.IsExpense():
			amount = expenseStyle.Render(amount)
		}
		t.Row(x.Date.String(), string(x.Kind), ledger.DisplayCategory(x.Category), x.Description, amount)
	}
	return t.String() + "\n"
}

// LedgerSpan describes the whole ledger: its date range and the categories
// available as filters. It is empty for an empty ledger.
func (v View) LedgerSpan(all core.Ledger) string {
	first, last, ok := report.DateBounds(all)
	if !ok {
		return ""
	}
	cats := report.DistinctCategories(all)
	for i, c := range cats {
		cats[i] = ledger.DisplayCategory(c)
	}
	return labelStyle.Render("Ledger range: ") + valueStyle.Render(first.String()+" to "+last.String()) + "\n" +
		labelStyle.Render("Categories: ") + strings.Join(cats, ", ") + "\n"
}

// Overview is the income/expense/balance panel of one month.
func (v View) Overview(t report.Totals) string {
	balance := v.F.Money(t.Balance)
	if t.Balance.Cents < 0 {
		balance = expenseStyle.Render(balance)
	} else {
		balance = incomeStyle.Render(balance)
	}
	lines := []string{
		titleStyle.Render(t.Month.Label()),
		labelStyle.Render("Total income:   ") + valueStyle.Render(v.F.Money(t.Income)),
		labelStyle.Render("Total expenses: ") + valueStyle.Render(v.F.Money(t.Expense)),
		labelStyle.Render("Balance:        ") + balance,
		labelStyle.Render("Savings rate:   ") + valueStyle.Render(Percent(t.SavingsRate*100)),
	}
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// Breakdown lists each category with its share of the total.
func (v View) Breakdown(b report.Breakdown) string {
	if b.IsEmpty() {
		return empty(fmt.Sprintf("No %s data for %s.", b.Kind.Token(), b.Month.Label()))
	}
	t := newTable("Category", "Amount", "Share", "")
	for _, s := range b.Percentages() {
		t.Row(ledger.DisplayCategory(s.Name), v.F.Money(s.Amount), Percent(s.Percent), Bar(s.Percent, 20))
	}
	t.Row("Total", v.F.Money(b.Total), Percent(100), "")
	return titleStyle.Render(fmt.Sprintf("%s by category, %s", b.Kind, b.Month.Label())) + "\n" + t.String() + "\n"
}

// TopCategories is the short ranked list shown after a breakdown.
func (v View) TopCategories(items []core.CategoryAmount) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Top categories") + "\n")
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s  %s\n", i+1, ledger.DisplayCategory(it.Name), valueStyle.Render(v.F.Money(it.Amount)))
	}
	return sb.String()
}

// Income shows per-source income and the change from last month.
func (v View) Income(c report.Comparison, sources []core.CategoryAmount) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Income, "+c.Current.Label()) + "\n")
	if len(sources) == 0 {
		sb.WriteString(empty("No income recorded."))
	} else {
		t := newTable("Source", "Amount")
		for _, s := range sources {
			t.Row(ledger.DisplayCategory(s.Name), v.F.Money(s.Amount))
		}
		sb.WriteString(t.String() + "\n")
	}
	sb.WriteString(labelStyle.Render("This month: ") + valueStyle.Render(v.F.Money(c.CurrentTotal)) + "\n")
	sb.WriteString(labelStyle.Render(c.Previous.Label()+": ") + valueStyle.Render(v.F.Money(c.PreviousTotal)) + "\n")
	if c.HasPrevious {
		change := fmt.Sprintf("%+.1f%%", c.PctChange)
		if c.PctChange < 0 {
			change = expenseStyle.Render(change)
		} else {
			change = incomeStyle.Render(change)
		}
		sb.WriteString(labelStyle.Render("Change: ") + change + "\n")
	} else {
		sb.WriteString(mutedStyle.Render("No income last month to compare with.") + "\n")
	}
	return sb.String()
}

// Budgets lists the configured limits.
func (v View) Budgets(b core.Budget) string {
	if len(b) == 0 {
		return empty("No budgets set.")
	}
	t := newTable("Category", "Monthly limit")
	for _, e := range b {
		t.Row(e.Category, v.F.Money(e.Limit))
	}
	t.Row("Total", v.F.Money(b.Total()))
	return t.String() + "\n"
}

// Utilization is the budget vs actual table with a summary line.
func (v View) Utilization(u report.Utilization) string {
	if len(u.Rows) == 0 {
		return empty("No budgets set.")
	}
	t := newTable("Category", "Budget", "Spent", "Remaining", "Used", "Status")
	for _, r := range u.Rows {
		t.Row(r.Category, v.F.Money(r.Budget), v.F.Money(r.Spent), v.F.Money(r.Remaining),
			Percent(r.UtilizationPct), statusLabel(r.Status))
	}
	s := u.Summary
	summary := fmt.Sprintf("Total budget %s, spent %s, remaining %s (%s used)",
		v.F.Money(s.TotalBudget), v.F.Money(s.TotalSpent), v.F.Money(s.TotalRemaining), Percent(s.UtilizationPct))
	out := titleStyle.Render("Budgets, "+u.Month.Label()) + "\n" + t.String() + "\n" + labelStyle.Render(summary) + "\n"
	if len(s.OverBudget) > 0 {
		out += expenseStyle.Render("Over budget: "+strings.Join(s.OverBudget, ", ")) + "\n"
	}
	return out
}

func statusLabel(s report.Status) string {
	switch s {
	case report.StatusOver:
		return expenseStyle.Render(string(s))
	case report.StatusWarning:
		return warnStyle.Render(string(s))
	}
	return incomeStyle.Render(string(s))
}

// Bar draws pct (clamped to 0..100) as a bar of width cells.
func Bar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct/100*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
