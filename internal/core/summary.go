package core

import "strings"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// BudgetEntry is a monthly spending limit for one category.
type BudgetEntry struct {
	Category string
	Limit    Money
}

// Budget maps categories to monthly limits, kept in persisted order.
// Keys are exact (case-sensitive) strings.
type Budget []BudgetEntry

// Lookup returns the limit stored under exactly category.
func (b Budget) Lookup(category string) (Money, bool) {
	for _, e := range b {
		if e.Category == category {
			return e.Limit, true
		}
	}
	return Money{}, false
}

// SumFold adds the limits of every entry matching category
// case-insensitively. ok is false when none matches.
func (b Budget) SumFold(category string) (total Money, ok bool) {
	for _, e := range b {
		if strings.EqualFold(e.Category, category) {
			total = total.Add(e.Limit)
			ok = true
		}
	}
	return total, ok
}

// Categories returns the budgeted categories in persisted order.
func (b Budget) Categories() []string {
	out := make([]string, 0, len(b))
	for _, e := range b {
		out = append(out, e.Category)
	}
	return out
}

// Total sums every limit.
func (b Budget) Total() Money {
	var total Money
	for _, e := range b {
		total = total.Add(e.Limit)
	}
	return total
}
