// Package render draws report views for the terminal.
package render

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fintrack/internal/core"
)

// Formatter prints amounts in major units with a currency symbol and
// grouped thousands, e.g. "₹1,234.50".
type Formatter struct {
	Symbol string
	Lang   language.Tag
}

// NewFormatter returns an English-grouping formatter for symbol.
func NewFormatter(symbol string) Formatter {
	return Formatter{Symbol: symbol, Lang: language.English}
}

// Money formats m. Negative amounts put the sign before the symbol.
func (f Formatter) Money(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	// message.Printer is not safe for concurrent use
	p := message.NewPrinter(f.Lang)
	return sign + f.Symbol + p.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}

// Percent formats a percentage with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
