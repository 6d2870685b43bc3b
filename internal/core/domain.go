package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the on-disk date format of every ledger line.
const DateLayout = "2006-01-02"

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
)

type (
	// Kind is the normalized transaction type. Income and Expense are the only
	// kinds aggregations know about; any other token is kept title-cased as an
	// opaque kind for display.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		Date        Date
		Kind        Kind
		Category    string
		Description string
		Amount      Money
	}

	// Ledger is the ordered sequence of transactions as read from the store.
	Ledger []Transaction
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// IsIncome reports whether k is the Income kind.
func (k Kind) IsIncome() bool { return k == KindIncome }

// IsExpense reports whether k is the Expense kind.
func (k Kind) IsExpense() bool { return k == KindExpense }

// Token returns the lowercase form written to the ledger store.
func (k Kind) Token() string { return strings.ToLower(string(k)) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (open bound in filters)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m - o. The result may be negative.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Major returns the amount in major units (minor / 100) without rounding.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Validate checks a transaction before it is appended to the store.
// Loaded transactions are never validated: the loader only drops lines it
// cannot decode.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.IsIncome() && !t.Kind.IsExpense() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}

// SameCategory reports whether two category labels match. Matching is
// case-insensitive; the stored spelling is kept for display.
func SameCategory(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
