// Package ledger reads and appends the flat transaction store.
//
// One transaction is stored per line as
//
//	date<sep>type<sep>category<sep>description<sep>amount_minor
//
// where <sep> is "," in historical records and "|" in records written by the
// current tool. Decoding tries each known format in order; the first one that
// splits the line into exactly five fields decides how the line is read.
package ledger

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

// FieldCount is the number of fields in every ledger line.
const FieldCount = 5

// Delimiter written by Encode.
const Delimiter = "|"

// Format splits a raw line into fields. ok is false when the line is not
// structurally valid for the format.
type Format interface {
	Split(line string) (fields []string, ok bool)
}

// Delimited is a Format that separates fields with a fixed string.
type Delimited string

// Split implements Format.
func (d Delimited) Split(line string) ([]string, bool) {
	parts := strings.Split(line, string(d))
	if len(parts) != FieldCount {
		return nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// Codec decodes lines with an ordered list of formats.
type Codec struct {
	formats []Format
}

// NewCodec returns a codec trying formats in the given order.
func NewCodec(formats ...Format) *Codec {
	return &Codec{formats: formats}
}

// DefaultCodec accepts the comma form first and the pipe form second.
var DefaultCodec = NewCodec(Delimited(","), Delimited("|"))

// titleCase builds a fresh Caser per call; Casers are stateful and must not
// be shared between goroutines.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Decode reads one line. ok is false for a malformed record: no format yields
// five fields, the date is not a calendar date, or the amount is not a
// non-negative integer.
func (c *Codec) Decode(line string) (tx core.Transaction, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return core.Transaction{}, false
	}
	for _, f := range c.formats {
		fields, ok := f.Split(line)
		if !ok {
			continue
		}
		return fromFields(fields)
	}
	return core.Transaction{}, false
}

func fromFields(fields []string) (core.Transaction, bool) {
	date, err := core.ParseDate(fields[0])
	if err != nil {
		return core.Transaction{}, false
	}
	amount, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil || amount < 0 {
		return core.Transaction{}, false
	}
	return core.Transaction{
		Date:        date,
		Kind:        NormalizeKind(fields[1]),
		Category:    fields[2],
		Description: fields[3],
		Amount:      core.Money{Cents: amount},
	}, true
}

// Decode reads one line with DefaultCodec.
func Decode(line string) (core.Transaction, bool) {
	return DefaultCodec.Decode(line)
}

// NormalizeKind maps "income" and "expense" case-insensitively to their
// kinds. Any other token is kept title-cased as an opaque kind.
func NormalizeKind(token string) core.Kind {
	token = strings.TrimSpace(token)
	switch strings.ToLower(token) {
	case "income":
		return core.KindIncome
	case "expense":
		return core.KindExpense
	}
	return core.Kind(titleCase(token))
}

// DisplayCategory title-cases a category label for presentation.
func DisplayCategory(category string) string {
	return titleCase(strings.TrimSpace(category))
}

// Encode renders a transaction in the pipe form, newline terminated.
// Delimiters and line breaks inside text fields are replaced by spaces so the
// record stays on one line with five fields.
func Encode(tx core.Transaction) string {
	var b strings.Builder
	b.WriteString(tx.Date.String())
	b.WriteString(Delimiter)
	b.WriteString(sanitize(tx.Kind.Token()))
	b.WriteString(Delimiter)
	b.WriteString(sanitize(tx.Category))
	b.WriteString(Delimiter)
	b.WriteString(sanitize(tx.Description))
	b.WriteString(Delimiter)
	b.WriteString(strconv.FormatInt(tx.Amount.Cents, 10))
	b.WriteByte('\n')
	return b.String()
}

var fieldReplacer = strings.NewReplacer(Delimiter, " ", "\n", " ", "\r", " ")

func sanitize(s string) string {
	return strings.TrimSpace(fieldReplacer.Replace(s))
}
