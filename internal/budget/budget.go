// Package budget persists the category -> monthly limit mapping used by the
// budget-vs-actual report. The store is a text file of "category,amount_minor"
// lines.
package budget

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// ErrInvalidCategory is returned for categories that cannot be persisted on a
// single comma-separated line.
var ErrInvalidCategory = errors.New("invalid budget category")

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the budget file. A missing file is an empty budget. Lines that
// do not hold exactly a category and a non-negative integer are skipped;
// repeated categories keep their first position and their last value.
func (s *Store) Load(ctx context.Context) (core.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return core.Budget{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open budgets: %w", err)
	}
	defer f.Close()

	b, skipped, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read budgets %s: %w", s.path, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed budget lines", "path", s.path, "skipped", skipped)
	}
	return b, nil
}

// Parse decodes budget lines from r and reports how many were skipped. Lines
// of any length are read; only I/O failures return an error.
func Parse(r io.Reader) (core.Budget, int, error) {
	b := core.Budget{}
	skipped := 0
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if line := strings.TrimSpace(raw); line != "" {
			category, amount, ok := strings.Cut(line, ",")
			category = strings.TrimSpace(category)
			cents, perr := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
			if !ok || category == "" || perr != nil || cents < 0 {
				skipped++
			} else {
				b = SetBudget(b, category, core.Money{Cents: cents})
			}
		}
		if errors.Is(err, io.EOF) {
			return b, skipped, nil
		}
		if err != nil {
			return nil, skipped, err
		}
	}
}

// SetBudget returns a copy of b where category maps to limit. An existing
// entry is replaced in place, otherwise the entry is appended. Keys match
// exactly.
func SetBudget(b core.Budget, category string, limit core.Money) core.Budget {
	out := make(core.Budget, len(b), len(b)+1)
	copy(out, b)
	for i := range out {
		if out[i].Category == category {
			out[i].Limit = limit
			return out
		}
	}
	return append(out, core.BudgetEntry{Category: category, Limit: limit})
}

// ParseLimit converts a user-typed major-unit limit to Money. Zero is a valid
// limit.
func ParseLimit(s string) (core.Money, error) {
	cents, err := core.ParseNonNegativeDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// ValidateCategory rejects labels that would break the line format.
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" || strings.ContainsAny(category, ",\n\r") {
		return ErrInvalidCategory
	}
	return nil
}

// Save rewrites the whole file through a temporary file and a rename so a
// reader never sees a half-written budget.
func (s *Store) Save(ctx context.Context, b core.Budget) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create budget directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".budgets-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp budget file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range b {
		fmt.Fprintf(w, "%s,%d\n", e.Category, e.Limit.Cents)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write budgets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp budget file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace budgets: %w", err)
	}
	return nil
}

// Set loads the budget, merges category -> limit and saves the result.
func (s *Store) Set(ctx context.Context, category string, limit core.Money) (core.Budget, error) {
	if err := ValidateCategory(category); err != nil {
		return nil, err
	}
	if limit.Cents < 0 {
		return nil, core.ErrInvalidAmount
	}
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	updated := SetBudget(current, category, limit)
	if err := s.Save(ctx, updated); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Budget updated", "category", category, "amount_minor", limit.Cents)
	return updated, nil
}
