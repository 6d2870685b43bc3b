// Package storage mirrors the flat-file ledger and budget into SQLite so they
// can be queried with SQL. The text files stay the source of truth: every
// Sync replaces the mirrored rows wholesale.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SyncStats reports what one Sync wrote.
type SyncStats struct {
	Transactions int
	Budgets      int
	SyncedAt     time.Time
}

// MonthTotals are the income and expense sums of one month as computed by SQL.
type MonthTotals struct {
	Income  core.Money
	Expense core.Money
}

type Mirror struct {
	db  *sql.DB
	now func() time.Time
}

func NewMirror(dbPath string) (*Mirror, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Mirror{db: db, now: time.Now}, nil
}

func (m *Mirror) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Sync replaces the mirrored transactions and budgets in one SQL transaction.
// Transactions keep their ledger position in the seq column.
func (m *Mirror) Sync(ctx context.Context, ledger core.Ledger, budget core.Budget) (SyncStats, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return SyncStats{}, fmt.Errorf("begin sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return SyncStats{}, fmt.Errorf("clear transactions: %w", err)
	}
	insTx, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (seq, date, kind, category, description, amount_cents) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SyncStats{}, fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insTx.Close()
	for i, t := range ledger {
		if _, err := insTx.ExecContext(ctx, i+1, t.Date.String(), string(t.Kind), t.Category, t.Description, t.Amount.Cents); err != nil {
			return SyncStats{}, fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
		return SyncStats{}, fmt.Errorf("clear budgets: %w", err)
	}
	for _, b := range budget {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)`, b.Category, b.Limit.Cents); err != nil {
			return SyncStats{}, fmt.Errorf("insert budget %q: %w", b.Category, err)
		}
	}

	stats := SyncStats{Transactions: len(ledger), Budgets: len(budget), SyncedAt: m.now().UTC()}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_runs (synced_at, transactions, budgets) VALUES (?, ?, ?)`,
		stats.SyncedAt.Format(time.RFC3339), stats.Transactions, stats.Budgets); err != nil {
		return SyncStats{}, fmt.Errorf("record sync run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SyncStats{}, fmt.Errorf("commit sync: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mirrored to SQLite",
		"transactions", stats.Transactions,
		"budgets", stats.Budgets)

	return stats, nil
}

// MonthTotals sums income and expense for month. Other kinds are ignored.
func (m *Mirror) MonthTotals(ctx context.Context, month core.Month) (MonthTotals, error) {
	from := core.NewDate(month.Year, int(month.Month), 1).String()
	next := month.AddMonths(1)
	to := core.NewDate(next.Year, int(next.Month), 1).String()

	rows, err := m.db.QueryContext(ctx, `
		SELECT kind, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE date >= ? AND date < ? AND kind IN (?, ?)
		GROUP BY kind`,
		from, to, string(core.KindIncome), string(core.KindExpense))
	if err != nil {
		return MonthTotals{}, fmt.Errorf("query month totals: %w", err)
	}
	defer rows.Close()

	var totals MonthTotals
	for rows.Next() {
		var kind string
		var cents int64
		if err := rows.Scan(&kind, &cents); err != nil {
			return MonthTotals{}, fmt.Errorf("scan month totals: %w", err)
		}
		switch core.Kind(kind) {
		case core.KindIncome:
			totals.Income = core.Money{Cents: cents}
		case core.KindExpense:
			totals.Expense = core.Money{Cents: cents}
		}
	}
	return totals, rows.Err()
}

// CountTransactions returns the number of mirrored transactions.
func (m *Mirror) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Budget reads back the mirrored budget, ordered by category.
func (m *Mirror) Budget(ctx context.Context) (core.Budget, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT category, limit_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := core.Budget{}
	for rows.Next() {
		var e core.BudgetEntry
		if err := rows.Scan(&e.Category, &e.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastSync returns when the mirror was last synced. ok is false if never.
func (m *Mirror) LastSync(ctx context.Context) (at time.Time, ok bool, err error) {
	var raw string
	err = m.db.QueryRowContext(ctx, `SELECT synced_at FROM sync_runs ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query last sync: %w", err)
	}
	at, err = time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last sync: %w", err)
	}
	return at, true, nil
}
