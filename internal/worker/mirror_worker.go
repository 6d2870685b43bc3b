// Package worker keeps the SQLite mirror in step with the flat-file stores.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type LedgerLoader interface {
	Load(ctx context.Context) (core.Ledger, error)
}

type BudgetLoader interface {
	Load(ctx context.Context) (core.Budget, error)
}

// Syncer replaces the mirrored rows with a fresh snapshot.
type Syncer interface {
	Sync(ctx context.Context, ledger core.Ledger, budget core.Budget) (storage.SyncStats, error)
}

// MirrorWorker re-syncs the mirror on every recorded transaction and on a
// fixed interval as a backstop for lost messages.
type MirrorWorker struct {
	ledger   LedgerLoader
	budget   BudgetLoader
	mirror   Syncer
	interval time.Duration

	// syncMu serializes syncs; the event handler and the ticker can race.
	syncMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorWorker(ledger LedgerLoader, budget BudgetLoader, mirror Syncer, interval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		ledger:   ledger,
		budget:   budget,
		mirror:   mirror,
		interval: interval,
	}
}

// SyncNow loads both stores and writes them to the mirror.
func (w *MirrorWorker) SyncNow(ctx context.Context) (storage.SyncStats, error) {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	ledger, err := w.ledger.Load(ctx)
	if err != nil {
		return storage.SyncStats{}, fmt.Errorf("load ledger: %w", err)
	}
	budget, err := w.budget.Load(ctx)
	if err != nil {
		return storage.SyncStats{}, fmt.Errorf("load budget: %w", err)
	}
	stats, err := w.mirror.Sync(ctx, ledger, budget)
	if err != nil {
		return storage.SyncStats{}, fmt.Errorf("sync mirror: %w", err)
	}

	slog.DebugContext(ctx, "Mirror synced",
		"transactions", stats.Transactions,
		"budgets", stats.Budgets)
	return stats, nil
}

// HandleTransactionRecorded is the AMQP handler. A message that does not
// carry a valid transaction is logged and acknowledged; the next periodic
// sync picks up whatever reached the ledger anyway.
func (w *MirrorWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		slog.WarnContext(ctx, "Ignoring invalid transaction event",
			"id", msg.ID,
			"error", err)
		return nil
	}

	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"kind", tx.Kind,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	if _, err := w.SyncNow(ctx); err != nil {
		return err
	}
	return nil
}

// Start syncs once and then every interval until Stop or ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("invalid mirror interval %s", w.interval)
	}
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror worker started", "interval", w.interval)
	return nil
}

// Stop signals the loop and waits for it to exit.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Mirror worker stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}
}

func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.syncLogged(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.syncLogged(ctx)
		}
	}
}

func (w *MirrorWorker) syncLogged(ctx context.Context) {
	if _, err := w.SyncNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic mirror sync failed", "error", err)
	}
}
