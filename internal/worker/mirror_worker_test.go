package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeLedger struct {
	ledger core.Ledger
	err    error
}

func (f fakeLedger) Load(context.Context) (core.Ledger, error) { return f.ledger, f.err }

type fakeBudget struct {
	budget core.Budget
	err    error
}

func (f fakeBudget) Load(context.Context) (core.Budget, error) { return f.budget, f.err }

type fakeMirror struct {
	mu    sync.Mutex
	calls int
	err   error
	last  core.Ledger
}

func (f *fakeMirror) Sync(_ context.Context, l core.Ledger, b core.Budget) (storage.SyncStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = l
	if f.err != nil {
		return storage.SyncStats{}, f.err
	}
	return storage.SyncStats{Transactions: len(l), Budgets: len(b)}, nil
}

func (f *fakeMirror) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var sampleLedger = core.Ledger{
	{Date: core.NewDate(2024, 6, 1), Kind: core.KindIncome, Category: "Salary", Description: "June pay", Amount: core.Money{Cents: 500000}},
	{Date: core.NewDate(2024, 6, 2), Kind: core.KindExpense, Category: "Food", Description: "Lunch", Amount: core.Money{Cents: 1250}},
}

func TestSyncNow(t *testing.T) {
	m := &fakeMirror{}
	w := NewMirrorWorker(fakeLedger{ledger: sampleLedger},
		fakeBudget{budget: core.Budget{{Category: "Food", Limit: core.Money{Cents: 100}}}}, m, time.Minute)

	stats, err := w.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Transactions)
	assert.Equal(t, 1, stats.Budgets)
	assert.Equal(t, sampleLedger, m.last)
}

func TestSyncNow_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		ledger fakeLedger
		budget fakeBudget
		mirror *fakeMirror
		want   string
	}{
		{"ledger", fakeLedger{err: boom}, fakeBudget{}, &fakeMirror{}, "load ledger"},
		{"budget", fakeLedger{}, fakeBudget{err: boom}, &fakeMirror{}, "load budget"},
		{"mirror", fakeLedger{}, fakeBudget{}, &fakeMirror{err: boom}, "sync mirror"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewMirrorWorker(tt.ledger, tt.budget, tt.mirror, time.Minute)
			_, err := w.SyncNow(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHandleTransactionRecorded(t *testing.T) {
	m := &fakeMirror{}
	w := NewMirrorWorker(fakeLedger{ledger: sampleLedger}, fakeBudget{}, m, time.Minute)

	msg := amqp.NewTransactionRecordedMessage(sampleLedger[1])
	require.NoError(t, w.HandleTransactionRecorded(context.Background(), msg))
	assert.Equal(t, 1, m.Calls())

	bad := &amqp.TransactionRecordedMessage{Date: "not-a-date"}
	require.NoError(t, w.HandleTransactionRecorded(context.Background(), bad))
	assert.Equal(t, 1, m.Calls(), "invalid events do not trigger a sync")

	m.err = errors.New("disk full")
	assert.Error(t, w.HandleTransactionRecorded(context.Background(), msg), "sync failures are returned for requeue")
}

func TestStartStop(t *testing.T) {
	m := &fakeMirror{}
	w := NewMirrorWorker(fakeLedger{ledger: sampleLedger}, fakeBudget{}, m, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(ctx), "second start is rejected")

	assert.Eventually(t, func() bool { return m.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop(stopCtx), "stopping twice is a no-op")
}

func TestStart_InvalidInterval(t *testing.T) {
	w := NewMirrorWorker(fakeLedger{}, fakeBudget{}, &fakeMirror{}, 0)
	assert.Error(t, w.Start(context.Background()))
}
