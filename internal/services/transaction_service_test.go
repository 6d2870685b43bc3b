package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type fakeAppender struct {
	appended []core.Transaction
	err      error
}

func (f *fakeAppender) Append(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, tx)
	return nil
}

type fakePublisher struct {
	published []core.Transaction
	err       error
}

func (f *fakePublisher) PublishTransactionRecorded(_ context.Context, tx core.Transaction) error {
	f.published = append(f.published, tx)
	return f.err
}

func validTx() core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2024, 6, 15),
		Kind:        core.KindExpense,
		Category:    " Food ",
		Description: "Groceries",
		Amount:      core.Money{Cents: 120000},
	}
}

func TestTransactionService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("appends then publishes", func(t *testing.T) {
		store := &fakeAppender{}
		pub := &fakePublisher{}
		svc := NewTransactionService(store, pub)

		got, err := svc.Record(ctx, validTx())
		require.NoError(t, err)
		assert.Equal(t, "Food", got.Category)
		require.Len(t, store.appended, 1)
		assert.Equal(t, got, store.appended[0])
		assert.Equal(t, store.appended, pub.published)
	})

	t.Run("nil publisher", func(t *testing.T) {
		store := &fakeAppender{}
		_, err := NewTransactionService(store, nil).Record(ctx, validTx())
		require.NoError(t, err)
		assert.Len(t, store.appended, 1)
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		store := &fakeAppender{}
		pub := &fakePublisher{err: errors.New("broker down")}
		_, err := NewTransactionService(store, pub).Record(ctx, validTx())
		require.NoError(t, err)
		assert.Len(t, store.appended, 1)
	})

	t.Run("store failure stops the write", func(t *testing.T) {
		boom := errors.New("disk full")
		pub := &fakePublisher{}
		_, err := NewTransactionService(&fakeAppender{err: boom}, pub).Record(ctx, validTx())
		require.ErrorIs(t, err, boom)
		assert.Empty(t, pub.published)
	})

	invalid := []struct {
		name   string
		mutate func(*core.Transaction)
		want   error
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"negative amount", func(tx *core.Transaction) { tx.Amount = core.Money{Cents: -5} }, core.ErrInvalidAmount},
		{"blank category", func(tx *core.Transaction) { tx.Category = "  " }, core.ErrEmptyCategory},
		{"blank description", func(tx *core.Transaction) { tx.Description = "" }, core.ErrEmptyDescription},
		{"opaque kind", func(tx *core.Transaction) { tx.Kind = "Transfer" }, core.ErrInvalidKind},
		{"no date", func(tx *core.Transaction) { tx.Date = core.Date{} }, core.ErrInvalidDate},
		{"four commas", func(tx *core.Transaction) { tx.Description = "a,b,c,d" }, ErrUnstorable},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeAppender{}
			tx := validTx()
			tc.mutate(&tx)
			_, err := NewTransactionService(store, nil).Record(ctx, tx)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, store.appended)
		})
	}
}

func TestTransactionService_RecordReadsBack(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewStore(filepath.Join(t.TempDir(), "db", "transactions.txt"))
	svc := NewTransactionService(store, nil)

	tx := validTx()
	tx.Description = "Lunch, with friends"
	recorded, err := svc.Record(ctx, tx)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, recorded, loaded[0])
}

func TestNewTransaction(t *testing.T) {
	today := core.NewDate(2024, 6, 30)

	tx, err := NewTransaction(core.KindIncome, "", "Salary", "June pay", "5000", today)
	require.NoError(t, err)
	assert.Equal(t, today, tx.Date)
	assert.Equal(t, int64(500000), tx.Amount.Cents)

	tx, err = NewTransaction(core.KindExpense, "2024-06-01", "Food", "x", "12,50", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", tx.Date.String())
	assert.Equal(t, int64(1250), tx.Amount.Cents)

	_, err = NewTransaction(core.KindExpense, "2024-02-30", "Food", "x", "1", today)
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = NewTransaction(core.KindExpense, "", "Food", "x", "-1", today)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}
