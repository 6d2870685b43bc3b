package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC) }

const ledgerFixture = `2024-05-01,income,Salary,May pay,400000
2024-06-01,income,Salary,June pay,500000
2024-06-02|expense|Food|Lunch|25000
2024-06-15,expense,Food,Groceries,60000
2024-06-15,expense,Transport,Train,35000
2024-06-18,transfer,Savings,Move,10000
garbage line
`

const budgetFixture = "Food,100000\nTransport,30000\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	lp := filepath.Join(dir, "transactions.txt")
	bp := filepath.Join(dir, "budgets.txt")
	require.NoError(t, os.WriteFile(lp, []byte(ledgerFixture), 0o644))
	require.NoError(t, os.WriteFile(bp, []byte(budgetFixture), 0o644))

	cfg := log.DefaultConfig()
	cfg.Writer = &strings.Builder{}
	srv := NewServer(":0", ledger.NewStore(lp), budget.NewStore(bp), Options{
		SnapshotTTL: time.Minute,
		Categories:  []string{"Food", "Transport", "Bills"},
		Logger:      log.New(cfg),
		Now:         fixedNow,
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
	}
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for path, body := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr := get(t, srv, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, body, rr.Body.String())
	}
}

func TestOverview(t *testing.T) {
	srv := newTestServer(t)
	var got overviewResponse
	rr := get(t, srv, "/api/overview", &got)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "2024-06", got.Month)
	assert.Equal(t, "5000.00", got.Income.Amount)
	assert.Equal(t, int64(120000), got.Expense.Cents)
	assert.Equal(t, "3800.00", got.Balance.Amount)
	assert.InDelta(t, 76.0, got.SavingsRatePct, 1e-9)

	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get(log.RequestIDHeader))
}

func TestOverviewMonthOverride(t *testing.T) {
	srv := newTestServer(t)
	var got overviewResponse
	get(t, srv, "/api/overview?year=2024&month=5", &got)
	assert.Equal(t, "2024-05", got.Month)
	assert.Equal(t, "4000.00", got.Income.Amount)
	assert.Zero(t, got.Expense.Cents)
}

func TestInvalidMonth(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"month=13", "month=0", "year=abc", "month=june"} {
		rr := get(t, srv, "/api/overview?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		var e errorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
		assert.NotEmpty(t, e.Error)
		assert.NotEmpty(t, e.RequestID)
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t)
	var got categoriesResponse
	get(t, srv, "/api/categories", &got)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Food", got.Items[0].Category)
	assert.Equal(t, "850.00", got.Items[0].Amount.Amount)
	require.NotNil(t, got.Items[0].Percent)
	assert.InDelta(t, 70.83, *got.Items[0].Percent, 0.01)
	assert.Equal(t, "1200.00", got.Total.Amount)
	assert.Len(t, got.Top, 2)
}

func TestTrend(t *testing.T) {
	srv := newTestServer(t)
	var got trendResponse
	get(t, srv, "/api/trend", &got)

	assert.Equal(t, 30, got.Days)
	require.Len(t, got.Points, 3, "days 1, 2 and 15; the transfer is not charted")
	assert.Equal(t, 15, got.Points[2].Day)
	assert.Equal(t, int64(95000), got.Points[2].Expense.Cents)
}

func TestIncome(t *testing.T) {
	srv := newTestServer(t)
	var got incomeResponse
	get(t, srv, "/api/income", &got)

	assert.Equal(t, "2024-05", got.PreviousMonth)
	require.NotNil(t, got.PctChange)
	assert.InDelta(t, 25.0, *got.PctChange, 1e-9)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "Salary", got.Sources[0].Category)

	var may incomeResponse
	get(t, srv, "/api/income?month=5", &may)
	assert.Nil(t, may.PctChange, "April has no income")
}

func TestBudgets(t *testing.T) {
	srv := newTestServer(t)
	var got budgetsResponse
	get(t, srv, "/api/budgets", &got)

	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Food", got.Rows[0].Category)
	assert.Equal(t, "Warning", got.Rows[0].Status)
	assert.Equal(t, "Over", got.Rows[1].Status)
	assert.Equal(t, "Bills", got.Rows[2].Category)
	assert.Equal(t, int64(0), got.Rows[2].Budget.Cents)
	assert.Equal(t, []string{"Transport"}, got.Summary.OverBudget)
	assert.Equal(t, int64(130000), got.Summary.TotalBudget.Cents)
}

func TestTransactions(t *testing.T) {
	srv := newTestServer(t)

	var all transactionsResponse
	get(t, srv, "/api/transactions", &all)
	assert.Equal(t, 6, all.Total)
	assert.Equal(t, "2024-06-18", all.Transactions[0].Date)
	assert.Equal(t, "2024-05-01", all.FirstDate)
	assert.Equal(t, "2024-06-18", all.LastDate)
	assert.Equal(t, []string{"Salary", "Food", "Transport", "Savings"}, all.Categories)

	var food transactionsResponse
	get(t, srv, "/api/transactions?from=2024-06-01&to=2024-06-30&category=food&limit=1", &food)
	assert.Equal(t, 2, food.Total)
	assert.Len(t, food.Categories, 4, "choices come from the whole ledger")
	require.Equal(t, 1, food.Count)
	assert.Equal(t, "Groceries", food.Transactions[0].Description)

	for _, q := range []string{"from=2024-13-01", "limit=0", "limit=5000", "from=2024-06-10&to=2024-06-01"} {
		rr := get(t, srv, "/api/transactions?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestRecent(t *testing.T) {
	srv := newTestServer(t)
	var got transactionsResponse
	get(t, srv, "/api/recent", &got)
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, "Move", got.Transactions[0].Description)
	assert.Empty(t, got.Categories)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/overview", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type countingLedger struct {
	calls   atomic.Int64
	started chan struct{}
	release chan struct{}
	once    sync.Once
	err     error
}

func (c *countingLedger) Load(ctx context.Context) (core.Ledger, error) {
	c.calls.Add(1)
	if c.started != nil {
		c.once.Do(func() { close(c.started) })
		<-c.release
	}
	return core.Ledger{}, c.err
}

type staticBudget struct{}

func (staticBudget) Load(context.Context) (core.Budget, error) { return core.Budget{}, nil }

func TestSnapshotLoaderMemoizes(t *testing.T) {
	src := &countingLedger{}
	l := NewSnapshotLoader(src, staticBudget{}, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := l.Load(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), l.Loads())
	assert.Equal(t, int64(1), src.calls.Load())
}

func TestSnapshotLoaderExpires(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &countingLedger{}
	l := NewSnapshotLoader(src, staticBudget{}, 30*time.Second, cacheClock(&now))

	_, _ = l.Load(context.Background())
	now = now.Add(31 * time.Second)
	assert.Equal(t, 1, l.CleanExpired())
	_, _ = l.Load(context.Background())
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestSnapshotLoaderWithoutTTL(t *testing.T) {
	src := &countingLedger{}
	l := NewSnapshotLoader(src, staticBudget{}, 0)
	_, _ = l.Load(context.Background())
	_, _ = l.Load(context.Background())
	assert.Equal(t, int64(2), src.calls.Load())
	assert.Zero(t, l.CleanExpired())
}

func TestSnapshotLoaderSharesConcurrentLoads(t *testing.T) {
	src := &countingLedger{started: make(chan struct{}), release: make(chan struct{})}
	l := NewSnapshotLoader(src, staticBudget{}, time.Minute)

	var wg sync.WaitGroup
	load := func() {
		defer wg.Done()
		_, err := l.Load(context.Background())
		assert.NoError(t, err)
	}
	wg.Add(1)
	go load()
	<-src.started
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go load()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int64(1), src.calls.Load())
}

func TestSnapshotLoadFailure(t *testing.T) {
	src := &countingLedger{err: errors.New("disk gone")}
	cfg := log.DefaultConfig()
	cfg.Writer = &strings.Builder{}
	srv := NewServer(":0", src, staticBudget{}, Options{Logger: log.New(cfg), Now: fixedNow})
	defer srv.Shutdown(context.Background())

	rr := get(t, srv, "/api/overview", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "disk gone")

	rr = get(t, srv, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Error)
	assert.NotEmpty(t, body.RequestID)
}
