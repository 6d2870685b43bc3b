package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

const (
	topCategories = 3
	recentCount   = 5
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once both stores can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.snapshots.Load(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		writeError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// load resolves the month and snapshot shared by every report endpoint.
// It writes the error response itself and reports false on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (Snapshot, core.Month, bool) {
	m, err := parseMonth(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return Snapshot{}, core.Month{}, false
	}
	snap, ok := s.snapshot(w, r)
	return snap, m, ok
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (Snapshot, bool) {
	snap, err := s.snapshots.Load(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Snapshot load failed", log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "could not read ledger")
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	snap, m, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newOverviewResponse(report.MonthlyTotals(snap.Ledger, m)))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	snap, m, ok := s.load(w, r)
	if !ok {
		return
	}
	b := report.CategoryBreakdown(snap.Ledger, m, core.KindExpense)
	writeJSON(w, http.StatusOK, newCategoriesResponse(b, topCategories))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	snap, m, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(m, report.DailyTrend(snap.Ledger, m)))
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	snap, m, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newIncomeResponse(
		report.IncomeComparison(snap.Ledger, m),
		report.IncomeSources(snap.Ledger, m)))
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	snap, m, ok := s.load(w, r)
	if !ok {
		return
	}
	u := report.BudgetUtilization(snap.Ledger, snap.Budget, m, s.categories)
	writeJSON(w, http.StatusOK, newBudgetsResponse(u))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f, limit, err := parseTransactionQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	resp := newTransactionsResponse(report.NewestFirst(f.Apply(snap.Ledger)), limit)
	writeJSON(w, http.StatusOK, resp.withLedgerFacets(snap.Ledger))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newTransactionsResponse(report.Recent(snap.Ledger, recentCount), recentCount))
}
