package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

// moneyJSON carries exact minor units next to a display string.
type moneyJSON struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount"`
}

func money(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Amount: m.Major().StringFixed(2)}
}

type overviewResponse struct {
	Month          string    `json:"month"`
	Income         moneyJSON `json:"income"`
	Expense        moneyJSON `json:"expense"`
	Balance        moneyJSON `json:"balance"`
	SavingsRate    float64   `json:"savings_rate"`
	SavingsRatePct float64   `json:"savings_rate_pct"`
}

func newOverviewResponse(t report.Totals) overviewResponse {
	return overviewResponse{
		Month:          t.Month.String(),
		Income:         money(t.Income),
		Expense:        money(t.Expense),
		Balance:        money(t.Balance),
		SavingsRate:    t.SavingsRate,
		SavingsRatePct: t.SavingsRate * 100,
	}
}

type categoryJSON struct {
	Category string    `json:"category"`
	Amount   moneyJSON `json:"amount"`
	Percent  *float64  `json:"percent,omitempty"`
}

type categoriesResponse struct {
	Month string         `json:"month"`
	Total moneyJSON      `json:"total"`
	Items []categoryJSON `json:"items"`
	Top   []categoryJSON `json:"top"`
}

func categoryItems(items []core.CategoryAmount) []categoryJSON {
	out := make([]categoryJSON, 0, len(items))
	for _, it := range items {
		out = append(out, categoryJSON{Category: it.Name, Amount: money(it.Amount)})
	}
	return out
}

func newCategoriesResponse(b report.Breakdown, top int) categoriesResponse {
	resp := categoriesResponse{
		Month: b.Month.String(),
		Total: money(b.Total),
		Items: make([]categoryJSON, 0, len(b.Items)),
		Top:   categoryItems(report.TopN(b, top)),
	}
	for _, s := range b.Percentages() {
		pct := s.Percent
		resp.Items = append(resp.Items, categoryJSON{Category: s.Name, Amount: money(s.Amount), Percent: &pct})
	}
	return resp
}

type dayJSON struct {
	Day     int       `json:"day"`
	Income  moneyJSON `json:"income"`
	Expense moneyJSON `json:"expense"`
}

type trendResponse struct {
	Month  string    `json:"month"`
	Days   int       `json:"days"`
	Points []dayJSON `json:"points"`
}

func newTrendResponse(m core.Month, points []report.DayPoint) trendResponse {
	resp := trendResponse{Month: m.String(), Days: m.Days(), Points: make([]dayJSON, 0, len(points))}
	for _, p := range points {
		resp.Points = append(resp.Points, dayJSON{Day: p.Day, Income: money(p.Income), Expense: money(p.Expense)})
	}
	return resp
}

// incomeResponse.PctChange is null when the previous month had no income.
type incomeResponse struct {
	Month         string         `json:"month"`
	PreviousMonth string         `json:"previous_month"`
	Current       moneyJSON      `json:"current"`
	Previous      moneyJSON      `json:"previous"`
	PctChange     *float64       `json:"pct_change"`
	Sources       []categoryJSON `json:"sources"`
}

func newIncomeResponse(c report.Comparison, sources []core.CategoryAmount) incomeResponse {
	resp := incomeResponse{
		Month:         c.Current.String(),
		PreviousMonth: c.Previous.String(),
		Current:       money(c.CurrentTotal),
		Previous:      money(c.PreviousTotal),
		Sources:       categoryItems(sources),
	}
	if c.HasPrevious {
		pct := c.PctChange
		resp.PctChange = &pct
	}
	return resp
}

type budgetRowJSON struct {
	Category       string    `json:"category"`
	Budget         moneyJSON `json:"budget"`
	Spent          moneyJSON `json:"spent"`
	Remaining      moneyJSON `json:"remaining"`
	UtilizationPct float64   `json:"utilization_pct"`
	Status         string    `json:"status"`
}

type budgetsResponse struct {
	Month   string          `json:"month"`
	Rows    []budgetRowJSON `json:"rows"`
	Summary struct {
		TotalBudget    moneyJSON `json:"total_budget"`
		TotalSpent     moneyJSON `json:"total_spent"`
		TotalRemaining moneyJSON `json:"total_remaining"`
		UtilizationPct float64   `json:"utilization_pct"`
		OverBudget     []string  `json:"over_budget"`
	} `json:"summary"`
}

func newBudgetsResponse(u report.Utilization) budgetsResponse {
	resp := budgetsResponse{Month: u.Month.String(), Rows: make([]budgetRowJSON, 0, len(u.Rows))}
	for _, r := range u.Rows {
		resp.Rows = append(resp.Rows, budgetRowJSON{
			Category:       r.Category,
			Budget:         money(r.Budget),
			Spent:          money(r.Spent),
			Remaining:      money(r.Remaining),
			UtilizationPct: r.UtilizationPct,
			Status:         string(r.Status),
		})
	}
	resp.Summary.TotalBudget = money(u.Summary.TotalBudget)
	resp.Summary.TotalSpent = money(u.Summary.TotalSpent)
	resp.Summary.TotalRemaining = money(u.Summary.TotalRemaining)
	resp.Summary.UtilizationPct = u.Summary.UtilizationPct
	resp.Summary.OverBudget = append([]string{}, u.Summary.OverBudget...)
	return resp
}

type transactionJSON struct {
	Date        string    `json:"date"`
	Kind        string    `json:"kind"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      moneyJSON `json:"amount"`
}

type transactionsResponse struct {
	Count        int               `json:"count"`
	Total        int               `json:"total"`
	Transactions []transactionJSON `json:"transactions"`
	// Filter choices drawn from the whole ledger.
	Categories []string `json:"categories,omitempty"`
	FirstDate  string   `json:"first_date,omitempty"`
	LastDate   string   `json:"last_date,omitempty"`
}

// newTransactionsResponse lists the first limit entries; Total counts all
// matches.
func newTransactionsResponse(l core.Ledger, limit int) transactionsResponse {
	resp := transactionsResponse{Total: len(l)}
	if limit >= 0 && len(l) > limit {
		l = l[:limit]
	}
	resp.Transactions = make([]transactionJSON, 0, len(l))
	for _, tx := range l {
		resp.Transactions = append(resp.Transactions, transactionJSON{
			Date:        tx.Date.String(),
			Kind:        string(tx.Kind),
			Category:    tx.Category,
			Description: tx.Description,
			Amount:      money(tx.Amount),
		})
	}
	resp.Count = len(resp.Transactions)
	return resp
}

// withLedgerFacets adds the date range and category choices of all.
func (resp transactionsResponse) withLedgerFacets(all core.Ledger) transactionsResponse {
	if first, last, ok := report.DateBounds(all); ok {
		resp.FirstDate = first.String()
		resp.LastDate = last.String()
	}
	resp.Categories = report.DistinctCategories(all)
	return resp
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: log.RequestID(r.Context())})
}
