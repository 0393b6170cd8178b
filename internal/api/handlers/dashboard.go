package handlers

import (
	"net/http"

	"github.com/dvloznov/finsight/internal/analytics"
	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/fees"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the aggregated views. Every endpoint accepts
// ?account= to restrict the view to one account.
type DashboardHandler struct {
	repo Repository
	log  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(repo Repository, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{repo: repo, log: log}
}

// analysis aggregates the reports selected by the account parameter.
func (h *DashboardHandler) analysis(r *http.Request) (domain.FinancialAnalysis, int, error) {
	data := h.repo.Load(r.Context())
	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		return analytics.Aggregate(data.Reports, data.Accounts), len(data.Reports), nil
	}
	if _, ok := domain.FindAccount(data.Accounts, accountID); !ok {
		return domain.FinancialAnalysis{}, 0, accountNotFound(accountID)
	}
	return analytics.AggregateAccount(data.Reports, data.Accounts, accountID),
		len(data.ReportsForAccount(accountID)), nil
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, n, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to build dashboard")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"analysis":    a,
		"reportCount": n,
	})
}

// Fees handles GET /api/fees
func (h *DashboardHandler) Fees(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to analyze fees")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, fees.Analyze(a.Transactions))
}

// ListTransactions handles GET /api/transactions. It accepts search, type,
// category, month, year, sort, dir and group.
func (h *DashboardHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	sortKey, err := analytics.ParseSortKey(params.Get("sort"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := analytics.ParseSortDirection(params.Get("dir"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	group, err := analytics.ParseGroupMode(params.Get("group"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, _, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to list transactions")
		return
	}

	txs := analytics.Query{
		Search:    params.Get("search"),
		Type:      params.Get("type"),
		Category:  params.Get("category"),
		Month:     params.Get("month"),
		Year:      params.Get("year"),
		SortKey:   sortKey,
		Direction: dir,
	}.Apply(a.Transactions)

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"groups": analytics.GroupTransactions(txs, group),
		"count":  len(txs),
	})
}

// FilterOptions handles GET /api/transactions/filters
func (h *DashboardHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to list filter options")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.FilterOptions(a.Transactions))
}

// CategoryChart handles GET /api/charts/categories
func (h *DashboardHandler) CategoryChart(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to build category chart")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"categories": analytics.SpendingByCategory(a.Transactions),
	})
}

// TrendChart handles GET /api/charts/trend
func (h *DashboardHandler) TrendChart(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.analysis(r)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to build trend chart")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, analytics.SpendingTrend(a.Transactions))
}
