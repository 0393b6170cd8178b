package handlers

import (
	"net/http"
	"strings"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/rs/zerolog"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	repo      Repository
	sinks     []pipeline.ReportSink
	publisher events.Publisher
	log       zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler. Reports removed by a
// cascade delete are also removed from sinks that support it.
func NewAccountsHandler(repo Repository, sinks []pipeline.ReportSink, publisher events.Publisher, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{repo: repo, sinks: sinks, publisher: publisher, log: log}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.repo.Accounts(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CreateAccount handles POST /api/accounts
func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	typ, err := domain.ParseAccountType(req.Type)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.repo.CreateAccount(r.Context(), name, typ)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to create account")
		return
	}

	h.log.Info().Str("account_id", account.ID).Str("type", string(typ)).Msg("Account created")
	middleware.WriteJSON(w, http.StatusCreated, account)
}

// DeleteAccount handles DELETE /api/accounts/{id}. The account's reports
// are deleted with it.
func (h *AccountsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	ctx := r.Context()
	log := h.log.With().Str("account_id", accountID).Logger()

	data := h.repo.Load(ctx)
	if _, ok := domain.FindAccount(data.Accounts, accountID); !ok {
		writeFailure(w, log, accountNotFound(accountID), "Failed to delete account")
		return
	}
	reports := data.ReportsForAccount(accountID)

	if err := h.repo.DeleteAccount(ctx, accountID); err != nil {
		writeFailure(w, log, err, "Failed to delete account")
		return
	}

	for _, rep := range reports {
		if err := pipeline.RemoveReport(ctx, h.sinks, rep.ID); err != nil {
			log.Warn().Err(err).Str("report_id", rep.ID).Msg("Failed to remove exported report")
		}
	}

	e := events.New(events.AccountDeleted)
	e.AccountID = accountID
	if err := h.publisher.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Msg("Failed to publish account deletion")
	}

	log.Info().Int("reports", len(reports)).Msg("Account deleted")
	w.WriteHeader(http.StatusNoContent)
}
