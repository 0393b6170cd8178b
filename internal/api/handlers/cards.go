package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/cards"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/rs/zerolog"
)

// CardSearcher finds card models. It is satisfied by offers.CardCatalog.
type CardSearcher interface {
	Search(ctx context.Context, query string) []domain.CardCandidate
}

// CardsHandler handles wallet endpoints.
type CardsHandler struct {
	repo    Repository
	catalog CardSearcher
	log     zerolog.Logger
}

// NewCardsHandler creates a new cards handler. catalog may be nil, in
// which case card search answers 503.
func NewCardsHandler(repo Repository, catalog CardSearcher, log zerolog.Logger) *CardsHandler {
	return &CardsHandler{repo: repo, catalog: catalog, log: log}
}

// ListCards handles GET /api/cards
func (h *CardsHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	saved := h.repo.SavedCards(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"cards": saved,
		"count": len(saved),
	})
}

// AddCard handles POST /api/cards. The body carries either a full card
// number or a candidate picked from card search.
func (h *CardsHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number    string                `json:"number"`
		Candidate *domain.CardCandidate `json:"candidate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var card domain.SavedCard
	switch {
	case req.Number != "" && req.Candidate != nil:
		middleware.WriteError(w, http.StatusBadRequest, "send either number or candidate, not both")
		return
	case req.Number != "":
		c, err := cards.FromNumber(req.Number)
		if err != nil {
			writeFailure(w, h.log, err, "Failed to add card")
			return
		}
		card = c
	case req.Candidate != nil:
		if strings.TrimSpace(req.Candidate.Name) == "" {
			middleware.WriteError(w, http.StatusBadRequest, "candidate name is required")
			return
		}
		card = cards.FromCandidate(*req.Candidate)
	default:
		middleware.WriteError(w, http.StatusBadRequest, "number or candidate is required")
		return
	}

	saved, err := h.repo.SaveCard(r.Context(), card)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to add card")
		return
	}

	h.log.Info().Str("card_id", saved.ID).Str("bank", saved.BankName).Msg("Card added")
	middleware.WriteJSON(w, http.StatusCreated, saved)
}

// DeleteCard handles DELETE /api/cards/{id}
func (h *CardsHandler) DeleteCard(w http.ResponseWriter, r *http.Request, cardID string) {
	if err := h.repo.DeleteCard(r.Context(), cardID); err != nil {
		writeFailure(w, h.log.With().Str("card_id", cardID).Logger(), err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchCards handles GET /api/cards/search?q=
func (h *CardsHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeFailure(w, h.log, app.ErrAnalysisDisabled, "Card search is disabled")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		middleware.WriteError(w, http.StatusBadRequest, "q is required")
		return
	}

	results := h.catalog.Search(r.Context(), q)
	if results == nil {
		results = []domain.CardCandidate{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
