package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/offers"
	"github.com/rs/zerolog"
)

// offerView is an offer with its "find deal online" link.
type offerView struct {
	domain.BankOffer
	SearchURL string `json:"searchUrl"`
}

// OffersHandler handles GET /api/offers. Each request fetches one page;
// clients keep the accumulated list themselves.
type OffersHandler struct {
	repo    Repository
	fetcher offers.Fetcher
	now     func() time.Time
	log     zerolog.Logger
}

// NewOffersHandler creates a new offers handler. fetcher may be nil, in
// which case the endpoint answers 503.
func NewOffersHandler(repo Repository, fetcher offers.Fetcher, log zerolog.Logger) *OffersHandler {
	return &OffersHandler{repo: repo, fetcher: fetcher, now: time.Now, log: log}
}

// ListOffers handles GET /api/offers?mode=my|all&term=&page=
func (h *OffersHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	if h.fetcher == nil {
		writeFailure(w, h.log, app.ErrAnalysisDisabled, "Offer search is disabled")
		return
	}

	params := r.URL.Query()
	mode, err := offers.ParseMode(params.Get("mode"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page := max(queryInt(r, "page", 1), 1)

	ctx := r.Context()
	var wallet []domain.SavedCard
	if mode == offers.MyOffers {
		wallet = h.repo.SavedCards(ctx)
	}

	term := params.Get("term")
	query, ok := offers.BuildQuery(mode, wallet, term, h.now())
	if !ok {
		middleware.WriteJSON(w, http.StatusOK, offers.Snapshot{
			State:  offers.UnsearchableState(term),
			Page:   page,
			Offers: []domain.BankOffer{},
		})
		return
	}

	found := h.fetcher.FetchBankOffers(ctx, query, page)
	state := offers.StateResults
	if len(found) == 0 {
		state = offers.StateNoResults
	}

	views := make([]offerView, 0, len(found))
	for _, o := range found {
		views = append(views, offerView{BankOffer: o, SearchURL: offers.SearchURL(o)})
	}

	h.log.Debug().Str("mode", string(mode)).Int("page", page).Int("offers", len(found)).Msg("Offers fetched")
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"state":  state,
		"query":  query,
		"page":   page,
		"offers": views,
	})
}
