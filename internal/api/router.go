// Package api assembles the HTTP server's routes.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/finsight/internal/api/handlers"
	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers served by the router.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Accounts  *handlers.AccountsHandler
	Reports   *handlers.ReportsHandler
	Jobs      *handlers.JobsHandler
	Dashboard *handlers.DashboardHandler
	Cards     *handlers.CardsHandler
	Offers    *handlers.OffersHandler
}

// withID adapts a handler that takes a path id.
func withID(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, chi.URLParam(r, "id"))
	}
}

// NewRouter returns the API routes wrapped in the middleware chain
// Recovery, RequestID, Logger, CORS. Everything under /api except login
// requires a bearer token accepted by validator.
func NewRouter(h Handlers, validator middleware.TokenValidator, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(log), middleware.RequestID, middleware.Logger(log), middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validator))

			r.Get("/accounts", h.Accounts.ListAccounts)
			r.Post("/accounts", h.Accounts.CreateAccount)
			r.Delete("/accounts/{id}", withID(h.Accounts.DeleteAccount))

			r.Get("/reports", h.Reports.ListReports)
			r.Post("/reports", h.Reports.UploadStatement)
			r.Delete("/reports/{id}", withID(h.Reports.DeleteReport))

			r.Get("/jobs", h.Jobs.ListJobs)
			r.Get("/jobs/{id}", withID(h.Jobs.GetJob))

			r.Get("/dashboard", h.Dashboard.Dashboard)
			r.Get("/fees", h.Dashboard.Fees)
			r.Get("/transactions", h.Dashboard.ListTransactions)
			r.Get("/transactions/filters", h.Dashboard.FilterOptions)
			r.Get("/charts/categories", h.Dashboard.CategoryChart)
			r.Get("/charts/trend", h.Dashboard.TrendChart)

			r.Get("/cards", h.Cards.ListCards)
			r.Post("/cards", h.Cards.AddCard)
			r.Get("/cards/search", h.Cards.SearchCards)
			r.Delete("/cards/{id}", withID(h.Cards.DeleteCard))

			r.Get("/offers", h.Offers.ListOffers)
		})
	})

	return r
}
