// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dvloznov/finsight/internal/ai"
	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/auth"
	"github.com/dvloznov/finsight/internal/cards"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/store"
	"github.com/rs/zerolog"
)

// Repository is the part of the store the handlers use.
type Repository interface {
	Load(ctx context.Context) *domain.AppData
	Accounts(ctx context.Context) []domain.Account
	Reports(ctx context.Context, accountID string) []domain.SavedReport
	SavedCards(ctx context.Context) []domain.SavedCard
	CreateAccount(ctx context.Context, name string, typ domain.AccountType) (domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	DeleteReport(ctx context.Context, id string) error
	SaveCard(ctx context.Context, card domain.SavedCard) (domain.SavedCard, error)
	DeleteCard(ctx context.Context, id string) error
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ai.ErrAnalysisFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrAnalysisDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, cards.ErrCardNumberTooShort):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure logs err and writes it with the mapped status. Server
// errors are reported to the client as msg only.
func writeFailure(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	log.Warn().Err(err).Int("status", status).Msg(msg)
	middleware.WriteError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func accountNotFound(id string) error {
	return fmt.Errorf("account %q: %w", id, store.ErrNotFound)
}

// queryInt reads a non-negative integer query parameter, returning def
// when it is absent or invalid.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		writeFailure(w, h.log.With().Str("job_id", jobID).Logger(), err, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		AccountID: query.Get("account"),
		Limit:     queryInt(r, "limit", 0),
		Offset:    queryInt(r, "offset", 0),
	}

	if s := query.Get("status"); s != "" {
		status, ok := jobs.ParseJobStatus(s)
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown job status %q", s))
			return
		}
		filter.Status = status
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		writeFailure(w, h.log, err, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
