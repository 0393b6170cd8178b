package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/app"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/events"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/rs/zerolog"
)

// MaxUploadBytes limits the size of an uploaded statement.
const MaxUploadBytes = 20 << 20

var pdfMagic = []byte("%PDF-")

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	repo            Repository
	publisher       jobs.Publisher
	sinks           []pipeline.ReportSink
	events          events.Publisher
	analysisEnabled bool
	log             zerolog.Logger
}

// NewReportsHandler creates a new reports handler. Uploads are rejected
// with 503 unless analysisEnabled is set.
func NewReportsHandler(repo Repository, publisher jobs.Publisher, sinks []pipeline.ReportSink, ev events.Publisher, analysisEnabled bool, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		repo:            repo,
		publisher:       publisher,
		sinks:           sinks,
		events:          ev,
		analysisEnabled: analysisEnabled,
		log:             log,
	}
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports := h.repo.Reports(r.Context(), r.URL.Query().Get("account"))
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

// UploadStatement handles POST /api/reports. The multipart form carries
// the PDF in "file" and the target account in "accountId"; analysis runs
// as a background job.
func (h *ReportsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	if !h.analysisEnabled {
		writeFailure(w, h.log, app.ErrAnalysisDisabled, "Statement analysis is disabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	accountID := r.FormValue("accountId")
	if accountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "accountId is required")
		return
	}
	log := h.log.With().Str("account_id", accountID).Logger()

	ctx := r.Context()
	if _, ok := domain.FindAccount(h.repo.Accounts(ctx), accountID); !ok {
		writeFailure(w, log, accountNotFound(accountID), "Failed to upload statement")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		middleware.WriteError(w, http.StatusBadRequest, "file is not a PDF")
		return
	}

	job := &jobs.AnalyzeStatementJob{
		AccountID: accountID,
		FileName:  filepath.Base(header.Filename),
		PDF:       pdf,
	}
	if err := h.publisher.PublishAnalyzeStatement(ctx, job); err != nil {
		writeFailure(w, log, err, "Failed to enqueue analysis job")
		return
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("file_name", job.FileName).
		Int("bytes", len(pdf)).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"jobId":  job.JobID,
		"status": string(job.Status),
	})
}

// DeleteReport handles DELETE /api/reports/{id}
func (h *ReportsHandler) DeleteReport(w http.ResponseWriter, r *http.Request, reportID string) {
	ctx := r.Context()
	log := h.log.With().Str("report_id", reportID).Logger()

	var report *domain.SavedReport
	for _, rep := range h.repo.Reports(ctx, "") {
		if rep.ID == reportID {
			report = &rep
			break
		}
	}
	if report == nil {
		middleware.WriteError(w, http.StatusNotFound, "report not found")
		return
	}

	if err := h.repo.DeleteReport(ctx, reportID); err != nil {
		writeFailure(w, log, err, "Failed to delete report")
		return
	}

	if err := pipeline.RemoveReport(ctx, h.sinks, reportID); err != nil {
		log.Warn().Err(err).Msg("Failed to remove exported report")
	}

	e := events.New(events.ReportDeleted)
	e.AccountID = report.AccountID
	e.ReportID = reportID
	e.FileName = report.FileName
	if err := h.events.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Msg("Failed to publish report deletion")
	}

	log.Info().Msg("Report deleted")
	w.WriteHeader(http.StatusNoContent)
}
