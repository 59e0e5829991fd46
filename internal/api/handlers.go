/**
 * @description
 * This file contains the HTTP handler functions for the finance service.
 * Handlers parse incoming requests, call the batch coordinator or the
 * finance service, and write the HTTP response.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rentfolio/finance-service/internal/app"
	"github.com/rentfolio/finance-service/internal/calc"
	"github.com/rentfolio/finance-service/internal/domain"
	"github.com/rentfolio/finance-service/internal/store"
)

// BatchRunner is the coordinator surface the handlers need.
type BatchRunner interface {
	RunDailyBatch(ctx context.Context, asOf time.Time, force bool) *domain.BatchRunReport
	LastReport() *domain.BatchRunReport
}

// FinanceService is the service surface the handlers need.
type FinanceService interface {
	GenerateSchedule(ctx context.Context, contractID uuid.UUID) (*app.ScheduleResult, error)
	PropertyProfitability(ctx context.Context, propertyID uuid.UUID, periodMonths int) (*calc.PropertyStats, error)
}

// Handler holds the application components that handlers interact with.
type Handler struct {
	runner  BatchRunner
	service FinanceService
}

// NewHandler creates a new Handler.
func NewHandler(runner BatchRunner, service FinanceService) *Handler {
	return &Handler{runner: runner, service: service}
}

// runBatchRequest is the optional body of the batch trigger endpoint.
type runBatchRequest struct {
	ReferenceDate  string `json:"reference_date,omitempty"`
	ForceExecution bool   `json:"force_execution,omitempty"`
}

// batchSummary is the trimmed view of a run report returned over HTTP.
type batchSummary struct {
	RunDate              string   `json:"run_date"`
	AlreadyRun           bool     `json:"already_run"`
	ObligationsProcessed int      `json:"obligations_processed"`
	ObligationsOverdue   int      `json:"obligations_became_overdue"`
	NotificationsCreated int      `json:"notifications_created"`
	NotificationsSent    int      `json:"notifications_sent"`
	ItemErrors           int      `json:"item_errors"`
	NotificationErrors   int      `json:"notification_errors"`
	CriticalErrors       []string `json:"critical_errors,omitempty"`
	TotalDurationMs      int64    `json:"total_duration_ms"`
	OverallSuccess       bool     `json:"overall_success"`
}

func summarize(report *domain.BatchRunReport) batchSummary {
	return batchSummary{
		RunDate:              report.RunDate.Format("2006-01-02"),
		AlreadyRun:           report.AlreadyRun,
		ObligationsProcessed: report.ObligationsProcessed,
		ObligationsOverdue:   report.ObligationsOverdue,
		NotificationsCreated: report.NotificationsCreated,
		NotificationsSent:    report.NotificationsSent,
		ItemErrors:           len(report.ItemErrors),
		NotificationErrors:   len(report.NotificationErrors),
		CriticalErrors:       report.CriticalErrors,
		TotalDurationMs:      report.TotalDurationMs,
		OverallSuccess:       report.OverallSuccess,
	}
}

// handleRunBatch triggers a daily batch run. The body may override the
// reference date or force a rerun for a day that already completed.
func (h *Handler) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var req runBatchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	asOf := time.Now().UTC()
	if req.ReferenceDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReferenceDate)
		if err != nil {
			http.Error(w, "reference_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}

	report := h.runner.RunDailyBatch(r.Context(), asOf, req.ForceExecution)

	status := http.StatusOK
	if len(report.CriticalErrors) > 0 {
		status = http.StatusInternalServerError
	}
	respondWithJSON(w, status, summarize(report))
}

// handleLastRun returns the key metrics of the most recent batch run.
func (h *Handler) handleLastRun(w http.ResponseWriter, r *http.Request) {
	report := h.runner.LastReport()
	if report == nil {
		http.Error(w, "no batch run recorded yet", http.StatusNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, summarize(report))
}

// handleGenerateSchedule generates and persists the payment schedule for a
// contract.
func (h *Handler) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid contract id", http.StatusBadRequest)
		return
	}

	result, err := h.service.GenerateSchedule(r.Context(), contractID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// handlePropertyProfitability returns trailing profitability statistics for
// a property. The period defaults to 12 months.
func (h *Handler) handlePropertyProfitability(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid property id", http.StatusBadRequest)
		return
	}

	months := 12
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "months must be a positive integer", http.StatusBadRequest)
			return
		}
		months = parsed
	}

	stats, err := h.service.PropertyProfitability(r.Context(), propertyID, months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *calc.ValidationError
	switch {
	case errors.Is(err, store.ErrContractNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &vErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
