package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/ai"
	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/export"
	"github.com/f880guardian/audit-engine/pkg/store"
)

// RecordsHandler serves the completed-record collection: history and
// dashboard data, record detail, AI analysis generation, and CSV export.
type RecordsHandler struct {
	store           *store.RecordStore
	advisor         *ai.Advisor
	catalog         *catalog.Catalog
	defaultFacility string
	logger          *zap.Logger
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(
	recordStore *store.RecordStore,
	advisor *ai.Advisor,
	cat *catalog.Catalog,
	defaultFacility string,
	logger *zap.Logger,
) *RecordsHandler {
	return &RecordsHandler{
		store:           recordStore,
		advisor:         advisor,
		catalog:         cat,
		defaultFacility: defaultFacility,
		logger:          logger.Named("records-handler"),
	}
}

// RegisterRoutes registers the records routes on the given mux.
func (h *RecordsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.Catalog)
	mux.HandleFunc("GET /api/records", h.List)
	mux.HandleFunc("GET /api/records/{id}", h.Get)
	mux.HandleFunc("POST /api/records/{id}/analysis", h.GenerateAnalysis)
	mux.HandleFunc("GET /api/export.csv", h.ExportCSV)
}

// Catalog handles GET /api/catalog: the question catalog grouped in order.
func (h *RecordsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"categories": h.catalog.Categories(),
		"questions":  h.catalog.Questions(),
	}
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode catalog response", zap.Error(err))
	}
}

// List handles GET /api/records?facility=... and returns completed records,
// newest first. An absent facility falls back to the configured default; an
// explicit empty facility (facility=) selects all.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	facility := h.defaultFacility
	if r.URL.Query().Has("facility") {
		facility = r.URL.Query().Get("facility")
	}

	records := h.store.Records(facility)
	if err := WriteJSON(w, http.StatusOK, records); err != nil {
		h.logger.Error("Failed to encode records response", zap.Error(err))
	}
}

// Get handles GET /api/records/{id}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "audit record not found")
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load record")
		return
	}
	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode record response", zap.Error(err))
	}
}

// GenerateAnalysis handles POST /api/records/{id}/analysis: generates the
// QAPI summary for the record and attaches it. AI unavailability is not an
// error here; the advisor substitutes a placeholder and the record still
// gets updated, matching the fail-soft policy of the AI boundary.
func (h *RecordsHandler) GenerateAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "audit record not found")
			return
		}
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load record")
		return
	}

	summary := h.advisor.Summarize(r.Context(), record, h.catalog)

	if err := h.store.UpdateAnalysis(r.Context(), id, summary); err != nil {
		h.logger.Error("Failed to attach analysis",
			zap.String("record_id", id),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to store analysis")
		return
	}

	record.AIAnalysis = summary
	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}

// ExportCSV handles GET /api/export.csv: the full collection as a CSV
// download for spreadsheet import.
func (h *RecordsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data := export.CSV(h.store.Records(""))

	filename := fmt.Sprintf("F880_Surveillance_Export_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv;charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write CSV export", zap.Error(err))
	}
}
