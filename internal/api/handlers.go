package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/timeledger/internal/apperr"
	"github.com/nordvik/timeledger/internal/ledger"
	"github.com/nordvik/timeledger/internal/timeservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *timeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *timeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetLedger handles GET /ledger.
func (h *Handler) GetLedger(w http.ResponseWriter, _ *http.Request) {
	snap := h.svc.Snapshot()
	writeJSON(w, http.StatusOK, LedgerResponse{Ledger: snap.Ledger, Seq: snap.Seq})
}

// GetCalendar handles GET /ledger/{key}/calendar?year=&month=.
// The key is an identity key as returned in the ledger; an unknown key
// yields an empty grid so the view can still render the month shape.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'year' is required"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'month' must be 1-12"))
		return
	}

	el := h.svc.Snapshot().Ledger[key]
	writeJSON(w, http.StatusOK, CalendarResponse{
		Cells:      ledger.MonthGrid(el, year, time.Month(month)),
		MonthTotal: ledger.MonthTotal(el, year, time.Month(month)),
	})
}

// ListEmployees handles GET /employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"employees": h.svc.Snapshot().Employees})
}

// ListProjects handles GET /projects. Projects are returned normalized.
func (h *Handler) ListProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"projects": h.svc.Snapshot().Projects})
}

// AddEntry handles POST /entries.
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := h.svc.AddEntry(r.Context(), req.EmployeeID, req.ProjectID, req.Date, req.Hours)
	if err != nil {
		h.writeMutationError(w, "add entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateEntry handles PUT /entries/{id}.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rec, err := h.svc.UpdateEntry(r.Context(), id, req.ProjectID, req.Hours)
	if err != nil {
		h.writeMutationError(w, "update entry", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteEntry handles DELETE /entries/{id}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteEntry(r.Context(), id); err != nil {
		h.writeMutationError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustEntry handles POST /entries/{id}/adjust.
func (h *Handler) AdjustEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req AdjustEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	entry, err := h.svc.FindEntry(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("entry not found"))
		return
	}
	rec, err := h.svc.QuickAdjust(r.Context(), entry, req.Delta)
	if err != nil {
		h.writeMutationError(w, "adjust entry", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// writeMutationError maps gateway errors to HTTP statuses. Validation
// failures are the caller's fault; anything else is a store failure and the
// snapshot is left at its last reloaded state.
func (h *Handler) writeMutationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	}
}
