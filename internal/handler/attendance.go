package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/policy"
	"report-bot/internal/service"
)

type RecordHandler struct {
	svc *service.RecordService
}

func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Submit handles POST /api/records.
func (h *RecordHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub policy.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, r, apperr.Invalid("body", "invalid JSON: %v", err))
		return
	}
	rec, err := h.svc.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// SubmitTasks handles POST /api/records/tasks.
func (h *RecordHandler) SubmitTasks(w http.ResponseWriter, r *http.Request) {
	var rep policy.TaskReport
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		writeError(w, r, apperr.Invalid("body", "invalid JSON: %v", err))
		return
	}
	rows, err := h.svc.SubmitTasks(r.Context(), rep)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rows)
}

// ListToday handles GET /api/records/today?category=&status=.
func (h *RecordHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.RecordFilter{
		Category: model.Category(q.Get("category")),
		Status:   model.RecordStatus(q.Get("status")),
	}
	recs, err := h.svc.ListToday(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

// ListByOwners handles GET /api/records?owner_ids=a,b.
func (h *RecordHandler) ListByOwners(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("owner_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	recs, err := h.svc.ListByOwners(r.Context(), ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

// ListStale handles GET /api/records/stale?days=N.
func (h *RecordHandler) ListStale(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, r, apperr.Invalid("days", "must be an integer"))
		return
	}
	recs, err := h.svc.ListOlderThan(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
