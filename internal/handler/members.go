package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/service"
)

type MemberHandler struct {
	svc *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(members))
}

// Save handles POST /api/members. A body with an id replaces that member.
func (h *MemberHandler) Save(w http.ResponseWriter, r *http.Request) {
	var m model.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, r, apperr.Invalid("body", "invalid JSON: %v", err))
		return
	}
	if err := h.svc.Save(r.Context(), &m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MemberHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
