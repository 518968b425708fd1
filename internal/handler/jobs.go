package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/repo"
)

// Trigger starts a named scheduled task outside its schedule.
type Trigger interface {
	RunNow(name string) error
}

type JobHandler struct {
	trigger Trigger
	cards   repo.Cards
}

func NewJobHandler(trigger Trigger, cards repo.Cards) *JobHandler {
	return &JobHandler{trigger: trigger, cards: cards}
}

// Trigger handles POST /api/jobs/{name}. The job runs in the background.
func (h *JobHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.trigger.RunNow(name); err != nil {
		writeError(w, r, apperr.Invalid("name", "%v", err))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job": name, "status": "started"})
}

// ListCards handles GET /api/cards?type=&owner_id=.
func (h *JobHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cards, err := h.cards.List(r.Context(), model.CardType(q.Get("type")), q.Get("owner_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cards))
}
