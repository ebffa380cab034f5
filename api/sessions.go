package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"webterm/session"
)

type sessionSummary struct {
	ID      string `json:"id"`
	Created string `json:"created"`
	Clients int    `json:"clients"`
	Alive   bool   `json:"alive"`
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	summaries := h.registry.List()
	out := make([]sessionSummary, len(summaries))
	for i, s := range summaries {
		out[i] = sessionSummary{
			ID:      s.ID,
			Created: time.Unix(s.Created, 0).UTC().Format(time.RFC3339),
			Clients: s.Clients,
			Alive:   s.Alive,
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// killSession is an explicit admin path, not named by the attach-driven
// creation/removal model: it terminates a session immediately regardless
// of attached clients.
func (h *handler) killSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.Kill(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to kill session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
