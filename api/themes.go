package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"webterm/theme"
)

func (h *handler) listThemes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"themes": theme.Names()})
}

func (h *handler) getTheme(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	colors, ok := theme.Get(name)
	if !ok {
		http.Error(w, "unknown theme", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(colors)
}
