package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"webterm/motd"
	"webterm/preset"
	"webterm/session"
)

// Config configures the HTTP surface beyond the raw registry/presets —
// the MOTD source and the address the server advertises in its banner.
type Config struct {
	MotdSource  motd.Source
	ListenAddr  string
	Secure      bool
	DefaultCols int
	DefaultRows int
}

func RegisterRoutes(registry *session.Registry, pm *preset.Manager, staticFS fs.FS, cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{registry: registry, presetManager: pm, cfg: cfg}

	// REST API
	r.Get("/api/sessions", h.listSessions)
	r.Delete("/api/sessions/{id}", h.killSession)

	// Themes
	r.Get("/api/themes", h.listThemes)
	r.Get("/api/themes/{name}", h.getTheme)

	// WebSocket attach: no id creates a session, an id attaches to one.
	r.Get("/ws", h.handleWS)
	r.Get("/ws/{id}", h.handleWS)

	// Presets API
	r.Get("/api/presets", h.getPresets)
	r.Put("/api/presets", h.putPresets)
	r.Post("/api/presets/{id}/use", h.usePreset)
	r.Post("/api/sessions/{id}/presets/{presetId}/dispatch", h.dispatchPreset)

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// If staticFS is instead already rooted at the asset directory, Sub
	// still returns a wrapper (no error) but the sub-FS would look for a
	// static/ directory that doesn't exist. Probe index.html to detect this.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Serve HTML pages by reading from the FS directly.
	// Using http.FileServer with r.URL.Path ending in "index.html" triggers
	// Go's built-in redirect to "./" — avoid that by reading the file manually.
	r.Get("/", serveFile(staticSub, "index.html"))
	r.Get("/session/{id}", serveFile(staticSub, "session.html"))

	// Static assets — use standard file server
	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/vendor/*", fileServer.ServeHTTP)
	r.Get("/css/*", fileServer.ServeHTTP)
	r.Get("/js/*", fileServer.ServeHTTP)

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	registry      *session.Registry
	presetManager *preset.Manager
	cfg           Config
}
