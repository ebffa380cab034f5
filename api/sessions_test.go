package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"webterm/api"
	"webterm/motd"
	"webterm/preset"
	"webterm/session"
)

// newTestPresetManager creates an in-memory preset manager backed by a temp file.
func newTestPresetManager(t *testing.T) *preset.Manager {
	t.Helper()
	dir := t.TempDir()
	pm, err := preset.NewManager(dir + "/presets.json")
	if err != nil {
		t.Fatalf("newTestPresetManager: %v", err)
	}
	return pm
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := session.NewRegistry(session.Options{
		Shell:         "/bin/sh",
		HistoryCap:    4096,
		LogEnabled:    false,
		SpawnOverride: session.MockSpawnPTY,
	})
	pm := newTestPresetManager(t)
	staticFS := fstest.MapFS{
		"static/index.html":   {Data: []byte("<html></html>")},
		"static/session.html": {Data: []byte("<html></html>")},
	}
	cfg := api.Config{MotdSource: motd.Parse("none"), ListenAddr: "127.0.0.1:0", Secure: false}
	return httptest.NewServer(api.RegisterRoutes(registry, pm, staticFS, cfg))
}

func TestListSessionsEmpty(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("expected json content-type, got %q", ct)
	}
	var sessions []interface{}
	json.NewDecoder(resp.Body).Decode(&sessions)
	if len(sessions) != 0 {
		t.Fatalf("expected 0 sessions, got %d", len(sessions))
	}
}

func TestKillSessionNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/nonexistent", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListSessionsAfterAttach(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	conn1 := dialWS(t, wsURL(srv.URL))
	defer conn1.Close()
	conn2 := dialWS(t, wsURL(srv.URL))
	defer conn2.Close()

	readSessionID(t, conn1)
	readSessionID(t, conn2)

	resp, err := http.Get(srv.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions: %v", err)
	}
	defer resp.Body.Close()
	var sessions []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestKillSessionThenListEmpty(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	conn := dialWS(t, wsURL(srv.URL))
	defer conn.Close()
	id := readSessionID(t, conn)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/sessions/"+id, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", delResp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions: %v", err)
	}
	defer resp.Body.Close()
	var sessions []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected 0 sessions after kill, got %d", len(sessions))
	}
}
