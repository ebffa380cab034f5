package session

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by Kill for an id with no matching session.
var ErrNotFound = errors.New("session not found")

// Registry is the process-wide name service and lifetime arbiter for
// sessions: it creates on demand, looks up existing sessions, enumerates
// them for listing, and removes entries once they drain.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*TerminalSession

	shell      string
	historyCap int
	logDir     string
	logEnabled bool
	spawn      spawnFn
}

// Options configures a Registry's defaults for sessions it creates.
type Options struct {
	Shell         string
	HistoryCap    int
	LogDir        string
	LogEnabled    bool
	SpawnOverride spawnFn // nil → spawnPTY; tests pass MockSpawnPTY
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts Options) *Registry {
	spawn := opts.SpawnOverride
	if spawn == nil {
		spawn = spawnPTY
	}
	return &Registry{
		sessions:   make(map[string]*TerminalSession),
		shell:      opts.Shell,
		historyCap: opts.HistoryCap,
		logDir:     opts.LogDir,
		logEnabled: opts.LogEnabled,
		spawn:      spawn,
	}
}

// ResolveOrCreate looks up requestedID if non-empty; if it resolves, the
// existing session is returned and params are ignored (command is fixed
// at creation — spec §9 Open Question 3). Otherwise a fresh id is
// generated (or requestedID is reused verbatim if the caller supplied one
// that doesn't yet exist) and a new session is created and spawned.
//
// The lookup, spawn, and insert all happen under a single r.mu.Lock() —
// one writer per key, per spec §3 — so two concurrent callers racing on
// the same not-yet-existing id can never both spawn a PTY for it; the
// second caller blocks until the first has inserted, then resolves to
// the session the first one created instead of spawning its own.
//
// On spawn failure the session is never inserted into the registry; the
// caller is expected to notify the initiating client directly (spec
// §4.4's "jumps straight to Drained" — there is nothing here to drain).
func (r *Registry) ResolveOrCreate(requestedID string, params CreateParams) (*TerminalSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requestedID != "" {
		if existing, ok := r.sessions[requestedID]; ok {
			return existing, false, nil
		}
	}

	id := requestedID
	if id == "" {
		id = newSessionID()
	}

	t, err := newTerminalSession(id, params, r.shell, r.historyCap, r.logDir, r.logEnabled, r.spawn, r.onDrained)
	if err != nil {
		return nil, false, err
	}

	r.sessions[id] = t
	return t, true, nil
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*TerminalSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.sessions[id]
	return t, ok
}

// Summary is one row of Registry.List.
type Summary struct {
	ID      string
	Created int64 // unix seconds
	Clients int
	Alive   bool
}

// List returns a snapshot of all sessions ordered by creation time
// ascending.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	sessions := make([]*TerminalSession, 0, len(r.sessions))
	for _, t := range r.sessions {
		sessions = append(sessions, t)
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt().Before(sessions[j].CreatedAt())
	})

	out := make([]Summary, 0, len(sessions))
	for _, t := range sessions {
		out = append(out, Summary{
			ID:      t.ID(),
			Created: t.CreatedAt().Unix(),
			Clients: t.ClientCount(),
			Alive:   t.IsAlive(),
		})
	}
	return out
}

// Kill terminates and removes a session immediately, for the explicit
// admin-facing DELETE endpoint. Normal lifecycle removal instead flows
// through onDrained once a session exits and its last client detaches.
func (r *Registry) Kill(id string) error {
	r.mu.Lock()
	t, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	t.Terminate()
	return nil
}

// onDrained removes a session once it has reached the Drained state
// (Exited with zero clients). Safe to call more than once for the same
// id — the second call is a no-op.
func (r *Registry) onDrained(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
