package session

import (
	"testing"
	"time"
)

func newTestRegistry() *Registry {
	return NewRegistry(Options{
		Shell:         "",
		HistoryCap:    0,
		LogEnabled:    false,
		SpawnOverride: MockSpawnPTY,
	})
}

func TestResolveOrCreateWithoutIDGeneratesOne(t *testing.T) {
	r := newTestRegistry()
	ts, created, err := r.ResolveOrCreate("", CreateParams{})
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a fresh id")
	}
	if ts.ID() == "" {
		t.Fatal("expected a generated id")
	}
}

func TestResolveOrCreateReusesExisting(t *testing.T) {
	r := newTestRegistry()
	first, created, err := r.ResolveOrCreate("fixed-id", CreateParams{Command: "first"})
	if err != nil || !created {
		t.Fatalf("first ResolveOrCreate: created=%v err=%v", created, err)
	}

	second, created, err := r.ResolveOrCreate("fixed-id", CreateParams{Command: "ignored"})
	if err != nil {
		t.Fatalf("second ResolveOrCreate: %v", err)
	}
	if created {
		t.Fatal("expected created=false when attaching to an existing id")
	}
	if second != first {
		t.Fatal("expected the same *TerminalSession for a repeated id")
	}
	if second.Command() != "first" {
		t.Fatalf("expected command fixed at creation, got %q", second.Command())
	}
}

func TestResolveOrCreateSpawnFailureIsNotInserted(t *testing.T) {
	r := newTestRegistry()
	r.spawn = func(id string, params SpawnParams, onOutput func([]byte), onExit func()) (*PtyProcess, error) {
		return nil, ErrSpawnFailed
	}

	_, _, err := r.ResolveOrCreate("", CreateParams{})
	if err != ErrSpawnFailed {
		t.Fatalf("expected ErrSpawnFailed, got %v", err)
	}
	if len(r.List()) != 0 {
		t.Fatalf("expected no session registered after spawn failure, got %d", len(r.List()))
	}
}

func TestGetUnknownID(t *testing.T) {
	r := newTestRegistry()
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected Get to report not found")
	}
}

func TestListReflectsClientCount(t *testing.T) {
	r := newTestRegistry()
	ts, _, err := r.ResolveOrCreate("", CreateParams{})
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	a := ts.Attach()
	defer ts.Detach(a)

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list))
	}
	if list[0].Clients != 1 {
		t.Fatalf("expected 1 client, got %d", list[0].Clients)
	}
	if !list[0].Alive {
		t.Fatal("expected a freshly created session to be alive")
	}
}

func TestKillRemovesSessionImmediately(t *testing.T) {
	r := newTestRegistry()
	ts, _, err := r.ResolveOrCreate("", CreateParams{})
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	a := ts.Attach() // a client stays attached — Kill must remove it anyway.
	defer ts.Detach(a)

	if err := r.Kill(ts.ID()); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	if _, ok := r.Get(ts.ID()); ok {
		t.Fatal("expected session removed from registry immediately after Kill")
	}

	select {
	case <-ts.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected Kill to terminate the underlying PTY")
	}
}

func TestKillUnknownIDReturnsErrNotFound(t *testing.T) {
	r := newTestRegistry()
	if err := r.Kill("missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOnDrainedRemovesSessionFromRegistry(t *testing.T) {
	r := newTestRegistry()
	ts, _, err := r.ResolveOrCreate("", CreateParams{})
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	ts.Terminate()
	select {
	case <-ts.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for exit")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := r.Get(ts.ID()); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected registry to drop the session once it drained")
}
