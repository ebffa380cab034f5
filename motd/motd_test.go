package motd_test

import (
	"bytes"
	"testing"

	"webterm/motd"
)

func TestParseKinds(t *testing.T) {
	cases := map[string]string{
		"":        "builtin",
		"builtin": "builtin",
		"none":    "none",
		"/tmp/x":  "file",
	}
	for input, want := range cases {
		if got := motd.Parse(input).Kind; got != want {
			t.Fatalf("Parse(%q).Kind = %q, want %q", input, got, want)
		}
	}
}

func TestRenderNoneReturnsNil(t *testing.T) {
	if out := motd.Render(motd.Parse("none"), "", "0.0.0.0:8080", true); out != nil {
		t.Fatalf("expected nil, got %q", out)
	}
}

func TestRenderBuiltinContainsConnectionInfo(t *testing.T) {
	out := motd.Render(motd.Parse("builtin"), "127.0.0.1:9001", "0.0.0.0:8080", true)
	if !bytes.Contains(out, []byte("Listening on")) {
		t.Fatalf("expected banner to mention listening address, got %q", out)
	}
	if !bytes.Contains(out, []byte("127.0.0.1:9001")) {
		t.Fatalf("expected banner to mention remote addr, got %q", out)
	}
}

func TestRenderUnsecureWarns(t *testing.T) {
	out := motd.Render(motd.Parse("builtin"), "", "0.0.0.0:8080", false)
	if !bytes.Contains(out, []byte("UNSECURE")) {
		t.Fatalf("expected unsecure warning, got %q", out)
	}
}

func TestRenderMissingFileFallsBackToBuiltin(t *testing.T) {
	out := motd.Render(motd.Parse("/no/such/file"), "", "0.0.0.0:8080", true)
	if len(out) == 0 {
		t.Fatal("expected non-empty fallback banner")
	}
}
