package certs_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"webterm/certs"
)

// withFakeOpenSSL puts a script named "openssl" on PATH that just creates
// the files it was asked to write to (-keyout/-out), so Generate's
// file-layout logic can be tested without a real TLS stack.
func withFakeOpenSSL(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake openssl shim is a POSIX shell script")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
out=""
keyout=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-out" ]; then out="$arg"; fi
  if [ "$prev" = "-keyout" ]; then keyout="$arg"; fi
  prev="$arg"
done
[ -n "$out" ] && : > "$out"
[ -n "$keyout" ] && : > "$keyout"
exit 0
`
	path := filepath.Join(dir, "openssl")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake openssl: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestPathsForLayout(t *testing.T) {
	p := certs.PathsFor("/tmp/ssl", "example.com")
	if filepath.Base(p.CACert) != "webterm_ca.crt" {
		t.Fatalf("unexpected CA cert name: %s", p.CACert)
	}
	if filepath.Base(p.ServerCert) != "webterm_example.com.crt" {
		t.Fatalf("unexpected server cert name: %s", p.ServerCert)
	}
}

func TestExistFalseWhenMissing(t *testing.T) {
	p := certs.PathsFor(t.TempDir(), "example.com")
	if p.Exist() {
		t.Fatal("expected Exist() false for a directory with no certs")
	}
}

func TestGenerateCreatesAllFiles(t *testing.T) {
	withFakeOpenSSL(t)
	dir := t.TempDir()

	p, err := certs.Generate(dir, "example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !p.Exist() {
		t.Fatalf("expected all cert files to exist after Generate: %+v", p)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	withFakeOpenSSL(t)
	dir := t.TempDir()

	if _, err := certs.Generate(dir, "example.com"); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	marker := filepath.Join(dir, "webterm_ca.crt")
	if err := os.WriteFile(marker, []byte("untouched"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := certs.Generate(dir, "example.com"); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "untouched" {
		t.Fatal("expected Generate to leave existing CA cert untouched")
	}
}
