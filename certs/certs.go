// Package certs manages the self-signed CA and per-host server certificate
// used when the server runs in secure (TLS) mode. Generation shells out to
// the external openssl binary — there is no Go certificate-authoring
// library anywhere in the reference corpus, and the collaborator surface
// names openssl explicitly, so this stays on os/exec rather than reaching
// for crypto/x509 to hand-roll CA signing.
package certs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Paths locates the CA and per-host server cert/key files under dir.
type Paths struct {
	CACert     string
	CAKey      string
	ServerCert string
	ServerKey  string
}

// PathsFor computes the expected file layout for host under dir, matching
// the naming convention of the original implementation.
func PathsFor(dir, host string) Paths {
	return Paths{
		CACert:     filepath.Join(dir, "webterm_ca.crt"),
		CAKey:      filepath.Join(dir, "webterm_ca.key"),
		ServerCert: filepath.Join(dir, fmt.Sprintf("webterm_%s.crt", host)),
		ServerKey:  filepath.Join(dir, fmt.Sprintf("webterm_%s.key", host)),
	}
}

// Exist reports whether every file named by p is present on disk.
func (p Paths) Exist() bool {
	for _, f := range []string{p.CACert, p.CAKey, p.ServerCert, p.ServerKey} {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	return true
}

// Generate creates dir if needed and produces a self-signed CA plus a
// server certificate for host signed by that CA, unless both already
// exist. It is safe to call repeatedly; existing files are left alone.
func Generate(dir, host string) (Paths, error) {
	p := PathsFor(dir, host)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return p, fmt.Errorf("certs: creating %s: %w", dir, err)
	}

	if !fileExists(p.CACert) || !fileExists(p.CAKey) {
		if err := runOpenSSL(
			"req", "-x509", "-newkey", "rsa:2048",
			"-keyout", p.CAKey,
			"-out", p.CACert,
			"-days", "3650",
			"-nodes",
			"-subj", "/C=WW/ST=World Wide/L=Terminal/O=webterm/OU=webterm/CN=webterm CA",
		); err != nil {
			return p, fmt.Errorf("certs: generating CA: %w", err)
		}
		if err := os.Chmod(p.CAKey, 0o600); err != nil {
			return p, fmt.Errorf("certs: chmod CA key: %w", err)
		}
	}

	if fileExists(p.ServerCert) && fileExists(p.ServerKey) {
		return p, nil
	}

	csr := filepath.Join(dir, fmt.Sprintf("webterm_%s.csr", host))
	ext := filepath.Join(dir, fmt.Sprintf("webterm_%s.ext", host))
	defer os.Remove(csr)
	defer os.Remove(ext)
	defer os.Remove(filepath.Join(dir, "webterm_ca.srl"))

	extContent := "subjectAltName=DNS:" + host + "\n" +
		"basicConstraints=CA:FALSE\n" +
		"keyUsage=digitalSignature,keyEncipherment\n" +
		"extendedKeyUsage=serverAuth\n"
	if err := os.WriteFile(ext, []byte(extContent), 0o644); err != nil {
		return p, fmt.Errorf("certs: writing SAN extension file: %w", err)
	}

	if err := runOpenSSL(
		"req", "-newkey", "rsa:2048", "-nodes",
		"-keyout", p.ServerKey,
		"-out", csr,
		"-subj", fmt.Sprintf("/C=WW/ST=World Wide/L=Terminal/O=webterm/OU=webterm/CN=%s", host),
	); err != nil {
		return p, fmt.Errorf("certs: generating server key/CSR: %w", err)
	}

	if err := runOpenSSL(
		"x509", "-req",
		"-in", csr,
		"-CA", p.CACert,
		"-CAkey", p.CAKey,
		"-CAcreateserial",
		"-out", p.ServerCert,
		"-days", "3650",
		"-extfile", ext,
	); err != nil {
		return p, fmt.Errorf("certs: signing server certificate: %w", err)
	}

	if err := os.Chmod(p.ServerKey, 0o600); err != nil {
		return p, fmt.Errorf("certs: chmod server key: %w", err)
	}
	return p, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runOpenSSL(args ...string) error {
	cmd := exec.Command("openssl", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("openssl %v: %w: %s", args[0], err, out)
	}
	return nil
}
