// Command webterm hosts PTY-backed terminal sessions and bridges them to
// browser clients over WebSocket.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sirupsen/logrus"

	"webterm/api"
	"webterm/certs"
	"webterm/config"
	"webterm/motd"
	"webterm/preset"
	"webterm/session"
	"webterm/theme"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webterm",
		Short: "Serve browser-attached terminal sessions over WebSocket",
		RunE:  runServer,
	}

	flags := cmd.Flags()
	flags.String("host", "", "address to listen on (default 0.0.0.0)")
	flags.Int("port", 0, "port to listen on (default 57575)")
	flags.String("shell", "", "shell to launch for new sessions (default /bin/sh)")
	flags.String("cmd", "", "command to run instead of the shell")
	flags.Int("default-cols", 0, "default terminal width")
	flags.Int("default-rows", 0, "default terminal height")
	flags.Int("history-size", 0, "bytes of scrollback retained per session")
	flags.String("theme", "", "default terminal color theme")
	flags.String("motd", "", `MOTD banner: "builtin", "none", or a file path`)
	flags.Bool("log-enabled", true, "write script(1)-compatible session logs")
	flags.String("log-dir", "", "directory for session logs")
	flags.Bool("unsecure", false, "serve plain HTTP instead of HTTPS")
	flags.String("cert-dir", "", "directory holding (or to generate) the TLS CA and server certificate")
	flags.String("uri-root-path", "", "path prefix the server is mounted under behind a reverse proxy")
	flags.Bool("generate-certs", false, "generate the self-signed CA and server certificate, then exit")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.New(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, ok := theme.Get(cfg.Theme); !ok {
		logrus.WithField("theme", cfg.Theme).Warn("unknown theme, falling back to default")
		cfg.Theme = theme.DefaultName
	}

	listenAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	certDir := cfg.CertDir
	if certDir == "" {
		certDir = "certs"
	}
	cfg.CertDir = certDir

	generateOnly, _ := cmd.Flags().GetBool("generate-certs")
	if generateOnly {
		if _, err := certs.Generate(certDir, cfg.Host); err != nil {
			return fmt.Errorf("generating TLS certificate: %w", err)
		}
		logrus.WithField("dir", certDir).Info("certificates generated")
		return nil
	}

	if !cfg.Unsecure {
		p := certs.PathsFor(certDir, cfg.Host)
		if !p.Exist() {
			return fmt.Errorf("secure mode requires a certificate in %s; run with --generate-certs first or pass --unsecure", certDir)
		}
	}

	presetFile := os.Getenv("WEBTERM_PRESET_FILE")
	if presetFile == "" {
		presetFile = "presets.json"
	}
	pm, err := preset.NewManager(presetFile)
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}

	shell := cfg.Shell
	if cfg.Cmd != "" {
		shell = cfg.Cmd
	}
	registry := session.NewRegistry(session.Options{
		Shell:      shell,
		HistoryCap: cfg.HistorySize,
		LogDir:     cfg.LogDir,
		LogEnabled: cfg.LogEnabled,
	})

	apiCfg := api.Config{
		MotdSource:  motd.Parse(cfg.MotdArt),
		ListenAddr:  listenAddr,
		Secure:      !cfg.Unsecure,
		DefaultCols: cfg.DefaultCols,
		DefaultRows: cfg.DefaultRows,
	}

	var router http.Handler = api.RegisterRoutes(registry, pm, staticFiles, apiCfg)
	if prefix := strings.TrimRight(cfg.URIRootPath, "/"); prefix != "" {
		router = http.StripPrefix(prefix, router)
	}

	logrus.WithFields(logrus.Fields{
		"addr":   listenAddr,
		"secure": apiCfg.Secure,
	}).Info("webterm listening")

	if cfg.Unsecure {
		return http.ListenAndServe(listenAddr, router)
	}

	p := certs.PathsFor(cfg.CertDir, cfg.Host)
	return http.ListenAndServeTLS(listenAddr, p.ServerCert, p.ServerKey, router)
}
