// Package config binds webterm's environment-variable and flag surface
// through viper, mirroring the env_prefix-based settings object of the
// original implementation (there: BUTTERFLY_*; here: WEBTERM_*).
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings is the full set of runtime-configurable values, bindable from
// flags, environment variables (WEBTERM_*), or their defaults, in that
// order of precedence.
type Settings struct {
	Host string
	Port int

	Shell string
	Cmd   string

	DefaultCols int
	DefaultRows int
	HistorySize int

	Theme   string
	MotdArt string

	LogEnabled bool
	LogDir     string

	Unsecure bool
	CertDir  string

	URIRootPath string
}

// New binds defaults and environment variables onto a fresh viper
// instance, optionally overlaying any already-parsed command-line flags,
// and returns the resolved Settings.
func New(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("WEBTERM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 57575)
	v.SetDefault("shell", "/bin/sh")
	v.SetDefault("cmd", "")
	v.SetDefault("default-cols", 80)
	v.SetDefault("default-rows", 24)
	v.SetDefault("history-size", 50*1024)
	v.SetDefault("theme", "default")
	v.SetDefault("motd", "builtin")
	v.SetDefault("log-enabled", true)
	v.SetDefault("log-dir", "logs")
	v.SetDefault("unsecure", false)
	v.SetDefault("cert-dir", "")
	v.SetDefault("uri-root-path", "")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	return &Settings{
		Host:        v.GetString("host"),
		Port:        v.GetInt("port"),
		Shell:       v.GetString("shell"),
		Cmd:         v.GetString("cmd"),
		DefaultCols: v.GetInt("default-cols"),
		DefaultRows: v.GetInt("default-rows"),
		HistorySize: v.GetInt("history-size"),
		Theme:       v.GetString("theme"),
		MotdArt:     v.GetString("motd"),
		LogEnabled:  v.GetBool("log-enabled"),
		LogDir:      v.GetString("log-dir"),
		Unsecure:    v.GetBool("unsecure"),
		CertDir:     v.GetString("cert-dir"),
		URIRootPath: v.GetString("uri-root-path"),
	}, nil
}
