// Package motd renders the connection banner sent to a client immediately
// after a newly created session's "session" control message. It is sent as
// a raw binary frame straight to the client, never through the PTY, so it
// never touches history or the session log.
package motd

import (
	"fmt"
	"os"
	"strings"
)

const (
	ansiBrightWhite = "\x1b[97m"
	ansiGreen       = "\x1b[32m"
	ansiRed         = "\x1b[31m"
	ansiReset       = "\x1b[0m"
)

var butterflyArtLines = []string{
	"                   `         '",
	"   ;,,,             `       '             ,,,;",
	"   `Y888888bo.       :     :       .od888888Y'",
	"     8888888888b.     :   :     .d8888888888",
	"     88888Y'  `Y8b.   `   '   .d8Y'  `Y88888",
	"    j88888  .db.  Yb. '   ' .dY  .db.  88888k",
	"      `888  Y88Y    `b ( ) d'    Y88Y  888'",
	"       888b  '\"        ,',        \"'  d888",
	"      j888888bd8gf\"'   ':'   `\"?g8bd888888k",
	"        'Y'   .8'     d' 'b     '8.   'Y'",
	"         !   .8' db  d'; ;`b  db '8.   !",
	"            d88  `'  8 ; ; 8  `'  88b",
	"           d888b   .g8 ',' 8g.   d888b",
	"          :888888888Y'     'Y888888888:",
	"          '! 8888888'       `8888888 !'",
	"             '8Y  `Y         Y'  Y8'",
	"              Y                   Y",
	"              !                   !",
}

func builtinArt() string {
	return "\x1b[34m" + strings.Join(butterflyArtLines, "\n") + ansiReset
}

// Source describes where MOTD art comes from: the built-in art, none at
// all, or a file on disk (which may itself contain ANSI escapes).
type Source struct {
	Kind string // "builtin", "none", "file"
	Path string // set when Kind == "file"
}

// Parse interprets the --motd flag value: "none", "builtin", or a file path.
func Parse(value string) Source {
	switch value {
	case "", "builtin":
		return Source{Kind: "builtin"}
	case "none":
		return Source{Kind: "none"}
	default:
		return Source{Kind: "file", Path: value}
	}
}

func (s Source) art() string {
	switch s.Kind {
	case "none":
		return ""
	case "file":
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return builtinArt()
		}
		return string(data)
	default:
		return builtinArt()
	}
}

// Render builds the banner: the ASCII art (CRLF-normalized for raw PTY
// delivery) followed by connection info lines. addr is the client's
// remote address, shown when non-empty; secure reflects whether the
// listener is running TLS. Returns nil when src.Kind is "none".
func Render(src Source, addr, listenAddr string, secure bool) []byte {
	art := src.art()
	if art == "" && src.Kind == "none" {
		return nil
	}
	if art != "" {
		art = strings.ReplaceAll(art, "\r\n", "\n")
		art = strings.ReplaceAll(art, "\n", "\r\n")
	}

	proto, color, mode := "http", ansiRed, "UNSECURE"
	if secure {
		proto, color, mode = "https", ansiGreen, "secure"
	}

	var lines []string
	if art != "" {
		lines = append(lines, art)
	}
	lines = append(lines, fmt.Sprintf("  %sListening on:%s  %s%s://%s%s", ansiBrightWhite, ansiReset, color, proto, listenAddr, ansiReset))
	if addr != "" {
		lines = append(lines, fmt.Sprintf("  %sConnected from:%s %s%s%s", ansiBrightWhite, ansiReset, color, addr, ansiReset))
	}
	lines = append(lines, fmt.Sprintf("  %sMode:%s           %s%s%s", ansiBrightWhite, ansiReset, color, mode, ansiReset))
	lines = append(lines, "")

	if !secure {
		lines = append(lines, fmt.Sprintf("  %s/!\\ This session is UNSECURE.%s", ansiRed, ansiReset))
		lines = append(lines, "")
	}
	lines = append(lines, "")

	return []byte(strings.Join(lines, "\r\n"))
}
