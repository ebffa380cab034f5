package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionLogger appends a session's PTY output to a pair of files
// compatible with the standard script(1)/scriptreplay(1) interchange
// format: a raw byte-exact typescript and a timing file of
// "<delta-seconds> <byte-count>" lines. Writes are best-effort — an I/O
// error logs once and disables further logging for the session, it is
// never propagated to the data path.
type SessionLogger struct {
	mu        sync.Mutex
	sessionID string
	baseDir   string
	suffix    string

	raw    *os.File
	timing *os.File
	day    string // "2006/01/02" of the currently open files

	last    time.Time
	disabled bool
}

// NewSessionLogger prepares a logger for sessionID rooted at dir. No files
// are created until Open is called.
func NewSessionLogger(dir, sessionID string) *SessionLogger {
	return &SessionLogger{
		baseDir:   dir,
		sessionID: sessionID,
		suffix:    randomSuffix(6),
	}
}

// Open creates (or rotates to) today's log directory and opens the raw and
// timing files for writing.
func (l *SessionLogger) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotateLocked()
}

func (l *SessionLogger) rotateLocked() error {
	today := time.Now().Format("2006/01/02")
	if l.day == today && l.raw != nil {
		return nil
	}
	l.closeFilesLocked()

	dir := filepath.Join(l.baseDir, today)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	base := fmt.Sprintf("typescript-%s-%s", l.sessionID, l.suffix)
	rawPath := filepath.Join(dir, base)
	timingPath := filepath.Join(dir, base+".timing")

	raw, err := os.OpenFile(rawPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	timing, err := os.OpenFile(timingPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		raw.Close()
		return err
	}

	l.raw = raw
	l.timing = timing
	l.day = today
	l.last = time.Now()
	return nil
}

// Write logs an output chunk with its timing delta since the previous
// write (or since Open, for the first write). It is a no-op once logging
// has been disabled by a prior I/O error.
func (l *SessionLogger) Write(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disabled {
		return
	}

	if err := l.rotateLocked(); err != nil {
		l.disableLocked(err)
		return
	}

	now := time.Now()
	delta := now.Sub(l.last).Seconds()
	l.last = now

	if _, err := l.raw.Write(chunk); err != nil {
		l.disableLocked(err)
		return
	}
	line := fmt.Sprintf("%.6f %d\n", delta, len(chunk))
	if _, err := l.timing.Write([]byte(line)); err != nil {
		l.disableLocked(err)
		return
	}
}

func (l *SessionLogger) disableLocked(err error) {
	l.disabled = true
	logrus.WithFields(logrus.Fields{
		"session_id": l.sessionID,
		"error":      err,
	}).Warn("session logger disabled after I/O error")
	l.closeFilesLocked()
}

func (l *SessionLogger) closeFilesLocked() {
	if l.raw != nil {
		l.raw.Close()
		l.raw = nil
	}
	if l.timing != nil {
		l.timing.Close()
		l.timing = nil
	}
}

// Close finalizes the logger, closing any open files exactly once.
func (l *SessionLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeFilesLocked()
}

func randomSuffix(n int) string {
	id := newRandomHex((n + 1) / 2)
	if len(id) > n {
		id = id[:n]
	}
	return id
}
