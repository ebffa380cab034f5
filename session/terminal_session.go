package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is one of TerminalSession's one-way lifecycle states.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateExited
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// CreateParams are the parameters fixed at session creation; they are
// ignored when resolving an id that already exists (command is fixed at
// creation — spec §9 Open Question 3).
type CreateParams struct {
	Command string
	Env     []string
	Cols    int
	Rows    int
}

// TerminalSession is one PtyProcess shared by a dynamic set of clients: it
// owns the PtyProcess, the HistoryBuffer, and the SessionLogger outright;
// ClientAttachments are registered and removed through Attach/Detach.
type TerminalSession struct {
	id        string
	createdAt time.Time
	command   string

	mu          sync.Mutex
	state       State
	pty         *PtyProcess
	history     *HistoryBuffer
	logger      *SessionLogger
	attachments map[string]*Attachment
	nextAttach  uint64

	done      chan struct{} // closed exactly once, when the pty exits
	onDrained func(id string)
}

// newTerminalSession spawns the PtyProcess for id and params and returns a
// Running TerminalSession. A spawn failure returns ErrSpawnFailed and no
// session — per spec §4.4, the caller is responsible for notifying the
// initiating client directly since there is nothing to attach to.
func newTerminalSession(
	id string,
	params CreateParams,
	shell string,
	historyCap int,
	logDir string,
	logEnabled bool,
	spawn spawnFn,
	onDrained func(id string),
) (*TerminalSession, error) {
	t := &TerminalSession{
		id:          id,
		createdAt:   time.Now(),
		command:     params.Command,
		state:       StateStarting,
		history:     NewHistoryBuffer(historyCap),
		attachments: make(map[string]*Attachment),
		done:        make(chan struct{}),
		onDrained:   onDrained,
	}

	if logEnabled {
		t.logger = NewSessionLogger(logDir, id)
		if err := t.logger.Open(); err != nil {
			logrus.WithFields(logrus.Fields{"session_id": id, "error": err}).
				Warn("session logger failed to open, logging disabled")
			t.logger = nil
		}
	}

	pty, err := spawn(id, SpawnParams{
		Command:     params.Command,
		Shell:       shell,
		Env:         params.Env,
		InitialCols: params.Cols,
		InitialRows: params.Rows,
	}, t.onPTYOutput, t.onPTYExit)
	if err != nil {
		if t.logger != nil {
			t.logger.Close()
		}
		return nil, err
	}

	t.pty = pty
	t.state = StateRunning
	return t, nil
}

// onPTYOutput is the session's output pump: it appends to history, logs,
// and fans the chunk out to every attached client's queue. A client whose
// queue is already full is evicted rather than allowed to stall the pump.
func (t *TerminalSession) onPTYOutput(data []byte) {
	t.mu.Lock()
	t.history.Append(data)
	if t.logger != nil {
		t.logger.Write(data)
	}
	var dropped []*Attachment
	for id, a := range t.attachments {
		select {
		case a.out <- data:
		default:
			dropped = append(dropped, a)
			delete(t.attachments, id)
		}
	}
	t.mu.Unlock()

	for _, a := range dropped {
		logrus.WithFields(logrus.Fields{
			"session_id":    t.id,
			"attachment_id": a.ID(),
		}).Warn("client queue full, dropping slow client")
		a.markDropped()
		close(a.out)
	}
}

// onPTYExit runs exactly once, when the PtyProcess's read loop observes
// EOF/EIO and reaps the child. It transitions to Exited and broadcasts
// that fact via Done(); it does not itself close client connections —
// that is ConnectionHandler's job, driven by Done().
func (t *TerminalSession) onPTYExit() {
	t.mu.Lock()
	t.state = StateExited
	if t.logger != nil {
		t.logger.Close()
	}
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{"session_id": t.id}).Info("session pty exited")
	close(t.done)
	t.maybeDrain()
}

// Attach registers a new client and returns its handle. Any history
// currently buffered is queued onto the attachment's channel before the
// attachment is registered for live output, under the same critical
// section — this guarantees the replay is a gap-free, duplicate-free
// prefix of everything the client sees afterward (spec §5).
//
// If the session has already exited, Done() is already closed; the
// caller's read loop is expected to drain the replay then observe Done()
// and close the stream (see pumpOutput in package api).
func (t *TerminalSession) Attach() *Attachment {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextAttach++
	a := newAttachment(attachmentID(t.nextAttach))

	if snap := t.history.Snapshot(); len(snap) > 0 {
		a.out <- snap
	}
	t.attachments[a.id] = a
	return a
}

// Detach removes a client. It is idempotent and always safe to call even
// if the attachment was already evicted (dropped) or never registered.
func (t *TerminalSession) Detach(a *Attachment) {
	t.mu.Lock()
	cur, ok := t.attachments[a.id]
	removed := ok && cur == a
	if removed {
		delete(t.attachments, a.id)
	}
	t.mu.Unlock()
	if removed {
		close(a.out)
	}
	t.maybeDrain()
}

// SendInput forwards bytes to the PTY. Applied immediately; there is no
// fairness queue across competing clients (spec §4.4 point 4).
func (t *TerminalSession) SendInput(data []byte) {
	t.mu.Lock()
	p := t.pty
	t.mu.Unlock()
	if p != nil {
		p.Write(data)
	}
}

// RequestResize applies a window-size change immediately: last-writer-wins
// among competing clients (spec §4.4).
func (t *TerminalSession) RequestResize(cols, rows int) {
	t.mu.Lock()
	p := t.pty
	t.mu.Unlock()
	if p != nil {
		p.Resize(cols, rows)
	}
}

// Terminate kills the PtyProcess. The normal EOF-driven exit path (not
// this call) performs the Exited transition and client notification, so
// Terminate itself is just a trigger.
func (t *TerminalSession) Terminate() {
	t.mu.Lock()
	p := t.pty
	t.mu.Unlock()
	if p != nil {
		p.Terminate()
	}
}

// Done returns a channel closed once the PTY has exited. Every attached
// ConnectionHandler watches this to know when to deliver the exit control
// message and close its own connection.
func (t *TerminalSession) Done() <-chan struct{} { return t.done }

// ID returns the session's identifier.
func (t *TerminalSession) ID() string { return t.id }

// Command returns the command the session was created with (fixed for
// its lifetime).
func (t *TerminalSession) Command() string { return t.command }

// CreatedAt returns the session's creation time.
func (t *TerminalSession) CreatedAt() time.Time { return t.createdAt }

// ClientCount returns the number of currently attached clients.
func (t *TerminalSession) ClientCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.attachments)
}

// IsAlive reports whether the PTY child is still running.
func (t *TerminalSession) IsAlive() bool {
	t.mu.Lock()
	p := t.pty
	t.mu.Unlock()
	return p != nil && p.Alive()
}

// State returns the session's current lifecycle state.
func (t *TerminalSession) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// maybeDrain transitions Exited→Drained once the process is dead and the
// last client has detached, and notifies the registry exactly once.
func (t *TerminalSession) maybeDrain() {
	t.mu.Lock()
	drain := t.state == StateExited && len(t.attachments) == 0
	if drain {
		t.state = StateDrained
	}
	t.mu.Unlock()

	if drain {
		logrus.WithFields(logrus.Fields{"session_id": t.id}).Info("session drained")
		if t.onDrained != nil {
			t.onDrained(t.id)
		}
	}
}

func attachmentID(n uint64) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	buf := make([]byte, 0, 16)
	for n > 0 {
		buf = append(buf, digits[n%uint64(len(digits))])
		n /= uint64(len(digits))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
