package session

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"
)

// ErrSpawnFailed is returned by spawnPTY when the fork/exec of the child
// process fails.
var ErrSpawnFailed = errors.New("session: failed to spawn pty child")

// terminateGrace is how long Terminate waits for the child to exit after
// SIGHUP+SIGCONT before escalating to SIGKILL.
const terminateGrace = 500 * time.Millisecond

// writeDeadline bounds how long a single Write call may block draining
// input to a slow or wedged child before the remainder is dropped.
const writeDeadline = time.Second

// PtyProcess owns one child process attached to a pseudo-terminal. It
// exposes byte I/O, window-size control, and idempotent termination. Reads
// are delivered to a caller-supplied callback from a dedicated goroutine —
// the Go runtime's netpoller multiplexes that blocking Read against every
// other goroutine in the process, which is the idiomatic-Go realization of
// "non-blocking I/O registration" (spec §5/§9).
type PtyProcess struct {
	id string

	mu     sync.Mutex
	cmd    *exec.Cmd
	master *os.File
	alive  bool
	exit   *int

	terminateOnce sync.Once
}

// SpawnParams configures a new PtyProcess.
type SpawnParams struct {
	Command     string // shell words, e.g. "htop" or "bash -il"; empty falls back to Shell
	Shell       string
	Env         []string
	InitialCols int
	InitialRows int
}

// spawnPTY forks a child under a new pseudo-terminal and starts a reader
// goroutine that delivers output via onOutput and signals termination via
// onExit. The initial window size is applied before the child execs, so
// its very first output is already correctly formatted.
func spawnPTY(id string, params SpawnParams, onOutput func([]byte), onExit func()) (*PtyProcess, error) {
	argv := commandArgv(params)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), params.Env...)

	cols, rows := params.InitialCols, params.InitialRows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": id,
			"command":    argv,
			"error":      err,
		}).Error("pty spawn failed")
		return nil, ErrSpawnFailed
	}

	p := &PtyProcess{id: id, cmd: cmd, master: master, alive: true}
	logrus.WithFields(logrus.Fields{
		"session_id": id,
		"pid":        cmd.Process.Pid,
		"command":    argv,
	}).Info("pty spawned")

	go p.readLoop(onOutput, onExit)
	return p, nil
}

func commandArgv(params SpawnParams) []string {
	cmd := strings.TrimSpace(params.Command)
	if cmd == "" {
		cmd = params.Shell
	}
	if cmd == "" {
		cmd = "/bin/sh"
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return []string{"/bin/sh"}
	}
	return fields
}

func (p *PtyProcess) readLoop(onOutput func([]byte), onExit func()) {
	buf := make([]byte, 65536)
	for {
		n, err := p.master.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onOutput(chunk)
		}
		if err != nil {
			if err != io.EOF {
				logrus.WithFields(logrus.Fields{
					"session_id": p.id,
					"error":      err,
				}).Debug("pty read ended")
			}
			p.reap()
			onExit()
			return
		}
	}
}

// Write forwards input to the PTY master. Short writes are drained
// internally by *os.File.Write; a bounded deadline caps the total retry
// time on a wedged child, after which the remainder is dropped. Writing
// to a dead child is a silent no-op (WriteToDeadProcess).
func (p *PtyProcess) Write(data []byte) {
	p.mu.Lock()
	alive := p.alive
	master := p.master
	p.mu.Unlock()
	if !alive || master == nil {
		return
	}

	_ = master.SetWriteDeadline(time.Now().Add(writeDeadline))
	if _, err := master.Write(data); err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": p.id,
			"error":      err,
		}).Debug("pty write dropped")
	}
	_ = master.SetWriteDeadline(time.Time{})
}

// Resize issues the terminal window-size ioctl on the master. It is a
// no-op once the process has exited, and for non-positive dimensions
// (IoctlFailed is logged, never propagated).
func (p *PtyProcess) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	p.mu.Lock()
	alive := p.alive
	master := p.master
	p.mu.Unlock()
	if !alive || master == nil {
		return
	}
	if err := pty.Setsize(master, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": p.id,
			"error":      err,
		}).Warn("pty resize ioctl failed")
	}
}

// Terminate sends SIGHUP then SIGCONT, waits up to terminateGrace for a
// natural exit, and escalates to SIGKILL if the child is still alive.
// Idempotent: subsequent calls are no-ops.
func (p *PtyProcess) Terminate() {
	p.terminateOnce.Do(func() {
		p.mu.Lock()
		cmd := p.cmd
		master := p.master
		p.mu.Unlock()

		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGHUP)
			_ = cmd.Process.Signal(syscall.SIGCONT)

			done := make(chan struct{})
			go func() {
				_ = cmd.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(terminateGrace):
				_ = cmd.Process.Signal(syscall.SIGKILL)
				<-done
			}
		}
		if master != nil {
			master.Close()
		}
		p.mu.Lock()
		p.alive = false
		p.mu.Unlock()
	})
}

// reap waits for the child once its master fd has hit EOF/EIO, recording
// its exit status and marking the process no longer alive. Tying reaping
// to the EOF event (rather than a SIGCHLD handler) avoids races with
// concurrent fd state.
func (p *PtyProcess) reap() {
	p.mu.Lock()
	cmd := p.cmd
	master := p.master
	alreadyDead := !p.alive
	p.mu.Unlock()
	if alreadyDead {
		return
	}

	if cmd != nil {
		_ = cmd.Wait()
	}
	if master != nil {
		master.Close()
	}

	p.mu.Lock()
	p.alive = false
	if cmd != nil && cmd.ProcessState != nil {
		code := cmd.ProcessState.ExitCode()
		p.exit = &code
	}
	p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session_id": p.id,
	}).Info("pty child reaped")
}

// Alive reports whether the child is (as far as known) still running.
func (p *PtyProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

// ExitStatus returns the child's exit code once it has been reaped.
func (p *PtyProcess) ExitStatus() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exit == nil {
		return 0, false
	}
	return *p.exit, true
}
