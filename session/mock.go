package session

import (
	"io"
	"os"
)

// spawnFn is the injectable hook used to create a PtyProcess. Production
// code always uses spawnPTY; tests substitute MockSpawnPTY to avoid
// forking a real shell.
type spawnFn func(id string, params SpawnParams, onOutput func([]byte), onExit func()) (*PtyProcess, error)

// MockSpawnPTY wires an os.Pipe in place of a real PTY: bytes written via
// PtyProcess.Write are echoed back through onOutput, and closing the pipe
// simulates the child exiting. It exists purely for tests, in this
// package and out of it — pass it as Options.SpawnOverride to get a
// Registry that never forks a real shell.
func MockSpawnPTY(id string, params SpawnParams, onOutput func([]byte), onExit func()) (*PtyProcess, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	p := &PtyProcess{id: id, master: w, alive: true}

	go func() {
		defer r.Close()
		buf := make([]byte, 4096)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onOutput(chunk)
			}
			if readErr != nil {
				if readErr != io.EOF {
					_ = readErr
				}
				p.mu.Lock()
				p.alive = false
				p.mu.Unlock()
				onExit()
				return
			}
		}
	}()
	return p, nil
}
