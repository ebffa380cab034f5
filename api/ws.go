package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"webterm/codec"
	"webterm/motd"
	"webterm/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS is the ConnectionHandler: it adapts one browser connection to
// one attachment on one session. Binary frames carry raw PTY bytes in
// both directions; text frames carry codec control messages only.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	requestedID := chi.URLParam(r, "id")
	cols := queryInt(r, "cols", h.cfg.DefaultCols)
	rows := queryInt(r, "rows", h.cfg.DefaultRows)
	cmd := r.URL.Query().Get("cmd")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	writeBinary := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.BinaryMessage, data)
	}
	writeControl := func(msg any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	t, created, err := h.registry.ResolveOrCreate(requestedID, session.CreateParams{
		Command: cmd,
		Cols:    cols,
		Rows:    rows,
	})
	if err != nil {
		logrus.WithError(err).Warn("session spawn failed")
		writeControl(codec.NewExitMessage()) //nolint:errcheck
		return
	}

	if created {
		if err := writeControl(codec.NewSessionMessage(t.ID())); err != nil {
			return
		}
		if banner := h.motdBanner(r); banner != nil {
			if err := writeBinary(banner); err != nil {
				return
			}
		}
	}

	a := t.Attach()
	defer t.Detach(a)

	connDone := make(chan struct{})
	defer close(connDone)

	go pumpOutput(t, a, writeBinary, writeControl, conn, connDone)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			t.SendInput(data)
		case websocket.TextMessage:
			msg, err := codec.Decode(data)
			if err != nil {
				continue // malformed or unknown type: ignored, per codec policy
			}
			if resize, ok := msg.(codec.ResizeMessage); ok && resize.Valid() {
				t.RequestResize(resize.Cols, resize.Rows)
			}
		}
	}
}

// pumpOutput streams a session's queued output to the client. It drains
// any output already buffered on a.Data() (the history replay, or late
// live chunks) before ever checking t.Done()/a.Dropped(), which is what
// guarantees a client attaching after exit sees history then exit, never
// exit before history.
func pumpOutput(t *session.TerminalSession, a *session.Attachment, writeBinary func([]byte) error, writeControl func(any) error, conn *websocket.Conn, connDone <-chan struct{}) {
	for {
		select {
		case data, ok := <-a.Data():
			if !ok {
				conn.Close()
				return
			}
			if err := writeBinary(data); err != nil {
				return
			}
			continue
		default:
		}

		select {
		case data, ok := <-a.Data():
			if !ok {
				conn.Close()
				return
			}
			if err := writeBinary(data); err != nil {
				return
			}
		case <-t.Done():
			writeControl(codec.NewExitMessage()) //nolint:errcheck
			conn.Close()
			return
		case <-a.Dropped():
			conn.Close()
			return
		case <-connDone:
			return
		}
	}
}

func (h *handler) motdBanner(r *http.Request) []byte {
	return motd.Render(h.cfg.MotdSource, r.RemoteAddr, h.cfg.ListenAddr, h.cfg.Secure)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
