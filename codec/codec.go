// Package codec defines the JSON control-message schema exchanged over
// the text side of the bridge's bidirectional channel. Binary frames carry
// raw PTY bytes and never pass through this package.
package codec

import (
	"encoding/json"
	"errors"
)

// Message kinds, server→client unless noted.
const (
	TypeSession = "session" // server→client: {"type":"session","id":"..."}
	TypeExit    = "exit"    // server→client: {"type":"exit"}
	TypeResize  = "resize"  // client→server: {"type":"resize","cols":N,"rows":N}
)

// ErrUnknownType is returned by Decode for a well-formed JSON object whose
// "type" field isn't one of the kinds above. Callers ignore it to stay
// forward-compatible — unknown types are silently dropped, never
// propagated as an error.
var ErrUnknownType = errors.New("codec: unknown message type")

// envelope is used only to sniff the discriminator field.
type envelope struct {
	Type string `json:"type"`
}

// SessionMessage announces the id of a freshly created session.
type SessionMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewSessionMessage builds a SessionMessage for id.
func NewSessionMessage(id string) SessionMessage {
	return SessionMessage{Type: TypeSession, ID: id}
}

// ExitMessage announces that the session's PTY has exited.
type ExitMessage struct {
	Type string `json:"type"`
}

// NewExitMessage builds an ExitMessage.
func NewExitMessage() ExitMessage {
	return ExitMessage{Type: TypeExit}
}

// ResizeMessage requests a new terminal window size.
type ResizeMessage struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// Valid reports whether the resize dimensions are both positive, per
// spec §4.7/§8 (a non-positive dimension must never reach an ioctl).
func (m ResizeMessage) Valid() bool {
	return m.Cols > 0 && m.Rows > 0
}

// Decode inspects raw's "type" field and unmarshals it into the matching
// message struct. It returns ErrUnknownType for any other discriminator,
// and a JSON error for malformed input — both are meant to be ignored by
// the caller to preserve forward compatibility (spec §7, Codec errors).
func Decode(raw []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TypeResize:
		var m ResizeMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeSession:
		var m SessionMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	case TypeExit:
		var m ExitMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, ErrUnknownType
	}
}
