package session

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newRandomHex returns n random bytes rendered as lowercase hex, sourced
// from google/uuid's random generator (already a project dependency for
// unique-id generation) rather than reaching for a second randomness API.
func newRandomHex(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		u := uuid.New() // 16 random bytes (RFC 4122 v4, but we only need entropy)
		take := n - len(out)
		if take > len(u) {
			take = len(u)
		}
		out = append(out, u[:take]...)
	}
	return hex.EncodeToString(out)
}

// newSessionID generates an opaque session identifier: ≥64 bits of
// entropy rendered as lowercase hex (spec: "≥8 hex chars"). A uuid v4's
// 16 raw bytes (122 random bits; the other 6 are fixed version/variant
// bits) are used directly rather than its dashed string form, which is
// not pure hex.
func newSessionID() string {
	return newRandomHex(16)
}
