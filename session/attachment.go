package session

import "sync"

// clientQueueCapacity bounds each attachment's outbound queue. A producer
// that can't enqueue within this bound marks the client slow and drops it
// rather than blocking — the pump must never stall waiting on one client.
const clientQueueCapacity = 256

// Attachment is the handle returned by TerminalSession.Attach. It is the
// Go realization of spec's ClientAttachment: an id, an outbound queue, and
// a signal for server-initiated eviction due to backpressure.
type Attachment struct {
	id       string
	out      chan []byte
	dropped  chan struct{}
	dropOnce sync.Once
}

func newAttachment(id string) *Attachment {
	return &Attachment{
		id:      id,
		out:     make(chan []byte, clientQueueCapacity),
		dropped: make(chan struct{}),
	}
}

// Data returns the channel of raw PTY output chunks queued for this
// client — both the initial history replay and subsequent live output
// arrive on this same channel, in order, with no gap or duplicate at the
// seam between them.
func (a *Attachment) Data() <-chan []byte { return a.out }

// Dropped is closed exactly once if the session evicts this attachment
// because its outbound queue stayed full (a slow client). It is never
// closed for a normal Detach.
func (a *Attachment) Dropped() <-chan struct{} { return a.dropped }

func (a *Attachment) markDropped() {
	a.dropOnce.Do(func() { close(a.dropped) })
}

// ID returns the attachment's identifier, unique within its session.
func (a *Attachment) ID() string { return a.id }
