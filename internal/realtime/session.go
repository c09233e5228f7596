package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one live connection to a board. Outbound payloads are queued
// on a buffered channel so a slow consumer never blocks fan-out to the
// rest of the room.
type Session struct {
	ID     string
	UserID uuid.UUID

	outbox    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

const sessionOutboxSize = 64

func NewSession(userID uuid.UUID) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		outbox: make(chan []byte, sessionOutboxSize),
		closed: make(chan struct{}),
	}
}

// Outbox delivers queued payloads to the connection's writer loop.
func (s *Session) Outbox() <-chan []byte { return s.outbox }

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.closed }

// Close marks the session dead. Safe to call from any goroutine, any
// number of times.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Send queues a payload without blocking. Returns false when the session
// is closed or its buffer is full; the caller decides whether that is
// worth logging, the payload is dropped either way.
func (s *Session) Send(payload []byte) bool {
	select {
	case <-s.closed:
		return false
	default:
	}

	select {
	case s.outbox <- payload:
		return true
	default:
		return false
	}
}
