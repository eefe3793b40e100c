package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridfall/gridfall-server/pkg/protocol"
)

// outboxSize bounds a session's pending outbound payloads. A client
// that can't keep up with broadcasts is dropped, not waited for.
const outboxSize = 32

// Session is the per-connection state. The transport goroutines own
// the socket exclusively; every other field is touched only by the
// authority loop.
type Session struct {
	ID     uuid.UUID
	Remote string

	// Claimed identity; nil until an Authenticate packet arrives.
	// Anonymous sessions still observe the world but own no pieces.
	Auth *protocol.Authentication

	// Pieces this session may issue actions for. Always a subset of
	// live piece ids; released (not destroyed) when the session dies.
	Owned map[uuid.UUID]struct{}

	// Last time any packet arrived.
	LastPing time.Time

	outbox    chan []byte
	closeOnce sync.Once
	closeFn   func()
}

func newSession(remote string, closeFn func()) *Session {
	return &Session{
		ID:       uuid.New(),
		Remote:   remote,
		Owned:    make(map[uuid.UUID]struct{}),
		LastPing: time.Now(),
		outbox:   make(chan []byte, outboxSize),
		closeFn:  closeFn,
	}
}

func (s *Session) owns(id uuid.UUID) bool {
	_, ok := s.Owned[id]
	return ok
}

// closeTransport shuts the underlying stream, unblocking the reader.
func (s *Session) closeTransport() {
	s.closeOnce.Do(s.closeFn)
}

// Username is the authenticated name, or a placeholder for logs.
func (s *Session) Username() string {
	if s.Auth == nil {
		return "<anonymous>"
	}
	return s.Auth.Username
}
