package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks, per board, the set of currently connected sessions.
// It is the only in-process shared mutable structure in the sync core;
// all methods are safe for concurrent use and never suspend while the
// lock is held.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uuid.UUID]map[string]*Session)}
}

// Join adds the session to the board's room and returns the member count
// after joining. Authorization is the caller's responsibility; the
// registry only tracks membership.
func (r *Registry) Join(boardID uuid.UUID, s *Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[boardID]
	if !ok {
		room = make(map[string]*Session)
		r.rooms[boardID] = room
	}
	room[s.ID] = s
	return len(room)
}

// Leave removes the session from the board's room and returns the member
// count after leaving. Idempotent: leaving twice is a no-op the second
// time. It must run on every disconnection path.
func (r *Registry) Leave(boardID uuid.UUID, s *Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[boardID]
	if !ok {
		return 0
	}
	delete(room, s.ID)
	if len(room) == 0 {
		delete(r.rooms, boardID)
		return 0
	}
	return len(room)
}

// Members returns a snapshot of the board's current sessions.
func (r *Registry) Members(boardID uuid.UUID) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[boardID]
	members := make([]*Session, 0, len(room))
	for _, s := range room {
		members = append(members, s)
	}
	return members
}
