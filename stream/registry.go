package stream

import (
	"sync"

	"bridge-chat/contract"
	"bridge-chat/domain"
)

type set map[string]struct{}

// Registry tracks which participant sinks are live for which room.
// Sessions and membership are kept separate so a participant's sink is
// managed in a single place even if they watch several rooms.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink
	roomMembers map[domain.RoomID]set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]set),
	}
}

// GetSinksForRoom resolves the room's member ids into live sinks.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for participantID := range members {
		if sink, exists := r.sessions[participantID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a participant's sink and assigns them to a room.
// The room entry is initialized on the fly if needed.
func (r *Registry) Subscribe(participantID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[participantID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(set)
	}
	r.roomMembers[roomID][participantID] = struct{}{}
}

// Unsubscribe removes a participant and cleans up empty room entries so
// abandoned rooms don't accumulate.
func (r *Registry) Unsubscribe(participantID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, participantID)

	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, participantID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
}
