// Package stream exposes the ordered message log as live subscriptions:
// an initial snapshot followed by incremental inserts, identically
// ordered for every subscriber.
package stream

import (
	"context"
	"log/slog"

	"bridge-chat/contract"
	"bridge-chat/domain"
)

type Stream struct {
	registry contract.IRegistry
	store    contract.MessageStore
	log      *slog.Logger
	headroom int
}

func New(registry contract.IRegistry, store contract.MessageStore, log *slog.Logger, headroom int) *Stream {
	return &Stream{registry: registry, store: store, log: log, headroom: headroom}
}

// Subscribe registers the participant for live delivery, loads the room
// snapshot and returns the joined, ordered subscription. The sink is
// registered before the query so nothing persisted in between is lost.
func (s *Stream) Subscribe(ctx context.Context, room domain.RoomID, participantID string) (*Subscription, error) {
	sub := newSubscription(s.headroom, func() {
		s.registry.Unsubscribe(participantID, room)
	})
	s.registry.Subscribe(participantID, room, sub)

	snapshot, err := s.store.Query(ctx, room)
	if err != nil {
		s.registry.Unsubscribe(participantID, room)
		return nil, err
	}

	sub.activate(snapshot)
	s.log.Debug("Subscription opened",
		"room", room,
		"participant", participantID,
		"snapshot", len(snapshot))
	return sub, nil
}
