package stream

import (
	"context"
	"sort"
	"sync"

	"bridge-chat/domain"
	"bridge-chat/domain/event"

	"github.com/google/uuid"
)

// Subscription is one participant's live, ordered view of a room: the
// initial snapshot followed by incremental inserts, in a single global
// order. It is the only source of what gets rendered; the subscriber's
// own submits arrive through it like everyone else's.
//
// The sink is registered before the snapshot query, so a record can show
// up both live and in the snapshot; ids are deduplicated. Live records
// arriving while the snapshot is still loading are parked and flushed
// right after it, which preserves timestamp order because the store
// serializes commit and fanout.
type Subscription struct {
	mu       sync.Mutex
	records  chan domain.MessageRecord
	seen     map[uuid.UUID]struct{}
	pending  []domain.MessageRecord
	live     bool
	closed   bool
	degraded bool
	headroom int
	teardown func()
}

func newSubscription(headroom int, teardown func()) *Subscription {
	return &Subscription{
		seen:     make(map[uuid.UUID]struct{}),
		headroom: headroom,
		teardown: teardown,
	}
}

// Updates delivers records in display order. The channel is closed on
// Cancel; no deliveries happen after that.
func (s *Subscription) Updates() <-chan domain.MessageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Degraded reports that live delivery fell behind and records were
// skipped. The subscriber should resubscribe for a fresh snapshot.
func (s *Subscription) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Cancel tears the subscription down and releases the underlying
// listener. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	records := s.records
	s.mu.Unlock()

	s.teardown()
	if records != nil {
		close(records)
	}
}

// Consume implements contract.EventSink for the fanout worker.
func (s *Subscription) Consume(_ context.Context, e event.DomainEvent) error {
	appended, ok := e.(event.MessageAppended)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if _, dup := s.seen[appended.Record.ID]; dup {
		return nil
	}
	s.seen[appended.Record.ID] = struct{}{}

	if !s.live {
		s.pending = append(s.pending, appended.Record)
		return nil
	}
	s.send(appended.Record)
	return nil
}

// activate sizes the delivery channel for the snapshot plus headroom,
// then pushes the snapshot merged with whatever arrived live while it
// was loading, re-sorted into the single display order.
func (s *Subscription) activate(snapshot []domain.MessageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	merged := make([]domain.MessageRecord, 0, len(snapshot)+len(s.pending))
	delivered := make(map[uuid.UUID]struct{}, cap(merged))
	for _, record := range append(snapshot, s.pending...) {
		if _, dup := delivered[record.ID]; dup {
			continue
		}
		delivered[record.ID] = struct{}{}
		s.seen[record.ID] = struct{}{}
		merged = append(merged, record)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })

	s.records = make(chan domain.MessageRecord, len(merged)+s.headroom)
	for _, record := range merged {
		s.records <- record
	}
	s.pending = nil
	s.live = true
}

// send must be called with the lock held. A full channel means the
// consumer stopped draining; the subscription degrades instead of
// blocking the fanout.
func (s *Subscription) send(record domain.MessageRecord) {
	select {
	case s.records <- record:
	default:
		s.degraded = true
	}
}
