// Package projection builds local timelines from the subscription feed.
// Handles ordering and deduplication for the rendering layer; it does
// not emit events or talk to the UI directly.
package projection

import (
	"sort"

	"bridge-chat/domain"

	"github.com/google/uuid"
)

// Timeline holds one viewer's ordered message history. Inserts keep the
// global display order (createdAt ascending, id tie-break) even if the
// feed ever hands records over out of order.
type Timeline struct {
	Owner   string
	records []domain.MessageRecord
	known   map[uuid.UUID]struct{}
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{Owner: owner, known: make(map[uuid.UUID]struct{})}
}

// Insert places the record at its ordered position. Duplicates are
// dropped.
func (t *Timeline) Insert(record domain.MessageRecord) {
	if _, ok := t.known[record.ID]; ok {
		return
	}
	t.known[record.ID] = struct{}{}

	at := sort.Search(len(t.records), func(i int) bool {
		return record.Before(t.records[i])
	})
	t.records = append(t.records, domain.MessageRecord{})
	copy(t.records[at+1:], t.records[at:])
	t.records[at] = record
}

// Records returns the timeline in display order. The slice is shared;
// callers must not mutate it.
func (t *Timeline) Records() []domain.MessageRecord {
	return t.records
}

func (t *Timeline) Len() int { return len(t.records) }
