package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bridge-chat/domain"
	"bridge-chat/domain/event"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// MessageLog is the append-only ordered message store on BadgerDB.
// It owns id and timestamp assignment: records enter without either and
// leave with both, so ordering is decided here and nowhere else.
type MessageLog struct {
	db      *badger.DB
	log     *slog.Logger
	appends chan<- event.DomainEvent

	mu     sync.Mutex
	lastAt time.Time
	now    func() time.Time
}

// NewMessageLog wires the log to the fanout channel. A nil channel is
// accepted for tools that only read.
func NewMessageLog(db *badger.DB, log *slog.Logger, appends chan<- event.DomainEvent) *MessageLog {
	return &MessageLog{db: db, log: log, appends: appends, now: time.Now}
}

// diskRecord mirrors the persisted shape. Field names follow the wire
// format of the message documents ("uid", "photoURL", "audioURL"...).
type diskRecord struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	UID       string    `json:"uid"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Text      string    `json:"text,omitempty"`
	AudioURL  string    `json:"audioURL,omitempty"`
	ImageURL  string    `json:"imageURL,omitempty"`
}

// Append assigns a uuid and a server-side timestamp, persists the record
// and pushes it to the fanout. The timestamp is forced strictly
// monotonic under the lock so two appends can never tie on CreatedAt
// within one store, whatever the wall clock does.
//
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector.
func (l *MessageLog) Append(ctx context.Context, record domain.MessageRecord) (domain.MessageRecord, error) {
	if err := record.Validate(); err != nil {
		return domain.MessageRecord{}, err
	}

	// The lock covers timestamp assignment, commit and fanout push, so
	// commit order and fanout order both match timestamp order.
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now().UTC()
	if !at.After(l.lastAt) {
		at = l.lastAt.Add(time.Nanosecond)
	}
	l.lastAt = at

	record.ID = uuid.New()
	record.CreatedAt = at

	key := fmt.Sprintf("msg:%s:%019d:%s", record.Room, at.UnixNano(), record.ID)
	bytes, err := json.Marshal(fromRecord(record))
	if err != nil {
		return domain.MessageRecord{}, err
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.MessageRecord{}, err
	}

	if l.appends != nil {
		select {
		case l.appends <- event.MessageAppended{Record: record}:
		case <-ctx.Done():
			// Persisted but not fanned out: the snapshot query remains
			// the source of truth for late subscribers.
			l.log.Warn("Append fanout skipped", "id", record.ID, "err", ctx.Err())
		}
	}
	return record, nil
}

// Query retrieves the full room history using a prefix scan. Thanks to
// the padded timestamp in the key, records come back already sorted by
// time, oldest first.
func (l *MessageLog) Query(_ context.Context, room domain.RoomID) ([]domain.MessageRecord, error) {
	var raw [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]domain.MessageRecord, 0, len(raw))
	for _, b := range raw {
		var dr diskRecord
		if err = json.Unmarshal(b, &dr); err != nil {
			return nil, err
		}
		record, err := toRecord(dr)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func fromRecord(record domain.MessageRecord) diskRecord {
	return diskRecord{
		ID:        record.ID.String(),
		Room:      string(record.Room),
		UID:       record.AuthorID,
		PhotoURL:  record.AuthorAvatarURL,
		CreatedAt: record.CreatedAt,
		Text:      record.Text,
		AudioURL:  record.AudioURL,
		ImageURL:  record.ImageURL,
	}
}

func toRecord(dr diskRecord) (domain.MessageRecord, error) {
	parsedID, err := uuid.Parse(dr.ID)
	if err != nil {
		return domain.MessageRecord{}, err
	}
	return domain.MessageRecord{
		ID:              parsedID,
		Room:            domain.RoomID(dr.Room),
		AuthorID:        dr.UID,
		AuthorAvatarURL: dr.PhotoURL,
		CreatedAt:       dr.CreatedAt.UTC(),
		Text:            dr.Text,
		AudioURL:        dr.AudioURL,
		ImageURL:        dr.ImageURL,
	}, nil
}
