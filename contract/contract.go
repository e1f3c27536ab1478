//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"bridge-chat/domain"
	"bridge-chat/domain/event"

	"github.com/google/uuid"
)

// BlobStore is the opaque binary storage: bytes go in under a key, a
// durable fetchable URL comes out.
type BlobStore interface {
	Write(ctx context.Context, key string, blob []byte) (string, error)
}

// MessageStore is the ordered append-only log. Append assigns id and
// server timestamp before persisting, then fans the record out to every
// active subscription for the room.
type MessageStore interface {
	Append(ctx context.Context, record domain.MessageRecord) (domain.MessageRecord, error)
	Query(ctx context.Context, room domain.RoomID) ([]domain.MessageRecord, error)
}

// Uploader pushes a locally captured blob to the blob store. It must not
// create a MessageRecord itself: bytes being durable and a message being
// visible are separate steps.
type Uploader interface {
	Upload(ctx context.Context, blob []byte, kind domain.AttachmentKind, ownerID string) (string, error)
}

// Simulator is the external accessibility transform: an image reference
// in, a simulated-image URL out.
type Simulator interface {
	SimulateColorBlind(ctx context.Context, imageURL string) (string, error)
}

// Moderator censors outgoing text before it is persisted.
type Moderator interface {
	Censor(original string) (string, []string)
}

// Searcher queries the local full-text index over the message history.
type Searcher interface {
	Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error)
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	Subscribe(participantID string, roomID domain.RoomID, sink EventSink)
	Unsubscribe(participantID string, roomID domain.RoomID)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
