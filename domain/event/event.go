package event

import (
	"bridge-chat/domain"
)

type DomainEvent interface {
	RoomID() domain.RoomID
}

// MessageAppended is pushed by the message store after a record has been
// assigned its id and server timestamp. It is the single source of truth
// for what subscribers render; there is no optimistic client-side echo.
type MessageAppended struct {
	Record domain.MessageRecord
}

func (m MessageAppended) RoomID() domain.RoomID {
	return m.Record.Room
}
