// Package domain contains core concepts of the chat client.
// This file defines MessageRecord and its payload rules.
// Records are immutable once persisted and validated by the domain.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RoomID string

// PayloadKind discriminates the single payload a record may carry.
type PayloadKind string

const (
	PayloadText  PayloadKind = "text"
	PayloadAudio PayloadKind = "audio"
	PayloadImage PayloadKind = "image"
)

// MessageRecord represents one immutable persisted chat entry.
// Exactly one of Text, AudioURL, ImageURL is populated; the store
// assigns ID and CreatedAt at the moment of persistence so that all
// clients observe the same global order regardless of clock skew.
type MessageRecord struct {
	ID              uuid.UUID
	Room            RoomID
	AuthorID        string
	AuthorAvatarURL string
	CreatedAt       time.Time

	Text     string
	AudioURL string
	ImageURL string
}

// Kind reports which payload variant the record carries.
func (m MessageRecord) Kind() PayloadKind {
	switch {
	case m.AudioURL != "":
		return PayloadAudio
	case m.ImageURL != "":
		return PayloadImage
	default:
		return PayloadText
	}
}

// Validate enforces the tagged-union invariant: one payload, never more.
func (m MessageRecord) Validate() error {
	populated := 0
	if m.Text != "" {
		populated++
	}
	if m.AudioURL != "" {
		populated++
	}
	if m.ImageURL != "" {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("message must carry exactly one payload, got %d", populated)
	}
	return nil
}

// Before implements the total display order: CreatedAt ascending, ties
// broken by the store-assigned ID.
func (m MessageRecord) Before(other MessageRecord) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID.String() < other.ID.String()
}
