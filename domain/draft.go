package domain

import "strings"

// AttachmentKind tells the uploader what kind of blob it receives.
type AttachmentKind string

const (
	AttachmentAudio AttachmentKind = "audio"
	AttachmentImage AttachmentKind = "image"
)

// DefaultExtension is the fallback when content sniffing is inconclusive.
func (k AttachmentKind) DefaultExtension() string {
	if k == AttachmentAudio {
		return ".wav"
	}
	return ".jpg"
}

// ComposeDraft is the in-progress, not-yet-sent message state for one
// user. It is owned by a single compose session and is not shared.
type ComposeDraft struct {
	Text         string
	PendingAudio []byte
	PendingImage []byte
}

// HasContent reports whether submitting the draft would do anything.
// Whitespace-only text does not count.
func (d ComposeDraft) HasContent() bool {
	return strings.TrimSpace(d.Text) != "" || len(d.PendingAudio) > 0 || len(d.PendingImage) > 0
}
