// Package composer turns the current compose draft into persisted
// message records: the staged text / voice / image submit pipeline.
package composer

import (
	"context"
	"log/slog"
	"strings"

	"bridge-chat/contract"
	"bridge-chat/domain"
	"bridge-chat/errors"
	"bridge-chat/moderation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// SubmitRequest identifies the submitting session.
type SubmitRequest struct {
	OwnerID   string `validate:"required"`
	AvatarURL string `validate:"omitempty"`
	Room      domain.RoomID
}

type Composer struct {
	store     contract.MessageStore
	uploader  contract.Uploader
	moderator contract.Moderator
	log       *slog.Logger
}

func New(store contract.MessageStore, uploader contract.Uploader, moderator contract.Moderator, log *slog.Logger) *Composer {
	return &Composer{store: store, uploader: uploader, moderator: moderator, log: log}
}

// Submit persists one record per populated draft field, in the order
// text, voice, image. Each record is timestamped by the store at its own
// persistence time; text and an attachment sent together become sibling
// records, not one combined record.
//
// Each successful stage clears its draft field immediately, so a failure
// in a later stage never re-sends earlier content on retry. A stage
// failure aborts the remaining stages and surfaces SendError with the
// stage name; records already persisted stay persisted.
func (c *Composer) Submit(ctx context.Context, draft *domain.ComposeDraft, req SubmitRequest) ([]uuid.UUID, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if !draft.HasContent() {
		return nil, errors.ErrEmptyDraft
	}

	var created []uuid.UUID

	if text := strings.TrimSpace(draft.Text); text != "" {
		censored, found := c.moderator.Censor(text)
		if len(found) > 0 {
			c.log.Info("Outgoing message censored",
				"author", req.OwnerID,
				"lang", moderation.Language(text),
				"words", len(found))
		}
		record, err := c.append(ctx, req, domain.MessageRecord{Text: censored})
		if err != nil {
			return created, &errors.SendError{Stage: errors.StageText, Err: err}
		}
		created = append(created, record.ID)
		draft.Text = ""
	}

	if len(draft.PendingAudio) > 0 {
		url, err := c.uploader.Upload(ctx, draft.PendingAudio, domain.AttachmentAudio, req.OwnerID)
		if err != nil {
			return created, &errors.SendError{Stage: errors.StageVoice, Err: err}
		}
		record, err := c.append(ctx, req, domain.MessageRecord{AudioURL: url})
		if err != nil {
			return created, &errors.SendError{Stage: errors.StageVoice, Err: err}
		}
		created = append(created, record.ID)
		draft.PendingAudio = nil
	}

	if len(draft.PendingImage) > 0 {
		url, err := c.uploader.Upload(ctx, draft.PendingImage, domain.AttachmentImage, req.OwnerID)
		if err != nil {
			return created, &errors.SendError{Stage: errors.StageImage, Err: err}
		}
		record, err := c.append(ctx, req, domain.MessageRecord{ImageURL: url})
		if err != nil {
			return created, &errors.SendError{Stage: errors.StageImage, Err: err}
		}
		created = append(created, record.ID)
		draft.PendingImage = nil
	}

	return created, nil
}

func (c *Composer) append(ctx context.Context, req SubmitRequest, payload domain.MessageRecord) (domain.MessageRecord, error) {
	payload.Room = req.Room
	payload.AuthorID = req.OwnerID
	payload.AuthorAvatarURL = req.AvatarURL
	return c.store.Append(ctx, payload)
}
