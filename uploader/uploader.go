// Package uploader pushes locally captured blobs to the blob store.
// It only makes bytes durable; turning them into a visible message is
// the composer's job.
package uploader

import (
	"context"
	"log/slog"
	"time"

	"bridge-chat/contract"
	"bridge-chat/domain"
	"bridge-chat/errors"

	"github.com/gabriel-vasile/mimetype"
)

type Uploader struct {
	store contract.BlobStore
	log   *slog.Logger
	now   func() time.Time
}

func New(store contract.BlobStore, log *slog.Logger) *Uploader {
	return &Uploader{store: store, log: log, now: time.Now}
}

// Upload writes the blob under an owner-scoped, timestamped key and
// returns the durable URL. There is no automatic retry: the caller keeps
// the draft field and decides.
func (u *Uploader) Upload(ctx context.Context, blob []byte, kind domain.AttachmentKind, ownerID string) (string, error) {
	if len(blob) == 0 {
		return "", errors.ErrEmptyBlob
	}

	key := ownerID + "/" + u.now().UTC().Format(time.RFC3339Nano) + extension(blob, kind)
	url, err := u.store.Write(ctx, key, blob)
	if err != nil {
		return "", &errors.UploadError{Key: key, Err: err}
	}

	u.log.Debug("Attachment uploaded", "key", key, "kind", kind, "size", len(blob))
	return url, nil
}

// extension prefers what the bytes actually are over what the caller
// declared. mimetype falls back to application/octet-stream, in which
// case the declared kind decides.
func extension(blob []byte, kind domain.AttachmentKind) string {
	if ext := mimetype.Detect(blob).Extension(); ext != "" {
		return ext
	}
	return kind.DefaultExtension()
}
