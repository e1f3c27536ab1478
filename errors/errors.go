package errors

import "fmt"

var (
	ErrEmptyDraft       = fmt.Errorf("draft has no text and no attachments")
	ErrEmptyBlob        = fmt.Errorf("attachment blob is empty")
	ErrNotRecording     = fmt.Errorf("capture session is not recording")
	ErrAlreadyRecording = fmt.Errorf("capture session is already recording")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// SendStage identifies which sub-send of a submit failed.
type SendStage string

const (
	StageText  SendStage = "text"
	StageVoice SendStage = "voice"
	StageImage SendStage = "image"
)

// SendError reports a failed sub-send. Records persisted by earlier
// stages are not rolled back, so callers must treat this as partial
// success and surface it as such.
type SendError struct {
	Stage SendStage
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed at stage %s: %v", e.Stage, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// UploadError wraps the transport error behind a failed attachment write.
// The draft field is kept by the caller so the user can retry.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// TransformError reports an accessibility simulation failure. It is local
// to the rendering viewer and never blocks message visibility.
type TransformError struct {
	StatusCode int
	Err        error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform failed: %v", e.Err)
	}
	return fmt.Sprintf("transform failed: status %d", e.StatusCode)
}

func (e *TransformError) Unwrap() error { return e.Err }
