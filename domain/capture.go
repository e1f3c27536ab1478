package domain

import (
	"time"

	"bridge-chat/errors"
)

// CaptureState is the explicit recording state: Idle -> Recording -> Idle.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureRecording
)

// CaptureSession models audio capture as an explicit two-state machine
// driven by Start/Stop calls rather than a toggle bound to UI state.
// A blob is produced on Stop and the session returns to Idle.
type CaptureSession struct {
	state   CaptureState
	started time.Time
	buffer  []byte
}

func NewCaptureSession() *CaptureSession {
	return &CaptureSession{state: CaptureIdle}
}

func (c *CaptureSession) State() CaptureState { return c.state }

func (c *CaptureSession) Start(now time.Time) error {
	if c.state == CaptureRecording {
		return errors.ErrAlreadyRecording
	}
	c.state = CaptureRecording
	c.started = now
	c.buffer = nil
	return nil
}

// Append accumulates captured audio frames while recording. Frames
// arriving in Idle state are dropped.
func (c *CaptureSession) Append(frames []byte) {
	if c.state != CaptureRecording {
		return
	}
	c.buffer = append(c.buffer, frames...)
}

// Stop ends the recording and returns the captured blob. The session is
// back to Idle afterwards, whatever the outcome.
func (c *CaptureSession) Stop() ([]byte, error) {
	if c.state != CaptureRecording {
		return nil, errors.ErrNotRecording
	}
	c.state = CaptureIdle
	blob := c.buffer
	c.buffer = nil
	return blob, nil
}
