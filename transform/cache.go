// Package transform memoizes the accessibility image simulation per
// viewer. Entries are keyed by (message id, preference) and never shared
// across viewers, since the simulation may vary per request.
package transform

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bridge-chat/contract"
	"bridge-chat/domain"

	"github.com/google/uuid"
)

// State is the per-key lifecycle:
// NotNeeded -> Pending -> Ready | Failed.
type State int

const (
	StateNotNeeded State = iota
	StatePending
	StateReady
	StateFailed
)

type Key struct {
	MessageID  uuid.UUID
	Preference domain.ViewerPreference
}

// Displayable is what the renderer shows for an image message right now.
type Displayable struct {
	URL       string
	Simulated bool
}

type entry struct {
	state    State
	url      string
	watchers []chan struct{}
}

// Cache owns the transform state machine. Entering Pending triggers
// exactly one outstanding simulation call per key: concurrent re-renders
// under the same preference never issue duplicate calls. Failed is
// terminal for the key (no automatic retry); the display falls back to
// the original image. Preference flips away from Color-Blindness leave
// the entry in place, so flipping back does not re-trigger the call.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	sim     contract.Simulator
	log     *slog.Logger
	timeout time.Duration
	closed  bool
}

func NewCache(sim contract.Simulator, log *slog.Logger, timeout time.Duration) *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		sim:     sim,
		log:     log,
		timeout: timeout,
	}
}

// Render returns the image to display for the message under the
// viewer's current preference, lazily starting the simulation when the
// preference asks for one. While Pending or after Failed the original
// image is shown; the transform never blocks message visibility.
func (c *Cache) Render(ctx context.Context, msg domain.MessageRecord, pref domain.ViewerPreference) Displayable {
	if msg.Kind() != domain.PayloadImage {
		return Displayable{}
	}
	original := Displayable{URL: msg.ImageURL}
	// Deafness has no image transform: plain passthrough.
	if pref != domain.PreferenceColorBlindness {
		return original
	}

	key := Key{MessageID: msg.ID, Preference: pref}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return original
	}

	e, ok := c.entries[key]
	if !ok {
		e = &entry{state: StateNotNeeded}
		c.entries[key] = e
	}
	if e.state == StateNotNeeded {
		e.state = StatePending
		go c.simulate(ctx, key, msg.ImageURL)
	}

	if e.state == StateReady {
		return Displayable{URL: e.url, Simulated: true}
	}
	return original
}

// StateOf reports the current state for a key. NotNeeded means the key
// has never entered the pipeline.
func (c *Cache) StateOf(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return StateNotNeeded
}

// Watch returns a channel closed when the key next changes state, so
// the rendering layer can re-read it. A key that already settled gets
// an immediately closed channel.
func (c *Cache) Watch(key Key) <-chan struct{} {
	ch := make(chan struct{})

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.state == StatePending {
		if !ok {
			e = &entry{state: StateNotNeeded}
			c.entries[key] = e
		}
		e.watchers = append(e.watchers, ch)
		return ch
	}
	close(ch)
	return ch
}

// Close tears the cache down with its owning view. In-flight calls may
// complete in the background but their results are discarded.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Cache) simulate(ctx context.Context, key Key, imageURL string) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url, err := c.sim.SimulateColorBlind(callCtx, imageURL)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	e, ok := c.entries[key]
	if !ok {
		return
	}

	if err != nil {
		// Terminal until the message or preference changes; the viewer
		// keeps seeing the original image.
		e.state = StateFailed
		c.log.Warn("Image simulation failed", "message", key.MessageID, "err", err)
	} else {
		e.state = StateReady
		e.url = url
	}

	for _, w := range e.watchers {
		close(w)
	}
	e.watchers = nil
}
