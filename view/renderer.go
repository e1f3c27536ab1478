// Package view renders the room timeline to a terminal. It is the only
// consumer of the transform cache: accessibility is applied per viewer
// at render time, never attached to the records themselves.
package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"bridge-chat/domain"
	"bridge-chat/projection"
	"bridge-chat/transform"

	"github.com/gookit/color"
)

type Renderer struct {
	out      io.Writer
	cache    *transform.Cache
	timeline *projection.Timeline
	selfUID  string
	log      *slog.Logger

	mu   sync.Mutex
	pref domain.ViewerPreference

	outMu sync.Mutex
}

func NewRenderer(out io.Writer, cache *transform.Cache, selfUID string,
	pref domain.ViewerPreference, log *slog.Logger) *Renderer {
	return &Renderer{
		out:      out,
		cache:    cache,
		timeline: projection.NewTimeline(selfUID),
		selfUID:  selfUID,
		log:      log,
		pref:     pref,
	}
}

// SetPreference switches the accessibility mode for this viewer only.
// Already-rendered messages are simply re-read on their next display;
// cached transform entries survive the switch.
func (r *Renderer) SetPreference(pref domain.ViewerPreference) {
	r.mu.Lock()
	r.pref = pref
	r.mu.Unlock()
}

func (r *Renderer) Preference() domain.ViewerPreference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pref
}

// Show inserts the record into the timeline and prints it. An image
// whose transform is still pending is printed with the original URL and
// reprinted once the simulation settles.
func (r *Renderer) Show(ctx context.Context, record domain.MessageRecord) {
	r.timeline.Insert(record)
	r.print(r.line(ctx, record))

	if record.Kind() == domain.PayloadImage {
		r.reprintOnSettle(ctx, record)
	}
}

// reprintOnSettle watches a Pending transform key and prints the updated
// line when it becomes Ready. A Failed settle prints nothing: the
// original line already on screen is what the viewer keeps.
func (r *Renderer) reprintOnSettle(ctx context.Context, record domain.MessageRecord) {
	key := transform.Key{MessageID: record.ID, Preference: r.Preference()}
	if r.cache.StateOf(key) != transform.StatePending {
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-r.cache.Watch(key):
		}
		if r.cache.StateOf(key) != transform.StateReady {
			return
		}
		r.print(r.line(ctx, record))
	}()
}

// print serializes writes: a settling transform may reprint concurrently
// with the subscription feed.
func (r *Renderer) print(line string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.out, line)
}

// Timeline exposes the ordered history for redraws and search hits.
func (r *Renderer) Timeline() *projection.Timeline {
	return r.timeline
}

func (r *Renderer) line(ctx context.Context, record domain.MessageRecord) string {
	author := record.AuthorID
	if author == r.selfUID {
		author = color.New(color.FgGreen).Render(author)
	} else {
		author = color.New(color.FgCyan).Render(author)
	}
	stamp := record.CreatedAt.Format("15:04:05")

	switch record.Kind() {
	case domain.PayloadAudio:
		return fmt.Sprintf("%s %s [voice] %s", stamp, author, record.AudioURL)
	case domain.PayloadImage:
		shown := r.cache.Render(ctx, record, r.Preference())
		if shown.Simulated {
			return fmt.Sprintf("%s %s [image, simulated] %s", stamp, author, shown.URL)
		}
		return fmt.Sprintf("%s %s [image] %s", stamp, author, shown.URL)
	default:
		return fmt.Sprintf("%s %s %s", stamp, author, record.Text)
	}
}
