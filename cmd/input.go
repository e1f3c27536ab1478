package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"bridge-chat/auth"
	"bridge-chat/composer"
	"bridge-chat/contract"
	"bridge-chat/domain"
	"bridge-chat/prefs"
	"bridge-chat/view"
)

type inputDeps struct {
	composer *composer.Composer
	renderer *view.Renderer
	prefs    *prefs.Store
	searcher contract.Searcher
	session  auth.Session
	room     domain.RoomID
	log      *slog.Logger
}

// runInput drives one compose session from stdin until the context is
// canceled. Plain lines become the draft text and are submitted; while
// recording, lines are captured as audio frames instead.
//
// Commands: /record, /stop, /image <path>, /pref <value>, /find <terms>
func runInput(ctx context.Context, deps inputDeps) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	draft := &domain.ComposeDraft{}
	capture := domain.NewCaptureSession()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			deps.handleLine(ctx, line, draft, capture)
		}
	}
}

func (d inputDeps) handleLine(ctx context.Context, line string, draft *domain.ComposeDraft, capture *domain.CaptureSession) {
	switch {
	case line == "/record":
		if err := capture.Start(time.Now()); err != nil {
			fmt.Println(err)
		}
		return

	case line == "/stop":
		blob, err := capture.Stop()
		if err != nil {
			fmt.Println(err)
			return
		}
		draft.PendingAudio = blob

	case strings.HasPrefix(line, "/image "):
		path := strings.TrimPrefix(line, "/image ")
		blob, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("cannot read %s: %v\n", path, err)
			return
		}
		draft.PendingImage = blob

	case strings.HasPrefix(line, "/pref "):
		pref := domain.ParsePreference(strings.TrimPrefix(line, "/pref "))
		d.renderer.SetPreference(pref)
		if err := d.prefs.Save(pref); err != nil {
			d.log.Warn("Preference not persisted", "err", err)
		}
		return

	case strings.HasPrefix(line, "/find "):
		ids, err := d.searcher.Search(ctx, strings.TrimPrefix(line, "/find "), 10)
		if err != nil {
			d.log.Warn("Search failed", "err", err)
			return
		}
		fmt.Printf("%d matching message(s): %v\n", len(ids), ids)
		return

	default:
		if capture.State() == domain.CaptureRecording {
			capture.Append([]byte(line))
			return
		}
		draft.Text = line
	}

	if !draft.HasContent() {
		return
	}
	created, err := d.composer.Submit(ctx, draft, composer.SubmitRequest{
		OwnerID:   d.session.UID,
		AvatarURL: d.session.AvatarURL,
		Room:      d.room,
	})
	if err != nil {
		// Earlier stages may have gone through; say so instead of
		// pretending the whole submit failed.
		fmt.Printf("sent %d of the draft's messages, then: %v\n", len(created), err)
	}
}
