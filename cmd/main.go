package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridge-chat/auth"
	"bridge-chat/composer"
	"bridge-chat/contract"
	"bridge-chat/domain"
	"bridge-chat/domain/event"
	"bridge-chat/moderation"
	"bridge-chat/prefs"
	"bridge-chat/repositories"
	"bridge-chat/runtime/workers"
	"bridge-chat/search"
	"bridge-chat/stream"
	"bridge-chat/transform"
	"bridge-chat/uploader"
	"bridge-chat/view"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the client lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Session identity (issued by the external auth system)
	session, err := auth.NewTokenParser([]byte(config.SessionSecret)).Parse(config.SessionToken)
	if err != nil {
		return fmt.Errorf("session token rejected: %w", err)
	}

	// 3. Local stores (BadgerDB + bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() { _ = blugeWriter.Close() }()

	// 4. Pipeline wiring: store -> fanout -> subscriptions & sinks
	appends := make(chan event.DomainEvent, config.BufferSize)
	messageLog := repositories.NewMessageLog(db, log, appends)
	blobStore := repositories.NewBlobStore(db, log)
	registry := stream.NewRegistry()
	index := search.NewIndex(blugeWriter, log)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewEventFanout(log, registry, appends, []contract.EventSink{index}, config.SinkTimeout),
		workers.NewTelemetryWorker(log, config.TelemetryInterval),
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. Compose side: moderation, uploader, composer
	words, err := moderation.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	censorChar, err := characterRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(words, censorChar)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}
	compose := composer.New(messageLog, uploader.New(blobStore, log), &moderator, log)

	// 7. Render side: preference, transform cache, subscription
	prefStore := prefs.NewStore(db, log)
	simClient := transform.NewClient(config.SimulatorBaseURL, config.SimulatorVariant, config.TransformTimeout, log)
	cache := transform.NewCache(simClient, log, config.TransformTimeout)
	defer cache.Close()

	room := domain.RoomID(config.Room)
	sub, err := stream.New(registry, messageLog, log, config.StreamHeadroom).
		Subscribe(ctx, room, session.UID)
	if err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}
	defer sub.Cancel()

	renderer := view.NewRenderer(os.Stdout, cache, session.UID, prefStore.Load(), log)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case record, ok := <-sub.Updates():
				if !ok {
					return
				}
				renderer.Show(ctx, record)
			}
		}
	}()

	// 8. Input loop until interrupted
	log.Info("Joined room", "room", room, "uid", session.UID)
	runInput(ctx, inputDeps{
		composer: compose,
		renderer: renderer,
		prefs:    prefStore,
		searcher: index,
		session:  session,
		room:     room,
		log:      log,
	})

	// 9. Final Cleanup: workers must be drained before the deferred
	// store/index closes run.
	sup.Stop()
	<-supDone
	log.Info("Client stopped cleanly")
	return nil
}

// characterRune enforces a single-rune censor replacement.
func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q", str)
	}
	return r[0], nil
}
