package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"bridge-chat/composer"
	"bridge-chat/contract"
	"bridge-chat/domain/event"
	"bridge-chat/moderation"
	"bridge-chat/repositories"
	"bridge-chat/runtime/workers"
	"bridge-chat/search"
	"bridge-chat/stream"
	"bridge-chat/transform"
	"bridge-chat/uploader"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BasePipelineSuite boots the whole in-process pipeline the way the
// binary wires it: badger-backed message log and blob store, event
// fanout under a supervisor, full-text index sink, composer and stream
// on top, and a fake simulation service for the transform cache.
type BasePipelineSuite struct {
	suite.Suite
	Config Config

	DB        *badger.DB
	Log       *slog.Logger
	Registry  *stream.Registry
	Store     *repositories.MessageLog
	Composer  *composer.Composer
	Stream    *stream.Stream
	Index     *search.Index
	Cache     *transform.Cache
	Simulator *httptest.Server

	supervisor *workers.Supervisor
	supDone    chan struct{}
}

// SetupSuite loads the environment configuration before running tests
func (s *BasePipelineSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BasePipelineSuite) SetupTest() {
	s.Log = slog.Default()

	opts := badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	s.Require().NoError(err)
	s.DB = db

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(s.T().TempDir()))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = writer.Close() })
	s.Index = search.NewIndex(writer, s.Log)

	appends := make(chan event.DomainEvent, s.Config.EventBuffer)
	s.Store = repositories.NewMessageLog(db, s.Log, appends)
	s.Registry = stream.NewRegistry()

	s.supervisor = workers.NewSupervisor(s.Log, 100*time.Millisecond)
	s.supervisor.Add(workers.NewEventFanout(s.Log, s.Registry, appends,
		[]contract.EventSink{s.Index}, time.Second))
	s.supDone = make(chan struct{})
	go func() {
		s.supervisor.Run(context.Background())
		close(s.supDone)
	}()

	words, err := moderation.LoadCensoredWords()
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(words, '*')
	s.Require().NoError(err)

	blobs := repositories.NewBlobStore(db, s.Log)
	s.Composer = composer.New(s.Store, uploader.New(blobs, s.Log), &moderator, s.Log)

	// Subscribers in the scenarios drain only after the whole burst has
	// been submitted, so headroom must cover it.
	headroom := s.Config.Users*s.Config.MessagesPerUser + 64
	s.Stream = stream.New(s.Registry, s.Store, s.Log, headroom)

	// Fake simulation service: answers every variant with a derived URL.
	s.Simulator = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"simulatedImageUrl": %q}`, "https://sim/"+r.FormValue("image"))
	}))
	client := transform.NewClient(s.Simulator.URL, "", 5*time.Second, s.Log)
	s.Cache = transform.NewCache(client, s.Log, 5*time.Second)
}

func (s *BasePipelineSuite) TearDownTest() {
	s.Cache.Close()
	s.Simulator.Close()
	s.supervisor.Stop()
	select {
	case <-s.supDone:
	case <-time.After(5 * time.Second):
		s.T().Fatal("supervisor did not shut down")
	}
	s.Require().NoError(s.DB.Close())
}

// Step prints a colorized header so scenario phases stand out in logs
func (s *BasePipelineSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	fn(ctx)
}
