package transform

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"bridge-chat/domain"
	"bridge-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func imageRecord() domain.MessageRecord {
	return domain.MessageRecord{
		ID:       uuid.New(),
		Room:     "lobby",
		AuthorID: "author",
		ImageURL: "blob://author/pic.jpg",
	}
}

func awaitState(req *require.Assertions, cache *Cache, key Key, want State) {
	deadline := time.After(time.Second)
	for {
		if cache.StateOf(key) == want {
			return
		}
		select {
		case <-cache.Watch(key):
		case <-deadline:
			req.FailNowf("timeout", "key never reached state %d, stuck at %d", want, cache.StateOf(key))
		}
	}
}

func TestRender_ColorBlindnessIssuesExactlyOneCall(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockSimulator(ctrl)

	msg := imageRecord()
	release := make(chan struct{})
	sim.EXPECT().SimulateColorBlind(gomock.Any(), msg.ImageURL).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			<-release
			return "https://sim/out.png", nil
		}).Times(1)

	cache := NewCache(sim, slog.Default(), time.Second)
	defer cache.Close()

	// Re-renders while the call is in flight show the original and never
	// issue a second call.
	for i := 0; i < 5; i++ {
		got := cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
		req.Equal(msg.ImageURL, got.URL)
		req.False(got.Simulated)
	}

	key := Key{MessageID: msg.ID, Preference: domain.PreferenceColorBlindness}
	req.Equal(StatePending, cache.StateOf(key))

	close(release)
	awaitState(req, cache, key, StateReady)

	got := cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	req.True(got.Simulated)
	req.Equal("https://sim/out.png", got.URL)
}

func TestRender_FailureIsTerminalForTheKey(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockSimulator(ctrl)

	msg := imageRecord()
	sim.EXPECT().SimulateColorBlind(gomock.Any(), msg.ImageURL).
		Return("", fmt.Errorf("service down")).Times(1)

	cache := NewCache(sim, slog.Default(), time.Second)
	defer cache.Close()

	cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	key := Key{MessageID: msg.ID, Preference: domain.PreferenceColorBlindness}
	awaitState(req, cache, key, StateFailed)

	// Subsequent renders fall back to the original without retrying.
	got := cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	req.Equal(msg.ImageURL, got.URL)
	req.False(got.Simulated)
}

func TestRender_PreferenceFlipKeepsTheEntry(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockSimulator(ctrl)

	msg := imageRecord()
	sim.EXPECT().SimulateColorBlind(gomock.Any(), msg.ImageURL).
		Return("https://sim/out.png", nil).Times(1)

	cache := NewCache(sim, slog.Default(), time.Second)
	defer cache.Close()

	cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	key := Key{MessageID: msg.ID, Preference: domain.PreferenceColorBlindness}
	awaitState(req, cache, key, StateReady)

	// Away from Color-Blindness: passthrough, entry untouched.
	got := cache.Render(context.Background(), msg, domain.PreferenceNone)
	req.Equal(msg.ImageURL, got.URL)
	req.False(got.Simulated)
	req.Equal(StateReady, cache.StateOf(key))

	// Back again: the memoized result, no second call.
	got = cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	req.True(got.Simulated)
}

func TestRender_DeafnessAndTextArePassthrough(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockSimulator(ctrl)
	// No EXPECT: neither path may reach the simulator.

	cache := NewCache(sim, slog.Default(), time.Second)
	defer cache.Close()

	msg := imageRecord()
	got := cache.Render(context.Background(), msg, domain.PreferenceDeafness)
	req.Equal(msg.ImageURL, got.URL)
	req.False(got.Simulated)

	text := domain.MessageRecord{ID: uuid.New(), Room: "lobby", AuthorID: "author", Text: "hi"}
	got = cache.Render(context.Background(), text, domain.PreferenceColorBlindness)
	req.Empty(got.URL)
}

func TestClose_DiscardsInFlightResults(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	sim := mocks.NewMockSimulator(ctrl)

	msg := imageRecord()
	started := make(chan struct{})
	release := make(chan struct{})
	sim.EXPECT().SimulateColorBlind(gomock.Any(), msg.ImageURL).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			close(started)
			<-release
			return "https://sim/out.png", nil
		})

	cache := NewCache(sim, slog.Default(), time.Second)
	cache.Render(context.Background(), msg, domain.PreferenceColorBlindness)
	<-started

	cache.Close()
	close(release)

	// The late result must not flip the entry to Ready after Close.
	key := Key{MessageID: msg.ID, Preference: domain.PreferenceColorBlindness}
	time.Sleep(20 * time.Millisecond)
	req.NotEqual(StateReady, cache.StateOf(key))
}
