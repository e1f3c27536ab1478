package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"bridge-chat/domain"
	"bridge-chat/domain/event"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_AssignsIdAndServerTimestamp(t *testing.T) {
	req := require.New(t)
	log := NewMessageLog(openTestDB(t), slog.Default(), nil)

	before := time.Now().UTC()
	record, err := log.Append(context.Background(), domain.MessageRecord{
		Room:     "lobby",
		AuthorID: "alice",
		Text:     "hi",
	})
	req.NoError(err)
	req.NotEqual([16]byte{}, [16]byte(record.ID))
	req.False(record.CreatedAt.Before(before))
}

func Test_Append_RejectsMultiPayloadRecords(t *testing.T) {
	req := require.New(t)
	log := NewMessageLog(openTestDB(t), slog.Default(), nil)

	_, err := log.Append(context.Background(), domain.MessageRecord{
		Room:     "lobby",
		AuthorID: "alice",
		Text:     "hi",
		ImageURL: "blob://x",
	})
	req.Error(err)
}

func Test_Append_TimestampsAreStrictlyMonotonic(t *testing.T) {
	req := require.New(t)
	log := NewMessageLog(openTestDB(t), slog.Default(), nil)

	// Freeze the clock: every append sees the same wall time, the log
	// must still order them.
	frozen := time.Now().UTC()
	log.now = func() time.Time { return frozen }

	var last time.Time
	for i := 0; i < 5; i++ {
		record, err := log.Append(context.Background(), domain.MessageRecord{
			Room: "lobby", AuthorID: "alice", Text: "tick",
		})
		req.NoError(err)
		req.True(record.CreatedAt.After(last))
		last = record.CreatedAt
	}
}

func Test_Query_ReturnsRoomHistoryInOrder(t *testing.T) {
	req := require.New(t)
	log := NewMessageLog(openTestDB(t), slog.Default(), nil)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := log.Append(ctx, domain.MessageRecord{Room: "lobby", AuthorID: "alice", Text: text})
		req.NoError(err)
	}
	_, err := log.Append(ctx, domain.MessageRecord{Room: "other", AuthorID: "bob", Text: "elsewhere"})
	req.NoError(err)

	records, err := log.Query(ctx, "lobby")
	req.NoError(err)
	req.Len(records, 3)
	req.Equal("one", records[0].Text)
	req.Equal("two", records[1].Text)
	req.Equal("three", records[2].Text)
	for i := 1; i < len(records); i++ {
		req.True(records[i-1].Before(records[i]))
	}
}

func Test_Append_PushesToFanout(t *testing.T) {
	req := require.New(t)
	appends := make(chan event.DomainEvent, 1)
	log := NewMessageLog(openTestDB(t), slog.Default(), appends)

	record, err := log.Append(context.Background(), domain.MessageRecord{
		Room: "lobby", AuthorID: "alice", Text: "hi",
	})
	req.NoError(err)

	select {
	case e := <-appends:
		appended, ok := e.(event.MessageAppended)
		req.True(ok)
		req.Equal(record.ID, appended.Record.ID)
	case <-time.After(time.Second):
		req.Fail("append was not fanned out")
	}
}

func Test_Record_RoundTripsAllPayloads(t *testing.T) {
	req := require.New(t)
	log := NewMessageLog(openTestDB(t), slog.Default(), nil)
	ctx := context.Background()

	_, err := log.Append(ctx, domain.MessageRecord{Room: "r", AuthorID: "a", AuthorAvatarURL: "http://avatar", Text: "hello"})
	req.NoError(err)
	_, err = log.Append(ctx, domain.MessageRecord{Room: "r", AuthorID: "a", AudioURL: "blob://a/voice.wav"})
	req.NoError(err)
	_, err = log.Append(ctx, domain.MessageRecord{Room: "r", AuthorID: "a", ImageURL: "blob://a/pic.jpg"})
	req.NoError(err)

	records, err := log.Query(ctx, "r")
	req.NoError(err)
	req.Len(records, 3)
	req.Equal("hello", records[0].Text)
	req.Equal("http://avatar", records[0].AuthorAvatarURL)
	req.Equal("blob://a/voice.wav", records[1].AudioURL)
	req.Equal("blob://a/pic.jpg", records[2].ImageURL)
}
