package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Blob_WriteReturnsURLAndReadsBack(t *testing.T) {
	req := require.New(t)
	store := NewBlobStore(openTestDB(t), slog.Default())
	ctx := context.Background()

	url, err := store.Write(ctx, "alice/2024-01-01T00:00:00Z.wav", []byte{0x52, 0x49, 0x46, 0x46})
	req.NoError(err)
	req.Equal("blob://alice/2024-01-01T00:00:00Z.wav", url)

	blob, err := store.Read(ctx, "alice/2024-01-01T00:00:00Z.wav")
	req.NoError(err)
	req.Equal([]byte{0x52, 0x49, 0x46, 0x46}, blob)
}

func Test_Blob_ReadUnknownKeyFails(t *testing.T) {
	req := require.New(t)
	store := NewBlobStore(openTestDB(t), slog.Default())

	_, err := store.Read(context.Background(), "nobody/nothing.jpg")
	req.Error(err)
}
