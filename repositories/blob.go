package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BlobStore is a keyed binary store on BadgerDB, standing behind the
// contract.BlobStore interface where a remote bucket would normally sit.
// Write returns a blob:// URL whose path is the storage key, so records
// reference blobs exactly like they would reference a remote object.
type BlobStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBlobStore(db *badger.DB, log *slog.Logger) *BlobStore {
	return &BlobStore{db: db, log: log}
}

func (b *BlobStore) Write(_ context.Context, key string, blob []byte) (string, error) {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("blob:"+key), blob)
	})
	if err != nil {
		return "", err
	}
	b.log.Debug("Blob written", "key", key, "size", len(blob))
	return fmt.Sprintf("blob://%s", key), nil
}

func (b *BlobStore) Read(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("blob:" + key))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			out = append([]byte(nil), value...)
			return nil
		})
	})
	return out, err
}
