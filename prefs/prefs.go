// Package prefs persists the viewer's accessibility preference locally,
// so it survives between sessions without ever touching the server.
package prefs

import (
	"log/slog"

	"bridge-chat/domain"

	"github.com/dgraph-io/badger/v4"
)

// preferenceKey is the single well-known key the preference lives under.
const preferenceKey = "prefs:viewer"

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Load reads the stored preference at session start. A missing or
// unrecognized value degrades to PreferenceNone, never to an error the
// session would trip over.
func (s *Store) Load() domain.ViewerPreference {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(preferenceKey))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			raw = append([]byte(nil), value...)
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.log.Warn("Preference read failed, defaulting to None", "err", err)
		}
		return domain.PreferenceNone
	}
	return domain.ParsePreference(string(raw))
}

// Save writes the preference on every change.
func (s *Store) Save(pref domain.ViewerPreference) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(preferenceKey), []byte(pref))
	})
}
