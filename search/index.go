// Package search maintains a local full-text index over the text
// history, fed by the event fanout as records are appended.
package search

import (
	"context"
	"log/slog"

	"bridge-chat/domain"
	"bridge-chat/domain/event"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

// Consume indexes appended text records. Voice and image records carry
// no searchable text and are skipped.
func (i *Index) Consume(_ context.Context, e event.DomainEvent) error {
	appended, ok := e.(event.MessageAppended)
	if !ok || appended.Record.Kind() != domain.PayloadText {
		return nil
	}

	record := appended.Record
	doc := bluge.NewDocument(record.ID.String()).
		AddField(bluge.NewTextField("text", record.Text).StoreValue()).
		AddField(bluge.NewKeywordField("author", record.AuthorID)).
		AddField(bluge.NewDateTimeField("createdAt", record.CreatedAt))

	return i.writer.Update(doc.ID(), doc)
}

// Search returns the ids of text messages matching the terms, best
// score first.
func (i *Index) Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("text")
	request := bluge.NewTopNSearch(limit, query)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
