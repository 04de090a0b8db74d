package meili

import (
	"context"

	"github.com/kailas-cloud/pagedex/internal/db"
	"github.com/kailas-cloud/pagedex/internal/domain/document"
)

// AddDocuments submits a batch of documents to one index. Submission is
// fire-and-forget: the service applies the enqueued batch asynchronously
// and a later write to the same id wins.
func (s *Store) AddDocuments(ctx context.Context, uid string, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.client.Index(uid).AddDocumentsWithContext(ctx, docs); err != nil {
		return &db.Error{Op: db.OpAddDocuments, Err: err}
	}
	return nil
}

// DeleteDocument removes one document by primary key.
func (s *Store) DeleteDocument(ctx context.Context, uid, id string) error {
	if _, err := s.client.Index(uid).DeleteDocumentWithContext(ctx, id); err != nil {
		return &db.Error{Op: db.OpDeleteDocument, Err: err}
	}
	return nil
}
