package index

import (
	"context"

	"github.com/kailas-cloud/pagedex/internal/db"
	"github.com/kailas-cloud/pagedex/internal/domain/document"
)

// Store defines the remote index service contract.
type Store interface {
	IndexExists(ctx context.Context, uid string) (bool, error)
	// CreateIndex returns db.ErrIndexExists when the index is already there.
	CreateIndex(ctx context.Context, uid, primaryKey string) error
	// DeleteIndex returns db.ErrIndexNotFound when the index is absent.
	DeleteIndex(ctx context.Context, uid string) error
	AddDocuments(ctx context.Context, uid string, docs []document.Document) error
	DeleteDocument(ctx context.Context, uid, id string) error
	Search(ctx context.Context, uid, query string, params db.SearchParams) ([]db.Hit, error)
}
