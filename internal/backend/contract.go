package backend

import (
	"context"

	"github.com/kailas-cloud/pagedex/internal/domain/document"
	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/search/hit"
	"github.com/kailas-cloud/pagedex/internal/usecase/index"
)

// Indexes is the index-manager contract the facade drives.
type Indexes interface {
	GetOrCreate(ctx context.Context, t schema.ContentType) (index.Handle, error)
	Rebuild(ctx context.Context, t schema.ContentType) (index.Handle, error)
	Add(ctx context.Context, h index.Handle, doc document.Document) error
	AddBatch(ctx context.Context, h index.Handle, docs []document.Document) error
	Delete(ctx context.Context, h index.Handle, id string) error
	Invalidate()
}

// Searcher is the orchestration/materialization contract the facade drives.
type Searcher interface {
	Search(ctx context.Context, label, queryText string, orderByRelevance bool) (*hit.Set, error)
	Autocomplete(ctx context.Context, label, queryText string, orderByRelevance bool) (*hit.Set, error)
	Materialize(ctx context.Context, set *hit.Set, offset, limit int) ([]record.Record, error)
	MaterializePage(ctx context.Context, set *hit.Set, offset, limit int) ([]record.Record, int, error)
	Count(ctx context.Context, set *hit.Set) (int, error)
}
