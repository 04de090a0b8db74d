package search

import (
	"context"

	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/search/hit"
	"github.com/kailas-cloud/pagedex/internal/usecase/index"
)

// Indexes resolves and queries the per-type remote indexes.
type Indexes interface {
	GetOrCreate(ctx context.Context, t schema.ContentType) (index.Handle, error)
	Query(ctx context.Context, h index.Handle, text string, restrict []string) ([]hit.Hit, error)
}

// Repository is the canonical datastore capability the materializer runs
// on: fetch by primary-key set, preserving an explicit order or falling
// back to the store's default order, distinct by construction.
type Repository interface {
	FetchByIDs(ctx context.Context, ids []string, preserveOrder bool) ([]record.Record, error)
}
