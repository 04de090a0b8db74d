// Package backend is the stable entry point the host framework talks to:
// type registration, document ingestion, and search.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagedex/internal/domain"
	"github.com/kailas-cloud/pagedex/internal/domain/document"
	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
)

// Backend composes the index manager and the search pipeline behind the
// surface the host framework consumes. It owns the type registry for its
// process lifetime; remote indexes are created lazily per type.
type Backend struct {
	registry     *schema.Registry
	indexes      Indexes
	searcher     Searcher
	logger       *zap.Logger
	autocomplete bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithAutocomplete enables the autocomplete surface.
func WithAutocomplete() Option {
	return func(b *Backend) { b.autocomplete = true }
}

// WithLogger sets the backend logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// New creates a backend facade.
func New(registry *schema.Registry, indexes Indexes, searcher Searcher, opts ...Option) *Backend {
	b := &Backend{
		registry: registry,
		indexes:  indexes,
		searcher: searcher,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddType registers a content type for indexing. Idempotent; the remote
// index is created lazily on first ingestion or search.
func (b *Backend) AddType(t schema.ContentType) error {
	if err := b.registry.Register(t); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
	}
	return nil
}

// Add flattens one record and submits it to its type's index.
func (b *Backend) Add(ctx context.Context, rec record.Record) error {
	t, ok := b.registry.Get(rec.TypeLabel())
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTypeNotRegistered, rec.TypeLabel())
	}

	h, err := b.indexes.GetOrCreate(ctx, t)
	if err != nil {
		return err
	}
	return b.indexes.Add(ctx, h, document.Build(t, rec))
}

// AddBulk flattens many records of one type and submits them as a single
// batch, avoiding one round-trip per record.
func (b *Backend) AddBulk(ctx context.Context, label string, recs []record.Record) error {
	t, ok := b.registry.Get(label)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTypeNotRegistered, label)
	}

	h, err := b.indexes.GetOrCreate(ctx, t)
	if err != nil {
		return err
	}

	docs := make([]document.Document, len(recs))
	for i, rec := range recs {
		docs[i] = document.Build(t, rec)
	}
	return b.indexes.AddBatch(ctx, h, docs)
}

// Delete removes a record's document from its type's index.
func (b *Backend) Delete(ctx context.Context, rec record.Record) error {
	t, ok := b.registry.Get(rec.TypeLabel())
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTypeNotRegistered, rec.TypeLabel())
	}

	h, err := b.indexes.GetOrCreate(ctx, t)
	if err != nil {
		return err
	}
	return b.indexes.Delete(ctx, h, rec.PK())
}

// Search runs the full pipeline for queryText against label and returns
// the ordered page of records. An unregistered type or empty query string
// short-circuits to an explicitly empty result with no remote or datastore
// access.
func (b *Backend) Search(ctx context.Context, queryText, label string, opts ...SearchOption) ([]record.Record, error) {
	o := applySearchOptions(opts)

	if !b.validate(queryText, label) {
		return []record.Record{}, nil
	}

	set, err := b.searcher.Search(ctx, label, queryText, o.orderByRelevance)
	if err != nil {
		return nil, err
	}
	return b.searcher.Materialize(ctx, set, o.offset, o.limit)
}

// SearchWithCount runs the pipeline once and returns both the ordered page
// and the total length of the unwindowed sequence. Callers that need a page
// plus its count use this instead of Search followed by Count, which would
// fan the query out to the remote indexes twice.
func (b *Backend) SearchWithCount(ctx context.Context, queryText, label string, opts ...SearchOption) ([]record.Record, int, error) {
	o := applySearchOptions(opts)

	if !b.validate(queryText, label) {
		return []record.Record{}, 0, nil
	}

	set, err := b.searcher.Search(ctx, label, queryText, o.orderByRelevance)
	if err != nil {
		return nil, 0, err
	}
	return b.searcher.MaterializePage(ctx, set, o.offset, o.limit)
}

// Count runs the full pipeline and returns the length of the unwindowed
// result sequence.
func (b *Backend) Count(ctx context.Context, queryText, label string, opts ...SearchOption) (int, error) {
	o := applySearchOptions(opts)

	if !b.validate(queryText, label) {
		return 0, nil
	}

	set, err := b.searcher.Search(ctx, label, queryText, o.orderByRelevance)
	if err != nil {
		return 0, err
	}
	return b.searcher.Count(ctx, set)
}

// Autocomplete is Search against the autocomplete-suffixed keys. It fails
// fast when the backend was not configured with autocomplete support.
func (b *Backend) Autocomplete(ctx context.Context, queryText, label string, opts ...SearchOption) ([]record.Record, error) {
	if !b.autocomplete {
		return nil, domain.ErrAutocompleteNotSupported
	}
	o := applySearchOptions(opts)

	if !b.validate(queryText, label) {
		return []record.Record{}, nil
	}

	set, err := b.searcher.Autocomplete(ctx, label, queryText, o.orderByRelevance)
	if err != nil {
		return nil, err
	}
	return b.searcher.Materialize(ctx, set, o.offset, o.limit)
}

// AutocompleteWithCount is SearchWithCount against the autocomplete-suffixed
// keys, with the same configuration gate as Autocomplete.
func (b *Backend) AutocompleteWithCount(ctx context.Context, queryText, label string, opts ...SearchOption) ([]record.Record, int, error) {
	if !b.autocomplete {
		return nil, 0, domain.ErrAutocompleteNotSupported
	}
	o := applySearchOptions(opts)

	if !b.validate(queryText, label) {
		return []record.Record{}, 0, nil
	}

	set, err := b.searcher.Autocomplete(ctx, label, queryText, o.orderByRelevance)
	if err != nil {
		return nil, 0, err
	}
	return b.searcher.MaterializePage(ctx, set, o.offset, o.limit)
}

// RebuildIndex destroys and recreates the remote index for one type. The
// caller re-ingests all documents afterwards.
func (b *Backend) RebuildIndex(ctx context.Context, label string) error {
	t, ok := b.registry.Get(label)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTypeNotRegistered, label)
	}
	if _, err := b.indexes.Rebuild(ctx, t); err != nil {
		return err
	}
	return nil
}

// RefreshIndex drops every cached index handle and re-probes the remote
// service for each registered type, recreating indexes that disappeared.
// It does not reload any documents.
func (b *Backend) RefreshIndex(ctx context.Context) error {
	b.indexes.Invalidate()
	for _, label := range b.registry.Labels() {
		t, ok := b.registry.Get(label)
		if !ok {
			continue
		}
		if _, err := b.indexes.GetOrCreate(ctx, t); err != nil {
			return fmt.Errorf("refresh %s: %w", label, err)
		}
	}
	return nil
}

// ResetIndex is explicitly unsupported.
func (b *Backend) ResetIndex() error {
	return fmt.Errorf("reset index: %w", domain.ErrNotImplemented)
}

// validate applies the request preconditions: the type must be registered
// for search and the query string non-empty. Failures reject the request
// locally, they are not errors.
func (b *Backend) validate(queryText, label string) bool {
	if queryText == "" {
		return false
	}
	if !b.registry.Registered(label) {
		b.logger.Debug("search on unregistered type", zap.String("type", label))
		return false
	}
	return true
}

type searchOptions struct {
	offset           int
	limit            int
	orderByRelevance bool
}

// SearchOption tunes one search request.
type SearchOption func(*searchOptions)

// WithOffset skips the first n records of the materialized sequence.
func WithOffset(n int) SearchOption {
	return func(o *searchOptions) { o.offset = n }
}

// WithLimit caps the returned page; zero means no cap.
func WithLimit(n int) SearchOption {
	return func(o *searchOptions) { o.limit = n }
}

// WithoutRelevanceOrder leaves records in the datastore's default order
// instead of reimposing index relevance.
func WithoutRelevanceOrder() SearchOption {
	return func(o *searchOptions) { o.orderByRelevance = false }
}

func applySearchOptions(opts []SearchOption) searchOptions {
	o := searchOptions{orderByRelevance: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
