// Package index manages the one-to-one mapping between content types and
// remote indexes.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagedex/internal/db"
	"github.com/kailas-cloud/pagedex/internal/domain/document"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/search/hit"
)

// Handle identifies one live remote index.
type Handle struct {
	typeLabel string
	uid       string
}

// TypeLabel returns the content type label the index belongs to.
func (h Handle) TypeLabel() string { return h.typeLabel }

// UID returns the remote index identifier.
func (h Handle) UID() string { return h.uid }

// PrimaryKey returns the primary key field every index is created with.
func (h Handle) PrimaryKey() string { return document.PrimaryKeyField }

// Manager owns the index handles for one backend instance. Handles are
// created lazily on first access and live for the process lifetime unless
// rebuilt or invalidated.
type Manager struct {
	store  Store
	logger *zap.Logger

	mu      sync.Mutex
	handles map[string]Handle
	creates map[string]*sync.Mutex
}

// NewManager creates an index manager.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		logger:  logger,
		handles: make(map[string]Handle),
		creates: make(map[string]*sync.Mutex),
	}
}

// creationLock returns the per-label lock serializing index creation, so
// concurrent first accesses to one type race at most against the remote
// service's own duplicate-create check.
func (m *Manager) creationLock(label string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.creates[label]
	if !ok {
		l = &sync.Mutex{}
		m.creates[label] = l
	}
	return l
}

// GetOrCreate returns the handle for a type's index, creating the remote
// index on first access. Any probe failure is treated as "does not exist",
// and an already-exists creation failure as success, so the sequence is
// idempotent.
func (m *Manager) GetOrCreate(ctx context.Context, t schema.ContentType) (Handle, error) {
	uid := t.IndexLabel()

	m.mu.Lock()
	if h, ok := m.handles[t.Label()]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	lock := m.creationLock(t.Label())
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	if h, ok := m.handles[t.Label()]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	exists, err := m.store.IndexExists(ctx, uid)
	if err != nil {
		// A failed probe (network, malformed response) is indistinguishable
		// from absence here; fall through to creation, which is idempotent.
		m.logger.Debug("index probe failed, attempting creation",
			zap.String("index", uid), zap.Error(err))
		exists = false
	}

	if !exists {
		if err := m.store.CreateIndex(ctx, uid, document.PrimaryKeyField); err != nil {
			if !errors.Is(err, db.ErrIndexExists) {
				return Handle{}, fmt.Errorf("create index %s: %w", uid, err)
			}
		} else {
			m.logger.Info("created index", zap.String("index", uid))
		}
	}

	h := Handle{typeLabel: t.Label(), uid: uid}
	m.mu.Lock()
	m.handles[t.Label()] = h
	m.mu.Unlock()
	return h, nil
}

// Rebuild destroys a type's remote index and recreates it empty. All
// documents are lost by design; the caller re-ingests afterwards. An
// already-missing index is treated as deleted.
func (m *Manager) Rebuild(ctx context.Context, t schema.ContentType) (Handle, error) {
	uid := t.IndexLabel()

	if err := m.store.DeleteIndex(ctx, uid); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return Handle{}, fmt.Errorf("delete index %s: %w", uid, err)
	}

	m.mu.Lock()
	delete(m.handles, t.Label())
	m.mu.Unlock()

	m.logger.Info("rebuilding index", zap.String("index", uid))
	return m.GetOrCreate(ctx, t)
}

// Invalidate drops every cached handle, forcing the next access per type to
// re-probe the remote service.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.handles = make(map[string]Handle)
	m.mu.Unlock()
}

// Add submits one document.
func (m *Manager) Add(ctx context.Context, h Handle, doc document.Document) error {
	return m.AddBatch(ctx, h, []document.Document{doc})
}

// AddBatch submits a batch of documents in one round-trip. Errors propagate
// unretried so partial ingestion failures stay visible for re-submission.
func (m *Manager) AddBatch(ctx context.Context, h Handle, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := m.store.AddDocuments(ctx, h.uid, docs); err != nil {
		return fmt.Errorf("add documents to %s: %w", h.uid, err)
	}
	return nil
}

// Delete removes one document by primary key.
func (m *Manager) Delete(ctx context.Context, h Handle, id string) error {
	if err := m.store.DeleteDocument(ctx, h.uid, id); err != nil {
		return fmt.Errorf("delete document %s from %s: %w", id, h.uid, err)
	}
	return nil
}

// Query runs a free-text query against one index with the high result cap
// and match metadata enabled, optionally restricted to the given document
// keys. A type with no indexed content yet yields an empty hit list.
func (m *Manager) Query(ctx context.Context, h Handle, text string, restrict []string) ([]hit.Hit, error) {
	raw, err := m.store.Search(ctx, h.uid, text, db.SearchParams{
		Limit:              db.DefaultSearchLimit,
		WithMatchPositions: true,
		Attributes:         restrict,
	})
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", h.uid, err)
	}

	hits := make([]hit.Hit, 0, len(raw))
	for _, rh := range raw {
		hits = append(hits, hit.New(rh.ID, metadataFromDB(rh.Matches)))
	}
	return hits, nil
}

func metadataFromDB(matches map[string][]db.Span) hit.Metadata {
	if len(matches) == 0 {
		return nil
	}
	meta := make(hit.Metadata, len(matches))
	for key, spans := range matches {
		converted := make([]hit.Span, len(spans))
		for i, sp := range spans {
			converted[i] = hit.Span{Start: sp.Start, Length: sp.Length}
		}
		meta[key] = converted
	}
	return meta
}
