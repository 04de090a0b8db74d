package meili

import (
	"context"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"github.com/kailas-cloud/pagedex/internal/db"
)

// IndexExists probes index settings; a definitive "index not found" answer
// maps to (false, nil), any other failure is returned to the caller, who
// may still choose to treat the index as absent.
func (s *Store) IndexExists(ctx context.Context, uid string) (bool, error) {
	if _, err := s.client.Index(uid).GetSettingsWithContext(ctx); err != nil {
		if isMeiliErr(err, "index_not_found") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpGetSettings, Err: err}
	}
	return true, nil
}

// CreateIndex creates an index with the given primary key field. Returns
// db.ErrIndexExists when the index is already there, which concurrent
// get-or-create callers treat as success.
func (s *Store) CreateIndex(ctx context.Context, uid, primaryKey string) error {
	info, err := s.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        uid,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		if isMeiliErr(err, "index_already_exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	ok, err := s.waitForTask(ctx, info.TaskUID)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if !ok {
		// Creation is enqueued asynchronously, so a duplicate create
		// surfaces as a failed task rather than an enqueue error. Re-probe
		// to tell "already exists" apart from a genuine failure.
		if exists, probeErr := s.IndexExists(ctx, uid); probeErr == nil && exists {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("task for index %q failed", uid)}
	}
	return nil
}

// DeleteIndex removes an index and all its documents.
func (s *Store) DeleteIndex(ctx context.Context, uid string) error {
	info, err := s.client.DeleteIndexWithContext(ctx, uid)
	if err != nil {
		if isMeiliErr(err, "index_not_found") {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDeleteIndex, Err: err}
	}

	ok, err := s.waitForTask(ctx, info.TaskUID)
	if err != nil {
		return &db.Error{Op: db.OpDeleteIndex, Err: err}
	}
	if !ok {
		if exists, probeErr := s.IndexExists(ctx, uid); probeErr == nil && !exists {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDeleteIndex, Err: fmt.Errorf("task for index %q failed", uid)}
	}
	return nil
}
