package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/search/hit"
)

// Materialize fetches the records behind a scored set from the canonical
// store and applies the [offset, offset+limit) window. When the set orders
// by relevance the exact score order is reimposed on the fetched records;
// otherwise the store's default order stands. Ids the store no longer has
// are dropped without error, and the output never repeats a primary key
// even if the store join reintroduced one. A limit <= 0 means no cap.
func (s *Service) Materialize(ctx context.Context, set *hit.Set, offset, limit int) ([]record.Record, error) {
	if set == nil || set.Len() == 0 {
		return []record.Record{}, nil
	}

	recs, err := s.repo.FetchByIDs(ctx, set.IDs(), set.OrderByRelevance())
	if err != nil {
		return nil, fmt.Errorf("materialize records: %w", err)
	}

	deduped := recs[:0]
	seen := make(map[string]bool, len(recs))
	for _, r := range recs {
		if seen[r.PK()] {
			continue
		}
		seen[r.PK()] = true
		deduped = append(deduped, r)
	}

	return window(deduped, offset, limit), nil
}

// MaterializePage materializes the full sequence once and returns both the
// [offset, offset+limit) window and the total length of the sequence, so a
// caller needing a page plus its count pays for a single fetch.
func (s *Service) MaterializePage(ctx context.Context, set *hit.Set, offset, limit int) ([]record.Record, int, error) {
	full, err := s.Materialize(ctx, set, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	return window(full, offset, limit), len(full), nil
}

// Count is the length of the full materialized sequence. It runs the whole
// fetch rather than an index-side count: the index may hold stale ids the
// store would drop, and at the target scale the cost is accepted.
func (s *Service) Count(ctx context.Context, set *hit.Set) (int, error) {
	recs, err := s.Materialize(ctx, set, 0, 0)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func window(recs []record.Record, offset, limit int) []record.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(recs) {
		return []record.Record{}
	}
	end := len(recs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return recs[offset:end]
}
