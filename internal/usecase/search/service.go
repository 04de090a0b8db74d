// Package search fans a query out across subtype indexes, merges and
// scores the hits, and materializes records from the canonical store.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/search/hit"
	"github.com/kailas-cloud/pagedex/internal/metrics"
)

// defaultParallelism bounds concurrent per-subtype index queries.
const defaultParallelism = 4

// Service orchestrates multi-index search for one backend instance.
type Service struct {
	indexes     Indexes
	registry    *schema.Registry
	repo        Repository
	logger      *zap.Logger
	parallelism int
}

// New creates a search service.
func New(indexes Indexes, registry *schema.Registry, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		indexes:     indexes,
		registry:    registry,
		repo:        repo,
		logger:      logger,
		parallelism: defaultParallelism,
	}
}

// WithParallelism bounds the fan-out worker pool.
func (s *Service) WithParallelism(n int) *Service {
	if n > 0 {
		s.parallelism = n
	}
	return s
}

// Search fans queryText out across every concrete subtype of label, merges
// the hits deduplicated by id, and returns them scored and sorted.
func (s *Service) Search(ctx context.Context, label, queryText string, orderByRelevance bool) (*hit.Set, error) {
	metrics.SearchRequestsTotal.WithLabelValues(label, "search").Inc()
	return s.fanOut(ctx, label, queryText, orderByRelevance, false)
}

// Autocomplete is Search restricted to each subtype's autocomplete-suffixed
// keys. Subtypes that declare no autocomplete fields contribute zero hits.
func (s *Service) Autocomplete(ctx context.Context, label, queryText string, orderByRelevance bool) (*hit.Set, error) {
	metrics.SearchRequestsTotal.WithLabelValues(label, "autocomplete").Inc()
	return s.fanOut(ctx, label, queryText, orderByRelevance, true)
}

// fanOut queries each concrete type's index concurrently and merges the
// per-type results in deterministic registration order, so deduplication
// (first occurrence wins) and score ties do not depend on completion order.
// The policy on branch failure is abort-all: the first error cancels the
// remaining branches and fails the search, keeping remote errors visible
// instead of degrading to a silently partial result.
func (s *Service) fanOut(ctx context.Context, label, queryText string, orderByRelevance, autocomplete bool) (*hit.Set, error) {
	types := s.registry.Descendants(label)
	metrics.SearchFanoutQueries.Observe(float64(len(types)))

	perType := make([][]hit.Hit, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, t := range types {
		i, t := i, t
		g.Go(func() error {
			var restrict []string
			if autocomplete {
				restrict = t.AutocompleteKeys()
				if len(restrict) == 0 {
					return nil
				}
			}

			h, err := s.indexes.GetOrCreate(gctx, t)
			if err != nil {
				return fmt.Errorf("resolve index for %s: %w", t.Label(), err)
			}

			hits, err := s.indexes.Query(gctx, h, queryText, restrict)
			if err != nil {
				return fmt.Errorf("query %s: %w", t.Label(), err)
			}

			perType[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := hit.NewSet(orderByRelevance)
	for _, hits := range perType {
		for _, h := range hits {
			set.Add(h)
		}
	}
	set.Sort()

	metrics.SearchMergedHits.Observe(float64(set.Len()))
	s.logger.Debug("search fan-out complete",
		zap.String("type", label),
		zap.Int("subtypes", len(types)),
		zap.Int("hits", set.Len()),
	)
	return set, nil
}
