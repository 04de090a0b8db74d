package meili

import (
	"context"
	"encoding/json"

	"github.com/meilisearch/meilisearch-go"

	"github.com/kailas-cloud/pagedex/internal/db"
)

// rawHit mirrors the wire shape of one hit when showMatchesPosition is on.
type rawHit struct {
	ID      json.RawMessage      `json:"id"`
	Matches map[string][]db.Span `json:"_matchesPosition"`
}

// Search runs a free-text query against one index. A query on an index
// with no documents returns an empty hit list, not an error.
func (s *Store) Search(ctx context.Context, uid, query string, params db.SearchParams) ([]db.Hit, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = db.DefaultSearchLimit
	}

	req := &meilisearch.SearchRequest{
		Limit:               limit,
		ShowMatchesPosition: params.WithMatchPositions,
	}
	if len(params.Attributes) > 0 {
		req.AttributesToSearchOn = params.Attributes
	}

	resp, err := s.client.Index(uid).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return decodeHits(resp.Hits)
}

// decodeHits converts the client's hit representation through JSON, which
// keeps this store independent of the concrete type behind resp.Hits and
// preserves numeric ids verbatim.
func decodeHits(hits any) ([]db.Hit, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	var rows []rawHit
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := make([]db.Hit, 0, len(rows))
	for _, row := range rows {
		out = append(out, db.Hit{ID: idText(row.ID), Matches: row.Matches})
	}
	return out, nil
}

// idText renders a raw JSON id as its primary-key string: unquoted for
// string ids, the literal digits for numeric ids.
func idText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
