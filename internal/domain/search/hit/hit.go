// Package hit holds per-query search hits and their merged, scored set.
package hit

import (
	"encoding/json"
	"sort"
)

// Span is one match location inside a document field.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Metadata maps document keys to the spans the query matched within them.
type Metadata map[string][]Span

// Volume is the relevance proxy: the byte length of the canonical JSON
// rendering of the metadata. A document that matched on more fields or in
// more places renders longer and therefore scores higher. Coarse, but
// comparable across physically separate indexes, which the engine's native
// per-index ranking is not.
func (m Metadata) Volume() int {
	if len(m) == 0 {
		return 0
	}
	// json.Marshal sorts map keys, so the rendering is deterministic.
	b, err := json.Marshal(m)
	if err != nil {
		return 0
	}
	return len(b)
}

// Hit is one per-query result from a single index. Hits are discarded once
// the query completes.
type Hit struct {
	id    string
	meta  Metadata
	score int
}

// New creates a hit and derives its score from the match metadata.
func New(id string, meta Metadata) Hit {
	return Hit{id: id, meta: meta, score: meta.Volume()}
}

// ID returns the primary key of the matched document.
func (h Hit) ID() string { return h.id }

// Meta returns the per-field match spans.
func (h Hit) Meta() Metadata { return h.meta }

// Score returns the derived relevance score.
func (h Hit) Score() int { return h.score }

// Set is the merged result of a fan-out: deduplicated by id with the first
// occurrence winning, ordered by score after Sort.
type Set struct {
	hits        []Hit
	seen        map[string]bool
	byRelevance bool
}

// NewSet creates an empty set carrying the query's ordering flag.
func NewSet(orderByRelevance bool) *Set {
	return &Set{seen: make(map[string]bool), byRelevance: orderByRelevance}
}

// Add appends a hit unless its id is already present. Reports whether the
// hit was retained.
func (s *Set) Add(h Hit) bool {
	if s.seen[h.id] {
		return false
	}
	s.seen[h.id] = true
	s.hits = append(s.hits, h)
	return true
}

// Sort orders hits by score descending. The sort is stable, so ties keep
// their merge order.
func (s *Set) Sort() {
	sort.SliceStable(s.hits, func(i, j int) bool {
		return s.hits[i].score > s.hits[j].score
	})
}

// Hits returns the current hit sequence.
func (s *Set) Hits() []Hit { return s.hits }

// IDs returns the hit ids in current order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.hits))
	for i, h := range s.hits {
		ids[i] = h.id
	}
	return ids
}

// Len returns the number of retained hits.
func (s *Set) Len() int { return len(s.hits) }

// OrderByRelevance reports whether materialization should reimpose score
// order on the fetched records.
func (s *Set) OrderByRelevance() bool { return s.byRelevance }
