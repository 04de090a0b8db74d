// Package db defines the storage-boundary types shared by the concrete
// index and record stores.
package db

// DefaultSearchLimit is the per-index result cap: effectively unlimited at
// the dataset sizes this backend targets, so merging across subtype indexes
// never truncates.
const DefaultSearchLimit int64 = 999999

// Span is one match location inside a document field, as reported by the
// index service.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Hit is one raw search hit from a single index.
type Hit struct {
	ID      string
	Matches map[string][]Span
}

// SearchParams tunes a single-index query.
type SearchParams struct {
	// Limit caps returned hits; zero means DefaultSearchLimit.
	Limit int64
	// WithMatchPositions asks the service for per-field match spans.
	WithMatchPositions bool
	// Attributes restricts matching to the given document keys; nil means
	// all searchable keys.
	Attributes []string
}

// HashSetItem is one hash write in a batched record-store submission.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}
