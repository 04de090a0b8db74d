// Package field describes the indexed fields of a content type.
package field

import "fmt"

// Kind is the indexing kind of a field.
type Kind string

// Field kind constants.
const (
	// Search is a plain full-text searched field.
	Search Kind = "search"
	// Filter is a filterable field, indexed under a suffixed key.
	Filter Kind = "filter"
	// Autocomplete is a partial-match field, indexed under a suffixed key.
	Autocomplete Kind = "autocomplete"
	// Related nests the fields of a related object or collection.
	Related Kind = "related"
)

// Key suffixes keep filter and autocomplete projections of the same source
// field from colliding inside one index.
const (
	FilterSuffix       = "_filter"
	AutocompleteSuffix = "_ngrams"
	relatedSeparator   = "__"
)

// ParseKind converts a wire string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Search, Filter, Autocomplete, Related:
		return k, nil
	default:
		return "", fmt.Errorf("invalid field kind %q", s)
	}
}

// Field is an immutable value object describing one indexed field.
type Field struct {
	name      string
	kind      Kind
	subFields []Field
}

// New validates and creates a non-related Field.
func New(name string, kind Kind) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	switch kind {
	case Search, Filter, Autocomplete:
		return Field{name: name, kind: kind}, nil
	case Related:
		return Field{}, fmt.Errorf("field %q: related fields require sub-fields, use NewRelated", name)
	default:
		return Field{}, fmt.Errorf("invalid field kind %q for %q", kind, name)
	}
}

// NewRelated creates a Related field projecting subFields across the
// related object or collection.
func NewRelated(name string, subFields []Field) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(subFields) == 0 {
		return Field{}, fmt.Errorf("related field %q requires at least one sub-field", name)
	}
	for _, sub := range subFields {
		if sub.kind == Related {
			return Field{}, fmt.Errorf("related field %q: nested related fields are not supported", name)
		}
	}
	return Field{name: name, kind: Related, subFields: subFields}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, kind Kind, subFields []Field) Field {
	return Field{name: name, kind: kind, subFields: subFields}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldKind returns the field's indexing kind.
func (f Field) FieldKind() Kind { return f.kind }

// SubFields returns the sub-fields of a Related field.
func (f Field) SubFields() []Field { return f.subFields }

// IndexKey maps the field to its document key: the plain name for Search,
// the name with a kind suffix for Filter and Autocomplete. For Related
// fields it returns the prefix used by SubKey.
func (f Field) IndexKey() string {
	switch f.kind {
	case Filter:
		return f.name + FilterSuffix
	case Autocomplete:
		return f.name + AutocompleteSuffix
	default:
		return f.name
	}
}

// SubKey maps a sub-field of a Related field to its flattened document key,
// e.g. "authors__name_filter".
func (f Field) SubKey(sub Field) string {
	return f.name + relatedSeparator + sub.IndexKey()
}
