// Package record abstracts content objects held by the canonical datastore.
package record

// Record is one content object instance. Field values are resolved by name
// and may be scalars, slices, maps, other Records (related objects),
// []Record (related collections), or zero-argument functions.
type Record interface {
	// PK returns the primary key value, unique across the whole hierarchy.
	PK() string
	// TypeLabel returns the content type label, e.g. "blog.BlogPost".
	TypeLabel() string
	// Value resolves a field by name; nil when the field is absent.
	Value(name string) any
}

// Map is a map-backed Record, used by the record store and in tests.
type Map struct {
	label  string
	pk     string
	values map[string]any
}

// NewMap creates a map-backed record.
func NewMap(label, pk string, values map[string]any) Map {
	return Map{label: label, pk: pk, values: values}
}

// PK returns the primary key value.
func (m Map) PK() string { return m.pk }

// TypeLabel returns the content type label.
func (m Map) TypeLabel() string { return m.label }

// Value resolves a field by name.
func (m Map) Value(name string) any { return m.values[name] }

// Values returns the underlying field values.
func (m Map) Values() map[string]any { return m.values }
