package document

import (
	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/schema/field"
)

// Build flattens a record into the document submitted to the type's index.
// Search, Filter and Autocomplete fields map straight through their index
// key. Related fields project each declared sub-field: across the whole
// collection when the value is []Record (one joined entry per sub-field),
// or per object when the value is a single Record. Absent values render as
// empty strings rather than being omitted. The primary key is force-set
// last, overriding any field that happens to be named "id".
func Build(t schema.ContentType, rec record.Record) Document {
	doc := make(Document, len(t.Fields())+1)

	for _, f := range t.Fields() {
		switch f.FieldKind() {
		case field.Search, field.Filter, field.Autocomplete:
			doc[f.IndexKey()] = Prepare(rec.Value(f.Name()))
		case field.Related:
			buildRelated(doc, f, rec.Value(f.Name()))
		}
	}

	doc[PrimaryKeyField] = rec.PK()
	return doc
}

func buildRelated(doc Document, f field.Field, value any) {
	switch v := value.(type) {
	case []record.Record:
		// Column projection: one entry per sub-field spanning the whole
		// collection. An empty collection still yields empty entries.
		for _, sub := range f.SubFields() {
			projected := make([]any, len(v))
			for i, rel := range v {
				projected[i] = rel.Value(sub.Name())
			}
			doc[f.SubKey(sub)] = Prepare(projected)
		}
	case []any:
		// JSON-decoded collection: elements are plain maps after
		// unmarshalling, never Records.
		for _, sub := range f.SubFields() {
			projected := make([]any, len(v))
			for i, rel := range v {
				projected[i] = relatedValue(rel, sub.Name())
			}
			doc[f.SubKey(sub)] = Prepare(projected)
		}
	case record.Record:
		for _, sub := range f.SubFields() {
			doc[f.SubKey(sub)] = Prepare(v.Value(sub.Name()))
		}
	case map[string]any:
		// JSON-decoded single related object.
		for _, sub := range f.SubFields() {
			doc[f.SubKey(sub)] = Prepare(v[sub.Name()])
		}
	default:
		// Nil or unrelated value: keep the document shape stable.
		for _, sub := range f.SubFields() {
			doc[f.SubKey(sub)] = ""
		}
	}
}

// relatedValue resolves one sub-field from a collection element, whatever
// shape the element arrived in.
func relatedValue(el any, name string) any {
	switch rel := el.(type) {
	case record.Record:
		return rel.Value(name)
	case map[string]any:
		return rel[name]
	default:
		return nil
	}
}
