// Package schema holds content type definitions and the closed type
// hierarchy they form.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/pagedex/internal/domain/schema/field"
)

var labelRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// ContentType is an immutable content type descriptor: a dot-separated
// label, an optional parent label, and the ordered field definitions.
type ContentType struct {
	label  string
	parent string
	fields []field.Field
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("content type label is required")
	}
	if len(label) > 128 {
		return fmt.Errorf("content type label too long (max 128)")
	}
	if !labelRegex.MatchString(label) {
		return fmt.Errorf("content type label must be dot-separated identifiers, got %q", label)
	}
	return nil
}

func validateFields(fields []field.Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := f.IndexKey()
		if f.FieldKind() == field.Related {
			subSeen := make(map[string]bool, len(f.SubFields()))
			for _, sub := range f.SubFields() {
				sk := f.SubKey(sub)
				if subSeen[sk] {
					return fmt.Errorf("duplicate index key %q", sk)
				}
				subSeen[sk] = true
			}
			continue
		}
		if seen[key] {
			return fmt.Errorf("duplicate index key %q", key)
		}
		seen[key] = true
	}
	return nil
}

// New validates and creates a ContentType without a parent.
func New(label string, fields []field.Field) (ContentType, error) {
	return NewChild(label, "", fields)
}

// NewChild validates and creates a ContentType that is a concrete subtype
// of the parent label. The parent does not have to be registered yet.
func NewChild(label, parent string, fields []field.Field) (ContentType, error) {
	if err := validateLabel(label); err != nil {
		return ContentType{}, err
	}
	if parent != "" {
		if err := validateLabel(parent); err != nil {
			return ContentType{}, fmt.Errorf("parent: %w", err)
		}
		if parent == label {
			return ContentType{}, fmt.Errorf("content type %q cannot be its own parent", label)
		}
	}
	if err := validateFields(fields); err != nil {
		return ContentType{}, err
	}
	return ContentType{label: label, parent: parent, fields: fields}, nil
}

// Label returns the dot-separated type label, e.g. "blog.BlogPost".
func (t ContentType) Label() string { return t.label }

// Parent returns the parent type label, empty for root types.
func (t ContentType) Parent() string { return t.parent }

// Fields returns the ordered field definitions.
func (t ContentType) Fields() []field.Field { return t.fields }

// IndexLabel returns the remote index identifier for this type: the label
// with dots replaced by dashes, since index identifiers forbid dots.
func (t ContentType) IndexLabel() string {
	return strings.ReplaceAll(t.label, ".", "-")
}

// AutocompleteKeys returns the index keys of the autocomplete fields,
// including flattened related sub-fields. Empty when the type declares no
// autocomplete fields.
func (t ContentType) AutocompleteKeys() []string {
	var keys []string
	for _, f := range t.fields {
		switch f.FieldKind() {
		case field.Autocomplete:
			keys = append(keys, f.IndexKey())
		case field.Related:
			for _, sub := range f.SubFields() {
				if sub.FieldKind() == field.Autocomplete {
					keys = append(keys, f.SubKey(sub))
				}
			}
		}
	}
	return keys
}
