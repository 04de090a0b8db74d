// Package document flattens content objects into the key-value documents
// submitted to the remote index.
package document

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// PrimaryKeyField is the document key every index uses as its primary key.
const PrimaryKeyField = "id"

// Document is the flat projection of one content object. Every value is a
// string; list and map values are joined with ", ".
type Document map[string]string

// ID returns the primary key value.
func (d Document) ID() string { return d[PrimaryKeyField] }

// Prepare renders a resolved field value for indexing. Falsy values (nil,
// empty string, zero numbers, false, empty collections) render as the empty
// string so the document shape stays stable across updates. Slices and maps
// are prepared element-wise and joined with ", "; map values are taken in
// sorted key order since Go maps carry no insertion order. Zero-argument
// functions are invoked and their result prepared.
func Prepare(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case func() any:
		return Prepare(x())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Prepare(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Map:
		if rv.Len() == 0 {
			return ""
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, Prepare(rv.MapIndex(k).Interface()))
		}
		return strings.Join(parts, ", ")
	case reflect.Func:
		if rv.IsNil() || rv.Type().NumIn() != 0 || rv.Type().NumOut() == 0 {
			return ""
		}
		return Prepare(rv.Call(nil)[0].Interface())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Prepare(rv.Elem().Interface())
	}

	if rv.IsZero() {
		return ""
	}
	return fmt.Sprint(v)
}
