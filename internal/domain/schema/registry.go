package schema

import (
	"fmt"
	"sync"
)

// Registry is the closed type hierarchy: every searchable content type is
// registered explicitly, and subtype resolution never scans anything
// outside it. Registration order is preserved so fan-out order is
// deterministic.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]ContentType
	order       []string
	descendants map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:       make(map[string]ContentType),
		descendants: make(map[string][]string),
	}
}

// Register adds a content type. Re-registering the same label with the same
// parent is idempotent; changing the parent of an existing label is an
// error because it would silently rewire the hierarchy.
func (r *Registry) Register(t ContentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[t.Label()]; ok {
		if existing.Parent() != t.Parent() {
			return fmt.Errorf("content type %q already registered with parent %q", t.Label(), existing.Parent())
		}
		r.types[t.Label()] = t
		r.descendants = make(map[string][]string)
		return nil
	}

	r.types[t.Label()] = t
	r.order = append(r.order, t.Label())
	// The hierarchy changed; cached subtype resolutions are stale.
	r.descendants = make(map[string][]string)
	return nil
}

// Get returns the content type for a label.
func (r *Registry) Get(label string) (ContentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[label]
	return t, ok
}

// Registered reports whether the label is registered for search.
func (r *Registry) Registered(label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[label]
	return ok
}

// Labels returns all registered labels in registration order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descendants resolves the concrete types a search on label fans out to:
// the type itself followed by every registered type whose ancestor chain
// reaches label, in registration order. Resolutions are cached until the
// next Register call. An unregistered label resolves to nil.
func (r *Registry) Descendants(label string) []ContentType {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[label]; !ok {
		return nil
	}

	labels, ok := r.descendants[label]
	if !ok {
		for _, candidate := range r.order {
			if r.isDescendant(candidate, label) {
				labels = append(labels, candidate)
			}
		}
		r.descendants[label] = labels
	}

	out := make([]ContentType, len(labels))
	for i, l := range labels {
		out[i] = r.types[l]
	}
	return out
}

// isDescendant walks the parent chain from candidate to ancestor.
// Callers hold r.mu.
func (r *Registry) isDescendant(candidate, ancestor string) bool {
	for label := candidate; label != ""; {
		if label == ancestor {
			return true
		}
		t, ok := r.types[label]
		if !ok {
			return false
		}
		label = t.Parent()
	}
	return false
}
