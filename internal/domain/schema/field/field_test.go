package field

import "testing"

func TestIndexKey(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{"title", Search, "title"},
		{"title", Filter, "title_filter"},
		{"title", Autocomplete, "title_ngrams"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f, err := New(tt.name, tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.IndexKey(); got != tt.want {
				t.Errorf("IndexKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubKey(t *testing.T) {
	name, _ := New("name", Search)
	email, _ := New("email", Filter)
	bio, _ := New("bio", Autocomplete)

	authors, err := NewRelated("authors", []Field{name, email, bio})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"name":  "authors__name",
		"email": "authors__email_filter",
		"bio":   "authors__bio_ngrams",
	}
	for _, sub := range authors.SubFields() {
		if got := authors.SubKey(sub); got != want[sub.Name()] {
			t.Errorf("SubKey(%s) = %q, want %q", sub.Name(), got, want[sub.Name()])
		}
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("", Search); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := New("title", Kind("bogus")); err == nil {
		t.Error("expected error for invalid kind")
	}
	if _, err := New("authors", Related); err == nil {
		t.Error("expected error creating related field without sub-fields")
	}
}

func TestNewRelated_Validation(t *testing.T) {
	name, _ := New("name", Search)

	if _, err := NewRelated("authors", nil); err == nil {
		t.Error("expected error for related field without sub-fields")
	}

	inner, _ := NewRelated("inner", []Field{name})
	if _, err := NewRelated("outer", []Field{inner}); err == nil {
		t.Error("expected error for nested related field")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"search", "filter", "autocomplete", "related"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q): unexpected error: %v", s, err)
		}
	}
	if _, err := ParseKind("vector"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
