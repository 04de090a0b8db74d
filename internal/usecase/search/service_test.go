package search

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/kailas-cloud/pagedex/internal/db"
	"github.com/kailas-cloud/pagedex/internal/domain/document"
	"github.com/kailas-cloud/pagedex/internal/domain/record"
	"github.com/kailas-cloud/pagedex/internal/domain/schema"
	"github.com/kailas-cloud/pagedex/internal/domain/schema/field"
	"github.com/kailas-cloud/pagedex/internal/usecase/index"
)

// fakeIndexStore matches query text by substring over document values and
// reports one span per matching key.
type fakeIndexStore struct {
	indexes   map[string]bool
	docs      map[string]map[string]document.Document
	searchErr map[string]error
	searches  int
}

func newFakeIndexStore() *fakeIndexStore {
	return &fakeIndexStore{
		indexes:   make(map[string]bool),
		docs:      make(map[string]map[string]document.Document),
		searchErr: make(map[string]error),
	}
}

func (f *fakeIndexStore) IndexExists(_ context.Context, uid string) (bool, error) {
	return f.indexes[uid], nil
}

func (f *fakeIndexStore) CreateIndex(_ context.Context, uid, _ string) error {
	if f.indexes[uid] {
		return db.ErrIndexExists
	}
	f.indexes[uid] = true
	if f.docs[uid] == nil {
		f.docs[uid] = make(map[string]document.Document)
	}
	return nil
}

func (f *fakeIndexStore) DeleteIndex(_ context.Context, uid string) error {
	if !f.indexes[uid] {
		return db.ErrIndexNotFound
	}
	delete(f.indexes, uid)
	delete(f.docs, uid)
	return nil
}

func (f *fakeIndexStore) AddDocuments(_ context.Context, uid string, docs []document.Document) error {
	if f.docs[uid] == nil {
		f.docs[uid] = make(map[string]document.Document)
	}
	for _, d := range docs {
		f.docs[uid][d.ID()] = d
	}
	return nil
}

func (f *fakeIndexStore) DeleteDocument(_ context.Context, uid, id string) error {
	delete(f.docs[uid], id)
	return nil
}

func (f *fakeIndexStore) Search(_ context.Context, uid, query string, params db.SearchParams) ([]db.Hit, error) {
	f.searches++
	if err := f.searchErr[uid]; err != nil {
		return nil, err
	}

	allowed := func(string) bool { return true }
	if params.Attributes != nil {
		keys := make(map[string]bool, len(params.Attributes))
		for _, a := range params.Attributes {
			keys[a] = true
		}
		allowed = func(k string) bool { return keys[k] }
	}

	var ids []string
	for id := range f.docs[uid] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var hits []db.Hit
	for _, id := range ids {
		matches := make(map[string][]db.Span)
		for key, val := range f.docs[uid][id] {
			if key == document.PrimaryKeyField || !allowed(key) {
				continue
			}
			if idx := strings.Index(strings.ToLower(val), strings.ToLower(query)); idx >= 0 {
				matches[key] = []db.Span{{Start: idx, Length: len(query)}}
			}
		}
		if len(matches) > 0 {
			hits = append(hits, db.Hit{ID: id, Matches: matches})
		}
	}
	return hits, nil
}

// fakeRepo serves FetchByIDs from an in-memory map with the repository's
// order semantics.
type fakeRepo struct {
	records map[string]record.Map
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]record.Map)}
}

func (f *fakeRepo) put(rec record.Map) { f.records[rec.PK()] = rec }

func (f *fakeRepo) FetchByIDs(_ context.Context, ids []string, preserveOrder bool) ([]record.Record, error) {
	seen := make(map[string]bool, len(ids))
	var out []record.Record
	for _, id := range ids {
		rec, ok := f.records[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, rec)
	}
	if !preserveOrder {
		sort.SliceStable(out, func(i, j int) bool {
			a, errA := strconv.Atoi(out[i].PK())
			b, errB := strconv.Atoi(out[j].PK())
			if errA == nil && errB == nil {
				return a < b
			}
			return out[i].PK() < out[j].PK()
		})
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	store    *fakeIndexStore
	repo     *fakeRepo
	registry *schema.Registry
	indexes  *index.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeIndexStore()
	repo := newFakeRepo()
	registry := schema.NewRegistry()
	indexes := index.NewManager(store, nil)
	return &fixture{
		svc:      New(indexes, registry, repo, nil),
		store:    store,
		repo:     repo,
		registry: registry,
		indexes:  indexes,
	}
}

func (fx *fixture) registerType(t *testing.T, label, parent string, fields ...field.Field) schema.ContentType {
	t.Helper()
	if len(fields) == 0 {
		title, _ := field.New("title", field.Search)
		fields = []field.Field{title}
	}
	tp, err := schema.NewChild(label, parent, fields)
	if err != nil {
		t.Fatalf("type %s: %v", label, err)
	}
	if err := fx.registry.Register(tp); err != nil {
		t.Fatalf("register %s: %v", label, err)
	}
	return tp
}

func (fx *fixture) ingest(t *testing.T, tp schema.ContentType, rec record.Map) {
	t.Helper()
	ctx := context.Background()
	h, err := fx.indexes.GetOrCreate(ctx, tp)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if err := fx.indexes.Add(ctx, h, document.Build(tp, rec)); err != nil {
		t.Fatalf("add: %v", err)
	}
	fx.repo.put(rec)
}

func TestSearch_FansOutOverSubtypes(t *testing.T) {
	fx := newFixture(t)
	page := fx.registerType(t, "core.Page", "")
	blog := fx.registerType(t, "blog.BlogPost", "core.Page")
	news := fx.registerType(t, "news.NewsPost", "core.Page")

	fx.ingest(t, blog, record.NewMap("blog.BlogPost", "1", map[string]any{"title": "tea ceremony"}))
	fx.ingest(t, news, record.NewMap("news.NewsPost", "2", map[string]any{"title": "tea prices rise"}))
	fx.ingest(t, page, record.NewMap("core.Page", "3", map[string]any{"title": "coffee"}))

	set, err := fx.svc.Search(context.Background(), "core.Page", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2; ids = %v", set.Len(), set.IDs())
	}
}

func TestSearch_DedupeAcrossSubtypes(t *testing.T) {
	fx := newFixture(t)
	fx.registerType(t, "core.Page", "")
	blog := fx.registerType(t, "blog.BlogPost", "core.Page")
	news := fx.registerType(t, "news.NewsPost", "core.Page")

	// Same primary key indexed under two subtype indexes; primary keys are
	// unique hierarchy-wide, so this models a stale duplicate.
	fx.ingest(t, blog, record.NewMap("blog.BlogPost", "7", map[string]any{"title": "tea"}))
	fx.ingest(t, news, record.NewMap("news.NewsPost", "7", map[string]any{"title": "tea twice over"}))

	set, err := fx.svc.Search(context.Background(), "core.Page", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after dedupe", set.Len())
	}
}

func TestSearch_ScoreOrdering(t *testing.T) {
	fx := newFixture(t)
	title, _ := field.New("title", field.Search)
	body, _ := field.New("body", field.Search)
	tp, err := schema.New("blog.Post", []field.Field{title, body})
	if err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := fx.registry.Register(tp); err != nil {
		t.Fatalf("register: %v", err)
	}

	// "20" matches on both fields, "10" on one: more match metadata, higher
	// score.
	fx.ingest(t, tp, record.NewMap("blog.Post", "10", map[string]any{"title": "tea", "body": "coffee"}))
	fx.ingest(t, tp, record.NewMap("blog.Post", "20", map[string]any{"title": "tea", "body": "more tea"}))

	set, err := fx.svc.Search(context.Background(), "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	ids := set.IDs()
	if len(ids) != 2 || ids[0] != "20" {
		t.Errorf("ids = %v, want [20 10]", ids)
	}
}

func TestSearch_BranchErrorAbortsAll(t *testing.T) {
	fx := newFixture(t)
	fx.registerType(t, "core.Page", "")
	blog := fx.registerType(t, "blog.BlogPost", "core.Page")
	fx.ingest(t, blog, record.NewMap("blog.BlogPost", "1", map[string]any{"title": "tea"}))

	fx.store.searchErr["blog-BlogPost"] = errors.New("index offline")

	if _, err := fx.svc.Search(context.Background(), "core.Page", "tea", true); err == nil {
		t.Fatal("expected branch error to fail the whole search")
	}
}

func TestAutocomplete_RestrictsToSuffixedKeys(t *testing.T) {
	fx := newFixture(t)
	title, _ := field.New("title", field.Autocomplete)
	body, _ := field.New("body", field.Search)
	tp, err := schema.New("blog.Post", []field.Field{title, body})
	if err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := fx.registry.Register(tp); err != nil {
		t.Fatalf("register: %v", err)
	}

	// "1" matches only in body, which autocomplete must not consult.
	fx.ingest(t, tp, record.NewMap("blog.Post", "1", map[string]any{"title": "coffee", "body": "tea"}))
	fx.ingest(t, tp, record.NewMap("blog.Post", "2", map[string]any{"title": "tea", "body": "coffee"}))

	set, err := fx.svc.Autocomplete(context.Background(), "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	ids := set.IDs()
	if len(ids) != 1 || ids[0] != "2" {
		t.Errorf("ids = %v, want [2]", ids)
	}
}

func TestAutocomplete_SkipsTypesWithoutAutocompleteFields(t *testing.T) {
	fx := newFixture(t)
	tp := fx.registerType(t, "blog.Post", "") // search-only fields
	fx.ingest(t, tp, record.NewMap("blog.Post", "1", map[string]any{"title": "tea"}))
	searchesBefore := fx.store.searches

	set, err := fx.svc.Autocomplete(context.Background(), "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
	if fx.store.searches != searchesBefore {
		t.Errorf("expected no index queries for a type without autocomplete fields")
	}
}

func TestMaterialize_RelevanceOrder(t *testing.T) {
	fx := newFixture(t)
	title, _ := field.New("title", field.Search)
	body, _ := field.New("body", field.Search)
	tp, _ := schema.New("blog.Post", []field.Field{title, body})
	if err := fx.registry.Register(tp); err != nil {
		t.Fatalf("register: %v", err)
	}

	fx.ingest(t, tp, record.NewMap("blog.Post", "1", map[string]any{"title": "tea", "body": "more tea"}))
	fx.ingest(t, tp, record.NewMap("blog.Post", "2", map[string]any{"title": "tea"}))

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	recs, err := fx.svc.Materialize(ctx, set, 0, 0)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(recs) != 2 || recs[0].PK() != "1" {
		pks := make([]string, len(recs))
		for i, r := range recs {
			pks[i] = r.PK()
		}
		t.Errorf("pks = %v, want [1 2] (relevance order)", pks)
	}
}

func TestMaterialize_DefaultOrder(t *testing.T) {
	fx := newFixture(t)
	title, _ := field.New("title", field.Search)
	body, _ := field.New("body", field.Search)
	tp, _ := schema.New("blog.Post", []field.Field{title, body})
	if err := fx.registry.Register(tp); err != nil {
		t.Fatalf("register: %v", err)
	}

	// "10" scores higher but default order is ascending pk: 2 before 10.
	fx.ingest(t, tp, record.NewMap("blog.Post", "10", map[string]any{"title": "tea", "body": "more tea"}))
	fx.ingest(t, tp, record.NewMap("blog.Post", "2", map[string]any{"title": "tea"}))

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	recs, err := fx.svc.Materialize(ctx, set, 0, 0)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(recs) != 2 || recs[0].PK() != "2" || recs[1].PK() != "10" {
		pks := make([]string, len(recs))
		for i, r := range recs {
			pks[i] = r.PK()
		}
		t.Errorf("pks = %v, want [2 10] (numeric pk order)", pks)
	}
}

func TestMaterialize_StaleIDsDropped(t *testing.T) {
	fx := newFixture(t)
	tp := fx.registerType(t, "blog.Post", "")

	fx.ingest(t, tp, record.NewMap("blog.Post", "1", map[string]any{"title": "tea"}))
	fx.ingest(t, tp, record.NewMap("blog.Post", "2", map[string]any{"title": "tea"}))
	// "2" disappears from the canonical store after indexing.
	delete(fx.repo.records, "2")

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	recs, err := fx.svc.Materialize(ctx, set, 0, 0)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(recs) != 1 || recs[0].PK() != "1" {
		t.Errorf("expected only record 1, got %d records", len(recs))
	}
}

func TestMaterialize_Window(t *testing.T) {
	fx := newFixture(t)
	tp := fx.registerType(t, "blog.Post", "")
	for i := 1; i <= 5; i++ {
		pk := strconv.Itoa(i)
		fx.ingest(t, tp, record.NewMap("blog.Post", pk, map[string]any{"title": "tea " + pk}))
	}

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	tests := []struct {
		name          string
		offset, limit int
		want          []string
	}{
		{"full", 0, 0, []string{"1", "2", "3", "4", "5"}},
		{"limit", 0, 2, []string{"1", "2"}},
		{"offset", 3, 0, []string{"4", "5"}},
		{"offset and limit", 1, 2, []string{"2", "3"}},
		{"offset past end", 10, 2, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := fx.svc.Materialize(ctx, set, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("materialize: %v", err)
			}
			if len(recs) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(recs), len(tt.want))
			}
			for i, w := range tt.want {
				if recs[i].PK() != w {
					t.Errorf("recs[%d].PK() = %q, want %q", i, recs[i].PK(), w)
				}
			}
		})
	}
}

func TestMaterializePage(t *testing.T) {
	fx := newFixture(t)
	tp := fx.registerType(t, "blog.Post", "")
	for i := 1; i <= 5; i++ {
		pk := strconv.Itoa(i)
		fx.ingest(t, tp, record.NewMap("blog.Post", pk, map[string]any{"title": "tea " + pk}))
	}

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	recs, total, err := fx.svc.MaterializePage(ctx, set, 1, 2)
	if err != nil {
		t.Fatalf("materialize page: %v", err)
	}
	if len(recs) != 2 || recs[0].PK() != "2" || recs[1].PK() != "3" {
		t.Errorf("page = %v", recs)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}

	recs, total, err = fx.svc.MaterializePage(ctx, nil, 0, 0)
	if err != nil {
		t.Fatalf("materialize page: %v", err)
	}
	if recs == nil || len(recs) != 0 || total != 0 {
		t.Errorf("empty set: recs = %v, total = %d", recs, total)
	}
}

func TestMaterialize_EmptySet(t *testing.T) {
	fx := newFixture(t)
	recs, err := fx.svc.Materialize(context.Background(), nil, 0, 0)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected explicitly empty slice, got %v", recs)
	}
}

func TestCount(t *testing.T) {
	fx := newFixture(t)
	tp := fx.registerType(t, "blog.Post", "")
	for i := 1; i <= 3; i++ {
		pk := strconv.Itoa(i)
		fx.ingest(t, tp, record.NewMap("blog.Post", pk, map[string]any{"title": "tea"}))
	}

	ctx := context.Background()
	set, err := fx.svc.Search(ctx, "blog.Post", "tea", true)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	n, err := fx.svc.Count(ctx, set)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
