// Package records persists content records in the canonical datastore and
// serves the id-set fetches the result materializer needs.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/pagedex/internal/db"
	"github.com/kailas-cloud/pagedex/internal/domain/record"
)

const (
	fieldLabel = "label"
	fieldPK    = "pk"
	fieldData  = "data"
)

// Store is the hash-store subset the repository runs on.
type Store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repository is the canonical record store. Primary keys are unique across
// the whole type hierarchy, so lookups are by pk alone. The store's default
// order is ascending primary key.
type Repository struct {
	store     Store
	keyPrefix string
}

// New creates a records repository.
func New(store Store, keyPrefix string) *Repository {
	return &Repository{store: store, keyPrefix: keyPrefix}
}

func (r *Repository) key(pk string) string {
	return r.keyPrefix + "rec:" + pk
}

func encode(rec record.Map) (map[string]string, error) {
	data, err := json.Marshal(rec.Values())
	if err != nil {
		return nil, fmt.Errorf("encode record %s: %w", rec.PK(), err)
	}
	return map[string]string{
		fieldLabel: rec.TypeLabel(),
		fieldPK:    rec.PK(),
		fieldData:  string(data),
	}, nil
}

func decode(fields map[string]string) (record.Map, error) {
	var values map[string]any
	if raw := fields[fieldData]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return record.Map{}, fmt.Errorf("decode record %s: %w", fields[fieldPK], err)
		}
	}
	return record.NewMap(fields[fieldLabel], fields[fieldPK], values), nil
}

// Save upserts one record.
func (r *Repository) Save(ctx context.Context, rec record.Map) error {
	fields, err := encode(rec)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.key(rec.PK()), fields); err != nil {
		return fmt.Errorf("save record %s: %w", rec.PK(), err)
	}
	return nil
}

// SaveBulk upserts many records in one round-trip.
func (r *Repository) SaveBulk(ctx context.Context, recs []record.Map) error {
	if len(recs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(recs))
	for i, rec := range recs {
		fields, err := encode(rec)
		if err != nil {
			return err
		}
		items[i] = db.HashSetItem{Key: r.key(rec.PK()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// Delete removes one record by primary key.
func (r *Repository) Delete(ctx context.Context, pk string) error {
	if err := r.store.Del(ctx, r.key(pk)); err != nil {
		return fmt.Errorf("delete record %s: %w", pk, err)
	}
	return nil
}

// FetchByIDs returns the records whose primary key is in ids. Ids absent
// from the store are silently dropped: the index may lag the system of
// record and search stays best-effort. With preserveOrder the records come
// back in the ids sequence order, otherwise in default (ascending pk)
// order. The result never repeats a pk.
func (r *Repository) FetchByIDs(ctx context.Context, ids []string, preserveOrder bool) ([]record.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	seen := make(map[string]bool, len(rows))
	out := make([]record.Record, 0, len(rows))
	for _, fields := range rows {
		if len(fields) == 0 || seen[fields[fieldPK]] {
			continue
		}
		rec, err := decode(fields)
		if err != nil {
			return nil, err
		}
		seen[rec.PK()] = true
		out = append(out, rec)
	}

	if !preserveOrder {
		sort.SliceStable(out, func(i, j int) bool {
			return pkLess(out[i].PK(), out[j].PK())
		})
	}
	return out, nil
}

// pkLess orders primary keys numerically when both parse as integers,
// lexically otherwise.
func pkLess(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
