package export

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"map-atlas/core/reconcile"
	"map-atlas/core/store"

	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// DriftTTL is how long listed bucket and table contents are reused by
// Drift. Exports invalidate them.
const DriftTTL = 30 * time.Second

// DriftReport compares the published snapshot with what the targets hold.
type DriftReport struct {
	Seq     int64                      `json:"seq"`
	Storage *reconcile.Plan            `json:"storage,omitempty"`
	Tables  map[string]*reconcile.Plan `json:"tables,omitempty"`
}

// tableAdapter reconciles model rows with a table. It is read-only; writes
// go through writeRows so they share one transaction.
type tableAdapter[T any] struct {
	db    *gorm.DB
	table string
	rows  []T
	key   func(T) string
}

func (a *tableAdapter[T]) Name() string { return a.table }

func (a *tableAdapter[T]) LoadWant(context.Context) (map[string]reconcile.Item, error) {
	out := make(map[string]reconcile.Item, len(a.rows))
	for _, r := range a.rows {
		out[a.key(r)] = r
	}
	return out, nil
}

func (a *tableAdapter[T]) LoadHave(ctx context.Context) (map[string]reconcile.Item, error) {
	var have []T
	if err := a.db.WithContext(ctx).Find(&have).Error; err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.table, err)
	}
	out := make(map[string]reconcile.Item, len(have))
	for _, r := range have {
		out[a.key(r)] = r
	}
	return out, nil
}

func (a *tableAdapter[T]) ResolveName(want, have reconcile.Item) string {
	return ""
}

func (a *tableAdapter[T]) CompareFields(want, have reconcile.Item) []string {
	return diffFields(want, have)
}

var columnNames = schema.NamingStrategy{}

// diffFields compares two rows of the same struct type field by field and
// describes each difference with its column name.
func diffFields(want, have any) []string {
	w, h := reflect.ValueOf(want), reflect.ValueOf(have)
	var out []string
	for i := 0; i < w.NumField(); i++ {
		wf, hf := w.Field(i).Interface(), h.Field(i).Interface()
		if cmp.Equal(wf, hf) {
			continue
		}
		out = append(out, fmt.Sprintf("%s: want=%v have=%v",
			columnNames.ColumnName("", w.Type().Field(i).Name), display(w.Field(i)), display(h.Field(i))))
	}
	return out
}

func display(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "null"
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

// tableSpecs builds one reconciliation per atlas table.
func (s *Service) tableSpecs(snap *store.Snapshot) []*reconcile.Spec {
	rows := BuildRows(snap.Model, snap.Localise)
	adapters := []reconcile.Adapter{
		&tableAdapter[ProvinceRow]{db: s.db, table: "atlas_provinces", rows: rows.Provinces, key: func(r ProvinceRow) string { return fmt.Sprint(r.ID) }},
		&tableAdapter[StateRow]{db: s.db, table: "atlas_states", rows: rows.States, key: func(r StateRow) string { return fmt.Sprint(r.ID) }},
		&tableAdapter[RegionRow]{db: s.db, table: "atlas_regions", rows: rows.Regions, key: func(r RegionRow) string { return fmt.Sprint(r.ID) }},
		&tableAdapter[CountryRow]{db: s.db, table: "atlas_countries", rows: rows.Countries, key: func(r CountryRow) string { return r.Tag }},
	}
	specs := make([]*reconcile.Spec, len(adapters))
	for i, a := range adapters {
		specs[i] = &reconcile.Spec{
			Adapter:  a,
			Scope:    fmt.Sprintf("seq=%d", snap.Seq),
			Cache:    s.cache,
			CacheTTL: DriftTTL,
		}
	}
	return specs
}

// Drift reports, for every configured target, which entries an export
// named name would create, update or delete. Nothing is written.
func (s *Service) Drift(ctx context.Context, name string) (*DriftReport, error) {
	if s.client == nil && s.db == nil {
		return nil, ErrNoTarget
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid export name %q", name)
	}
	snap, err := s.source.Current()
	if err != nil {
		return nil, err
	}

	opts := reconcile.Options{DoSync: true, DoPurge: true}
	rep := &DriftReport{Seq: snap.Seq}
	if s.client != nil {
		spec, err := s.storageSpec(snap, name, DriftTTL)
		if err != nil {
			return nil, err
		}
		if rep.Storage, err = reconcile.BuildPlan(ctx, spec, opts); err != nil {
			return nil, err
		}
	}
	if s.db != nil {
		rep.Tables = make(map[string]*reconcile.Plan)
		for _, spec := range s.tableSpecs(snap) {
			plan, err := reconcile.BuildPlan(ctx, spec, opts)
			if err != nil {
				return nil, err
			}
			rep.Tables[spec.Adapter.Name()] = plan
		}
	}
	return rep, nil
}
