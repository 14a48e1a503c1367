package export

import (
	"context"
	"fmt"

	"map-atlas/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchSize is the number of rows per INSERT statement.
const BatchSize = 500

// DatabaseResult counts the rows written per table.
type DatabaseResult struct {
	Seq      int64          `json:"seq"`
	Upserted map[string]int `json:"upserted"`
	Deleted  map[string]int `json:"deleted"`
	Migrated bool           `json:"migrated"`
}

// tables lists the export models in write order.
var tables = []any{&ProvinceRow{}, &StateRow{}, &RegionRow{}, &CountryRow{}}

// tableNames lists the export tables in write order.
var tableNames = []string{"atlas_provinces", "atlas_states", "atlas_regions", "atlas_countries"}

// Migrate creates or updates the atlas tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("failed to migrate atlas tables: %w", err)
	}
	return nil
}

// VerifySchema returns, per table, the model columns the database lacks.
func VerifySchema(db *gorm.DB) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, model := range tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		missing, err := database.MissingColumns(db, stmt.Schema.Table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			out[stmt.Schema.Table] = missing
		}
	}
	return out, nil
}

// writeRows upserts every row and deletes rows whose key is no longer in the
// model, all in one transaction.
func writeRows(ctx context.Context, db *gorm.DB, rows Rows) (map[string]int, map[string]int, error) {
	upserted := make(map[string]int)
	deleted := make(map[string]int)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		provinceIDs := make([]int, len(rows.Provinces))
		for i, r := range rows.Provinces {
			provinceIDs[i] = r.ID
		}
		stateIDs := make([]int, len(rows.States))
		for i, r := range rows.States {
			stateIDs[i] = r.ID
		}
		regionIDs := make([]int, len(rows.Regions))
		for i, r := range rows.Regions {
			regionIDs[i] = r.ID
		}
		tags := make([]string, len(rows.Countries))
		for i, r := range rows.Countries {
			tags[i] = r.Tag
		}

		steps := []struct {
			table string
			rows  any
			n     int
			model any
			key   string
			keys  any
		}{
			{"atlas_provinces", rows.Provinces, len(rows.Provinces), &ProvinceRow{}, "id", provinceIDs},
			{"atlas_states", rows.States, len(rows.States), &StateRow{}, "id", stateIDs},
			{"atlas_regions", rows.Regions, len(rows.Regions), &RegionRow{}, "id", regionIDs},
			{"atlas_countries", rows.Countries, len(rows.Countries), &CountryRow{}, "tag", tags},
		}
		for _, s := range steps {
			if s.n > 0 {
				res := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(s.rows, BatchSize)
				if res.Error != nil {
					return fmt.Errorf("failed to upsert %s: %w", s.table, res.Error)
				}
				upserted[s.table] = s.n
			}

			del := tx.Where(s.key+" NOT IN ?", s.keys)
			if s.n == 0 {
				del = tx.Where("1 = 1")
			}
			res := del.Delete(s.model)
			if res.Error != nil {
				return fmt.Errorf("failed to prune %s: %w", s.table, res.Error)
			}
			deleted[s.table] = int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return upserted, deleted, nil
}
