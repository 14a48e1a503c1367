package export

import (
	"sort"

	"map-atlas/core/mapdata"
)

// ProvinceRow is a row of atlas_provinces.
type ProvinceRow struct {
	ID            int    `gorm:"primaryKey;autoIncrement:false"`
	Color         string `gorm:"size:11;index"`
	Type          string `gorm:"size:8"`
	Coastal       bool
	Terrain       string `gorm:"size:32"`
	Continent     int
	VictoryPoints int
	StateID       *int `gorm:"index"`
	RegionID      *int `gorm:"index"`
}

// TableName overrides the table name.
func (ProvinceRow) TableName() string { return "atlas_provinces" }

// StateRow is a row of atlas_states.
type StateRow struct {
	ID            int    `gorm:"primaryKey;autoIncrement:false"`
	Name          string `gorm:"size:64"`
	LocalisedName string `gorm:"size:128"`
	Owner         string `gorm:"size:8;index"`
	Controller    string `gorm:"size:8"`
	Category      string `gorm:"size:32"`
	Manpower      int
	LocalSupplies float64
	Provinces     int
	Impassable    bool
	Demilitarized bool
}

// TableName overrides the table name.
func (StateRow) TableName() string { return "atlas_states" }

// RegionRow is a row of atlas_regions.
type RegionRow struct {
	ID            int    `gorm:"primaryKey;autoIncrement:false"`
	Name          string `gorm:"size:64"`
	LocalisedName string `gorm:"size:128"`
	NavalTerrain  string `gorm:"size:32"`
	Provinces     int
}

// TableName overrides the table name.
func (RegionRow) TableName() string { return "atlas_regions" }

// CountryRow is a row of atlas_countries.
type CountryRow struct {
	Tag           string `gorm:"primaryKey;size:8"`
	LocalisedName string `gorm:"size:128"`
	Color         string `gorm:"size:11"`
	HasColor      bool
	States        int
}

// TableName overrides the table name.
func (CountryRow) TableName() string { return "atlas_countries" }

// Rows is the relational form of a model.
type Rows struct {
	Provinces []ProvinceRow
	States    []StateRow
	Regions   []RegionRow
	Countries []CountryRow
}

// BuildRows flattens m into table rows, each table sorted by key. Names are
// localised with localise.
func BuildRows(m *mapdata.Model, localise func(string) string) Rows {
	var rows Rows

	for _, id := range mapdata.SortedIDs(m.Provinces) {
		p := m.Provinces[id]
		row := ProvinceRow{
			ID:            p.ID,
			Color:         p.Color.String(),
			Type:          p.Type,
			Coastal:       p.Coastal,
			Terrain:       p.Terrain,
			Continent:     p.Continent,
			VictoryPoints: p.VictoryPoints,
		}
		if s, ok := m.StateOf(id); ok {
			sid := s.ID
			row.StateID = &sid
		}
		if r, ok := m.RegionOf(id); ok {
			rid := r.ID
			row.RegionID = &rid
		}
		rows.Provinces = append(rows.Provinces, row)
	}

	owned := make(map[string]int)
	for _, id := range mapdata.SortedIDs(m.States) {
		s := m.States[id]
		owned[s.Owner]++
		rows.States = append(rows.States, StateRow{
			ID:            s.ID,
			Name:          s.Name,
			LocalisedName: localise(s.Name),
			Owner:         s.Owner,
			Controller:    s.Controller,
			Category:      s.Category,
			Manpower:      s.Manpower,
			LocalSupplies: s.LocalSupplies,
			Provinces:     len(s.Provinces),
			Impassable:    s.Impassable,
			Demilitarized: s.Demilitarized,
		})
	}

	for _, id := range mapdata.SortedIDs(m.Regions) {
		r := m.Regions[id]
		rows.Regions = append(rows.Regions, RegionRow{
			ID:            r.ID,
			Name:          r.Name,
			LocalisedName: localise(r.Name),
			NavalTerrain:  r.NavalTerrain,
			Provinces:     len(r.Provinces),
		})
	}

	tags := make([]string, 0, len(m.Countries))
	for tag := range m.Countries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		c := m.Countries[tag]
		row := CountryRow{Tag: tag, LocalisedName: localise(tag), HasColor: c.HasColor, States: owned[tag]}
		if c.HasColor {
			row.Color = c.Color.String()
		}
		rows.Countries = append(rows.Countries, row)
	}
	return rows
}
