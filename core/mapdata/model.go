package mapdata

import "sort"

// Province types found in definition.csv.
const (
	TypeLand = "land"
	TypeSea  = "sea"
	TypeLake = "lake"
)

// Point is a map position in pixels, origin bottom-left.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Building is a building and its level, placed in a state or a province.
type Building struct {
	Name  string `json:"name" msgpack:"name"`
	Level int    `json:"level" msgpack:"level"`
}

// Province is the smallest map unit, keyed by its bitmap colour.
type Province struct {
	ID        int    `json:"id" msgpack:"id"`
	Color     RGB    `json:"color" msgpack:"color"`
	Type      string `json:"type" msgpack:"type"`
	Coastal   bool   `json:"coastal" msgpack:"coastal"`
	Terrain   string `json:"terrain" msgpack:"terrain"`
	Continent int    `json:"continent" msgpack:"continent"`
	// VictoryPoints is the value set by the owning state's history, 0 if none.
	VictoryPoints int `json:"victory_points,omitempty" msgpack:"victory_points"`
	// Position is the victory point marker from unitstacks.txt.
	Position  *Point     `json:"position,omitempty" msgpack:"position"`
	Buildings []Building `json:"buildings,omitempty" msgpack:"buildings"`
}

// IsLand reports whether the province is a land province.
func (p *Province) IsLand() bool { return p.Type == TypeLand }

// State groups provinces that share ownership and economy.
type State struct {
	ID            int            `json:"id" msgpack:"id"`
	Name          string         `json:"name" msgpack:"name"`
	Manpower      int            `json:"manpower" msgpack:"manpower"`
	Category      string         `json:"category" msgpack:"category"`
	Owner         string         `json:"owner,omitempty" msgpack:"owner"`
	Controller    string         `json:"controller,omitempty" msgpack:"controller"`
	Provinces     []int          `json:"provinces" msgpack:"provinces"`
	LocalSupplies float64        `json:"local_supplies" msgpack:"local_supplies"`
	Resources     map[string]int `json:"resources,omitempty" msgpack:"resources"`
	Buildings     []Building     `json:"buildings,omitempty" msgpack:"buildings"`
	// ProvinceBuildings holds buildings placed on single provinces of the state.
	ProvinceBuildings map[int][]Building `json:"province_buildings,omitempty" msgpack:"province_buildings"`
	VictoryPoints     map[int]int        `json:"victory_points,omitempty" msgpack:"victory_points"`
	Cores             []string           `json:"cores,omitempty" msgpack:"cores"`
	Claims            []string           `json:"claims,omitempty" msgpack:"claims"`
	Flags             []string           `json:"flags,omitempty" msgpack:"flags"`
	Impassable        bool               `json:"impassable" msgpack:"impassable"`
	Demilitarized     bool               `json:"demilitarized" msgpack:"demilitarized"`
	// File is the script the record was read from.
	File string `json:"file" msgpack:"file"`
}

// StrategicRegion groups provinces for weather and naval logic. It may be empty.
type StrategicRegion struct {
	ID           int    `json:"id" msgpack:"id"`
	Name         string `json:"name" msgpack:"name"`
	Provinces    []int  `json:"provinces" msgpack:"provinces"`
	NavalTerrain string `json:"naval_terrain,omitempty" msgpack:"naval_terrain"`
	File         string `json:"file" msgpack:"file"`
}

// Country is a tag with its definition file and map colour.
type Country struct {
	Tag      string `json:"tag" msgpack:"tag"`
	File     string `json:"file,omitempty" msgpack:"file"`
	Color    RGB    `json:"color" msgpack:"color"`
	HasColor bool   `json:"has_color" msgpack:"has_color"`
}

// Adjacency is a special connection between two provinces.
type Adjacency struct {
	From    int    `json:"from" msgpack:"from"`
	To      int    `json:"to" msgpack:"to"`
	Type    string `json:"type" msgpack:"type"`
	Through int    `json:"through" msgpack:"through"`
	Start   Point  `json:"start" msgpack:"start"`
	Stop    Point  `json:"stop" msgpack:"stop"`
	Rule    string `json:"rule,omitempty" msgpack:"rule"`
}

// PassRule tells which unit kinds may cross an adjacency.
type PassRule struct {
	Army      bool `json:"army" msgpack:"army"`
	Navy      bool `json:"navy" msgpack:"navy"`
	Submarine bool `json:"submarine" msgpack:"submarine"`
	Trade     bool `json:"trade" msgpack:"trade"`
}

// AdjacencyRule is a named crossing rule such as a strait or canal.
type AdjacencyRule struct {
	Name              string    `json:"name" msgpack:"name"`
	Contested         PassRule  `json:"contested" msgpack:"contested"`
	Enemy             PassRule  `json:"enemy" msgpack:"enemy"`
	Friend            PassRule  `json:"friend" msgpack:"friend"`
	Neutral           PassRule  `json:"neutral" msgpack:"neutral"`
	RequiredProvinces []int     `json:"required_provinces,omitempty" msgpack:"required_provinces"`
	Icon              int       `json:"icon" msgpack:"icon"`
	Offset            []float64 `json:"offset,omitempty" msgpack:"offset"`
}

// Railway is one railway line and the provinces it runs through.
type Railway struct {
	Level     int   `json:"level" msgpack:"level"`
	Provinces []int `json:"provinces" msgpack:"provinces"`
}

// Building slot kinds.
const (
	SlotShared     = "shared"
	SlotProvincial = "provincial"
	SlotNonShared  = "non-shared"
)

// DefaultMaxLevel applies when a building declares no level cap.
const DefaultMaxLevel = 15

// BuildingDef is a building type from common/buildings.
type BuildingDef struct {
	Name          string `json:"name" msgpack:"name"`
	IconFrame     int    `json:"icon_frame" msgpack:"icon_frame"`
	Slot          string `json:"slot" msgpack:"slot"`
	OnlyCoastal   bool   `json:"only_coastal" msgpack:"only_coastal"`
	DisabledInDMZ bool   `json:"disabled_in_dmz" msgpack:"disabled_in_dmz"`
	MaxLevel      int    `json:"max_level" msgpack:"max_level"`
}

// Model is the merged map data of all content roots. It is built by one
// goroutine and treated as read-only once published.
type Model struct {
	Provinces      map[int]*Province         `json:"provinces" msgpack:"provinces"`
	States         map[int]*State            `json:"states" msgpack:"states"`
	Regions        map[int]*StrategicRegion  `json:"regions" msgpack:"regions"`
	Countries      map[string]*Country       `json:"countries" msgpack:"countries"`
	Continents     map[int]string            `json:"continents" msgpack:"continents"`
	Adjacencies    []Adjacency               `json:"adjacencies" msgpack:"adjacencies"`
	AdjacencyRules map[string]*AdjacencyRule `json:"adjacency_rules" msgpack:"adjacency_rules"`
	SupplyNodes    []int                     `json:"supply_nodes" msgpack:"supply_nodes"`
	Railways       []Railway                 `json:"railways" msgpack:"railways"`
	Buildings      map[string]*BuildingDef   `json:"buildings" msgpack:"buildings"`
	// DefinitionFile is the definition.csv the province table came from.
	DefinitionFile string `json:"definition_file" msgpack:"definition_file"`

	byColor        map[RGB]int
	provinceState  map[int]int
	provinceRegion map[int]int
}

// NewModel returns an empty model with all tables allocated.
func NewModel() *Model {
	return &Model{
		Provinces:      make(map[int]*Province),
		States:         make(map[int]*State),
		Regions:        make(map[int]*StrategicRegion),
		Countries:      make(map[string]*Country),
		Continents:     make(map[int]string),
		AdjacencyRules: make(map[string]*AdjacencyRule),
		Buildings:      make(map[string]*BuildingDef),
	}
}

// ProvinceByColor resolves a bitmap colour to its province.
func (m *Model) ProvinceByColor(c RGB) (*Province, bool) {
	id, ok := m.byColor[c]
	if !ok {
		return nil, false
	}
	p, ok := m.Provinces[id]
	return p, ok
}

// StateOf returns the state that owns province id.
func (m *Model) StateOf(id int) (*State, bool) {
	sid, ok := m.provinceState[id]
	if !ok {
		return nil, false
	}
	s, ok := m.States[sid]
	return s, ok
}

// RegionOf returns the strategic region of province id.
func (m *Model) RegionOf(id int) (*StrategicRegion, bool) {
	rid, ok := m.provinceRegion[id]
	if !ok {
		return nil, false
	}
	r, ok := m.Regions[rid]
	return r, ok
}

// CountryColor returns the declared colour of tag.
func (m *Model) CountryColor(tag string) (RGB, bool) {
	c, ok := m.Countries[tag]
	if !ok || !c.HasColor {
		return RGB{}, false
	}
	return c.Color, true
}

// Colors returns every province colour, sorted by province id.
func (m *Model) Colors() []RGB {
	ids := SortedIDs(m.Provinces)
	out := make([]RGB, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.Provinces[id].Color)
	}
	return out
}

// Summary counts the records of every table.
type Summary struct {
	Provinces      int `json:"provinces"`
	States         int `json:"states"`
	Regions        int `json:"regions"`
	Countries      int `json:"countries"`
	Continents     int `json:"continents"`
	Adjacencies    int `json:"adjacencies"`
	AdjacencyRules int `json:"adjacency_rules"`
	SupplyNodes    int `json:"supply_nodes"`
	Railways       int `json:"railways"`
	Buildings      int `json:"buildings"`
}

// Summary returns table sizes.
func (m *Model) Summary() Summary {
	return Summary{
		Provinces:      len(m.Provinces),
		States:         len(m.States),
		Regions:        len(m.Regions),
		Countries:      len(m.Countries),
		Continents:     len(m.Continents),
		Adjacencies:    len(m.Adjacencies),
		AdjacencyRules: len(m.AdjacencyRules),
		SupplyNodes:    len(m.SupplyNodes),
		Railways:       len(m.Railways),
		Buildings:      len(m.Buildings),
	}
}

// SortedIDs returns the keys of an id-keyed table in ascending order.
func SortedIDs[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
