package mapdata

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"map-atlas/core/report"
	"map-atlas/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const definitions = `0;0;0;0;land;false;unknown;0
1;10;10;10;land;false;plains;1
2;20;20;20;sea;false;ocean;0
3;30;30;30;land;true;forest;2
`

func baseRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, DefinitionPath, definitions)
	writeFile(t, dir, "history/states/5-Paris.txt", `
state = {
	id = 5
	name = "STATE_5"
	manpower = 1000.000
	state_category = town
	state_category = city
	resources = { steel = 12.000 oil = 3 }
	provinces = { 1 }
	history = {
		owner = FRA
		controller = FRA
		add_core_of = FRA
		add_core_of = ALS
		add_claim_by = GER
		victory_points = { 1 10 }
		buildings = {
			infrastructure = 3
			1 = { naval_base = 1 landmark = { level = 2 allowed = { always = yes } } }
		}
		1939.1.1 = { owner = GER }
	}
	local_supplies = 2.5
	impassable = no
}
`)
	writeFile(t, dir, "history/states/6-Coast.txt", `state = { id = 6 provinces = { 3 } resources = { tungsten = 1 } resources = { chromium = 2.0 } history = { owner = ENG set_demilitarized_zone = yes } }`)
	writeFile(t, dir, "map/strategicregions/1-Europe.txt", `strategic_region = { id = 1 name = "STRATEGICREGION_1" provinces = { 1 2 3 } naval_terrain = water_shallow_sea }`)
	writeFile(t, dir, "map/strategicregions/15-Asia.txt", `strategic_region = { id = 15 name = "STRATEGICREGION_15" provinces = { } }`)
	writeFile(t, dir, "common/country_tags/00_countries.txt", "FRA = \"countries/France.txt\"\nENG = \"countries/England.txt\"\n")
	writeFile(t, dir, "common/country_tags/01_dynamic.txt", "dynamic_tags = yes\nD01 = \"countries/D01.txt\"\n")
	writeFile(t, dir, ColorsPath, "FRA = { color = rgb { 57 160 101 } color_ui = rgb { 1 2 3 } }\nENG = { color = HSV { 0.0 1.0 1.0 } }\n")
	writeFile(t, dir, ContinentPath, "continents = {\n\teurope\n\tnorth_america\n}\n")
	writeFile(t, dir, AdjacenciesPath, "From;To;Type;Through;start_x;start_y;stop_x;stop_y;adjacency_rule_name;Comment\n1;3;sea;2;10;20;30;40;STRAIT;Channel\n-1;-1;;-1;-1;-1;-1;-1;-1\n2;3;sea;-1;0;0;0;0;;after sentinel\n")
	writeFile(t, dir, AdjacencyRulePath, `adjacency_rule = {
	name = "STRAIT"
	contested = { army = no navy = no submarine = no trade = no }
	enemy = { army = no navy = yes submarine = yes trade = no }
	friend = { army = yes navy = yes submarine = yes trade = yes }
	neutral = { army = no navy = yes submarine = yes trade = yes }
	required_provinces = { 1 3 }
	icon = 1
	offset = { -3 0 -6 }
}`)
	writeFile(t, dir, SupplyNodesPath, "1 3\n1 1\n1 3\n")
	writeFile(t, dir, RailwaysPath, "2 2 1 3\n1 3 1 2 3\n")
	writeFile(t, dir, UnitStacksPath, "1;38;100.0;9.5;200.0;0.0;0.0\n1;0;1;1;1;0;0\n99;38;1;1;1;0;0\n")
	writeFile(t, dir, "common/buildings/00_buildings.txt", `buildings = {
	infrastructure = { icon_frame = 1 level_cap = { state_max = 5 } }
	naval_base = { level_cap = { province_max = 10 } only_costal = yes disabled_in_dmz = yes }
	arms_factory = { level_cap = { shares_slots = yes } }
	bunker = { }
}`)
	return dir
}

func load(t *testing.T, roots ...string) (*Model, *report.Report) {
	t.Helper()
	rs := make([]source.Root, len(roots))
	for i, r := range roots {
		rs[i] = source.Root{Path: r}
	}
	rep := report.New()
	m, err := Load(context.Background(), rs, rep, nil)
	require.NoError(t, err)
	return m, rep
}

func TestLoad_Tables(t *testing.T) {
	m, rep := load(t, baseRoot(t))

	require.Len(t, m.Provinces, 3)
	p1 := m.Provinces[1]
	assert.Equal(t, RGB{10, 10, 10}, p1.Color)
	assert.True(t, p1.IsLand())
	assert.Equal(t, "plains", p1.Terrain)
	assert.Equal(t, 1, p1.Continent)
	assert.Equal(t, 10, p1.VictoryPoints)
	assert.Equal(t, &Point{X: 100, Y: 200}, p1.Position)
	assert.Equal(t, []Building{{Name: "naval_base", Level: 1}, {Name: "landmark", Level: 2}}, p1.Buildings)
	assert.True(t, m.Provinces[3].Coastal)

	s := m.States[5]
	require.NotNil(t, s)
	assert.Equal(t, "STATE_5", s.Name)
	assert.Equal(t, 1000, s.Manpower)
	assert.Equal(t, "city", s.Category)
	assert.Equal(t, "FRA", s.Owner)
	assert.Equal(t, []string{"FRA", "ALS"}, s.Cores)
	assert.Equal(t, []string{"GER"}, s.Claims)
	assert.Equal(t, map[string]int{"steel": 12, "oil": 3}, s.Resources)
	assert.Equal(t, []Building{{Name: "infrastructure", Level: 3}}, s.Buildings)
	assert.InDelta(t, 2.5, s.LocalSupplies, 1e-9)
	assert.False(t, s.Impassable)
	assert.Equal(t, map[string]int{"tungsten": 1, "chromium": 2}, m.States[6].Resources)
	assert.True(t, m.States[6].Demilitarized)

	assert.Empty(t, m.Regions[15].Provinces)
	assert.Equal(t, "water_shallow_sea", m.Regions[1].NavalTerrain)

	assert.Equal(t, map[int]string{1: "europe", 2: "north_america"}, m.Continents)

	require.Len(t, m.Adjacencies, 1)
	assert.Equal(t, Adjacency{From: 1, To: 3, Type: "sea", Through: 2, Start: Point{10, 20}, Stop: Point{30, 40}, Rule: "STRAIT"}, m.Adjacencies[0])

	rule := m.AdjacencyRules["STRAIT"]
	require.NotNil(t, rule)
	assert.Equal(t, PassRule{Army: true, Navy: true, Submarine: true, Trade: true}, rule.Friend)
	assert.Equal(t, PassRule{Navy: true, Submarine: true}, rule.Enemy)
	assert.Equal(t, []int{1, 3}, rule.RequiredProvinces)
	assert.Equal(t, []float64{-3, 0, -6}, rule.Offset)

	assert.Equal(t, []int{1, 3}, m.SupplyNodes)
	assert.Equal(t, []Railway{{Level: 2, Provinces: []int{1, 3}}, {Level: 1, Provinces: []int{1, 2, 3}}}, m.Railways)

	assert.Equal(t, &BuildingDef{Name: "infrastructure", IconFrame: 1, Slot: SlotNonShared, MaxLevel: 5}, m.Buildings["infrastructure"])
	assert.Equal(t, &BuildingDef{Name: "naval_base", Slot: SlotProvincial, MaxLevel: 10, OnlyCoastal: true, DisabledInDMZ: true}, m.Buildings["naval_base"])
	assert.Equal(t, SlotShared, m.Buildings["arms_factory"].Slot)
	assert.Equal(t, DefaultMaxLevel, m.Buildings["bunker"].MaxLevel)

	fra := m.Countries["FRA"]
	require.NotNil(t, fra)
	assert.Equal(t, "countries/France.txt", fra.File)
	assert.Equal(t, RGB{57, 160, 101}, fra.Color)
	col, ok := m.CountryColor("ENG")
	require.True(t, ok)
	assert.Equal(t, RGB{255, 0, 0}, col)
	assert.NotContains(t, m.Countries, "dynamic_tags")
	_, ok = m.CountryColor("D01")
	assert.False(t, ok)

	// The only issue is the unitstacks row for province 99.
	issues := rep.Issues()
	require.Len(t, issues, 1)
	assert.True(t, report.IsIntegrity(issues[0].Err(), report.UnknownProvince))
	assert.False(t, rep.HasErrors())
}

func TestLoad_Indices(t *testing.T) {
	m, _ := load(t, baseRoot(t))

	p, ok := m.ProvinceByColor(RGB{20, 20, 20})
	require.True(t, ok)
	assert.Equal(t, 2, p.ID)
	_, ok = m.ProvinceByColor(RGB{1, 2, 3})
	assert.False(t, ok)

	s, ok := m.StateOf(1)
	require.True(t, ok)
	assert.Equal(t, 5, s.ID)
	_, ok = m.StateOf(2)
	assert.False(t, ok)

	r, ok := m.RegionOf(3)
	require.True(t, ok)
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, []RGB{{10, 10, 10}, {20, 20, 20}, {30, 30, 30}}, m.Colors())
	assert.True(t, m.Indexed())
}

func TestLoad_LaterRootWins(t *testing.T) {
	base := baseRoot(t)
	mod := t.TempDir()
	writeFile(t, mod, DefinitionPath, definitions+"4;40;40;40;land;false;hills;1\n")
	writeFile(t, mod, "history/states/5-Paris.txt", `state = { id = 5 provinces = { 1 4 } history = { owner = GER } }`)
	writeFile(t, mod, ColorsPath, "FRA = { color = rgb { 1 1 1 } }\n")

	m, _ := load(t, base, mod)
	assert.Len(t, m.Provinces, 4)
	assert.Equal(t, "GER", m.States[5].Owner)
	s, ok := m.StateOf(4)
	require.True(t, ok)
	assert.Equal(t, 5, s.ID)
	assert.Equal(t, RGB{1, 1, 1}, m.Countries["FRA"].Color)
	assert.Equal(t, RGB{255, 0, 0}, m.Countries["ENG"].Color)

	m, _ = load(t, mod, base)
	assert.Len(t, m.Provinces, 3)
	assert.Equal(t, "FRA", m.States[5].Owner)
	assert.Equal(t, RGB{57, 160, 101}, m.Countries["FRA"].Color)
}

func TestLoad_RepeatedKeysTakeLastValue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefinitionPath, definitions)
	writeFile(t, dir, "history/states/5.txt", `state = {
	id = 5
	manpower = 100
	manpower = 200
	state_category = town
	state_category = city
	provinces = { 1 }
	provinces = { 2 }
	history = { owner = GER owner = FRA }
}`)
	writeFile(t, dir, "map/strategicregions/1.txt", `strategic_region = { id = 1 name = "A" name = "B" provinces = { 1 } provinces = { 3 } }`)

	m, rep := load(t, dir)
	assert.Zero(t, rep.Len())

	s := m.States[5]
	require.NotNil(t, s)
	assert.Equal(t, 200, s.Manpower)
	assert.Equal(t, "city", s.Category)
	assert.Equal(t, []int{2}, s.Provinces)
	assert.Equal(t, "FRA", s.Owner)

	_, ok := m.StateOf(1)
	assert.False(t, ok, "only the last provinces list counts")
	owner, ok := m.StateOf(2)
	require.True(t, ok)
	assert.Equal(t, 5, owner.ID)

	r := m.Regions[1]
	require.NotNil(t, r)
	assert.Equal(t, "B", r.Name)
	assert.Equal(t, []int{3}, r.Provinces)
}

func TestLoad_IntegrityErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefinitionPath, definitions+"4;10;10;10;land;false;plains;1\n")
	writeFile(t, dir, "history/states/1-A.txt", `state = { id = 1 provinces = { 1 3 } }`)
	writeFile(t, dir, "history/states/2-B.txt", `state = { id = 2 provinces = { 3 } }`)
	writeFile(t, dir, "map/strategicregions/1.txt", "strategic_region = { id = 1 provinces = { 1 2 } }\nstrategic_region = { id = 2 provinces = { 2 3 } }\n")

	m, rep := load(t, dir)

	var kinds []report.IntegrityKind
	for _, i := range rep.Issues() {
		var ie *report.IntegrityError
		if assert.ErrorAs(t, i.Err(), &ie) {
			kinds = append(kinds, ie.Kind)
		}
	}
	assert.ElementsMatch(t, []report.IntegrityKind{report.DuplicateColor, report.DuplicateStateMember, report.DuplicateRegionMember}, kinds)

	p, ok := m.ProvinceByColor(RGB{10, 10, 10})
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)

	_, ok = m.StateOf(3)
	assert.False(t, ok, "a province claimed twice stays unassigned")
	_, ok = m.StateOf(1)
	assert.True(t, ok)
	_, ok = m.RegionOf(2)
	assert.False(t, ok)
	_, ok = m.RegionOf(3)
	assert.True(t, ok)
}

func TestLoad_MalformedInputIsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefinitionPath, definitions+"x;1;2;3;land;false;plains;1\n5;1;2\n")
	writeFile(t, dir, "history/states/1.txt", `state = { name = "no id" }`)
	writeFile(t, dir, "history/states/2.txt", `state = { id = 2 provinces = { 1 } `)
	writeFile(t, dir, SupplyNodesPath, "1\n1 abc\n")

	m, rep := load(t, dir)
	assert.Len(t, m.Provinces, 3)
	assert.Contains(t, m.States, 2)
	assert.GreaterOrEqual(t, rep.Len(), 5)
	assert.False(t, rep.HasErrors())
}

func TestLoad_EmptyRootIsFine(t *testing.T) {
	m, rep := load(t, t.TempDir())
	assert.Zero(t, rep.Len())
	assert.Equal(t, Summary{}, m.Summary())
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := Load(ctx, []source.Root{{Path: baseRoot(t)}}, report.New(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, m)
}

// hsvReference is the textbook sector conversion used as ground truth.
func hsvReference(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	}
	return v, p, q
}

func TestFromHSV_MatchesReference(t *testing.T) {
	const steps = 12
	for hi := 0; hi <= steps; hi++ {
		for si := 0; si <= steps; si++ {
			for vi := 0; vi <= steps; vi++ {
				h, s, v := float64(hi)/steps, float64(si)/steps, float64(vi)/steps
				r, g, b := hsvReference(h, s, v)
				got := FromHSV(h, s, v)
				want := RGB{uint8(r * 255), uint8(g * 255), uint8(b * 255)}
				assert.Equal(t, want, got, "h=%v s=%v v=%v", h, s, v)
			}
		}
	}
}

func TestFromHSV_Truncates(t *testing.T) {
	// 0.5 * 255 = 127.5 must truncate to 127.
	assert.Equal(t, RGB{127, 127, 127}, FromHSV(0, 0, 0.5))
	assert.Equal(t, FromHSV(0, 1, 1), FromHSV(1, 1, 1))
	assert.Equal(t, RGB{0, 255, 0}, FromHSV360(120, 100, 100))
	// v*(1-s) = 0.2 scales to exactly 51.
	assert.Equal(t, RGB{204, 51, 51}, FromHSV(0, 0.75, 0.8))
}

func TestParseRGB(t *testing.T) {
	c, err := ParseRGB("10, 20,30")
	require.NoError(t, err)
	assert.Equal(t, RGB{10, 20, 30}, c)
	assert.Equal(t, "10,20,30", c.String())

	c, err = ParseRGB(" #39A065 ")
	require.NoError(t, err)
	assert.Equal(t, RGB{57, 160, 101}, c)
	assert.Equal(t, "#39a065", c.Hex())

	for _, bad := range []string{"", "1,2", "1,2,300", "a,b,c", "#zz0000"} {
		_, err := ParseRGB(bad)
		assert.Error(t, err, bad)
	}
}
