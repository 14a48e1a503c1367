package mapdata

import (
	"fmt"
	"strconv"
	"strings"

	"map-atlas/core/report"
	"map-atlas/core/script"
	"map-atlas/core/source"
)

// readScript parses f and forwards parser warnings to rep.
func readScript(f source.File, rep *report.Report) (script.Statement, error) {
	doc, err := script.ReadFile(f.Path)
	if err != nil {
		return script.Statement{}, err
	}
	for _, w := range doc.Warnings {
		rep.Warn(&report.ParseError{Path: f.Path, Line: w.Line, Msg: w.Msg})
	}
	return doc.Root(), nil
}

// intOf reads integers that are sometimes written with a fraction ("5.000").
func intOf(v script.Value) (int, bool) {
	if i, ok := v.Int(); ok {
		return i, true
	}
	if f, ok := v.Float(); ok {
		return int(f), true
	}
	return 0, false
}

func yes(s script.Statement, key string) bool {
	v, ok := s.GetLast(key)
	if !ok {
		return false
	}
	b, _ := v.Bool()
	return b
}

func unquoted(s script.Statement, key string) string {
	v, ok := s.GetLast(key)
	if !ok {
		return ""
	}
	return v.Unquoted()
}

func scalars(s script.Statement, key string) []string {
	var out []string
	for _, c := range s.All(key) {
		if str, ok := c.Value.AsScalar(); ok {
			out = append(out, script.Unquote(str))
		}
	}
	return out
}

// parseState reads one `state = { ... }` block. A key repeated inside the
// block takes its last value; dated history entries are ignored.
func parseState(st script.Statement, path string, rep *report.Report) (*State, bool) {
	idVal, _ := st.GetLast("id")
	id, ok := idVal.Int()
	if !ok {
		rep.Warn(&report.ParseError{Path: path, Msg: "state without a numeric id"})
		return nil, false
	}

	s := &State{ID: id, Name: unquoted(st, "name"), File: path, Impassable: yes(st, "impassable")}
	if v, ok := st.GetLast("manpower"); ok {
		s.Manpower, _ = intOf(v)
	}
	if v, ok := st.GetLast("state_category"); ok {
		s.Category = v.Unquoted()
	}
	if v, ok := st.GetLast("provinces"); ok {
		if s.Provinces, ok = v.Ints(); !ok {
			rep.Warn(&report.ParseError{Path: path, Msg: fmt.Sprintf("state %d: provinces must be numbers", id)})
		}
	}
	if v, ok := st.GetLast("local_supplies"); ok {
		s.LocalSupplies, _ = v.Float()
	}

	for _, res := range st.All("resources") {
		for _, c := range res.Children() {
			if n, ok := intOf(c.Value); ok {
				if s.Resources == nil {
					s.Resources = make(map[string]int)
				}
				s.Resources[strings.ToLower(c.Keyword)] = n
			}
		}
	}

	if h, ok := st.LookupLast("history"); ok {
		parseHistory(s, h, path, rep)
	}
	return s, true
}

func parseHistory(s *State, h script.Statement, path string, rep *report.Report) {
	s.Owner = unquoted(h, "owner")
	s.Controller = unquoted(h, "controller")
	s.Cores = scalars(h, "add_core_of")
	s.Claims = scalars(h, "add_claim_by")
	s.Flags = scalars(h, "set_state_flag")
	s.Demilitarized = yes(h, "set_demilitarized_zone")

	for _, b := range h.All("buildings") {
		for _, c := range b.Children() {
			if c.Value.Kind() == script.KindScalar {
				level, _ := intOf(c.Value)
				s.Buildings = append(s.Buildings, Building{Name: c.Keyword, Level: level})
				continue
			}
			pid, err := strconv.Atoi(c.Keyword)
			if err != nil {
				rep.Warn(&report.ParseError{Path: path, Msg: fmt.Sprintf("state %d: building block %q is not a province", s.ID, c.Keyword)})
				continue
			}
			for _, pb := range c.Children() {
				level, ok := intOf(pb.Value)
				if !ok {
					// landmarks and other DLC buildings nest their level
					lv, _ := pb.GetLast("level")
					level, _ = intOf(lv)
				}
				if s.ProvinceBuildings == nil {
					s.ProvinceBuildings = make(map[int][]Building)
				}
				s.ProvinceBuildings[pid] = append(s.ProvinceBuildings[pid], Building{Name: pb.Keyword, Level: level})
			}
		}
	}

	for _, vp := range h.All("victory_points") {
		nums, ok := vp.Value.Ints()
		if !ok || len(nums)%2 != 0 {
			rep.Warn(&report.ParseError{Path: path, Msg: fmt.Sprintf("state %d: victory_points wants province/value pairs", s.ID)})
			continue
		}
		for i := 0; i < len(nums); i += 2 {
			if s.VictoryPoints == nil {
				s.VictoryPoints = make(map[int]int)
			}
			s.VictoryPoints[nums[i]] = nums[i+1]
		}
	}
}

// parseRegion reads one `strategic_region = { ... }` block.
func parseRegion(st script.Statement, path string, rep *report.Report) (*StrategicRegion, bool) {
	idVal, _ := st.GetLast("id")
	id, ok := idVal.Int()
	if !ok {
		rep.Warn(&report.ParseError{Path: path, Msg: "strategic region without a numeric id"})
		return nil, false
	}
	r := &StrategicRegion{ID: id, Name: unquoted(st, "name"), NavalTerrain: unquoted(st, "naval_terrain"), File: path}
	if v, ok := st.GetLast("provinces"); ok {
		if r.Provinces, ok = v.Ints(); !ok {
			rep.Warn(&report.ParseError{Path: path, Msg: fmt.Sprintf("region %d: provinces must be numbers", id)})
		}
	}
	return r, true
}

// parseColor reads `rgb { r g b }`, `hsv { h s v }` or `hsv360 { h s v }`.
// An untagged block is RGB.
func parseColor(v script.Value) (RGB, error) {
	nums, ok := v.Floats()
	if !ok || len(nums) < 3 {
		return RGB{}, fmt.Errorf("colour needs three numbers")
	}
	switch strings.ToLower(v.Tag()) {
	case "", "rgb":
		return FromInts(int(nums[0]), int(nums[1]), int(nums[2])), nil
	case "hsv":
		return FromHSV(nums[0], nums[1], nums[2]), nil
	case "hsv360":
		return FromHSV360(nums[0], nums[1], nums[2]), nil
	}
	return RGB{}, fmt.Errorf("unknown colour space %q", v.Tag())
}

// readColors reads common/countries/colors.txt into tag -> colour entries.
func readColors(rep *report.Report) func(source.File) ([]source.Entry[RGB], error) {
	return func(f source.File) ([]source.Entry[RGB], error) {
		root, err := readScript(f, rep)
		if err != nil {
			return nil, err
		}
		var out []source.Entry[RGB]
		for _, c := range root.Children() {
			v, ok := c.GetLast("color")
			if !ok {
				continue
			}
			col, err := parseColor(v)
			if err != nil {
				rep.Warn(&report.ParseError{Path: f.Path, Msg: fmt.Sprintf("%s: %v", c.Keyword, err)})
				continue
			}
			out = append(out, source.Entry[RGB]{Key: c.Keyword, Value: col})
		}
		return out, nil
	}
}

// readCountryTags reads `TAG = "countries/File.txt"` lines.
func readCountryTags(rep *report.Report) func(source.File) ([]source.Entry[string], error) {
	return func(f source.File) ([]source.Entry[string], error) {
		root, err := readScript(f, rep)
		if err != nil {
			return nil, err
		}
		var out []source.Entry[string]
		for _, c := range root.Children() {
			if c.Keyword == "dynamic_tags" {
				continue
			}
			if _, ok := c.Value.AsScalar(); !ok {
				continue
			}
			out = append(out, source.Entry[string]{Key: c.Keyword, Value: c.Value.Unquoted()})
		}
		return out, nil
	}
}

// readContinents maps the 1-based position of each name in `continents = { }`.
func readContinents(rep *report.Report) func(source.File) ([]source.Entry[string], error) {
	return func(f source.File) ([]source.Entry[string], error) {
		root, err := readScript(f, rep)
		if err != nil {
			return nil, err
		}
		var out []source.Entry[string]
		for _, c := range root.All("continents") {
			for i, name := range c.Value.Strings() {
				out = append(out, source.Entry[string]{Key: strconv.Itoa(i + 1), Value: name})
			}
		}
		return out, nil
	}
}

func passRule(s script.Statement, key string) PassRule {
	r, ok := s.LookupLast(key)
	if !ok {
		return PassRule{}
	}
	return PassRule{Army: yes(r, "army"), Navy: yes(r, "navy"), Submarine: yes(r, "submarine"), Trade: yes(r, "trade")}
}

// readAdjacencyRules reads every `adjacency_rule = { }` keyed by name.
func readAdjacencyRules(rep *report.Report) func(source.File) ([]source.Entry[*AdjacencyRule], error) {
	return func(f source.File) ([]source.Entry[*AdjacencyRule], error) {
		root, err := readScript(f, rep)
		if err != nil {
			return nil, err
		}
		var out []source.Entry[*AdjacencyRule]
		for _, c := range root.All("adjacency_rule") {
			name := unquoted(c, "name")
			if name == "" {
				rep.Warn(&report.ParseError{Path: f.Path, Msg: "adjacency rule without a name"})
				continue
			}
			r := &AdjacencyRule{
				Name:      name,
				Contested: passRule(c, "contested"),
				Enemy:     passRule(c, "enemy"),
				Friend:    passRule(c, "friend"),
				Neutral:   passRule(c, "neutral"),
			}
			if v, ok := c.GetLast("required_provinces"); ok {
				r.RequiredProvinces, _ = v.Ints()
			}
			if v, ok := c.GetLast("icon"); ok {
				r.Icon, _ = v.Int()
			}
			if v, ok := c.GetLast("offset"); ok {
				r.Offset, _ = v.Floats()
			}
			out = append(out, source.Entry[*AdjacencyRule]{Key: name, Value: r})
		}
		return out, nil
	}
}

// readBuildingDefs reads `buildings = { name = { ... } }` definitions.
func readBuildingDefs(rep *report.Report) func(source.File) ([]source.Entry[*BuildingDef], error) {
	return func(f source.File) ([]source.Entry[*BuildingDef], error) {
		root, err := readScript(f, rep)
		if err != nil {
			return nil, err
		}
		var out []source.Entry[*BuildingDef]
		for _, block := range root.All("buildings") {
			for _, c := range block.Children() {
				if k := c.Value.Kind(); k != script.KindBlock && k != script.KindEmpty {
					continue
				}
				d := &BuildingDef{Name: c.Keyword, Slot: SlotNonShared, MaxLevel: DefaultMaxLevel}
				if v, ok := c.GetLast("icon_frame"); ok {
					d.IconFrame, _ = v.Int()
				}
				if capStmt, ok := c.LookupLast("level_cap"); ok {
					_, shared := capStmt.GetLast("shares_slots")
					stateMax, hasState := capStmt.GetLast("state_max")
					provMax, hasProv := capStmt.GetLast("province_max")
					switch {
					case shared:
						d.Slot = SlotShared
					case hasProv:
						d.Slot = SlotProvincial
					}
					switch {
					case hasState:
						d.MaxLevel, _ = intOf(stateMax)
					case hasProv:
						d.MaxLevel, _ = intOf(provMax)
					}
				}
				// the game spells it only_costal
				d.OnlyCoastal = yes(c, "only_costal") || yes(c, "only_coastal")
				d.DisabledInDMZ = yes(c, "disabled_in_dmz")
				out = append(out, source.Entry[*BuildingDef]{Key: d.Name, Value: d})
			}
		}
		return out, nil
	}
}
