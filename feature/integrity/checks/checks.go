package checks

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strconv"

	"map-atlas/core/mapdata"
)

// Finding is one inconsistency found by a check.
type Finding struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
}

// Check is a named consistency check over a built model.
type Check struct {
	Name        string
	Description string
	Run         func(ctx context.Context, in Input) ([]Finding, error)
}

// Input is what a check may look at. Provinces is the province bitmap and
// may be nil.
type Input struct {
	Model     *mapdata.Model
	Provinces image.Image
}

// All lists every check in execution order.
var All = []Check{
	{"regions", "provinces without a strategic region", CheckRegions},
	{"states", "land provinces without a state", CheckStates},
	{"references", "records referencing undefined provinces", CheckReferences},
	{"owners", "state owners without a country or a colour", CheckOwners},
	{"adjacency_rules", "adjacencies naming an undefined rule", CheckAdjacencyRules},
	{"bitmap", "province bitmap colours versus definitions", CheckBitmap},
}

// Find returns the check called name.
func Find(name string) (Check, bool) {
	for _, c := range All {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// CheckRegions reports provinces no strategic region lists.
func CheckRegions(_ context.Context, in Input) ([]Finding, error) {
	var out []Finding
	for _, id := range mapdata.SortedIDs(in.Model.Provinces) {
		if _, ok := in.Model.RegionOf(id); !ok {
			out = append(out, Finding{ID: strconv.Itoa(id), Message: "province has no strategic region"})
		}
	}
	return out, nil
}

// CheckStates reports land provinces no state lists.
func CheckStates(_ context.Context, in Input) ([]Finding, error) {
	var out []Finding
	for _, id := range mapdata.SortedIDs(in.Model.Provinces) {
		if !in.Model.Provinces[id].IsLand() {
			continue
		}
		if _, ok := in.Model.StateOf(id); !ok {
			out = append(out, Finding{ID: strconv.Itoa(id), Message: "land province has no state"})
		}
	}
	return out, nil
}

// CheckReferences reports province ids used by states, regions, adjacencies,
// railways and supply nodes that the definition table lacks.
func CheckReferences(_ context.Context, in Input) ([]Finding, error) {
	m := in.Model
	var out []Finding
	missing := func(pid int, what, file string) {
		if _, ok := m.Provinces[pid]; !ok {
			out = append(out, Finding{ID: strconv.Itoa(pid), Message: what + " references an undefined province", File: file})
		}
	}

	for _, id := range mapdata.SortedIDs(m.States) {
		s := m.States[id]
		for _, pid := range s.Provinces {
			missing(pid, fmt.Sprintf("state %d", id), s.File)
		}
	}
	for _, id := range mapdata.SortedIDs(m.Regions) {
		r := m.Regions[id]
		for _, pid := range r.Provinces {
			missing(pid, fmt.Sprintf("strategic region %d", id), r.File)
		}
	}
	for i, a := range m.Adjacencies {
		missing(a.From, fmt.Sprintf("adjacency %d", i), "")
		missing(a.To, fmt.Sprintf("adjacency %d", i), "")
		if a.Through > 0 {
			missing(a.Through, fmt.Sprintf("adjacency %d", i), "")
		}
	}
	for i, r := range m.Railways {
		for _, pid := range r.Provinces {
			missing(pid, fmt.Sprintf("railway %d", i), "")
		}
	}
	for _, pid := range m.SupplyNodes {
		missing(pid, "supply node", "")
	}
	return out, nil
}

// CheckOwners reports state owners that are not countries, or countries
// without a map colour.
func CheckOwners(_ context.Context, in Input) ([]Finding, error) {
	m := in.Model
	seen := make(map[string]string)
	for _, id := range mapdata.SortedIDs(m.States) {
		s := m.States[id]
		if s.Owner == "" {
			continue
		}
		if _, ok := seen[s.Owner]; !ok {
			seen[s.Owner] = s.File
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var out []Finding
	for _, tag := range tags {
		c, ok := m.Countries[tag]
		switch {
		case !ok:
			out = append(out, Finding{ID: tag, Message: "owner tag is not a defined country", File: seen[tag]})
		case !c.HasColor:
			out = append(out, Finding{ID: tag, Message: "owner country has no map colour", File: c.File})
		}
	}
	return out, nil
}

// CheckAdjacencyRules reports adjacencies whose rule name is not defined.
func CheckAdjacencyRules(_ context.Context, in Input) ([]Finding, error) {
	var out []Finding
	for i, a := range in.Model.Adjacencies {
		if a.Rule == "" {
			continue
		}
		if _, ok := in.Model.AdjacencyRules[a.Rule]; !ok {
			out = append(out, Finding{
				ID:      a.Rule,
				Message: fmt.Sprintf("adjacency %d (%d-%d) names an undefined rule", i, a.From, a.To),
			})
		}
	}
	return out, nil
}

// CheckBitmap reports bitmap colours no province declares and provinces whose
// colour never appears in the bitmap. The context is checked once per row.
func CheckBitmap(ctx context.Context, in Input) ([]Finding, error) {
	if in.Provinces == nil {
		return []Finding{{ID: "provinces.bmp", Message: "no province bitmap loaded"}}, nil
	}
	m := in.Model
	b := in.Provinces.Bounds()
	used := make(map[mapdata.RGB]bool)
	unknown := make(map[mapdata.RGB]image.Point)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := in.Provinces.At(x, y).RGBA()
			c := mapdata.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
			if used[c] {
				continue
			}
			if _, ok := m.ProvinceByColor(c); ok {
				used[c] = true
			} else if _, seen := unknown[c]; !seen {
				unknown[c] = image.Pt(x, y)
			}
		}
	}

	colors := make([]mapdata.RGB, 0, len(unknown))
	for c := range unknown {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		pi, pj := unknown[colors[i]], unknown[colors[j]]
		return pi.Y < pj.Y || (pi.Y == pj.Y && pi.X < pj.X)
	})

	var out []Finding
	for _, c := range colors {
		p := unknown[c]
		out = append(out, Finding{ID: c.String(), Message: fmt.Sprintf("colour first seen at (%d,%d) matches no province", p.X, p.Y)})
	}
	for _, id := range mapdata.SortedIDs(m.Provinces) {
		p := m.Provinces[id]
		if !used[p.Color] {
			out = append(out, Finding{ID: strconv.Itoa(id), Message: fmt.Sprintf("province colour %s does not appear in the bitmap", p.Color), File: m.DefinitionFile})
		}
	}
	return out, nil
}
