package mapdata

import (
	"fmt"
	"strconv"

	"map-atlas/core/report"
)

// Index rebuilds the reverse lookups (colour to province, province to state,
// province to region) from the tables. It must run after every table is
// loaded and before any view is rendered.
//
// Conflicts are reported on rep and never resolved silently: a colour used by
// two provinces stays with the lower id, and a province listed by two states
// (or two regions) is left unassigned.
func (m *Model) Index(rep *report.Report) {
	m.byColor = make(map[RGB]int, len(m.Provinces))
	for _, id := range SortedIDs(m.Provinces) {
		p := m.Provinces[id]
		if prev, dup := m.byColor[p.Color]; dup {
			rep.Add(&report.IntegrityError{
				Kind: report.DuplicateColor,
				ID:   p.Color.String(),
				Path: m.DefinitionFile,
				Msg:  fmt.Sprintf("provinces %d and %d share a colour", prev, id),
			})
			continue
		}
		m.byColor[p.Color] = id
	}

	states := make(map[int][]int, len(m.States))
	files := make(map[int]string, len(m.States))
	for _, id := range SortedIDs(m.States) {
		states[id] = m.States[id].Provinces
		files[id] = m.States[id].File
	}
	m.provinceState = membership(states, files, report.DuplicateStateMember, "state", rep)

	regions := make(map[int][]int, len(m.Regions))
	files = make(map[int]string, len(m.Regions))
	for _, id := range SortedIDs(m.Regions) {
		regions[id] = m.Regions[id].Provinces
		files[id] = m.Regions[id].File
	}
	m.provinceRegion = membership(regions, files, report.DuplicateRegionMember, "strategic region", rep)
}

// membership inverts owner -> members into member -> owner. Members claimed
// by more than one owner are dropped and reported once each.
func membership(owners map[int][]int, files map[int]string, kind report.IntegrityKind, noun string, rep *report.Report) map[int]int {
	out := make(map[int]int)
	claims := make(map[int][]int)
	for _, owner := range SortedIDs(owners) {
		for _, pid := range owners[owner] {
			c := claims[pid]
			if len(c) > 0 && c[len(c)-1] == owner {
				continue
			}
			claims[pid] = append(c, owner)
		}
	}

	for _, pid := range SortedIDs(claims) {
		c := claims[pid]
		if len(c) == 1 {
			out[pid] = c[0]
			continue
		}
		rep.Add(&report.IntegrityError{
			Kind: kind,
			ID:   strconv.Itoa(pid),
			Path: files[c[len(c)-1]],
			Msg:  fmt.Sprintf("province listed by %s %v", noun, c),
		})
	}
	return out
}

// Indexed reports whether Index has run.
func (m *Model) Indexed() bool {
	return m.byColor != nil
}
