package mapdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"map-atlas/core/report"
	"map-atlas/core/script"
	"map-atlas/core/source"
)

// Well known file locations, relative to a content root.
const (
	DefinitionPath    = "map/definition.csv"
	AdjacenciesPath   = "map/adjacencies.csv"
	UnitStacksPath    = "map/unitstacks.txt"
	SupplyNodesPath   = "map/supply_nodes.txt"
	RailwaysPath      = "map/railways.txt"
	ContinentPath     = "map/continent.txt"
	AdjacencyRulePath = "map/adjacency_rules.txt"
	StatesDir         = "history/states"
	RegionsDir        = "map/strategicregions"
	CountryTagsDir    = "common/country_tags"
	ColorsPath        = "common/countries/colors.txt"
	BuildingsDir      = "common/buildings"
)

// victoryPointStack is the unitstacks.txt type of a victory point marker.
const victoryPointStack = 38

func readText(f source.File) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", &report.FileError{Path: f.Path, Op: "read", Err: err}
	}
	return script.Decode(data), nil
}

// eachRow feeds every ';' separated record of f to fn with its 1-based line.
// fn returns false to stop early.
func eachRow(f source.File, fn func(line int, rec []string) bool) error {
	text, err := readText(f)
	if err != nil {
		return err
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &report.ParseError{Path: f.Path, Msg: err.Error()}
		}
		line, _ := r.FieldPos(0)
		if !fn(line, rec) {
			return nil
		}
	}
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func atof(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// readDefinitions loads id;r;g;b;type;coastal;category;continent rows.
// The id 0 placeholder row is skipped.
func readDefinitions(f source.File, rep *report.Report) (map[int]*Province, error) {
	out := make(map[int]*Province)
	err := eachRow(f, func(line int, rec []string) bool {
		if len(rec) < 8 {
			rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: fmt.Sprintf("want 8 columns, got %d", len(rec))})
			return true
		}
		var nums [4]int
		for i := range nums {
			v, err := atoi(rec[i])
			if err != nil {
				rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: fmt.Sprintf("column %d: %v", i+1, err)})
				return true
			}
			nums[i] = v
		}
		if nums[0] == 0 {
			return true
		}
		continent, _ := atoi(rec[7])
		out[nums[0]] = &Province{
			ID:        nums[0],
			Color:     FromInts(nums[1], nums[2], nums[3]),
			Type:      strings.ToLower(strings.TrimSpace(rec[4])),
			Coastal:   strings.EqualFold(strings.TrimSpace(rec[5]), "true"),
			Terrain:   strings.TrimSpace(rec[6]),
			Continent: continent,
		}
		return true
	})
	return out, err
}

// readAdjacencies loads From;To;Type;Through;start_x;start_y;stop_x;stop_y;rule
// rows up to the -1 sentinel row. A header row is skipped.
func readAdjacencies(f source.File, rep *report.Report) ([]Adjacency, error) {
	var out []Adjacency
	err := eachRow(f, func(line int, rec []string) bool {
		from, err := atoi(rec[0])
		if err != nil {
			if line != 1 {
				rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: "from: " + err.Error()})
			}
			return true
		}
		if from == -1 {
			return false
		}
		if len(rec) < 8 {
			rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: fmt.Sprintf("want at least 8 columns, got %d", len(rec))})
			return true
		}
		to, err := atoi(rec[1])
		if err != nil {
			rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: "to: " + err.Error()})
			return true
		}
		through, _ := atoi(rec[3])
		var coords [4]float64
		for i := range coords {
			coords[i], _ = atof(rec[4+i])
		}
		a := Adjacency{
			From:    from,
			To:      to,
			Type:    strings.TrimSpace(rec[2]),
			Through: through,
			Start:   Point{coords[0], coords[1]},
			Stop:    Point{coords[2], coords[3]},
		}
		if len(rec) > 8 {
			a.Rule = strings.TrimSpace(rec[8])
		}
		out = append(out, a)
		return true
	})
	return out, err
}

// readUnitStacks returns victory point marker positions keyed by province.
// Rows are id;type;x;y;z;rotation;offset and the map plane is (x, z).
func readUnitStacks(f source.File, rep *report.Report) (map[int]Point, error) {
	out := make(map[int]Point)
	err := eachRow(f, func(line int, rec []string) bool {
		if len(rec) < 5 {
			return true
		}
		kind, err := atoi(rec[1])
		if err != nil || kind != victoryPointStack {
			return true
		}
		id, err := atoi(rec[0])
		if err != nil {
			rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: "id: " + err.Error()})
			return true
		}
		x, errX := atof(rec[2])
		z, errZ := atof(rec[4])
		if errX != nil || errZ != nil {
			rep.Warn(&report.ParseError{Path: f.Path, Line: line, Msg: "bad coordinates"})
			return true
		}
		out[id] = Point{X: x, Y: z}
		return true
	})
	return out, err
}

// readSupplyNodes reads `<level> <province>` lines into a sorted id set.
func readSupplyNodes(f source.File, rep *report.Report) ([]int, error) {
	text, err := readText(f)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			rep.Warn(&report.ParseError{Path: f.Path, Line: i + 1, Msg: "want <level> <province>"})
			continue
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			rep.Warn(&report.ParseError{Path: f.Path, Line: i + 1, Msg: "province: " + err.Error()})
			continue
		}
		seen[id] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}

// readRailways reads `<level> <count> <province>...` lines.
func readRailways(f source.File, rep *report.Report) ([]Railway, error) {
	text, err := readText(f)
	if err != nil {
		return nil, err
	}
	var out []Railway
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		nums := make([]int, len(fields))
		bad := false
		for j, s := range fields {
			if nums[j], err = strconv.Atoi(s); err != nil {
				bad = true
				break
			}
		}
		if bad || len(nums) < 3 {
			rep.Warn(&report.ParseError{Path: f.Path, Line: i + 1, Msg: "want <level> <count> <province>..."})
			continue
		}
		out = append(out, Railway{Level: nums[0], Provinces: nums[2:]})
	}
	return out, nil
}
