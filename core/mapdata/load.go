package mapdata

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"strconv"

	"map-atlas/core/progress"
	"map-atlas/core/report"
	"map-atlas/core/source"
)

// Load builds a fresh model from roots. Problems with single files or rows
// are recorded on rep and the load goes on; the only error returned is the
// context's, checked before every file. On error no model is returned.
func Load(ctx context.Context, roots []source.Root, rep *report.Report, pr progress.Reporter) (*Model, error) {
	if pr == nil {
		pr = progress.Nop{}
	}
	b := &builder{m: NewModel(), roots: roots, rep: rep, pr: pr}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"definitions", b.definitions},
		{"adjacencies", b.adjacencies},
		{"adjacency rules", b.adjacencyRules},
		{"continents", b.continents},
		{"supply nodes", b.supplyNodes},
		{"railways", b.railways},
		{"unit stacks", b.unitStacks},
		{"buildings", b.buildingDefs},
		{"states", b.states},
		{"strategic regions", b.regions},
		{"countries", b.countries},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pr.Stage(s.name)
		if err := s.run(ctx); err != nil {
			return nil, err
		}
	}

	pr.Stage("index")
	b.m.Index(rep)
	return b.m, nil
}

type builder struct {
	m     *Model
	roots []source.Root
	rep   *report.Report
	pr    progress.Reporter
}

// whole reads a whole-file resource from the highest priority root.
func (b *builder) whole(rel string, read func(source.File) error) {
	f, ok := source.Latest(b.roots, rel)
	if !ok {
		return
	}
	if err := read(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.rep.Add(err)
	}
}

func (b *builder) definitions(context.Context) error {
	b.whole(DefinitionPath, func(f source.File) error {
		provinces, err := readDefinitions(f, b.rep)
		if err != nil {
			return err
		}
		b.m.Provinces = provinces
		b.m.DefinitionFile = f.Path
		return nil
	})
	return nil
}

func (b *builder) adjacencies(context.Context) error {
	b.whole(AdjacenciesPath, func(f source.File) error {
		adj, err := readAdjacencies(f, b.rep)
		b.m.Adjacencies = adj
		return err
	})
	return nil
}

func (b *builder) supplyNodes(context.Context) error {
	b.whole(SupplyNodesPath, func(f source.File) (err error) {
		b.m.SupplyNodes, err = readSupplyNodes(f, b.rep)
		return err
	})
	return nil
}

func (b *builder) railways(context.Context) error {
	b.whole(RailwaysPath, func(f source.File) (err error) {
		b.m.Railways, err = readRailways(f, b.rep)
		return err
	})
	return nil
}

func (b *builder) unitStacks(context.Context) error {
	b.whole(UnitStacksPath, func(f source.File) error {
		positions, err := readUnitStacks(f, b.rep)
		if err != nil {
			return err
		}
		for _, id := range SortedIDs(positions) {
			p, ok := b.m.Provinces[id]
			if !ok {
				b.rep.Warn(unknownProvince(id, f.Path, "victory point marker"))
				continue
			}
			pos := positions[id]
			p.Position = &pos
		}
		return nil
	})
	return nil
}

func (b *builder) adjacencyRules(ctx context.Context) error {
	rules, err := source.Merge(ctx, source.All(b.roots, AdjacencyRulePath), readAdjacencyRules(b.rep), b.rep)
	if err != nil {
		return err
	}
	b.m.AdjacencyRules = rules
	return nil
}

func (b *builder) continents(ctx context.Context) error {
	names, err := source.Merge(ctx, source.All(b.roots, ContinentPath), readContinents(b.rep), b.rep)
	if err != nil {
		return err
	}
	for k, v := range names {
		i, _ := strconv.Atoi(k)
		b.m.Continents[i] = v
	}
	return nil
}

func (b *builder) buildingDefs(ctx context.Context) error {
	files := source.Files(b.roots, BuildingsDir, source.Suffix(".txt"), b.rep)
	defs, err := source.Merge(ctx, files, readBuildingDefs(b.rep), b.rep)
	if err != nil {
		return err
	}
	b.m.Buildings = defs
	return nil
}

// states reads every state file; a later file with the same id replaces the
// earlier record entirely. Province level data is applied from the winners.
func (b *builder) states(ctx context.Context) error {
	files := source.Files(b.roots, StatesDir, source.Suffix(".txt"), b.rep)
	step := progress.NewStep(b.pr, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		root, err := readScript(f, b.rep)
		if err != nil {
			b.rep.Add(err)
			continue
		}
		for _, st := range root.All("state") {
			if s, ok := parseState(st, f.Path, b.rep); ok {
				b.m.States[s.ID] = s
			}
		}
		step.Done(i)
	}

	for _, id := range SortedIDs(b.m.States) {
		s := b.m.States[id]
		for _, pid := range SortedIDs(s.VictoryPoints) {
			p, ok := b.m.Provinces[pid]
			if !ok {
				b.rep.Warn(unknownProvince(pid, s.File, "victory points"))
				continue
			}
			p.VictoryPoints = s.VictoryPoints[pid]
		}
		for _, pid := range SortedIDs(s.ProvinceBuildings) {
			p, ok := b.m.Provinces[pid]
			if !ok {
				b.rep.Warn(unknownProvince(pid, s.File, "province buildings"))
				continue
			}
			p.Buildings = s.ProvinceBuildings[pid]
		}
	}
	return nil
}

func (b *builder) regions(ctx context.Context) error {
	files := source.Files(b.roots, RegionsDir, source.Suffix(".txt"), b.rep)
	step := progress.NewStep(b.pr, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		root, err := readScript(f, b.rep)
		if err != nil {
			b.rep.Add(err)
			continue
		}
		for _, st := range root.All("strategic_region") {
			if r, ok := parseRegion(st, f.Path, b.rep); ok {
				b.m.Regions[r.ID] = r
			}
		}
		step.Done(i)
	}
	return nil
}

// countries joins the tag table with the colour table. A tag with a colour
// but no tag file still becomes a country, and the other way round.
func (b *builder) countries(ctx context.Context) error {
	tagFiles := source.Files(b.roots, CountryTagsDir, source.Suffix(".txt"), b.rep)
	tags, err := source.Merge(ctx, tagFiles, readCountryTags(b.rep), b.rep)
	if err != nil {
		return err
	}
	colors, err := source.Merge(ctx, source.All(b.roots, ColorsPath), readColors(b.rep), b.rep)
	if err != nil {
		return err
	}

	for tag, file := range tags {
		b.m.Countries[tag] = &Country{Tag: tag, File: file}
	}
	names := make([]string, 0, len(colors))
	for tag := range colors {
		names = append(names, tag)
	}
	sort.Strings(names)
	for _, tag := range names {
		c, ok := b.m.Countries[tag]
		if !ok {
			c = &Country{Tag: tag}
			b.m.Countries[tag] = c
		}
		c.Color, c.HasColor = colors[tag], true
	}
	return nil
}

func unknownProvince(id int, path, what string) error {
	return &report.IntegrityError{Kind: report.UnknownProvince, ID: strconv.Itoa(id), Path: path, Msg: what + " reference an undefined province"}
}
