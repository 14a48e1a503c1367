package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"map-atlas/core/mapdata"
	"map-atlas/core/progress"
	"map-atlas/core/report"
)

const noEntity = -1

// Synthesize renders view from the province bitmap base and an indexed model.
//
// Pixels are visited in a fixed order: rows top to bottom, and left to right
// inside a row. For the state and region views an entity is painted in the
// colour of the first of its pixels met in that order, so repeated runs
// produce identical bytes. Pixels with no entity become mapdata.Black; in the
// owner view a state whose owner has no colour becomes mapdata.Gray.
//
// The result is written to a fresh image and returned only when complete.
// The context is checked once per row; on cancellation nil and ctx.Err() are
// returned. A pixel whose colour is not a known province aborts the view with
// a *report.IntegrityError.
func Synthesize(ctx context.Context, base image.Image, m *mapdata.Model, view View, pr progress.Reporter) (*image.RGBA, error) {
	if base == nil {
		return nil, fmt.Errorf("render %s view: no province bitmap", view)
	}
	if pr == nil {
		pr = progress.Nop{}
	}

	var paint func(c mapdata.RGB) (mapdata.RGB, bool)
	switch view {
	case ViewProvince:
		paint = func(c mapdata.RGB) (mapdata.RGB, bool) { return c, true }
	case ViewState:
		paint = sampled(entityTable(m, func(pid int) (int, bool) {
			s, ok := m.StateOf(pid)
			if !ok {
				return 0, false
			}
			return s.ID, true
		}))
	case ViewRegion:
		paint = sampled(entityTable(m, func(pid int) (int, bool) {
			r, ok := m.RegionOf(pid)
			if !ok {
				return 0, false
			}
			return r.ID, true
		}))
	case ViewOwner:
		lut := ownerTable(m)
		paint = func(c mapdata.RGB) (mapdata.RGB, bool) {
			out, ok := lut[c]
			return out, ok
		}
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}

	read := pixelReader(base)
	b := base.Bounds()
	out := image.NewRGBA(b)
	step := progress.NewStep(pr, b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := out.Pix[out.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := read(x, y)
			t, ok := paint(c)
			if !ok {
				return nil, &report.IntegrityError{
					Kind: report.UnknownColor,
					ID:   c.String(),
					Msg:  fmt.Sprintf("pixel (%d,%d) of the %s view matches no province", x, y, view),
				}
			}
			i := (x - b.Min.X) * 4
			row[i], row[i+1], row[i+2], row[i+3] = t.R, t.G, t.B, 0xff
		}
		step.Done(y - b.Min.Y)
	}
	return out, nil
}

// entityTable maps every province colour to an entity id, or noEntity. It is
// sized to the province table, not the colour space.
func entityTable(m *mapdata.Model, entityOf func(pid int) (int, bool)) map[mapdata.RGB]int {
	lut := make(map[mapdata.RGB]int, len(m.Provinces))
	for _, id := range mapdata.SortedIDs(m.Provinces) {
		p := m.Provinces[id]
		if owner, ok := m.ProvinceByColor(p.Color); !ok || owner.ID != id {
			continue
		}
		if e, ok := entityOf(id); ok {
			lut[p.Color] = e
		} else {
			lut[p.Color] = noEntity
		}
	}
	return lut
}

// sampled paints each entity with the first colour seen for it.
func sampled(lut map[mapdata.RGB]int) func(mapdata.RGB) (mapdata.RGB, bool) {
	samples := make(map[int]mapdata.RGB)
	return func(c mapdata.RGB) (mapdata.RGB, bool) {
		e, ok := lut[c]
		if !ok {
			return mapdata.RGB{}, false
		}
		if e == noEntity {
			return mapdata.Black, true
		}
		s, seen := samples[e]
		if !seen {
			s = c
			samples[e] = c
		}
		return s, true
	}
}

// ownerTable chains colour -> province -> state -> owner tag -> country colour.
func ownerTable(m *mapdata.Model) map[mapdata.RGB]mapdata.RGB {
	lut := make(map[mapdata.RGB]mapdata.RGB, len(m.Provinces))
	for _, id := range mapdata.SortedIDs(m.Provinces) {
		p := m.Provinces[id]
		if owner, ok := m.ProvinceByColor(p.Color); !ok || owner.ID != id {
			continue
		}
		s, ok := m.StateOf(id)
		if !ok {
			lut[p.Color] = mapdata.Black
			continue
		}
		if c, ok := m.CountryColor(s.Owner); ok {
			lut[p.Color] = c
		} else {
			lut[p.Color] = mapdata.Gray
		}
	}
	return lut
}

// pixelReader returns a fast accessor for the common decoded image types.
func pixelReader(img image.Image) func(x, y int) mapdata.RGB {
	switch src := img.(type) {
	case *image.RGBA:
		return func(x, y int) mapdata.RGB {
			i := src.PixOffset(x, y)
			return mapdata.RGB{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}
		}
	case *image.NRGBA:
		return func(x, y int) mapdata.RGB {
			i := src.PixOffset(x, y)
			return mapdata.RGB{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}
		}
	case *image.Paletted:
		pal := make([]mapdata.RGB, len(src.Palette))
		for i, c := range src.Palette {
			pal[i] = toRGB(c)
		}
		return func(x, y int) mapdata.RGB {
			idx := int(src.ColorIndexAt(x, y))
			if idx >= len(pal) {
				return mapdata.Black
			}
			return pal[idx]
		}
	}
	return func(x, y int) mapdata.RGB { return toRGB(img.At(x, y)) }
}

func toRGB(c color.Color) mapdata.RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return mapdata.RGB{R: n.R, G: n.G, B: n.B}
}
