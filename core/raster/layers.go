package raster

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	"map-atlas/core/report"
	"map-atlas/core/source"

	"golang.org/x/image/bmp"
)

// Base layer files, relative to a content root.
const (
	ProvincesBitmap = "map/provinces.bmp"
	TerrainBitmap   = "map/terrain.bmp"
	HeightmapBitmap = "map/heightmap.bmp"
	RiversBitmap    = "map/rivers.bmp"
)

// Layers holds the decoded base bitmaps. Any of them may be nil when no root
// provides the file.
type Layers struct {
	Provinces image.Image
	Terrain   image.Image
	Heightmap image.Image
	Rivers    image.Image
	// Files maps a layer path to the file it was decoded from.
	Files map[string]string
}

// LoadLayers decodes each base bitmap from the highest priority root that has
// it. A file that fails to open or decode is reported and left nil.
func LoadLayers(roots []source.Root, rep *report.Report) *Layers {
	l := &Layers{Files: make(map[string]string)}
	for _, layer := range []struct {
		rel string
		dst *image.Image
	}{
		{ProvincesBitmap, &l.Provinces},
		{TerrainBitmap, &l.Terrain},
		{HeightmapBitmap, &l.Heightmap},
		{RiversBitmap, &l.Rivers},
	} {
		rel, dst := layer.rel, layer.dst
		f, ok := source.Latest(roots, rel)
		if !ok {
			continue
		}
		img, err := ReadBitmap(f.Path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				rep.Add(err)
			}
			continue
		}
		*dst = img
		l.Files[rel] = f.Path
	}
	return l
}

// ReadBitmap decodes a BMP file.
func ReadBitmap(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &report.FileError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, &report.FileError{Path: path, Op: "decode", Err: err}
	}
	return img, nil
}

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat accepts "png" or "bmp".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatBMP:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatBMP {
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unknown image format %q", format)
}
