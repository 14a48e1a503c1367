package atlas

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/source"
	"map-atlas/core/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
)

var (
	c1 = mapdata.RGB{R: 10, G: 10, B: 10}
	c2 = mapdata.RGB{R: 20, G: 20, B: 20}
	c3 = mapdata.RGB{R: 30, G: 30, B: 30}
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeBitmap(t *testing.T, root string, rows ...[]mapdata.RGB) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			img.Set(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	writeFile(t, root, raster.ProvincesBitmap, buf.String())
}

// gameRoot writes a base install with three provinces: 1 and 3 are land in
// states 5 (FRA) and 6 (ENG), 2 is sea. All share strategic region 1.
func gameRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, mapdata.DefinitionPath, "0;0;0;0;land;false;unknown;0\n1;10;10;10;land;false;plains;1\n2;20;20;20;sea;false;ocean;0\n3;30;30;30;land;true;forest;1\n")
	writeFile(t, dir, "history/states/5-Paris.txt", `state = { id = 5 name = "STATE_5" provinces = { 1 } history = { owner = FRA victory_points = { 1 10 } } }`)
	writeFile(t, dir, "history/states/6-Kent.txt", `state = { id = 6 name = "STATE_6" provinces = { 3 } history = { owner = ENG } }`)
	writeFile(t, dir, "map/strategicregions/1-Channel.txt", `strategic_region = { id = 1 name = "STRATEGICREGION_1" provinces = { 1 2 3 } }`)
	writeFile(t, dir, "common/country_tags/00_countries.txt", "FRA = \"countries/France.txt\"\nENG = \"countries/England.txt\"\n")
	writeFile(t, dir, mapdata.ColorsPath, "FRA = { color = rgb { 57 160 101 } }\n")
	writeFile(t, dir, "localisation/english/states_l_english.yml", "l_english:\n STATE_5:0 \"Paris\"\n FRA:0 \"France\"\n")
	writeBitmap(t, dir, []mapdata.RGB{c1, c2}, []mapdata.RGB{c3, c1})
	return dir
}

func newTestService(t *testing.T, cfg source.Config) *Service {
	t.Helper()
	if cfg.Language == "" {
		cfg.Language = "english"
	}
	return NewService(cfg, store.New(store.DefaultHistory), zap.NewNop())
}
