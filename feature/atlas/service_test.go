package atlas

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"map-atlas/core/mapdata"
	"map-atlas/core/progress"
	"map-atlas/core/raster"
	"map-atlas/core/report"
	"map-atlas/core/source"
	"map-atlas/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestService_ReloadPublishes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc := newTestService(t, source.Config{BasePath: gameRoot(t)})
	_, err := svc.Current()
	require.ErrorIs(t, err, ErrNotLoaded)

	rec := progress.NewChannel(256)
	snap, err := svc.Reload(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.Seq)
	assert.Len(t, snap.Model.Provinces, 3)
	assert.Equal(t, "Paris", snap.Localise("STATE_5"))
	assert.Empty(t, snap.ViewErrors)
	require.Len(t, snap.Views, 4)

	owner := snap.Views[raster.ViewOwner]
	at := func(x, y int) mapdata.RGB {
		c := owner.RGBAAt(x, y)
		return mapdata.RGB{R: c.R, G: c.G, B: c.B}
	}
	assert.Equal(t, mapdata.RGB{R: 57, G: 160, B: 101}, at(0, 0))
	assert.Equal(t, mapdata.Black, at(1, 0))
	assert.Equal(t, mapdata.Gray, at(0, 1))

	status := svc.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 100, status.Percent)
	assert.Empty(t, status.Error)
	assert.Equal(t, "views", rec.Last().Stage)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, snap, current)
}

func TestService_FailureKeepsPublished(t *testing.T) {
	base := gameRoot(t)
	svc := newTestService(t, source.Config{BasePath: base})
	first, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)

	svc.cfg.BasePath = filepath.Join(base, "missing")
	_, err = svc.Reload(context.Background(), nil)
	var pe *report.PathError
	require.ErrorAs(t, err, &pe)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.NotEmpty(t, svc.Status().Error)
}

func TestService_CancelledKeepsPublished(t *testing.T) {
	svc := newTestService(t, source.Config{BasePath: gameRoot(t)})
	first, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Reload(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestService_UnknownColorAbortsOnlyDerivedViews(t *testing.T) {
	base := gameRoot(t)
	writeBitmap(t, base, []mapdata.RGB{c1, {R: 99, G: 99, B: 99}})
	svc := newTestService(t, source.Config{BasePath: base})

	snap, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, snap.Views, raster.ViewProvince)
	for _, v := range []raster.View{raster.ViewState, raster.ViewRegion, raster.ViewOwner} {
		assert.NotContains(t, snap.Views, v)
		assert.True(t, report.IsIntegrity(snap.ViewErrors[v], report.UnknownColor), v)
	}
	assert.True(t, snap.Report.HasErrors())
}

func TestService_MissingBitmapFailsViewsOnly(t *testing.T) {
	base := gameRoot(t)
	require.NoError(t, os.Remove(filepath.Join(base, filepath.FromSlash(raster.ProvincesBitmap))))
	svc := newTestService(t, source.Config{BasePath: base})

	snap, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Views)
	assert.Len(t, snap.ViewErrors, 4)
	assert.Len(t, snap.Model.Provinces, 3)
}

func TestService_UndoRedo(t *testing.T) {
	base := gameRoot(t)
	svc := newTestService(t, source.Config{BasePath: base})

	first, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)
	_, ok := svc.Undo()
	assert.False(t, ok)

	writeFile(t, base, "localisation/english/states_l_english.yml", "l_english:\n STATE_5:0 \"Lutetia\"\n")
	second, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Lutetia", second.Localise("STATE_5"))

	undone, ok := svc.Undo()
	require.True(t, ok)
	assert.Same(t, first, undone)
	cur, _ := svc.Current()
	assert.Equal(t, "Paris", cur.Localise("STATE_5"))

	redone, ok := svc.Redo()
	require.True(t, ok)
	assert.Same(t, second, redone)
}

func TestService_LoadUsesCacheReloadDoesNot(t *testing.T) {
	base := gameRoot(t)
	writeFile(t, base, "history/states/7-Broken.txt", `state = { id = 7 provinces = { } history = { victory_points = { 99 5 } }`)
	cache := filepath.Join(t.TempDir(), "atlas.cache")
	svc := newTestService(t, source.Config{BasePath: base, CachePath: cache})

	first, err := svc.Load(context.Background(), nil)
	require.NoError(t, err)
	require.FileExists(t, cache)
	require.GreaterOrEqual(t, first.Report.Len(), 2)

	writeFile(t, base, "history/states/6-Kent.txt", `state = { id = 6 name = "STATE_6" provinces = { 3 } history = { owner = FRA } }`)

	cached, err := svc.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ENG", cached.Model.States[6].Owner)
	assert.Equal(t, issueLines(first.Report), issueLines(cached.Report), "a cache hit reports what the original build found")
	st, ok := cached.Model.StateOf(1)
	require.True(t, ok)
	assert.Equal(t, 5, st.ID)

	fresh, err := svc.Reload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "FRA", fresh.Model.States[6].Owner)
	assert.Equal(t, issueLines(first.Report), issueLines(fresh.Report))
}

func issueLines(r *report.Report) []string {
	var out []string
	for _, i := range r.Issues() {
		out = append(out, string(i.Severity)+" "+i.Path+" "+i.Message)
	}
	return out
}

func TestService_DeniedBitmapIsNotPublished(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	base := gameRoot(t)
	cache := filepath.Join(t.TempDir(), "atlas.cache")
	svc := newTestService(t, source.Config{BasePath: base, CachePath: cache})
	first, err := svc.Load(context.Background(), nil)
	require.NoError(t, err)

	bitmap := filepath.Join(base, filepath.FromSlash(raster.ProvincesBitmap))
	require.NoError(t, os.Chmod(bitmap, 0))
	t.Cleanup(func() { _ = os.Chmod(bitmap, 0o644) })

	_, err = svc.Reload(context.Background(), nil)
	require.ErrorIs(t, err, fs.ErrPermission)
	_, err = svc.Load(context.Background(), nil)
	require.ErrorIs(t, err, fs.ErrPermission, "a cache hit still reads the bitmaps")

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

// gateReporter blocks the first stage announcement until released.
type gateReporter struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gateReporter) Stage(string) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
}

func (g *gateReporter) Report(int) {}

func TestService_ReloadDoesNotJoinRunningLoad(t *testing.T) {
	base := gameRoot(t)
	cache := filepath.Join(t.TempDir(), "atlas.cache")
	svc := newTestService(t, source.Config{BasePath: base, CachePath: cache})
	_, err := svc.Load(context.Background(), nil)
	require.NoError(t, err)
	writeFile(t, base, "history/states/6-Kent.txt", `state = { id = 6 name = "STATE_6" provinces = { 3 } history = { owner = FRA } }`)

	type result struct {
		snap *store.Snapshot
		err  error
	}
	gate := &gateReporter{entered: make(chan struct{}), release: make(chan struct{})}
	loaded := make(chan result, 1)
	go func() {
		snap, err := svc.Load(context.Background(), gate)
		loaded <- result{snap, err}
	}()
	<-gate.entered

	reloaded := make(chan result, 1)
	go func() {
		snap, err := svc.Reload(context.Background(), nil)
		reloaded <- result{snap, err}
	}()
	var fresh result
	select {
	case fresh = <-reloaded:
	case <-time.After(10 * time.Second):
		close(gate.release)
		t.Fatal("reload waited for the running load")
	}
	close(gate.release)

	require.NoError(t, fresh.err)
	assert.Equal(t, "FRA", fresh.snap.Model.States[6].Owner)

	load := <-loaded
	require.NoError(t, load.err)
	assert.NotSame(t, fresh.snap, load.snap)
}

func TestService_ConcurrentReloads(t *testing.T) {
	svc := newTestService(t, source.Config{BasePath: gameRoot(t)})

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Reload(context.Background(), nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	snap, err := svc.Current()
	require.NoError(t, err)
	assert.LessOrEqual(t, snap.Seq, int64(len(errs)))
}
