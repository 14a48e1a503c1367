package atlas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"map-atlas/core/logger"
	"map-atlas/core/mapdata"
	"map-atlas/core/progress"
	"map-atlas/core/raster"
	"map-atlas/core/report"
	"map-atlas/core/source"
	"map-atlas/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned by queries before the first successful build.
var ErrNotLoaded = errors.New("atlas not loaded")

// Service builds snapshots of the configured game content and publishes them
// to a store. Concurrent callers of the same operation share one build.
type Service struct {
	cfg    source.Config
	store  *store.Store
	logger *zap.Logger
	group  singleflight.Group
	status *statusReporter
}

// NewService creates an atlas service publishing to st.
func NewService(cfg source.Config, st *store.Store, logger *zap.Logger) *Service {
	if st == nil {
		st = store.New(store.DefaultHistory)
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logger,
		status: newStatusReporter(logger),
	}
}

// Config returns the source configuration the service builds from.
func (s *Service) Config() source.Config { return s.cfg }

// Current returns the published snapshot or ErrNotLoaded.
func (s *Service) Current() (*store.Snapshot, error) {
	snap := s.store.Current()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Status returns the progress of the running or last build.
func (s *Service) Status() Status {
	return s.status.snapshot()
}

// Load builds and publishes a snapshot, reusing the model cache when it
// matches the resolved roots. It is meant for startup.
func (s *Service) Load(ctx context.Context, pr progress.Reporter) (*store.Snapshot, error) {
	return s.run(ctx, pr, true)
}

// Reload rebuilds everything from disk and publishes the result. On failure
// or cancellation the published snapshot is left untouched. A reload
// requested while another reload runs waits for and returns the running one;
// a running Load is not joined.
func (s *Service) Reload(ctx context.Context, pr progress.Reporter) (*store.Snapshot, error) {
	return s.run(ctx, pr, false)
}

// run shares a build only with callers of the same mode, so a reload never
// returns a snapshot assembled from the cache.
func (s *Service) run(ctx context.Context, pr progress.Reporter, useCache bool) (*store.Snapshot, error) {
	key := "reload"
	if useCache {
		key = "load"
	}
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.build(ctx, pr, useCache)
	})
	if shared {
		s.logger.Debug("Joined running atlas build")
	}
	if err != nil {
		return nil, err
	}
	return v.(*store.Snapshot), nil
}

// Undo republishes the previous snapshot.
func (s *Service) Undo() (*store.Snapshot, bool) {
	return s.store.Undo()
}

// Redo republishes the snapshot undone last.
func (s *Service) Redo() (*store.Snapshot, bool) {
	return s.store.Redo()
}

func (s *Service) build(ctx context.Context, pr progress.Reporter, useCache bool) (*store.Snapshot, error) {
	start := time.Now()
	rep := report.New()
	tr := s.status.begin(pr)
	snap, err := s.assemble(ctx, tr, rep, useCache)
	s.status.end(err)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Info("Atlas build cancelled", zap.Duration("elapsed", time.Since(start)))
		return nil, err
	case err != nil:
		s.logger.Error("Atlas build failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	s.store.Publish(snap)
	s.logIssues(rep)
	s.logger.Info("Atlas published",
		logger.Seq(snap.Seq),
		zap.Int("provinces", len(snap.Model.Provinces)),
		zap.Int("states", len(snap.Model.States)),
		zap.Int("issues", rep.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// assemble runs the pipeline into a private snapshot.
func (s *Service) assemble(ctx context.Context, pr progress.Reporter, rep *report.Report, useCache bool) (*store.Snapshot, error) {
	// 1. Resolve content roots
	pr.Stage("resolve")
	roots, err := source.Resolve(s.cfg, rep)
	if err != nil {
		return nil, err
	}

	// 2. Model and localisation, from cache when allowed
	var (
		model *mapdata.Model
		loc   map[string]string
	)
	if useCache && s.cfg.CachePath != "" {
		var hit bool
		model, loc, hit, err = store.LoadCache(s.cfg.CachePath, roots, rep)
		if err != nil {
			rep.Warn(err)
		}
		if hit {
			s.logger.Info("Atlas model loaded from cache", zap.String("file", s.cfg.CachePath))
		} else {
			model, loc = nil, nil
		}
	}
	if model == nil {
		mark := rep.Len()
		pr.Stage("localisation")
		if loc, err = source.LoadLocalisation(ctx, roots, s.cfg, rep); err != nil {
			return nil, err
		}
		if model, err = mapdata.Load(ctx, roots, rep, pr); err != nil {
			return nil, err
		}
		if err := rep.Denied(); err != nil {
			return nil, err
		}
		if s.cfg.CachePath != "" {
			if err := store.SaveCache(s.cfg.CachePath, roots, model, loc, rep.Since(mark)); err != nil {
				s.logger.Warn("Failed to write atlas cache", zap.String("file", s.cfg.CachePath), zap.Error(err))
			}
		}
	}

	// 3. Base bitmaps
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pr.Stage("layers")
	layers := raster.LoadLayers(roots, rep)
	if err := rep.Denied(); err != nil {
		return nil, err
	}

	// 4. Thematic views
	views, viewErrs, err := renderViews(ctx, layers.Provinces, model, pr)
	if err != nil {
		return nil, err
	}
	for _, v := range raster.Views() {
		if verr, ok := viewErrs[v]; ok {
			rep.Add(fmt.Errorf("%s view: %w", v, verr))
		}
	}

	return &store.Snapshot{
		Built:        time.Now(),
		Roots:        roots,
		Model:        model,
		Localisation: loc,
		Views:        views,
		ViewErrors:   viewErrs,
		Report:       rep,
	}, nil
}

// renderViews synthesizes every view concurrently. A view failing on its data
// is recorded in the error map and the others go on; only cancellation
// aborts the whole set.
func renderViews(ctx context.Context, base image.Image, m *mapdata.Model, pr progress.Reporter) (map[raster.View]*image.RGBA, map[raster.View]error, error) {
	views := raster.Views()
	pr.Stage("views")

	var (
		mu   sync.Mutex
		done int
		imgs = make(map[raster.View]*image.RGBA, len(views))
		errs = make(map[raster.View]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, v := range views {
		g.Go(func() error {
			img, err := raster.Synthesize(gctx, base, m, v, nil)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[v] = err
			} else {
				imgs[v] = img
			}
			done++
			pr.Report(done * 100 / len(views))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return imgs, errs, nil
}

func (s *Service) logIssues(rep *report.Report) {
	for _, issue := range rep.Issues() {
		fields := []zap.Field{zap.String("file", issue.Path), zap.String("issue", issue.Message)}
		if issue.Severity == report.SeverityError {
			s.logger.Warn("Atlas data error", fields...)
		} else {
			s.logger.Debug("Atlas data warning", fields...)
		}
	}
}
