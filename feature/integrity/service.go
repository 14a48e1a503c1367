package integrity

import (
	"context"
	"fmt"
	"time"

	"map-atlas/core/raster"
	"map-atlas/core/store"
	"map-atlas/feature/integrity/checks"

	"go.uber.org/zap"
)

// Source provides the snapshot to check.
type Source interface {
	Current() (*store.Snapshot, error)
}

// Status values of a check result.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusError  = "error"
)

// Result is the outcome of one check.
type Result struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Findings    []checks.Finding `json:"findings"`
	Error       string           `json:"error,omitempty"`
}

// Report is the outcome of a set of checks over one snapshot.
type Report struct {
	Seq      int64     `json:"seq"`
	Checked  time.Time `json:"checked"`
	Results  []Result  `json:"results"`
	Findings int       `json:"findings"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusOK {
			return false
		}
	}
	return true
}

// Service runs integrity checks.
type Service struct {
	source Source
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Run executes the named checks over the current snapshot, or all of them
// when names is empty. A check failing with an error does not stop the
// others; cancellation does.
func (s *Service) Run(ctx context.Context, names ...string) (*Report, error) {
	snap, err := s.source.Current()
	if err != nil {
		return nil, err
	}

	selected := checks.All
	if len(names) > 0 {
		selected = nil
		for _, name := range names {
			c, ok := checks.Find(name)
			if !ok {
				return nil, fmt.Errorf("unknown check %q", name)
			}
			selected = append(selected, c)
		}
	}

	in := checks.Input{Model: snap.Model}
	if img, ok := snap.Views[raster.ViewProvince]; ok {
		in.Provinces = img
	}

	rep := &Report{Seq: snap.Seq, Checked: time.Now()}
	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := Result{Name: c.Name, Description: c.Description, Findings: []checks.Finding{}}
		findings, err := c.Run(ctx, in)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			res.Status, res.Error = StatusError, err.Error()
			s.logger.Error("Integrity check failed", zap.String("check", c.Name), zap.Error(err))
		case len(findings) > 0:
			res.Status, res.Findings = StatusFailed, findings
			rep.Findings += len(findings)
		default:
			res.Status = StatusOK
		}
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}
