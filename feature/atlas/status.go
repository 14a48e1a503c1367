package atlas

import (
	"sync"
	"time"

	"map-atlas/core/progress"

	"go.uber.org/zap"
)

// Status describes the running or last finished build.
type Status struct {
	Running  bool      `json:"running"`
	Stage    string    `json:"stage"`
	Percent  int       `json:"percent"`
	Started  time.Time `json:"started,omitempty"`
	Finished time.Time `json:"finished,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// statusReporter records build progress for the status endpoint, logs stage
// changes and forwards everything to the caller's reporter.
type statusReporter struct {
	logger *zap.Logger

	mu     sync.Mutex
	status Status
	next   progress.Reporter
	stamp  time.Time
}

func newStatusReporter(logger *zap.Logger) *statusReporter {
	return &statusReporter{logger: logger, next: progress.Nop{}}
}

func (r *statusReporter) begin(next progress.Reporter) progress.Reporter {
	if next == nil {
		next = progress.Nop{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.next, r.stamp = next, now
	r.status = Status{Running: true, Started: now}
	return r
}

func (r *statusReporter) end(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logStage()
	r.status.Running = false
	r.status.Finished = time.Now()
	if err != nil {
		r.status.Error = err.Error()
	} else {
		r.status.Percent = 100
	}
	r.next = progress.Nop{}
}

func (r *statusReporter) snapshot() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Stage implements progress.Reporter.
func (r *statusReporter) Stage(name string) {
	r.mu.Lock()
	r.logStage()
	r.status.Stage, r.status.Percent = name, 0
	r.stamp = time.Now()
	next := r.next
	r.mu.Unlock()
	next.Stage(name)
}

// Report implements progress.Reporter.
func (r *statusReporter) Report(percent int) {
	r.mu.Lock()
	r.status.Percent = min(max(percent, 0), 100)
	next := r.next
	r.mu.Unlock()
	next.Report(percent)
}

func (r *statusReporter) logStage() {
	if r.status.Stage == "" {
		return
	}
	r.logger.Debug("Atlas build stage finished",
		zap.String("stage", r.status.Stage),
		zap.Duration("elapsed", time.Since(r.stamp)),
	)
}
