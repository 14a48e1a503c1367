package progress

import "sync/atomic"

// Reporter receives progress updates from a long running operation.
// Implementations must not block the caller.
type Reporter interface {
	// Stage announces the start of a named step.
	Stage(name string)
	// Report sets the completion of the current step in percent (0-100).
	Report(percent int)
}

// Update is one progress message crossing the worker boundary.
type Update struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// Nop discards every update.
type Nop struct{}

func (Nop) Stage(string) {}
func (Nop) Report(int)   {}

// Channel publishes updates on a bounded channel. Sends never block: when the
// consumer lags, the update is dropped and counted. The latest update is
// always readable through Last.
type Channel struct {
	ch      chan Update
	stage   atomic.Value
	percent atomic.Int64
	dropped atomic.Int64
}

// NewChannel returns a reporter with a buffer of size updates. Size is at least 1.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	c := &Channel{ch: make(chan Update, size)}
	c.stage.Store("")
	return c
}

// Updates is the receive side for the polling consumer.
func (c *Channel) Updates() <-chan Update {
	return c.ch
}

// Stage implements Reporter.
func (c *Channel) Stage(name string) {
	c.stage.Store(name)
	c.percent.Store(0)
	c.send(Update{Stage: name})
}

// Report implements Reporter.
func (c *Channel) Report(percent int) {
	percent = min(max(percent, 0), 100)
	c.percent.Store(int64(percent))
	c.send(Update{Stage: c.stage.Load().(string), Percent: percent})
}

// Last returns the most recent stage and percentage, including dropped ones.
func (c *Channel) Last() Update {
	return Update{Stage: c.stage.Load().(string), Percent: int(c.percent.Load())}
}

// Dropped returns how many updates were discarded because the buffer was full.
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Channel) send(u Update) {
	select {
	case c.ch <- u:
	default:
		c.dropped.Add(1)
	}
}

// Step reports percent progress for item i of n without flooding the
// reporter: only whole-percent changes are forwarded.
type Step struct {
	r    Reporter
	n    int
	last int
}

// NewStep tracks n items on r. A nil reporter is treated as Nop.
func NewStep(r Reporter, n int) *Step {
	if r == nil {
		r = Nop{}
	}
	return &Step{r: r, n: n}
}

// Done marks item i (0-based) as finished.
func (s *Step) Done(i int) {
	if s.n <= 0 {
		return
	}
	p := (i + 1) * 100 / s.n
	if p != s.last {
		s.last = p
		s.r.Report(p)
	}
}
