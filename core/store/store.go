package store

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"map-atlas/core/mapdata"
	"map-atlas/core/raster"
	"map-atlas/core/report"
	"map-atlas/core/source"
)

// Snapshot is one complete, immutable build. Nothing in it is modified after
// it has been published.
type Snapshot struct {
	// Seq increases with every build published by the same store.
	Seq          int64
	Built        time.Time
	Roots        []source.Root
	Model        *mapdata.Model
	Localisation map[string]string
	// Views holds the rendered rasters. A view missing here failed; the
	// reason is in ViewErrors.
	Views      map[raster.View]*image.RGBA
	ViewErrors map[raster.View]error
	Report     *report.Report
}

// Localise returns the string for key, or key itself when it is unknown.
func (s *Snapshot) Localise(key string) string {
	if v, ok := s.Localisation[key]; ok {
		return v
	}
	return key
}

// Store publishes snapshots to concurrent readers. Readers call Current and
// never see a half built snapshot; writers call Publish with a finished one.
type Store struct {
	cur atomic.Pointer[Snapshot]
	seq atomic.Int64

	mu      sync.Mutex
	history *History[*Snapshot]
}

// New returns an empty store keeping depth snapshots for undo and redo.
func New(depth int) *Store {
	return &Store{history: NewHistory[*Snapshot](depth)}
}

// Current returns the published snapshot, or nil before the first build.
func (s *Store) Current() *Snapshot {
	return s.cur.Load()
}

// Publish stamps snap with the next sequence number and makes it current.
// The previously published snapshot becomes undoable.
func (s *Store) Publish(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.Seq = s.seq.Add(1)
	if snap.Built.IsZero() {
		snap.Built = time.Now()
	}
	s.history.Push(snap)
	s.cur.Store(snap)
}

// Undo republishes the previous snapshot.
func (s *Store) Undo() (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Undo()
	if ok {
		s.cur.Store(snap)
	}
	return snap, ok
}

// Redo republishes the snapshot that was undone last.
func (s *Store) Redo() (*Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.history.Redo()
	if ok {
		s.cur.Store(snap)
	}
	return snap, ok
}

// CanUndo reports whether Undo would succeed.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}
