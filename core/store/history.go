package store

// DefaultHistory is the number of undo and redo steps kept.
const DefaultHistory = 20

// History is a bounded undo/redo stack around a current value. The oldest
// entries are dropped once a stack is full. It is not safe for concurrent use.
type History[T any] struct {
	cur  T
	has  bool
	undo []T
	redo []T
	max  int
}

// NewHistory returns a history keeping up to max steps each way.
func NewHistory[T any](max int) *History[T] {
	if max < 1 {
		max = DefaultHistory
	}
	return &History[T]{max: max}
}

// Push makes item current. The previous value, if any, becomes undoable and
// the redo stack is cleared.
func (h *History[T]) Push(item T) {
	h.redo = nil
	if h.has {
		h.undo = h.bounded(append(h.undo, h.cur))
	}
	h.cur, h.has = item, true
}

// Undo steps back. It reports false when nothing can be undone.
func (h *History[T]) Undo() (T, bool) {
	if len(h.undo) == 0 {
		return h.cur, false
	}
	h.redo = h.bounded(append(h.redo, h.cur))
	h.cur = h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return h.cur, true
}

// Redo steps forward again. It reports false when nothing can be redone.
func (h *History[T]) Redo() (T, bool) {
	if len(h.redo) == 0 {
		return h.cur, false
	}
	h.undo = h.bounded(append(h.undo, h.cur))
	h.cur = h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return h.cur, true
}

// Current returns the current value.
func (h *History[T]) Current() T { return h.cur }

// CanUndo reports whether Undo would succeed.
func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks and keeps the current value.
func (h *History[T]) Clear() {
	h.undo, h.redo = nil, nil
}

func (h *History[T]) bounded(s []T) []T {
	if len(s) > h.max {
		s = append(s[:0:0], s[len(s)-h.max:]...)
	}
	return s
}
