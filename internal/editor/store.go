// Package editor owns the in-memory annotation document: the ordered
// annotation list, the undo/redo history, the active tool state machine
// and the crop sub-editor. All mutations happen on the UI goroutine;
// the store only notifies listeners, it never draws.
package editor

import (
	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/hittest"
)

// HistoryLimit bounds the undo stack to the most recent snapshots;
// the oldest snapshot is discarded on overflow.
const HistoryLimit = 50

// Store is the single source of truth for the annotation list. Every
// committed mutation pushes a full-list snapshot and truncates any redo
// tail. Operating on an unknown id is a no-op, not an error.
type Store struct {
	annotations []annotation.Annotation
	history     [][]annotation.Annotation
	index       int
	dirty       bool
	onChange    func()
	onCommit    func()
}

// NewStore returns a store holding an empty document with one baseline
// history snapshot.
func NewStore() *Store {
	return &Store{history: [][]annotation.Annotation{{}}}
}

// Load replaces the document with annotations from persistence and
// resets history to a single baseline. The store is left clean.
func (s *Store) Load(list []annotation.Annotation) {
	s.annotations = annotation.CloneList(list)
	s.history = [][]annotation.Annotation{annotation.CloneList(list)}
	s.index = 0
	s.dirty = false
	s.notify()
}

// SetOnChange registers the listener invoked after every mutation so the
// renderer can refresh. The core never assumes a particular UI refresh
// mechanism.
func (s *Store) SetOnChange(fn func()) { s.onChange = fn }

// SetOnCommit registers the listener invoked after every committed
// mutation (including undo/redo); the autosave scheduler hangs off this.
func (s *Store) SetOnCommit(fn func()) { s.onCommit = fn }

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Annotations returns the live list in z-order. Callers must treat it as
// read-only; mutations go through the store operations.
func (s *Store) Annotations() []annotation.Annotation { return s.annotations }

// Snapshot returns a deep copy of the current list.
func (s *Store) Snapshot() []annotation.Annotation {
	return annotation.CloneList(s.annotations)
}

// Len reports the number of annotations.
func (s *Store) Len() int { return len(s.annotations) }

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// MarkClean clears the dirty flag after a successful save.
func (s *Store) MarkClean() { s.dirty = false }

// HistoryLen reports the number of snapshots currently held.
func (s *Store) HistoryLen() int { return len(s.history) }

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool { return s.index > 0 }

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool { return s.index < len(s.history)-1 }

// Add appends the annotation on top of the z-order and commits.
func (s *Store) Add(a annotation.Annotation) {
	s.annotations = append(s.annotations, a.Clone())
	s.commit()
}

// Remove deletes the annotation with the given id and commits. Unknown
// ids are ignored.
func (s *Store) Remove(id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
	s.commit()
}

// Update applies patch to the annotation with the given id and commits.
func (s *Store) Update(id string, patch func(*annotation.Annotation)) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	patch(&s.annotations[i])
	s.commit()
}

// ClearAll removes every annotation and commits. Confirmation is the
// caller's responsibility; the store has none.
func (s *Store) ClearAll() {
	if len(s.annotations) == 0 {
		return
	}
	s.annotations = nil
	s.commit()
}

// Move translates an annotation without committing; it is applied
// continuously during a drag. Call CommitDrag on pointer release.
func (s *Store) Move(id string, dx, dy float64) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.annotations[i].Translate(dx, dy)
	s.notify()
}

// SetBounds replaces an image annotation's box without committing, for
// continuous resize. Call CommitDrag on pointer release.
func (s *Store) SetBounds(id string, x, y, w, h float64) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	a := &s.annotations[i]
	a.X, a.Y, a.W, a.H = x, y, w, h
	s.notify()
}

// CommitDrag pushes one history snapshot for a completed move or resize
// drag, so the drag itself does not spam history.
func (s *Store) CommitDrag() { s.commit() }

// Undo steps back one snapshot. No-op at the oldest snapshot.
func (s *Store) Undo() {
	if !s.CanUndo() {
		return
	}
	s.index--
	s.annotations = annotation.CloneList(s.history[s.index])
	s.dirty = true
	if s.onCommit != nil {
		s.onCommit()
	}
	s.notify()
}

// Redo steps forward one snapshot. No-op at the newest snapshot.
func (s *Store) Redo() {
	if !s.CanRedo() {
		return
	}
	s.index++
	s.annotations = annotation.CloneList(s.history[s.index])
	s.dirty = true
	if s.onCommit != nil {
		s.onCommit()
	}
	s.notify()
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (annotation.Annotation, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return annotation.Annotation{}, false
	}
	return s.annotations[i].Clone(), true
}

// HitTest returns the id of the topmost annotation at the document-space
// point, or "".
func (s *Store) HitTest(x, y, scale float64) string {
	i := hittest.Hit(s.annotations, x, y, scale)
	if i < 0 {
		return ""
	}
	return s.annotations[i].ID
}

func (s *Store) indexOf(id string) int {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return i
		}
	}
	return -1
}

// commit records the current list as a new snapshot, truncating any redo
// tail and enforcing the history capacity.
func (s *Store) commit() {
	s.history = append(s.history[:s.index+1], s.Snapshot())
	if len(s.history) > HistoryLimit {
		s.history = s.history[len(s.history)-HistoryLimit:]
	}
	s.index = len(s.history) - 1
	s.dirty = true
	if s.onCommit != nil {
		s.onCommit()
	}
	s.notify()
}
