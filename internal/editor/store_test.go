package editor

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/moleskine/internal/annotation"
)

func note(id string, x, y float64) annotation.Annotation {
	return annotation.Annotation{ID: id, Kind: annotation.KindText, Text: "n", X: x, Y: y, FontSize: 12}
}

func TestUndoRedoInverseLaw(t *testing.T) {
	s := NewStore()
	const n = 12
	for i := 0; i < n; i++ {
		s.Add(note(fmt.Sprintf("a%d", i), float64(i), 0))
	}
	final := s.Snapshot()

	for i := 0; i < n; i++ {
		s.Undo()
	}
	if s.Len() != 0 {
		t.Fatalf("after %d undos list has %d annotations, want 0", n, s.Len())
	}
	s.Undo() // no-op at the baseline
	if s.Len() != 0 {
		t.Fatal("undo past the baseline must be a no-op")
	}

	for i := 0; i < n; i++ {
		s.Redo()
	}
	if diff := cmp.Diff(final, s.Snapshot()); diff != "" {
		t.Fatalf("redo did not restore the final state (-want +got):\n%s", diff)
	}
	s.Redo() // no-op at the newest snapshot
	if diff := cmp.Diff(final, s.Snapshot()); diff != "" {
		t.Fatalf("redo at tip must be a no-op (-want +got):\n%s", diff)
	}
}

func TestHistoryBound(t *testing.T) {
	s := NewStore()
	for i := 0; i < 60; i++ {
		s.Add(note(fmt.Sprintf("a%d", i), float64(i), 0))
	}
	if s.HistoryLen() > HistoryLimit {
		t.Fatalf("history length %d exceeds limit %d", s.HistoryLen(), HistoryLimit)
	}
	// Undo all the way back: the oldest reachable snapshot holds the
	// state after the 11th mutation, not the empty baseline.
	for s.CanUndo() {
		s.Undo()
	}
	if s.Len() != 11 {
		t.Fatalf("oldest reachable snapshot has %d annotations, want 11", s.Len())
	}
}

func TestCommitTruncatesRedoTail(t *testing.T) {
	s := NewStore()
	s.Add(note("a", 0, 0))
	s.Add(note("b", 1, 0))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	s.Add(note("c", 2, 0))
	if s.CanRedo() {
		t.Fatal("commit must truncate the redo tail")
	}
	got := s.Snapshot()
	if len(got) != 2 || got[1].ID != "c" {
		t.Fatalf("unexpected list after branch: %+v", got)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	s.Add(note("a", 0, 0))
	before := s.HistoryLen()
	s.Remove("missing")
	s.Update("missing", func(a *annotation.Annotation) { a.Text = "x" })
	s.Move("missing", 5, 5)
	if s.HistoryLen() != before {
		t.Fatalf("operations on unknown ids must not push history: %d -> %d", before, s.HistoryLen())
	}
}

func TestMoveCommitsOnceOnRelease(t *testing.T) {
	s := NewStore()
	s.Add(note("a", 0, 0))
	before := s.HistoryLen()
	for i := 0; i < 10; i++ {
		s.Move("a", 1, 0) // continuous drag
	}
	if s.HistoryLen() != before {
		t.Fatal("continuous move must not push history")
	}
	s.CommitDrag()
	if s.HistoryLen() != before+1 {
		t.Fatalf("release pushed %d snapshots, want 1", s.HistoryLen()-before)
	}
	a, _ := s.Get("a")
	if a.X != 10 {
		t.Fatalf("moved annotation at x=%v, want 10", a.X)
	}
	s.Undo()
	a, _ = s.Get("a")
	if a.X != 0 {
		t.Fatalf("undo after drag left x=%v, want 0", a.X)
	}
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.Add(note("a", 0, 0))
	s.Add(note("b", 1, 0))
	s.ClearAll()
	if s.Len() != 0 {
		t.Fatalf("clear left %d annotations", s.Len())
	}
	s.Undo()
	if s.Len() != 2 {
		t.Fatalf("undo of clear restored %d annotations, want 2", s.Len())
	}
	// Clearing an already-empty document is a no-op.
	empty := NewStore()
	before := empty.HistoryLen()
	empty.ClearAll()
	if empty.HistoryLen() != before {
		t.Fatal("clearing an empty document must not push history")
	}
}

func TestLoadResetsHistoryAndDirty(t *testing.T) {
	s := NewStore()
	s.Add(note("a", 0, 0))
	s.Load([]annotation.Annotation{note("x", 5, 5)})
	if s.Dirty() {
		t.Fatal("load must leave the store clean")
	}
	if s.CanUndo() {
		t.Fatal("load must reset history")
	}
	if s.Len() != 1 {
		t.Fatalf("loaded %d annotations, want 1", s.Len())
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	stroke := annotation.Annotation{
		ID: "s", Kind: annotation.KindPen, StrokeWidth: 2,
		Points: []annotation.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}},
	}
	s.Add(stroke)
	snap := s.Snapshot()
	snap[0].Points[0].X = 999
	a, _ := s.Get("s")
	if a.Points[0].X == 999 {
		t.Fatal("snapshot aliases live point data")
	}
}
