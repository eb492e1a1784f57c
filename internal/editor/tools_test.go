package editor

import (
	"math"
	"testing"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/viewport"
)

func newTestEditor() *Editor {
	vp := viewport.New()
	return NewEditor(NewStore(), vp, "tester")
}

func pt(x, y float64) viewport.Point { return viewport.Point{X: x, Y: y} }

func TestStrokeCommitScenario(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolPen)
	before := e.Store.HistoryLen()

	e.PointerDown(pt(10, 10))
	e.PointerMove(pt(20, 10))
	e.PointerMove(pt(30, 15))
	e.PointerUp(pt(30, 15))

	list := e.Store.Annotations()
	if len(list) != 1 {
		t.Fatalf("committed %d annotations, want 1", len(list))
	}
	a := list[0]
	if a.Kind != annotation.KindPen || len(a.Points) != 3 {
		t.Fatalf("unexpected stroke: kind=%v points=%d", a.Kind, len(a.Points))
	}
	if a.CreatedBy != "tester" {
		t.Fatalf("createdBy = %q, want tester", a.CreatedBy)
	}
	if e.Store.HistoryLen() != before+1 {
		t.Fatalf("pushed %d snapshots, want 1", e.Store.HistoryLen()-before)
	}
}

func TestShortStrokeDiscarded(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolPen)
	e.PointerDown(pt(10, 10))
	e.PointerMove(pt(11, 10))
	e.PointerUp(pt(11, 10))
	if e.Store.Len() != 0 {
		t.Fatal("a 2-point stroke is a misclick and must be discarded")
	}
}

func TestRectangleMinimumSize(t *testing.T) {
	tests := []struct {
		name   string
		dx, dy float64
		want   int
	}{
		{"below threshold", 4, 4, 0},
		{"exactly threshold", 5, 5, 0},
		{"above threshold", 6, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			e.SetTool(ToolRectangle)
			hist := e.Store.HistoryLen()
			e.PointerDown(pt(0, 0))
			e.PointerMove(pt(tt.dx, tt.dy))
			e.PointerUp(pt(tt.dx, tt.dy))
			if e.Store.Len() != tt.want {
				t.Fatalf("drag (%v,%v) committed %d annotations, want %d", tt.dx, tt.dy, e.Store.Len(), tt.want)
			}
			if tt.want == 0 && e.Store.HistoryLen() != hist {
				t.Fatal("rejected shape must not push history")
			}
		})
	}
}

func TestArrowMinimumLength(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolArrow)
	e.PointerDown(pt(0, 0))
	e.PointerMove(pt(9, 0))
	e.PointerUp(pt(9, 0))
	if e.Store.Len() != 0 {
		t.Fatal("9-unit arrow must be discarded")
	}
	e.PointerDown(pt(0, 0))
	e.PointerMove(pt(11, 0))
	e.PointerUp(pt(11, 0))
	if e.Store.Len() != 1 {
		t.Fatal("11-unit arrow must be committed")
	}
}

func TestEraserEdgeVsInterior(t *testing.T) {
	e := newTestEditor()
	e.Store.Add(annotation.Annotation{
		ID: "r", Kind: annotation.KindRectangle, X1: 0, Y1: 0, X2: 100, Y2: 100,
	})
	e.SetTool(ToolEraser)

	e.PointerDown(pt(50, 50)) // interior: rectangles are edge-hit only
	if e.Store.Len() != 1 {
		t.Fatal("interior click must not erase an outline rectangle")
	}
	e.PointerDown(pt(50, 0)) // top edge
	if e.Store.Len() != 0 {
		t.Fatal("edge click must erase the rectangle")
	}
}

func TestSpacePanRestoresToolBeforeHold(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolPen)
	e.HoldPan()
	if e.Tool() != ToolPan {
		t.Fatalf("tool during hold = %v, want pan", e.Tool())
	}
	e.ReleasePan()
	if e.Tool() != ToolPen {
		t.Fatalf("tool after release = %v, want pen", e.Tool())
	}

	// Nested holds unwind in order.
	e.HoldPan()
	e.HoldPan()
	e.ReleasePan()
	if e.Tool() != ToolPan {
		t.Fatalf("inner release should restore the outer hold, got %v", e.Tool())
	}
	e.ReleasePan()
	if e.Tool() != ToolPen {
		t.Fatalf("outer release restored %v, want pen", e.Tool())
	}

	// A manual tool change mid-hold cancels the pending restore.
	e.HoldPan()
	e.SetTool(ToolEraser)
	e.ReleasePan()
	if e.Tool() != ToolEraser {
		t.Fatalf("release after manual change restored %v, want eraser", e.Tool())
	}
}

func TestSelectMoveAndDeselect(t *testing.T) {
	e := newTestEditor()
	e.Store.Add(annotation.NewImage("blob://img", 10, 10, 100, 50, "tester"))
	id := e.Store.Annotations()[0].ID

	e.SetTool(ToolSelect)
	e.PointerDown(pt(50, 30))
	if e.Selected() != id {
		t.Fatalf("selected %q, want %q", e.Selected(), id)
	}
	hist := e.Store.HistoryLen()
	e.PointerMove(pt(70, 40))
	e.PointerUp(pt(70, 40))
	a, _ := e.Store.Get(id)
	if a.X != 30 || a.Y != 20 {
		t.Fatalf("image moved to (%v,%v), want (30,20)", a.X, a.Y)
	}
	if e.Store.HistoryLen() != hist+1 {
		t.Fatal("drag-move must commit exactly one snapshot")
	}

	e.PointerDown(pt(500, 500))
	if e.Selected() != "" {
		t.Fatal("clicking empty space must deselect")
	}
}

func TestResizeAspectLock(t *testing.T) {
	e := newTestEditor()
	e.Store.Add(annotation.NewImage("blob://img", 0, 0, 200, 100, "tester"))
	id := e.Store.Annotations()[0].ID
	e.SetTool(ToolSelect)

	// Select, then grab the se handle.
	e.PointerDown(pt(100, 50))
	e.PointerUp(pt(100, 50))
	e.PointerDown(pt(200, 100))

	drags := []viewport.Point{pt(300, 120), pt(150, 400), pt(90, 33)}
	for _, d := range drags {
		e.PointerMove(d)
		a, _ := e.Store.Get(id)
		if math.Abs(a.W-2*a.H) > 1e-9 {
			t.Fatalf("aspect broken at drag %v: w=%v h=%v", d, a.W, a.H)
		}
		if a.H < annotation.MinImageSize-1e-9 {
			t.Fatalf("shorter dimension %v below minimum", a.H)
		}
	}
	e.PointerUp(pt(90, 33))
	a, _ := e.Store.Get(id)
	if a.X != 0 || a.Y != 0 {
		t.Fatalf("se resize moved the anchor corner to (%v,%v)", a.X, a.Y)
	}
}

func TestTextEntryCommitAndCancel(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolText)
	e.PointerDown(pt(40, 60))
	if e.Text() == nil {
		t.Fatal("text tool press must open the overlay")
	}
	e.Text().Buffer = "first line\nsecond"
	e.CommitText()
	if e.Store.Len() != 1 {
		t.Fatal("confirmed text must be committed")
	}
	a := e.Store.Annotations()[0]
	if a.Kind != annotation.KindText || a.Text != "first line\nsecond" {
		t.Fatalf("unexpected text annotation: %+v", a)
	}

	e.PointerDown(pt(10, 10))
	e.CancelInteraction()
	if e.Text() != nil || e.Store.Len() != 1 {
		t.Fatal("escape must cancel the overlay without committing")
	}

	// Empty text never commits.
	e.PointerDown(pt(10, 10))
	e.CommitText()
	if e.Store.Len() != 1 {
		t.Fatal("empty text must not commit")
	}
}

func TestEraserHoverTracksTopmost(t *testing.T) {
	e := newTestEditor()
	e.Store.Add(annotation.NewImage("blob://img", 0, 0, 100, 100, "tester"))
	id := e.Store.Annotations()[0].ID
	e.SetTool(ToolEraser)
	e.PointerMove(pt(50, 50))
	if e.Hovered() != id {
		t.Fatalf("hovered %q, want %q", e.Hovered(), id)
	}
	e.PointerMove(pt(500, 500))
	if e.Hovered() != "" {
		t.Fatal("hover must clear off-annotation")
	}
}

func TestPointerCoordinatesRespectViewport(t *testing.T) {
	e := newTestEditor()
	e.Viewport.Scale = 2
	e.Viewport.Offset = viewport.Point{X: 100, Y: 50}
	e.SetTool(ToolPen)
	e.PointerDown(pt(120, 70)) // document (10, 10)
	e.PointerMove(pt(140, 70))
	e.PointerMove(pt(160, 90))
	e.PointerUp(pt(160, 90))
	a := e.Store.Annotations()[0]
	want := annotation.Point{X: 10, Y: 10}
	if a.Points[0] != want {
		t.Fatalf("first sample %v, want %v", a.Points[0], want)
	}
}
