package stroke

import (
	"math"
	"testing"

	"github.com/example/moleskine/internal/annotation"
)

func samples(coords ...float64) []annotation.Point {
	pts := make([]annotation.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, annotation.Point{X: coords[i], Y: coords[i+1]})
	}
	return pts
}

func TestOutlineClosedAndSized(t *testing.T) {
	pts := samples(0, 0, 10, 0, 20, 5, 30, 5, 40, 10)
	out := Outline(pts, ForKind(annotation.KindPen, 4, pts))
	if len(out) != 2*len(pts) {
		t.Fatalf("outline has %d points, want %d", len(out), 2*len(pts))
	}
	// The outline must straddle the spine: some points above, some below.
	var above, below int
	for _, p := range out {
		if p.Y < -0.01 {
			above++
		}
		if p.Y > 0.01 {
			below++
		}
	}
	if above == 0 || below == 0 {
		t.Fatalf("outline does not straddle the stroke: above=%d below=%d", above, below)
	}
}

func TestHighlighterWidthFactor(t *testing.T) {
	pts := samples(0, 0, 100, 0)
	pen := ForKind(annotation.KindPen, 3, pts)
	hl := ForKind(annotation.KindHighlighter, 3, pts)
	if hl.Width != pen.Width*HighlighterWidthFactor {
		t.Fatalf("highlighter width = %v, want %v", hl.Width, pen.Width*HighlighterWidthFactor)
	}
	if hl.Thinning != 0 || hl.SimulatePressure {
		t.Fatalf("highlighter must not thin or simulate pressure: %+v", hl)
	}
}

func TestPressureSimulationOnlyWithoutSamples(t *testing.T) {
	plain := samples(0, 0, 10, 10)
	if !ForKind(annotation.KindPen, 2, plain).SimulatePressure {
		t.Fatal("expected simulated pressure for pressureless samples")
	}
	real := []annotation.Point{{X: 0, Y: 0, Pressure: 0.8}, {X: 10, Y: 10, Pressure: 0.6}}
	if ForKind(annotation.KindPen, 2, real).SimulatePressure {
		t.Fatal("expected real pressure to be used when present")
	}
}

func TestThinningNarrowsFastSegments(t *testing.T) {
	// Slow, dense samples then a fast jump. Simulated pressure should
	// make the outline narrower around the fast segment.
	pts := samples(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 60, 0, 61, 0, 62, 0, 63, 0, 64, 0)
	out := Outline(pts, Options{Width: 8, Thinning: 0.5, SimulatePressure: true})
	n := len(pts)
	widthAt := func(i int) float64 {
		// Outline layout: left[0..n-1] then right reversed.
		left := out[i]
		right := out[2*n-1-i]
		return math.Hypot(left.X-right.X, left.Y-right.Y)
	}
	slow := widthAt(2)
	fast := widthAt(5)
	if fast >= slow {
		t.Fatalf("fast segment width %v should be below slow segment width %v", fast, slow)
	}
}

func TestSinglePointBecomesDot(t *testing.T) {
	out := Outline(samples(5, 5), Options{Width: 6})
	if len(out) != 8 {
		t.Fatalf("dot outline has %d points, want 8", len(out))
	}
	for _, p := range out {
		d := math.Hypot(p.X-5, p.Y-5)
		if math.Abs(d-3) > 1e-9 {
			t.Fatalf("dot point %v not on radius 3 circle", p)
		}
	}
}

func TestPathMidpointQuadratics(t *testing.T) {
	outline := samples(0, 0, 10, 0, 10, 10, 0, 10)
	segs := Path(outline)
	if segs[0].Op != OpMove {
		t.Fatalf("first segment op = %v, want OpMove", segs[0].Op)
	}
	wantStart := annotation.Point{X: 5, Y: 0}
	if segs[0].To != wantStart {
		t.Fatalf("path start = %v, want %v", segs[0].To, wantStart)
	}
	if segs[len(segs)-1].Op != OpClose {
		t.Fatal("path must end with OpClose")
	}
	// One quad per outline point, wrapping to close the loop.
	quads := 0
	for _, s := range segs {
		if s.Op == OpQuad {
			quads++
		}
	}
	if quads != len(outline) {
		t.Fatalf("path has %d quads, want %d", quads, len(outline))
	}
	// The wrap segment must land back on the starting midpoint.
	last := segs[len(segs)-2]
	if last.To != wantStart {
		t.Fatalf("wrap segment ends at %v, want %v", last.To, wantStart)
	}
}
