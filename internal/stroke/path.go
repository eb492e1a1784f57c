package stroke

import "github.com/example/moleskine/internal/annotation"

// SegmentOp identifies a path segment operation.
type SegmentOp int

const (
	// OpMove starts the path at To.
	OpMove SegmentOp = iota
	// OpQuad is a quadratic curve through Ctrl ending at To.
	OpQuad
	// OpClose closes the path back to the start.
	OpClose
)

// Segment is one element of a closed spline path.
type Segment struct {
	Op   SegmentOp
	Ctrl annotation.Point
	To   annotation.Point
}

// Path converts a closed outline polygon into a smoothed path by
// connecting successive midpoints: each consecutive pair (a, b) emits a
// quadratic with control point a targeting midpoint(a, b), wrapping
// around to close the loop.
func Path(outline []annotation.Point) []Segment {
	n := len(outline)
	if n == 0 {
		return nil
	}
	if n < 3 {
		segs := []Segment{{Op: OpMove, To: outline[0]}}
		for _, p := range outline[1:] {
			segs = append(segs, Segment{Op: OpQuad, Ctrl: p, To: p})
		}
		return append(segs, Segment{Op: OpClose})
	}

	start := midpoint(outline[0], outline[1])
	segs := make([]Segment, 0, n+2)
	segs = append(segs, Segment{Op: OpMove, To: start})
	for i := 1; i < n; i++ {
		a := outline[i]
		b := outline[(i+1)%n]
		segs = append(segs, Segment{Op: OpQuad, Ctrl: a, To: midpoint(a, b)})
	}
	// Final wrap segment back to the starting midpoint.
	segs = append(segs, Segment{Op: OpQuad, Ctrl: outline[0], To: start})
	segs = append(segs, Segment{Op: OpClose})
	return segs
}

func midpoint(a, b annotation.Point) annotation.Point {
	return annotation.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
