// Package hittest decides which annotation, if any, lies under a
// document-space point. Tolerances scale inversely with the viewport
// scale so picking feels the same at every zoom level.
package hittest

import (
	"math"

	"github.com/example/moleskine/internal/annotation"
)

// Base tolerances in screen pixels; divide by the viewport scale before
// comparing against document-space distances.
const (
	pickTolerance   = 10
	handleTolerance = 12
)

// Corner identifies one of the four resize handles of a selected image.
type Corner int

const (
	CornerNone Corner = iota
	CornerNW
	CornerNE
	CornerSW
	CornerSE
)

// Hit scans the list from topmost (last) to bottommost (first) and
// returns the index of the first annotation containing the point, or -1.
func Hit(list []annotation.Annotation, x, y, scale float64) int {
	for i := len(list) - 1; i >= 0; i-- {
		if Contains(&list[i], x, y, scale) {
			return i
		}
	}
	return -1
}

// Contains reports whether the point hits a single annotation, using the
// per-kind rules described below.
func Contains(a *annotation.Annotation, x, y, scale float64) bool {
	tol := pickTolerance / scale
	switch a.Kind {
	case annotation.KindImage:
		return x >= a.X && x <= a.X+a.W && y >= a.Y && y <= a.Y+a.H
	case annotation.KindPen, annotation.KindHighlighter:
		// Per-sample distance, not true segment distance. Cheaper, and
		// freehand samples are dense enough that the difference is not
		// noticeable in practice.
		limit := tol + a.StrokeWidth
		for _, p := range a.Points {
			if math.Hypot(p.X-x, p.Y-y) < limit {
				return true
			}
		}
		return false
	case annotation.KindRectangle:
		return nearRectEdge(a, x, y, tol)
	case annotation.KindCircle:
		return nearEllipseEdge(a, x, y, tol)
	case annotation.KindArrow:
		return segmentDistance(x, y, a.X1, a.Y1, a.X2, a.Y2) < tol
	case annotation.KindText:
		w, h := a.TextExtent()
		top := a.Y - a.FontSize
		return x >= a.X && x <= a.X+w && y >= top && y <= top+h
	}
	return false
}

// HandleAt returns which corner resize handle of a selected image embed
// the point is over, or CornerNone. Only image annotations have handles.
func HandleAt(a *annotation.Annotation, x, y, scale float64) Corner {
	if a == nil || a.Kind != annotation.KindImage {
		return CornerNone
	}
	tol := handleTolerance / scale
	corners := []struct {
		c    Corner
		x, y float64
	}{
		{CornerNW, a.X, a.Y},
		{CornerNE, a.X + a.W, a.Y},
		{CornerSW, a.X, a.Y + a.H},
		{CornerSE, a.X + a.W, a.Y + a.H},
	}
	best := CornerNone
	bestDist := tol
	for _, c := range corners {
		if d := math.Hypot(c.x-x, c.y-y); d <= bestDist {
			best = c.c
			bestDist = d
		}
	}
	return best
}

// nearRectEdge tests the four edges of the normalized box. A rectangle
// is only hit near its border, never in its interior, matching the
// outline-tool semantics.
func nearRectEdge(a *annotation.Annotation, x, y, tol float64) bool {
	minX := math.Min(a.X1, a.X2)
	maxX := math.Max(a.X1, a.X2)
	minY := math.Min(a.Y1, a.Y2)
	maxY := math.Max(a.Y1, a.Y2)

	withinX := x >= minX-tol && x <= maxX+tol
	withinY := y >= minY-tol && y <= maxY+tol
	if !withinX || !withinY {
		return false
	}
	nearLeft := math.Abs(x-minX) <= tol
	nearRight := math.Abs(x-maxX) <= tol
	nearTop := math.Abs(y-minY) <= tol
	nearBottom := math.Abs(y-maxY) <= tol
	return nearLeft || nearRight || nearTop || nearBottom
}

// nearEllipseEdge tests whether the point's normalized radial distance
// is within the tolerance band around 1.0.
func nearEllipseEdge(a *annotation.Annotation, x, y, tol float64) bool {
	cx := (a.X1 + a.X2) / 2
	cy := (a.Y1 + a.Y2) / 2
	rx := math.Abs(a.X2-a.X1) / 2
	ry := math.Abs(a.Y2-a.Y1) / 2
	if rx == 0 || ry == 0 {
		return false
	}
	nx := (x - cx) / rx
	ny := (y - cy) / ry
	dist := math.Sqrt(nx*nx + ny*ny)
	band := tol / math.Max(rx, ry)
	return math.Abs(dist-1) <= band
}

// segmentDistance is the exact distance from (px, py) to the segment
// (x1, y1)-(x2, y2): project, clamp to [0, 1], measure.
func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(x1+t*dx), py-(y1+t*dy))
}
