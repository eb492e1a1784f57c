// Package stroke converts raw pointer samples into a smoothed,
// pressure-aware closed outline suitable for filling, plus the
// midpoint-quadratic path used to round it off. The variable-width
// outline follows the usual freehand-ink construction: low-pass the
// samples, derive a per-sample radius from pressure (simulated from
// velocity when the device reports none), and offset perpendicular to
// the direction of travel on both sides.
package stroke

import (
	"math"

	"github.com/example/moleskine/internal/annotation"
)

// Options tune the outline construction per tool kind.
type Options struct {
	// Width is the base stroke width in document units.
	Width float64
	// Thinning scales how strongly pressure modulates the radius (0..1).
	Thinning float64
	// Smoothing controls corner rounding of the emitted path (0..1).
	Smoothing float64
	// Streamline is the low-pass factor applied to raw samples (0..1).
	Streamline float64
	// SimulatePressure derives pressure from pointer velocity when true.
	SimulatePressure bool
	// Taper shrinks the radius toward both ends of the stroke.
	Taper bool
}

// HighlighterWidthFactor widens highlighter strokes relative to the
// selected pen width.
const HighlighterWidthFactor = 4

// ForKind returns the outline options for a pen or highlighter stroke.
// Pressure is only simulated when the samples carry no real pressure.
func ForKind(kind annotation.Kind, width float64, points []annotation.Point) Options {
	switch kind {
	case annotation.KindHighlighter:
		return Options{
			Width:      width * HighlighterWidthFactor,
			Smoothing:  0.5,
			Streamline: 0.5,
		}
	default:
		return Options{
			Width:            width,
			Thinning:         0.5,
			Smoothing:        0.5,
			Streamline:       0.5,
			SimulatePressure: !hasPressure(points),
			Taper:            true,
		}
	}
}

func hasPressure(points []annotation.Point) bool {
	for _, p := range points {
		if p.Pressure > 0 {
			return true
		}
	}
	return false
}

// Outline produces the closed polygon around the sampled stroke: the
// left offsets in order followed by the right offsets reversed.
func Outline(points []annotation.Point, opts Options) []annotation.Point {
	if len(points) == 0 {
		return nil
	}
	pts := streamline(points, opts.Streamline)
	if len(pts) == 1 {
		return dot(pts[0], opts.Width/2)
	}

	radii := make([]float64, len(pts))
	for i := range pts {
		pressure := pts[i].Pressure
		if opts.SimulatePressure {
			pressure = simulatedPressure(pts, i, opts.Width)
		} else if pressure <= 0 {
			pressure = 0.5
		}
		r := opts.Width / 2
		if opts.Thinning > 0 {
			r *= 1 - opts.Thinning*(1-pressure)
		}
		if opts.Taper {
			r *= taperScale(i, len(pts))
		}
		if r < 0.5 {
			r = 0.5
		}
		radii[i] = r
	}

	left := make([]annotation.Point, 0, len(pts))
	right := make([]annotation.Point, 0, len(pts))
	for i := range pts {
		nx, ny := normalAt(pts, i)
		left = append(left, annotation.Point{X: pts[i].X + nx*radii[i], Y: pts[i].Y + ny*radii[i]})
		right = append(right, annotation.Point{X: pts[i].X - nx*radii[i], Y: pts[i].Y - ny*radii[i]})
	}
	out := left
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out
}

// streamline low-passes the raw samples: each point is pulled toward its
// predecessor by the streamline factor, which removes pointer jitter.
func streamline(points []annotation.Point, factor float64) []annotation.Point {
	if factor <= 0 || len(points) < 2 {
		return points
	}
	out := make([]annotation.Point, len(points))
	out[0] = points[0]
	for i := 1; i < len(points); i++ {
		prev := out[i-1]
		t := 1 - factor
		out[i] = annotation.Point{
			X:        prev.X + (points[i].X-prev.X)*t,
			Y:        prev.Y + (points[i].Y-prev.Y)*t,
			Pressure: points[i].Pressure,
		}
	}
	return out
}

// simulatedPressure maps pointer speed to pressure: slow movement reads
// as heavy, fast movement as light.
func simulatedPressure(pts []annotation.Point, i int, width float64) float64 {
	if i == 0 {
		i = 1
	}
	if i >= len(pts) {
		return 0.5
	}
	d := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	p := 1 - d/(width*4)
	if p < 0.15 {
		p = 0.15
	}
	if p > 1 {
		p = 1
	}
	return p
}

func taperScale(i, n int) float64 {
	const taperLen = 3
	fromStart := i
	fromEnd := n - 1 - i
	edge := fromStart
	if fromEnd < edge {
		edge = fromEnd
	}
	if edge >= taperLen {
		return 1
	}
	return 0.4 + 0.6*float64(edge)/taperLen
}

// normalAt returns the unit normal of the polyline at sample i.
func normalAt(pts []annotation.Point, i int) (float64, float64) {
	var dx, dy float64
	switch {
	case i == 0:
		dx = pts[1].X - pts[0].X
		dy = pts[1].Y - pts[0].Y
	case i == len(pts)-1:
		dx = pts[i].X - pts[i-1].X
		dy = pts[i].Y - pts[i-1].Y
	default:
		dx = pts[i+1].X - pts[i-1].X
		dy = pts[i+1].Y - pts[i-1].Y
	}
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, -1
	}
	return -dy / length, dx / length
}

// dot approximates a single-sample stroke with a small octagon.
func dot(c annotation.Point, r float64) []annotation.Point {
	if r < 0.5 {
		r = 0.5
	}
	out := make([]annotation.Point, 0, 8)
	for i := 0; i < 8; i++ {
		a := 2 * math.Pi * float64(i) / 8
		out = append(out, annotation.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)})
	}
	return out
}
