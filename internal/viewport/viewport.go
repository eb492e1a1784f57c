// Package viewport owns the pan/zoom transform between document space
// (artifact pixels) and screen space. Everything that handles pointer
// input converts through here before any geometry logic runs.
package viewport

// Scale limits and the zoom steps used by the different input paths.
const (
	MinScale = 0.1
	MaxScale = 3.0

	// WheelOut and WheelIn are applied per scroll tick.
	WheelOut = 0.92
	WheelIn  = 1.08
	// ButtonStep is the fixed increment for the +/- toolbar buttons.
	ButtonStep = 0.25
	// KeyStep is the increment for the +/- keyboard shortcuts.
	KeyStep = 0.15
)

// Point is a 2D coordinate in either space.
type Point struct {
	X float64
	Y float64
}

// Viewport maps document point p to screen point p*Scale + Offset.
type Viewport struct {
	Scale  float64
	Offset Point
}

// New returns a viewport at 1:1 scale with no offset.
func New() *Viewport {
	return &Viewport{Scale: 1}
}

// FitToView sizes the document to fit entirely inside the view without
// upscaling and centers it.
func (v *Viewport) FitToView(docW, docH, viewW, viewH float64) {
	if docW <= 0 || docH <= 0 || viewW <= 0 || viewH <= 0 {
		v.Scale = 1
		v.Offset = Point{}
		return
	}
	scale := viewW / docW
	if s := viewH / docH; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	v.Scale = clampScale(scale)
	v.Offset = Point{
		X: (viewW - docW*v.Scale) / 2,
		Y: (viewH - docH*v.Scale) / 2,
	}
}

// ZoomAt rescales by factor around a fixed screen anchor so the document
// point under the cursor stays under the cursor.
func (v *Viewport) ZoomAt(anchor Point, factor float64) {
	newScale := clampScale(v.Scale * factor)
	ratio := newScale / v.Scale
	v.Offset = Point{
		X: anchor.X - (anchor.X-v.Offset.X)*ratio,
		Y: anchor.Y - (anchor.Y-v.Offset.Y)*ratio,
	}
	v.Scale = newScale
}

// ZoomStep applies a fixed scale increment (positive or negative)
// anchored at the given screen point. Used by the toolbar buttons and
// keyboard shortcuts.
func (v *Viewport) ZoomStep(anchor Point, step float64) {
	target := clampScale(v.Scale + step)
	if target == v.Scale {
		return
	}
	v.ZoomAt(anchor, target/v.Scale)
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// ToDocument converts a screen point to document space.
func (v *Viewport) ToDocument(p Point) Point {
	return Point{
		X: (p.X - v.Offset.X) / v.Scale,
		Y: (p.Y - v.Offset.Y) / v.Scale,
	}
}

// ToScreen converts a document point to screen space.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.Offset.X,
		Y: p.Y*v.Scale + v.Offset.Y,
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
