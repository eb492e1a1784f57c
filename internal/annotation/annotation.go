// Package annotation defines the persisted markup objects placed on an
// artifact: freehand strokes, shapes, text notes and embedded images.
// All coordinates are in document space, independent of zoom and pan.
package annotation

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the annotation union.
type Kind string

const (
	KindPen         Kind = "pen"
	KindHighlighter Kind = "highlighter"
	KindRectangle   Kind = "rectangle"
	KindCircle      Kind = "circle"
	KindArrow       Kind = "arrow"
	KindText        Kind = "text"
	KindImage       Kind = "image"
)

// Commit thresholds. Anything smaller is treated as a misclick and
// silently discarded instead of being committed to the document.
const (
	// MinStrokePoints is the minimum number of sampled points for a
	// freehand stroke to be kept.
	MinStrokePoints = 3
	// MinShapeExtent is the minimum bounding box edge for rectangles and
	// circles, in document units.
	MinShapeExtent = 5
	// MinArrowLength is the minimum segment length for arrows.
	MinArrowLength = 10
	// MinImageSize is the smallest dimension an embedded image may be
	// resized to.
	MinImageSize = 30
)

// Point is one pointer sample in document space. Pressure is 0 when the
// input device does not report it.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure,omitempty"`
}

// Annotation is a tagged union; the fields that are meaningful depend on
// Kind. Strokes use Points and StrokeWidth, shapes use the two corner
// pairs, text notes use Text/X/Y/FontSize and image embeds use
// Src/X/Y/W/H.
type Annotation struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Color string `json:"color,omitempty"`

	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Points      []Point `json:"points,omitempty"`

	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	Src string  `json:"src,omitempty"`
	X   float64 `json:"x,omitempty"`
	Y   float64 `json:"y,omitempty"`
	W   float64 `json:"width,omitempty"`
	H   float64 `json:"height,omitempty"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewStroke starts a freehand stroke annotation. kind must be KindPen or
// KindHighlighter.
func NewStroke(kind Kind, color string, width float64, first Point, by string) Annotation {
	return Annotation{
		ID:          uuid.NewString(),
		Kind:        kind,
		Color:       color,
		StrokeWidth: width,
		Points:      []Point{first},
		CreatedBy:   by,
		CreatedAt:   time.Now(),
	}
}

// NewShape starts a rectangle, circle or arrow with both corners at the
// given point; the second corner is updated while the pointer drags.
func NewShape(kind Kind, color string, width, x, y float64, by string) Annotation {
	return Annotation{
		ID:          uuid.NewString(),
		Kind:        kind,
		Color:       color,
		StrokeWidth: width,
		X1:          x,
		Y1:          y,
		X2:          x,
		Y2:          y,
		CreatedBy:   by,
		CreatedAt:   time.Now(),
	}
}

// NewText creates a text note anchored at (x, y).
func NewText(color, text string, x, y, fontSize float64, by string) Annotation {
	return Annotation{
		ID:        uuid.NewString(),
		Kind:      KindText,
		Color:     color,
		Text:      text,
		X:         x,
		Y:         y,
		FontSize:  fontSize,
		CreatedBy: by,
		CreatedAt: time.Now(),
	}
}

// NewImage creates an image embed with the given bounding box.
func NewImage(src string, x, y, w, h float64, by string) Annotation {
	return Annotation{
		ID:        uuid.NewString(),
		Kind:      KindImage,
		Src:       src,
		X:         x,
		Y:         y,
		W:         w,
		H:         h,
		CreatedBy: by,
		CreatedAt: time.Now(),
	}
}

// Committable reports whether the annotation meets the minimum-size
// thresholds for being added to the document.
func (a *Annotation) Committable() bool {
	switch a.Kind {
	case KindPen, KindHighlighter:
		return len(a.Points) >= MinStrokePoints
	case KindRectangle, KindCircle:
		return math.Abs(a.X2-a.X1) > MinShapeExtent || math.Abs(a.Y2-a.Y1) > MinShapeExtent
	case KindArrow:
		return math.Hypot(a.X2-a.X1, a.Y2-a.Y1) > MinArrowLength
	case KindText:
		return a.Text != ""
	case KindImage:
		return a.W > 0 && a.H > 0
	}
	return false
}

// Translate moves every geometric field of the annotation by (dx, dy).
func (a *Annotation) Translate(dx, dy float64) {
	switch a.Kind {
	case KindPen, KindHighlighter:
		for i := range a.Points {
			a.Points[i].X += dx
			a.Points[i].Y += dy
		}
	case KindRectangle, KindCircle, KindArrow:
		a.X1 += dx
		a.Y1 += dy
		a.X2 += dx
		a.Y2 += dy
	case KindText, KindImage:
		a.X += dx
		a.Y += dy
	}
}

// Box returns the normalized bounding box of the annotation as
// (minX, minY, maxX, maxY).
func (a *Annotation) Box() (minX, minY, maxX, maxY float64) {
	switch a.Kind {
	case KindPen, KindHighlighter:
		if len(a.Points) == 0 {
			return 0, 0, 0, 0
		}
		minX, minY = a.Points[0].X, a.Points[0].Y
		maxX, maxY = minX, minY
		for _, p := range a.Points[1:] {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		return minX, minY, maxX, maxY
	case KindRectangle, KindCircle, KindArrow:
		return math.Min(a.X1, a.X2), math.Min(a.Y1, a.Y2), math.Max(a.X1, a.X2), math.Max(a.Y1, a.Y2)
	case KindImage:
		return a.X, a.Y, a.X + a.W, a.Y + a.H
	case KindText:
		w, h := a.TextExtent()
		return a.X, a.Y - a.FontSize, a.X + w, a.Y - a.FontSize + h
	}
	return 0, 0, 0, 0
}

// TextExtent estimates the rendered size of a text note using a
// monospace-width heuristic: the longest line's rune count times
// fontSize*0.6 wide, lineCount*fontSize*1.2 tall.
func (a *Annotation) TextExtent() (w, h float64) {
	longest := 0
	lines := 1
	count := 0
	for _, r := range a.Text {
		if r == '\n' {
			lines++
			if count > longest {
				longest = count
			}
			count = 0
			continue
		}
		count++
	}
	if count > longest {
		longest = count
	}
	return float64(longest) * a.FontSize * 0.6, float64(lines) * a.FontSize * 1.2
}

// Clone returns a deep copy so history snapshots never alias live point
// slices.
func (a Annotation) Clone() Annotation {
	out := a
	if a.Points != nil {
		out.Points = make([]Point, len(a.Points))
		copy(out.Points, a.Points)
	}
	return out
}

// CloneList deep-copies a whole annotation list.
func CloneList(list []Annotation) []Annotation {
	out := make([]Annotation, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
