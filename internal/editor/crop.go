package editor

import (
	"image"
	"math"

	"github.com/example/moleskine/internal/annotation"
)

// CropMode identifies what a crop drag is manipulating.
type CropMode int

const (
	CropIdle CropMode = iota
	CropMove
	CropNW
	CropNE
	CropSW
	CropSE
)

// MinCropPercent is the smallest crop rectangle dimension, as a
// percentage of the image's own bounding box.
const MinCropPercent = 10

// PercentRect is a crop rectangle expressed in 0-100 percent of the
// image annotation's bounding box on both axes.
type PercentRect struct {
	X, Y, W, H float64
}

// CropEditor is an isolated modal state machine over a copy of the
// selected image annotation. Nothing mutates the document until Confirm.
type CropEditor struct {
	Target annotation.Annotation // working copy
	Rect   PercentRect

	mode      CropMode
	startRect PercentRect
	startX    float64 // percent coordinates at drag start
	startY    float64
}

// NewCropEditor opens the crop editor with the full image selected.
func NewCropEditor(target annotation.Annotation) *CropEditor {
	return &CropEditor{
		Target: target.Clone(),
		Rect:   PercentRect{X: 0, Y: 0, W: 100, H: 100},
	}
}

// Mode returns the active drag mode.
func (c *CropEditor) Mode() CropMode { return c.mode }

// Begin starts a drag at percent coordinates (px, py) of the image box.
func (c *CropEditor) Begin(mode CropMode, px, py float64) {
	c.mode = mode
	c.startRect = c.Rect
	c.startX = px
	c.startY = py
}

// Drag continues the active drag to percent coordinates (px, py).
// Moving keeps the rectangle inside [0, 100] on both axes; corner drags
// keep the opposite edges fixed and enforce the minimum size.
func (c *CropEditor) Drag(px, py float64) {
	dx := px - c.startX
	dy := py - c.startY
	r := c.startRect
	switch c.mode {
	case CropMove:
		r.X = clampPercent(r.X+dx, 0, 100-r.W)
		r.Y = clampPercent(r.Y+dy, 0, 100-r.H)
	case CropNW:
		right := r.X + r.W
		bottom := r.Y + r.H
		r.X = clampPercent(r.X+dx, 0, right-MinCropPercent)
		r.Y = clampPercent(r.Y+dy, 0, bottom-MinCropPercent)
		r.W = right - r.X
		r.H = bottom - r.Y
	case CropNE:
		bottom := r.Y + r.H
		r.W = clampPercent(r.W+dx, MinCropPercent, 100-r.X)
		r.Y = clampPercent(r.Y+dy, 0, bottom-MinCropPercent)
		r.H = bottom - r.Y
	case CropSW:
		right := r.X + r.W
		r.X = clampPercent(r.X+dx, 0, right-MinCropPercent)
		r.W = right - r.X
		r.H = clampPercent(r.H+dy, MinCropPercent, 100-r.Y)
	case CropSE:
		r.W = clampPercent(r.W+dx, MinCropPercent, 100-r.X)
		r.H = clampPercent(r.H+dy, MinCropPercent, 100-r.Y)
	default:
		return
	}
	c.Rect = r
}

// End finishes the active drag.
func (c *CropEditor) End() { c.mode = CropIdle }

// Region maps the percent rectangle into the source image's native pixel
// space, accounting for any difference between the displayed box and the
// native resolution.
func (c *CropEditor) Region(nativeW, nativeH int) image.Rectangle {
	x0 := int(math.Round(c.Rect.X / 100 * float64(nativeW)))
	y0 := int(math.Round(c.Rect.Y / 100 * float64(nativeH)))
	x1 := int(math.Round((c.Rect.X + c.Rect.W) / 100 * float64(nativeW)))
	y1 := int(math.Round((c.Rect.Y + c.Rect.H) / 100 * float64(nativeH)))
	return image.Rect(x0, y0, x1, y1)
}

// Bounds returns the cropped annotation box in document space: the
// percent rectangle applied to the working copy's displayed bounds.
func (c *CropEditor) Bounds() (x, y, w, h float64) {
	t := c.Target
	return t.X + t.W*c.Rect.X/100,
		t.Y + t.H*c.Rect.Y/100,
		t.W * c.Rect.W / 100,
		t.H * c.Rect.H / 100
}

// ConfirmCrop applies the open crop editor to the document as a single
// history commit: newSrc must be the re-encoded cropped image produced
// by the persistence layer from Region.
func (e *Editor) ConfirmCrop(newSrc string) {
	if e.crop == nil {
		return
	}
	x, y, w, h := e.crop.Bounds()
	id := e.crop.Target.ID
	e.crop = nil
	e.Store.Update(id, func(a *annotation.Annotation) {
		a.Src = newSrc
		a.X, a.Y, a.W, a.H = x, y, w, h
	})
}

func clampPercent(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
