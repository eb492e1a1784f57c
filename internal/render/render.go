// Package render turns annotation documents into pixels. The editor core
// only talks to the Renderer interface; Software is the bundled raster
// implementation used by both the windowed shell and headless export.
package render

import (
	"image"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/viewport"
)

// State carries the per-annotation presentation flags the editor knows
// about but the renderer must not derive itself.
type State struct {
	// Selected draws the selection box and, for images, corner handles.
	Selected bool
	// Faded dims the annotation while the eraser hovers it.
	Faded bool
}

// Overlay is the transient, uncommitted state drawn above the document.
type Overlay struct {
	// Drawing is the stroke or shape being dragged out, not yet in the
	// store.
	Drawing *annotation.Annotation
	// CropRect is the active crop rectangle in document space, nil when
	// the crop sub-editor is closed.
	CropRect *CropRect
	// TextCaret anchors the text-entry caret, with the buffer typed so
	// far.
	TextCaret *TextCaret
}

// CropRect is the crop selection in document space.
type CropRect struct {
	X, Y, W, H float64
}

// TextCaret is the in-progress text entry shown at its anchor.
type TextCaret struct {
	X, Y     float64
	Text     string
	FontSize float64
	Color    string
}

// Renderer draws documents without knowing what surface it targets.
type Renderer interface {
	// DrawBackground paints the backdrop and the artifact image through
	// the viewport transform.
	DrawBackground(dst *image.RGBA, artifact image.Image, vp *viewport.Viewport)
	// DrawAnnotation paints one annotation through the viewport
	// transform.
	DrawAnnotation(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State)
	// DrawOverlay paints transient interaction state above everything.
	DrawOverlay(dst *image.RGBA, ov Overlay, vp *viewport.Viewport)
}
