package editor

import (
	"math"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/hittest"
	"github.com/example/moleskine/internal/viewport"
)

// Tool identifies the active editing tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPen
	ToolHighlighter
	ToolRectangle
	ToolCircle
	ToolArrow
	ToolText
	ToolImage
	ToolEraser
	ToolPan
)

// DefaultFontSize is used for new text notes, in document units.
const DefaultFontSize = 24

// dragMode tracks what an in-progress pointer drag is doing.
type dragMode int

const (
	dragNone dragMode = iota
	dragDraw
	dragMove
	dragResize
	dragPan
)

// TextEntry is the transient state of the text overlay: nothing is added
// to the document until the user confirms non-empty text.
type TextEntry struct {
	X, Y   float64 // document-space anchor
	Buffer string
}

// Editor combines the store, viewport and transient interaction state
// into the tool state machine. Pointer coordinates arrive in screen
// space and are converted before any geometry logic runs.
type Editor struct {
	Store    *Store
	Viewport *viewport.Viewport

	User  string
	Color string
	Width float64

	tool      Tool
	toolStack []Tool // held-key pan; restore targets, oldest first

	selected string
	hovered  string // eraser hover, fades highlighters

	drawing *annotation.Annotation
	mode    dragMode
	dragged bool

	dragStart  viewport.Point // document space
	lastScreen viewport.Point

	resizeCorner hittest.Corner
	resizeOrig   annotation.Annotation
	resizeAspect float64

	text *TextEntry
	crop *CropEditor

	// OnPickImage is invoked when the image tool wants the hosting shell
	// to open its file picker. May be nil.
	OnPickImage func()
}

// NewEditor wires a store and viewport into an editor with the select
// tool active.
func NewEditor(store *Store, vp *viewport.Viewport, user string) *Editor {
	return &Editor{Store: store, Viewport: vp, User: user, Color: "#d92626", Width: 2}
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool selects a tool explicitly, canceling any in-progress held-key
// pan and any pending drawing.
func (e *Editor) SetTool(t Tool) {
	e.toolStack = nil
	e.drawing = nil
	e.mode = dragNone
	if t != ToolSelect {
		e.selected = ""
	}
	e.tool = t
	if t == ToolImage && e.OnPickImage != nil {
		e.OnPickImage()
	}
	e.Store.notify()
}

// HoldPan switches to the pan tool while a designated key is held,
// remembering the tool to restore. Holds nest: the restore target is
// always the tool active before the first hold began.
func (e *Editor) HoldPan() {
	e.toolStack = append(e.toolStack, e.tool)
	e.tool = ToolPan
	e.Store.notify()
}

// ReleasePan restores the tool saved by the matching HoldPan. A manual
// tool change mid-hold clears the stack, so release becomes a no-op.
func (e *Editor) ReleasePan() {
	if len(e.toolStack) == 0 {
		return
	}
	e.tool = e.toolStack[len(e.toolStack)-1]
	e.toolStack = e.toolStack[:len(e.toolStack)-1]
	e.Store.notify()
}

// Selected returns the id of the selected annotation, or "".
func (e *Editor) Selected() string { return e.selected }

// SelectedImage returns the selected annotation if it is an image embed.
func (e *Editor) SelectedImage() (annotation.Annotation, bool) {
	a, ok := e.Store.Get(e.selected)
	if !ok || a.Kind != annotation.KindImage {
		return annotation.Annotation{}, false
	}
	return a, true
}

// Hovered returns the id under the eraser, for the fade treatment.
func (e *Editor) Hovered() string { return e.hovered }

// Drawing returns the uncommitted stroke or shape being dragged out, for
// overlay rendering.
func (e *Editor) Drawing() *annotation.Annotation { return e.drawing }

// Text returns the open text entry, or nil.
func (e *Editor) Text() *TextEntry { return e.text }

// Crop returns the open crop sub-editor, or nil.
func (e *Editor) Crop() *CropEditor { return e.crop }

// PointerDown dispatches a press at the given screen point to the active
// tool's handler.
func (e *Editor) PointerDown(screen viewport.Point) {
	doc := e.Viewport.ToDocument(screen)
	e.lastScreen = screen
	e.dragStart = doc
	e.dragged = false

	switch e.tool {
	case ToolPen, ToolHighlighter:
		kind := annotation.KindPen
		if e.tool == ToolHighlighter {
			kind = annotation.KindHighlighter
		}
		a := annotation.NewStroke(kind, e.Color, e.Width, annotation.Point{X: doc.X, Y: doc.Y}, e.User)
		e.drawing = &a
		e.mode = dragDraw
	case ToolRectangle, ToolCircle, ToolArrow:
		kind := map[Tool]annotation.Kind{
			ToolRectangle: annotation.KindRectangle,
			ToolCircle:    annotation.KindCircle,
			ToolArrow:     annotation.KindArrow,
		}[e.tool]
		a := annotation.NewShape(kind, e.Color, e.Width, doc.X, doc.Y, e.User)
		e.drawing = &a
		e.mode = dragDraw
	case ToolText:
		e.text = &TextEntry{X: doc.X, Y: doc.Y}
	case ToolImage:
		// The picker was already triggered on tool selection; the press
		// is not consumed for drawing.
	case ToolEraser:
		if id := e.Store.HitTest(doc.X, doc.Y, e.Viewport.Scale); id != "" {
			e.Store.Remove(id)
			e.hovered = ""
		}
	case ToolSelect:
		e.selectAt(doc)
	case ToolPan:
		e.mode = dragPan
	}
	e.Store.notify()
}

// selectAt implements the select tool's press order: resize handle of
// the selected image, then topmost annotation, then deselect.
func (e *Editor) selectAt(doc viewport.Point) {
	if img, ok := e.SelectedImage(); ok {
		if c := hittest.HandleAt(&img, doc.X, doc.Y, e.Viewport.Scale); c != hittest.CornerNone {
			e.mode = dragResize
			e.resizeCorner = c
			e.resizeOrig = img
			// Aspect is fixed once at resize start, not re-derived per
			// frame.
			e.resizeAspect = img.W / img.H
			return
		}
	}
	if id := e.Store.HitTest(doc.X, doc.Y, e.Viewport.Scale); id != "" {
		e.selected = id
		e.mode = dragMove
		return
	}
	e.selected = ""
}

// PointerMove continues the in-progress interaction at a new screen
// point.
func (e *Editor) PointerMove(screen viewport.Point) {
	doc := e.Viewport.ToDocument(screen)

	if e.tool == ToolEraser {
		e.hovered = e.Store.HitTest(doc.X, doc.Y, e.Viewport.Scale)
		e.Store.notify()
	}

	switch e.mode {
	case dragDraw:
		if e.drawing == nil {
			return
		}
		switch e.drawing.Kind {
		case annotation.KindPen, annotation.KindHighlighter:
			e.drawing.Points = append(e.drawing.Points, annotation.Point{X: doc.X, Y: doc.Y})
		default:
			e.drawing.X2 = doc.X
			e.drawing.Y2 = doc.Y
		}
		e.Store.notify()
	case dragMove:
		if e.selected == "" {
			return
		}
		e.Store.Move(e.selected, doc.X-e.dragStart.X, doc.Y-e.dragStart.Y)
		e.dragStart = doc
		e.dragged = true
	case dragResize:
		e.resizeTo(doc)
		e.dragged = true
	case dragPan:
		e.Viewport.Pan(screen.X-e.lastScreen.X, screen.Y-e.lastScreen.Y)
		e.Store.notify()
	}
	e.lastScreen = screen
}

// PointerUp completes the interaction, committing or discarding it.
func (e *Editor) PointerUp(screen viewport.Point) {
	switch e.mode {
	case dragDraw:
		if e.drawing != nil && e.drawing.Committable() {
			e.Store.Add(*e.drawing)
		}
		e.drawing = nil
	case dragMove, dragResize:
		// A click that never moved is a selection, not an edit.
		if e.dragged {
			e.Store.CommitDrag()
		}
	}
	e.mode = dragNone
	e.Store.notify()
}

// CancelInteraction aborts an in-progress drawing or text entry without
// committing (Escape).
func (e *Editor) CancelInteraction() {
	e.drawing = nil
	e.text = nil
	e.mode = dragNone
	e.Store.notify()
}

// resizeTo resizes the selected image toward the dragged corner with the
// aspect ratio locked to its value at resize start and the shorter
// dimension clamped to the minimum image size.
func (e *Editor) resizeTo(doc viewport.Point) {
	orig := e.resizeOrig
	var anchorX, anchorY float64
	switch e.resizeCorner {
	case hittest.CornerNW:
		anchorX, anchorY = orig.X+orig.W, orig.Y+orig.H
	case hittest.CornerNE:
		anchorX, anchorY = orig.X, orig.Y+orig.H
	case hittest.CornerSW:
		anchorX, anchorY = orig.X+orig.W, orig.Y
	case hittest.CornerSE:
		anchorX, anchorY = orig.X, orig.Y
	default:
		return
	}
	propW := math.Abs(doc.X - anchorX)
	propH := math.Abs(doc.Y - anchorY)
	// Dominant-axis scaling keeps the box under the cursor while
	// preserving the locked aspect exactly.
	scale := math.Max(propW/orig.W, propH/orig.H)
	minScale := annotation.MinImageSize / math.Min(orig.W, orig.H)
	if scale < minScale {
		scale = minScale
	}
	w := orig.W * scale
	h := w / e.resizeAspect

	x, y := anchorX, anchorY
	switch e.resizeCorner {
	case hittest.CornerNW:
		x, y = anchorX-w, anchorY-h
	case hittest.CornerNE:
		y = anchorY - h
	case hittest.CornerSW:
		x = anchorX - w
	}
	e.Store.SetBounds(orig.ID, x, y, w, h)
}

// CommitText confirms the text overlay; empty text cancels instead of
// committing.
func (e *Editor) CommitText() {
	if e.text == nil {
		return
	}
	entry := *e.text
	e.text = nil
	if entry.Buffer == "" {
		e.Store.notify()
		return
	}
	e.Store.Add(annotation.NewText(e.Color, entry.Buffer, entry.X, entry.Y, DefaultFontSize, e.User))
}

// PlaceImage adds an image embed with its top-left at the document-space
// point and the given natural size. Used by the picker, drag-and-drop
// and clipboard paste.
func (e *Editor) PlaceImage(src string, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	a := annotation.NewImage(src, x, y, w, h, e.User)
	e.Store.Add(a)
	e.selected = a.ID
	e.tool = ToolSelect
}

// DeleteSelected removes the selected annotation (floating toolbar
// delete action).
func (e *Editor) DeleteSelected() {
	if e.selected == "" {
		return
	}
	e.Store.Remove(e.selected)
	e.selected = ""
}

// BeginCrop opens the crop sub-editor over a copy of the selected image.
func (e *Editor) BeginCrop() {
	img, ok := e.SelectedImage()
	if !ok {
		return
	}
	e.crop = NewCropEditor(img)
	e.Store.notify()
}

// CancelCrop discards the crop working copy without mutating anything.
func (e *Editor) CancelCrop() {
	e.crop = nil
	e.Store.notify()
}
