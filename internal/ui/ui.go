// Package ui hosts the annotation editor in a shiny window: event loop,
// toolbar chrome and the paint pipeline. All document mutations route
// through the editor package; the shell owns no annotation state.
package ui

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/moleskine/internal/clipboard"
	"github.com/example/moleskine/internal/docstore"
	"github.com/example/moleskine/internal/editor"
	"github.com/example/moleskine/internal/export"
	"github.com/example/moleskine/internal/notify"
	"github.com/example/moleskine/internal/render"
	"github.com/example/moleskine/internal/theme"
	"github.com/example/moleskine/internal/viewport"
)

// saveRequest is posted onto the window's event queue when the autosave
// debounce elapses, so the save itself runs on the event goroutine.
type saveRequest struct{}

// Shell wires the editor core to a shiny window.
type Shell struct {
	editor   *editor.Editor
	session  *editor.Session
	renderer *render.Software
	chrome   *chrome

	notifier *notify.Notifier
	blobs    docstore.BlobStore
	artifact image.Image
	docLabel string

	updateCh chan struct{}
}

// Option modifies a Shell during creation.
type Option func(*Shell)

// WithNotifier routes save/export/failure events to desktop
// notifications.
func WithNotifier(n *notify.Notifier) Option { return func(s *Shell) { s.notifier = n } }

// WithBlobs sets the blob store used for pasted images and crop results.
// Without one, image bytes are inlined as data URIs.
func WithBlobs(b docstore.BlobStore) Option { return func(s *Shell) { s.blobs = b } }

// WithLabel sets the document name shown in the title bar and
// notifications.
func WithLabel(label string) Option { return func(s *Shell) { s.docLabel = label } }

// New creates a shell for one editing session. artifact may be nil when
// the document has no backing image.
func New(ed *editor.Editor, sess *editor.Session, th *theme.Theme, artifact image.Image, opts ...Option) *Shell {
	s := &Shell{
		editor:   ed,
		session:  sess,
		renderer: render.NewSoftware(th),
		chrome:   newChrome(th),
		artifact: artifact,
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes the UI loop using shiny's driver. It blocks until the
// window closes.
func (s *Shell) Run() { driver.Main(s.Main) }

func (s *Shell) Main(scr screen.Screen) {
	ed := s.editor
	sess := s.session
	vp := ed.Viewport

	artW, artH := sess.CanvasWidth, sess.CanvasHeight
	if s.artifact != nil {
		artW = s.artifact.Bounds().Dx()
		artH = s.artifact.Bounds().Dy()
	}
	width := artW + toolbarWidth
	height := artH + titleHeight + bottomHeight
	if width < 640 {
		width = 640
	}
	if height < 400 {
		height = 400
	}

	w, err := scr.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Moleskine"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	ctx := context.Background()

	// Store changes repaint; the channel coalesces bursts.
	ed.Store.SetOnChange(func() {
		select {
		case s.updateCh <- struct{}{}:
		default:
		}
	})
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-s.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	sess.RequestSave = func() { w.Send(saveRequest{}) }
	sess.OnSaveError = func(err error) {
		log.Printf("save %s: %v", s.docLabel, err)
		if s.notifier != nil {
			s.notifier.UploadFailure(s.docLabel)
		}
	}

	var (
		message      string
		messageUntil time.Time
		mouseDown    bool
		spaceHeld    bool
		confirmQuit  bool
		confirmClear bool
		paintMu      sync.Mutex
		paintCancel  context.CancelFunc
		dropCount    int
	)

	showMessage := func(msg string) {
		message = msg
		log.Print(msg)
		messageUntil = time.Now().Add(2 * time.Second)
		w.Send(paint.Event{})
	}

	ed.OnPickImage = func() { showMessage("paste an image with Ctrl+V") }

	fitView := func() {
		vp.FitToView(float64(artW), float64(artH),
			float64(width-toolbarWidth), float64(height-titleHeight-bottomHeight))
		vp.Offset.X += float64(toolbarWidth)
		vp.Offset.Y += float64(titleHeight)
	}
	fitView()
	s.chrome.layout(width, height)

	canvasCenter := func() viewport.Point {
		return viewport.Point{
			X: float64(toolbarWidth) + float64(width-toolbarWidth)/2,
			Y: float64(titleHeight) + float64(height-titleHeight-bottomHeight)/2,
		}
	}

	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			fctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			s.drawFrame(fctx, scr, w, st)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	shutdown := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	saveNow := func() {
		if err := sess.SaveNow(ctx); err != nil {
			showMessage("save failed; changes kept locally")
			return
		}
		if s.notifier != nil {
			s.notifier.Save(s.docLabel)
		}
	}

	setWidth := func(delta int) {
		idx := 0
		for i, wd := range widthPresets {
			if wd == ed.Width {
				idx = i
				break
			}
		}
		idx += delta
		if idx < 0 {
			idx = 0
		}
		if idx >= len(widthPresets) {
			idx = len(widthPresets) - 1
		}
		ed.Width = widthPresets[idx]
		w.Send(paint.Event{})
	}

	actions := map[string]func(){}
	doAction := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}
	actions["save"] = saveNow
	actions["undo"] = ed.Store.Undo
	actions["redo"] = ed.Store.Redo
	actions["paste"] = func() { s.pasteImage(canvasCenter(), showMessage) }
	actions["copy"] = func() { s.copyFlattened(showMessage) }
	actions["crop"] = ed.BeginCrop
	actions["remove"] = ed.DeleteSelected
	actions["apply"] = func() { s.confirmCrop(showMessage) }
	actions["cancel"] = func() {
		if ed.Crop() != nil {
			ed.CancelCrop()
			return
		}
		ed.CancelInteraction()
	}
	actions["zoomin"] = func() {
		vp.ZoomStep(canvasCenter(), viewport.ButtonStep)
	}
	actions["zoomout"] = func() {
		vp.ZoomStep(canvasCenter(), -viewport.ButtonStep)
	}
	actions["export"] = func() { s.exportFlattened(showMessage) }
	actions["clear"] = func() {
		if len(ed.Store.Snapshot()) == 0 {
			return
		}
		if !confirmClear {
			confirmClear = true
			showMessage("clear all annotations? Clear again confirms, Esc keeps them")
			return
		}
		confirmClear = false
		ed.Store.ClearAll()
	}
	actions["textdone"] = ed.CommitText
	actions["textcancel"] = ed.CancelInteraction

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case saveRequest:
			if err := sess.SaveNow(ctx); err != nil {
				// OnSaveError already notified; retried on next commit.
				continue
			}
			w.Send(paint.Event{})

		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				shutdown()
				return
			}

		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			s.chrome.layout(width, height)
			w.Send(paint.Event{})

		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()

			ov := render.Overlay{}
			if d := ed.Drawing(); d != nil {
				c := d.Clone()
				ov.Drawing = &c
			}
			if cr := ed.Crop(); cr != nil {
				x, y, cw, ch := cr.Bounds()
				ov.CropRect = &render.CropRect{X: x, Y: y, W: cw, H: ch}
			}
			if t := ed.Text(); t != nil {
				ov.TextCaret = &render.TextCaret{
					X: t.X, Y: t.Y, Text: t.Buffer,
					FontSize: editor.DefaultFontSize, Color: ed.Color,
				}
			}

			st := paintState{
				width:        width,
				height:       height,
				vp:           *vp,
				annotations:  ed.Store.Snapshot(),
				selected:     ed.Selected(),
				hovered:      ed.Hovered(),
				overlay:      ov,
				tool:         ed.Tool(),
				activeColor:  ed.Color,
				activeWidth:  ed.Width,
				docLabel:     s.docLabel,
				dirty:        ed.Store.Dirty(),
				shortcuts:    shortcutEntries(ed),
				message:      message,
				messageUntil: messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}

		case mouse.Event:
			pt := viewport.Point{X: float64(e.X), Y: float64(e.Y)}

			if e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown {
				factor := viewport.WheelIn
				if e.Button == mouse.ButtonWheelDown {
					factor = viewport.WheelOut
				}
				vp.ZoomAt(pt, factor)
				w.Send(paint.Event{})
				continue
			}

			if int(e.Y) >= height-bottomHeight {
				s.chrome.hoverShortcut = -1
				p := image.Point{X: int(e.X), Y: int(e.Y)}
				for i, sc := range s.chrome.shortcuts {
					if p.In(sc.rect) {
						s.chrome.hoverShortcut = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							if sc.action == "quit" {
								if !ed.Store.Dirty() {
									shutdown()
									return
								}
								if !confirmQuit {
									confirmQuit = true
									showMessage("unsaved changes: Q saves and closes, D discards, Esc keeps editing")
								}
								break
							}
							doAction(sc.action)
						}
						break
					}
				}
				if e.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}

			if int(e.X) < toolbarWidth && int(e.Y) >= titleHeight {
				s.toolbarMouse(e)
				w.Send(paint.Event{})
				continue
			}
			s.chrome.clearHover()

			switch e.Direction {
			case mouse.DirPress:
				if e.Button != mouse.ButtonLeft {
					continue
				}
				if message != "" && time.Now().Before(messageUntil) {
					messageUntil = time.Time{}
					w.Send(paint.Event{})
				}
				mouseDown = true
				if ed.Crop() != nil {
					s.cropPointerDown(pt)
				} else {
					ed.PointerDown(pt)
				}
			case mouse.DirNone:
				if ed.Crop() != nil && mouseDown {
					s.cropPointerMove(pt)
					w.Send(paint.Event{})
				} else {
					ed.PointerMove(pt)
				}
			case mouse.DirRelease:
				if e.Button != mouse.ButtonLeft {
					continue
				}
				mouseDown = false
				if c := ed.Crop(); c != nil {
					c.End()
				} else {
					ed.PointerUp(pt)
				}
			}

		case key.Event:
			if e.Code == key.CodeSpacebar {
				if e.Direction == key.DirPress && !spaceHeld && ed.Text() == nil {
					spaceHeld = true
					ed.HoldPan()
				} else if e.Direction == key.DirRelease && spaceHeld {
					spaceHeld = false
					ed.ReleasePan()
				}
				continue
			}
			if e.Direction != key.DirPress {
				continue
			}

			if t := ed.Text(); t != nil {
				switch e.Code {
				case key.CodeReturnEnter:
					if e.Modifiers&key.ModShift != 0 {
						t.Buffer += "\n"
					} else {
						ed.CommitText()
					}
					w.Send(paint.Event{})
					continue
				case key.CodeEscape:
					ed.CancelInteraction()
					continue
				case key.CodeDeleteBackspace:
					if len(t.Buffer) > 0 {
						t.Buffer = t.Buffer[:len(t.Buffer)-1]
						w.Send(paint.Event{})
					}
					continue
				}
				if e.Rune > 0 {
					t.Buffer += string(e.Rune)
					w.Send(paint.Event{})
				}
				continue
			}

			if e.Modifiers&key.ModControl != 0 {
				switch unicode.ToLower(e.Rune) {
				case 'z':
					if e.Modifiers&key.ModShift != 0 {
						doAction("redo")
					} else {
						doAction("undo")
					}
				case 'y':
					doAction("redo")
				case 's':
					doAction("save")
				case 'v':
					doAction("paste")
				case 'c':
					doAction("copy")
				}
				confirmQuit = false
				confirmClear = false
				continue
			}

			if ed.Crop() != nil {
				switch e.Code {
				case key.CodeReturnEnter:
					doAction("apply")
				case key.CodeEscape:
					doAction("cancel")
				}
				continue
			}

			switch e.Code {
			case key.CodeEscape:
				ed.CancelInteraction()
				confirmQuit = false
				confirmClear = false
				continue
			case key.CodeDeleteBackspace, key.CodeDeleteForward:
				doAction("remove")
				continue
			}

			switch unicode.ToLower(e.Rune) {
			case 'v':
				ed.SetTool(editor.ToolSelect)
			case 'p':
				ed.SetTool(editor.ToolPen)
			case 'h':
				ed.SetTool(editor.ToolHighlighter)
			case 'r':
				ed.SetTool(editor.ToolRectangle)
			case 'c':
				ed.SetTool(editor.ToolCircle)
			case 'a':
				ed.SetTool(editor.ToolArrow)
			case 't':
				ed.SetTool(editor.ToolText)
			case 'i':
				ed.SetTool(editor.ToolImage)
			case 'e':
				ed.SetTool(editor.ToolEraser)
			case 'x':
				doAction("crop")
			case '[':
				setWidth(-1)
			case ']':
				setWidth(+1)
			case '+', '=':
				vp.ZoomStep(canvasCenter(), viewport.KeyStep)
				w.Send(paint.Event{})
			case '-':
				vp.ZoomStep(canvasCenter(), -viewport.KeyStep)
				w.Send(paint.Event{})
			case '0':
				fitView()
				w.Send(paint.Event{})
			case 'd':
				if confirmQuit {
					if ok, _ := sess.Close(ctx, editor.CloseDiscard); ok {
						shutdown()
						return
					}
				}
				confirmQuit = false
			case 'q':
				if !ed.Store.Dirty() {
					if ok, _ := sess.Close(ctx, editor.CloseKeepEditing); ok {
						shutdown()
						return
					}
					continue
				}
				if !confirmQuit {
					confirmQuit = true
					showMessage("unsaved changes: Q saves and closes, D discards, Esc keeps editing")
					continue
				}
				confirmQuit = false
				ok, err := sess.Close(ctx, editor.CloseSaveAndClose)
				if err != nil {
					showMessage("save failed; still editing")
					continue
				}
				if ok {
					if s.notifier != nil {
						s.notifier.Save(s.docLabel)
					}
					shutdown()
					return
				}
			default:
				confirmQuit = false
				confirmClear = false
			}
		}
	}
}

// shortcutEntries lists the bottom-bar buttons for the editor's current
// interaction state.
func shortcutEntries(ed *editor.Editor) []shortcut {
	entries := []shortcut{
		{label: "^S:save", action: "save"},
		{label: "^Z:undo", action: "undo"},
		{label: "^Y:redo", action: "redo"},
		{label: "^V:paste", action: "paste"},
		{label: "^C:copy", action: "copy"},
		{label: "Export", action: "export"},
		{label: "Clear", action: "clear"},
		{label: "Q:quit", action: "quit"},
	}
	switch {
	case ed.Crop() != nil:
		entries = append(entries,
			shortcut{label: "Enter:apply", action: "apply"},
			shortcut{label: "Esc:cancel", action: "cancel"})
	case ed.Text() != nil:
		entries = append(entries,
			shortcut{label: "Enter:place", action: "textdone"},
			shortcut{label: "Esc:cancel", action: "textcancel"})
	default:
		if _, ok := ed.SelectedImage(); ok {
			entries = append(entries,
				shortcut{label: "X:crop", action: "crop"},
				shortcut{label: "Del:remove", action: "remove"})
		}
	}
	return entries
}

// toolbarMouse handles hover and clicks in the left toolbar column.
func (s *Shell) toolbarMouse(e mouse.Event) {
	c := s.chrome
	c.clearHover()
	p := image.Point{X: int(e.X), Y: int(e.Y)}
	press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress

	for i, r := range c.toolRects {
		if p.In(r) {
			c.hoverTool = i
			if press {
				s.editor.SetTool(toolEntries[i].tool)
			}
			return
		}
	}
	for i, r := range c.swatchRects {
		if p.In(r) {
			c.hoverSwatch = i
			if press {
				s.editor.Color = swatches[i]
			}
			return
		}
	}
	for i, r := range c.widthRects {
		if p.In(r) {
			c.hoverWidth = i
			if press {
				s.editor.Width = widthPresets[i]
			}
			return
		}
	}
}

// cropPointerDown begins a crop drag: a corner handle when the press is
// within handle range, otherwise a move when inside the rectangle.
func (s *Shell) cropPointerDown(screen viewport.Point) {
	c := s.editor.Crop()
	if c == nil {
		return
	}
	doc := s.editor.Viewport.ToDocument(screen)
	t := c.Target
	if t.W <= 0 || t.H <= 0 {
		return
	}
	px := (doc.X - t.X) / t.W * 100
	py := (doc.Y - t.Y) / t.H * 100
	tolX := 12 / s.editor.Viewport.Scale / t.W * 100
	tolY := 12 / s.editor.Viewport.Scale / t.H * 100

	r := c.Rect
	corners := []struct {
		mode editor.CropMode
		x, y float64
	}{
		{editor.CropNW, r.X, r.Y},
		{editor.CropNE, r.X + r.W, r.Y},
		{editor.CropSW, r.X, r.Y + r.H},
		{editor.CropSE, r.X + r.W, r.Y + r.H},
	}
	for _, corner := range corners {
		if math.Abs(px-corner.x) <= tolX && math.Abs(py-corner.y) <= tolY {
			c.Begin(corner.mode, px, py)
			return
		}
	}
	if px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H {
		c.Begin(editor.CropMove, px, py)
	}
}

func (s *Shell) cropPointerMove(screen viewport.Point) {
	c := s.editor.Crop()
	if c == nil || c.Mode() == editor.CropIdle {
		return
	}
	doc := s.editor.Viewport.ToDocument(screen)
	t := c.Target
	if t.W <= 0 || t.H <= 0 {
		return
	}
	c.Drag((doc.X-t.X)/t.W*100, (doc.Y-t.Y)/t.H*100)
}

// confirmCrop re-encodes the cropped region and applies it to the
// document as a single history commit.
func (s *Shell) confirmCrop(show func(string)) {
	c := s.editor.Crop()
	if c == nil {
		return
	}
	img, err := render.LoadImageSource(c.Target.Src)
	if err != nil {
		log.Printf("crop: load %q: %v", c.Target.ID, err)
		show("crop failed: image unavailable")
		return
	}
	region := c.Region(img.Bounds().Dx(), img.Bounds().Dy())
	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min.Add(region.Min), draw.Src)

	src, err := s.storeImage(out, fmt.Sprintf("crops/%s.png", c.Target.ID))
	if err != nil {
		log.Printf("crop: store: %v", err)
		show("crop failed: could not store image")
		return
	}
	s.editor.ConfirmCrop(src)
}

// pasteImage places the clipboard image as a new embed centered in the
// view at its natural size.
func (s *Shell) pasteImage(center viewport.Point, show func(string)) {
	img, err := clipboard.ReadImage()
	if err != nil {
		log.Printf("paste: %v", err)
		show("no image on the clipboard")
		return
	}
	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	src, err := s.storeImage(rgba, fmt.Sprintf("pastes/%d.png", time.Now().UnixNano()))
	if err != nil {
		log.Printf("paste: store: %v", err)
		show("paste failed: could not store image")
		return
	}
	doc := s.editor.Viewport.ToDocument(center)
	s.editor.PlaceImage(src, doc.X-w/2, doc.Y-h/2, w, h)
}

// copyFlattened writes the document, flattened over its artifact, to the
// system clipboard.
func (s *Shell) copyFlattened(show func(string)) {
	doc := &docstore.Document{
		Annotations:  s.editor.Store.Snapshot(),
		CanvasWidth:  s.session.CanvasWidth,
		CanvasHeight: s.session.CanvasHeight,
	}
	img, err := export.Raster(doc, s.artifact)
	if err != nil {
		log.Printf("copy: %v", err)
		return
	}
	if err := clipboard.WriteImage(img); err != nil {
		log.Printf("copy: %v", err)
		show("copy failed")
		return
	}
	show("image copied to clipboard")
}

// exportFlattened writes the document, flattened over its artifact, to a
// timestamped PNG in the working directory.
func (s *Shell) exportFlattened(show func(string)) {
	doc := &docstore.Document{
		Annotations:  s.editor.Store.Snapshot(),
		CanvasWidth:  s.session.CanvasWidth,
		CanvasHeight: s.session.CanvasHeight,
	}
	img, err := export.Raster(doc, s.artifact)
	if err != nil {
		log.Printf("export: %v", err)
		show("export failed")
		return
	}
	name := fmt.Sprintf("annotations-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		log.Printf("export: %v", err)
		show("export failed: could not create file")
		return
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		log.Printf("export: %v", err)
		show("export failed")
		return
	}
	if err := f.Close(); err != nil {
		log.Printf("export: %v", err)
		show("export failed")
		return
	}
	if s.notifier != nil {
		s.notifier.Export(name)
	}
	show("exported " + name)
}

// storeImage persists encoded pixels through the blob store, falling
// back to an inline data URI when no store is configured.
func (s *Shell) storeImage(img image.Image, path string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	if s.blobs != nil {
		return s.blobs.Put(buf.Bytes(), path)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
