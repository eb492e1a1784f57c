package ui

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/editor"
	"github.com/example/moleskine/internal/render"
	"github.com/example/moleskine/internal/viewport"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// paintState is an immutable copy of everything one frame needs, taken on
// the event goroutine so the painter never reads live editor state.
type paintState struct {
	width, height int
	vp            viewport.Viewport

	annotations []annotation.Annotation
	selected    string
	hovered     string
	overlay     render.Overlay

	tool        editor.Tool
	activeColor string
	activeWidth float64
	docLabel    string
	dirty       bool

	shortcuts    []shortcut
	message      string
	messageUntil time.Time
}

func (s *Shell) drawFrame(ctx context.Context, scr screen.Screen, w screen.Window, st paintState) {
	b, err := scr.NewBuffer(image.Point{X: st.width, Y: st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	vp := st.vp
	s.renderer.DrawBackground(b.RGBA(), s.artifact, &vp)
	if ctx.Err() != nil {
		return
	}

	for i := range st.annotations {
		a := &st.annotations[i]
		s.renderer.DrawAnnotation(b.RGBA(), a, &vp, render.State{
			Selected: a.ID == st.selected,
			Faded:    a.ID == st.hovered,
		})
		if ctx.Err() != nil {
			return
		}
	}

	s.renderer.DrawOverlay(b.RGBA(), st.overlay, &vp)
	if ctx.Err() != nil {
		return
	}

	s.chrome.drawTitle(b.RGBA(), st.width, st.docLabel, st.dirty)
	s.chrome.drawToolbar(b.RGBA(), st.height, st.tool, st.activeColor, st.activeWidth)
	s.chrome.drawShortcuts(b.RGBA(), st.width, st.height, st.shortcuts, vp.Scale)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(b.RGBA(), st.width, st.height, st.message)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawMessage(dst *image.RGBA, width, height int, msg string) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13}
	w := d.MeasureString(msg).Ceil()
	px := (width - w) / 2
	py := height - bottomHeight - 24
	rect := image.Rect(px-8, py-18, px+w+8, py+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawBorder(dst, rect, color.Black)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}
