package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/stroke"
	"github.com/example/moleskine/internal/theme"
	"github.com/example/moleskine/internal/viewport"
)

// Highlighter fill opacity, and the dimmer variant under eraser hover.
const (
	highlighterAlpha      = 76 // 0.3
	highlighterFadedAlpha = 38 // 0.15
)

const handleSize = 8

var annotationFont *opentype.Font

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	annotationFont = f
}

// Software rasterises documents onto *image.RGBA. One instance per window
// or export run; the image and font-face caches are not safe for
// concurrent use.
type Software struct {
	Theme *theme.Theme

	// LoadImage resolves an image annotation src to pixels. Defaults to
	// LoadImageSource.
	LoadImage func(src string) (image.Image, error)

	images map[string]image.Image
	failed map[string]bool
	faces  map[int]font.Face
}

// NewSoftware returns a software renderer using the given theme for
// chrome colors (nil falls back to the default theme).
func NewSoftware(th *theme.Theme) *Software {
	if th == nil {
		th = theme.Default()
	}
	return &Software{
		Theme:     th,
		LoadImage: LoadImageSource,
		images:    map[string]image.Image{},
		failed:    map[string]bool{},
		faces:     map[int]font.Face{},
	}
}

var _ Renderer = (*Software)(nil)

// DrawBackground implements Renderer.
func (r *Software) DrawBackground(dst *image.RGBA, artifact image.Image, vp *viewport.Viewport) {
	drawCheckerboard(dst, dst.Bounds(), 8, r.Theme.CheckerLight, r.Theme.CheckerDark)
	if artifact == nil {
		return
	}
	b := artifact.Bounds()
	min := vp.ToScreen(viewport.Point{})
	max := vp.ToScreen(viewport.Point{X: float64(b.Dx()), Y: float64(b.Dy())})
	target := image.Rect(int(min.X), int(min.Y), int(max.X), int(max.Y))
	xdraw.NearestNeighbor.Scale(dst, target, artifact, b, draw.Over, nil)
}

// DrawAnnotation implements Renderer.
func (r *Software) DrawAnnotation(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	switch a.Kind {
	case annotation.KindPen, annotation.KindHighlighter:
		r.drawStroke(dst, a, vp, st)
	case annotation.KindRectangle:
		r.drawRectangle(dst, a, vp, st)
	case annotation.KindCircle:
		r.drawCircle(dst, a, vp, st)
	case annotation.KindArrow:
		r.drawArrow(dst, a, vp, st)
	case annotation.KindText:
		r.drawText(dst, a, vp, st)
	case annotation.KindImage:
		r.drawImage(dst, a, vp, st)
	}
	if st.Selected {
		r.drawSelection(dst, a, vp)
	}
}

func (r *Software) drawStroke(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	opts := stroke.ForKind(a.Kind, a.StrokeWidth, a.Points)
	outline := stroke.Outline(a.Points, opts)
	if len(outline) < 3 {
		return
	}
	xs := make([]float64, len(outline))
	ys := make([]float64, len(outline))
	for i, p := range outline {
		s := vp.ToScreen(viewport.Point{X: p.X, Y: p.Y})
		xs[i] = s.X
		ys[i] = s.Y
	}
	col := r.annotationColor(a, st)
	if a.Kind == annotation.KindHighlighter {
		col.A = highlighterAlpha
		if st.Faded {
			col.A = highlighterFadedAlpha
		}
	}
	fillPolygon(dst, xs, ys, col)
}

func (r *Software) drawRectangle(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	rect := r.shapeRect(a, vp)
	drawRectOutline(dst, rect, r.annotationColor(a, st), r.screenWidth(a.StrokeWidth, vp))
}

func (r *Software) drawCircle(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	rect := r.shapeRect(a, vp)
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	drawEllipse(dst, cx, cy, rect.Dx()/2, rect.Dy()/2, r.annotationColor(a, st), r.screenWidth(a.StrokeWidth, vp))
}

func (r *Software) drawArrow(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	p0 := vp.ToScreen(viewport.Point{X: a.X1, Y: a.Y1})
	p1 := vp.ToScreen(viewport.Point{X: a.X2, Y: a.Y2})
	drawArrow(dst, int(p0.X), int(p0.Y), int(p1.X), int(p1.Y), r.annotationColor(a, st), r.screenWidth(a.StrokeWidth, vp))
}

func (r *Software) drawText(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	size := a.FontSize * vp.Scale
	face := r.face(size)
	anchor := vp.ToScreen(viewport.Point{X: a.X, Y: a.Y})
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.annotationColor(a, st)), Face: face}
	lineHeight := size * 1.2
	for i, line := range strings.Split(a.Text, "\n") {
		d.Dot = fixed.P(int(anchor.X), int(anchor.Y+float64(i)*lineHeight))
		d.DrawString(line)
	}
}

func (r *Software) drawImage(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport, st State) {
	min := vp.ToScreen(viewport.Point{X: a.X, Y: a.Y})
	max := vp.ToScreen(viewport.Point{X: a.X + a.W, Y: a.Y + a.H})
	target := image.Rect(int(min.X), int(min.Y), int(max.X), int(max.Y))

	img := r.resolveImage(a.Src)
	if img == nil {
		// Missing source: placeholder so the box stays manipulable.
		drawDashedRect(dst, target, 4, 1, color.RGBA{128, 128, 128, 255}, color.RGBA{200, 200, 200, 255})
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{128, 128, 128, 255}), Face: basicfont.Face7x13,
			Dot: fixed.P(target.Min.X+4, target.Min.Y+16)}
		d.DrawString("image unavailable")
		return
	}
	op := draw.Op(draw.Over)
	if st.Faded {
		mask := image.NewUniform(color.Alpha{A: 128})
		tmp := image.NewRGBA(target)
		xdraw.ApproxBiLinear.Scale(tmp, target, img, img.Bounds(), draw.Src, nil)
		draw.DrawMask(dst, target, tmp, target.Min, mask, image.Point{}, op)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, target, img, img.Bounds(), op, nil)
}

func (r *Software) drawSelection(dst *image.RGBA, a *annotation.Annotation, vp *viewport.Viewport) {
	minX, minY, maxX, maxY := a.Box()
	p0 := vp.ToScreen(viewport.Point{X: minX, Y: minY})
	p1 := vp.ToScreen(viewport.Point{X: maxX, Y: maxY})
	box := image.Rect(int(p0.X), int(p0.Y), int(p1.X), int(p1.Y)).Inset(-2)
	drawDashedRect(dst, box, 4, 1, color.White, color.Black)
	if a.Kind != annotation.KindImage {
		return
	}
	hs := handleSize / 2
	for _, c := range []image.Point{
		{box.Min.X, box.Min.Y}, {box.Max.X, box.Min.Y},
		{box.Min.X, box.Max.Y}, {box.Max.X, box.Max.Y},
	} {
		hr := image.Rect(c.X-hs, c.Y-hs, c.X+hs, c.Y+hs)
		draw.Draw(dst, hr, image.White, image.Point{}, draw.Src)
		drawRectOutline(dst, hr, color.Black, 1)
	}
}

// DrawOverlay implements Renderer.
func (r *Software) DrawOverlay(dst *image.RGBA, ov Overlay, vp *viewport.Viewport) {
	if ov.Drawing != nil {
		r.DrawAnnotation(dst, ov.Drawing, vp, State{})
	}
	if ov.CropRect != nil {
		c := ov.CropRect
		p0 := vp.ToScreen(viewport.Point{X: c.X, Y: c.Y})
		p1 := vp.ToScreen(viewport.Point{X: c.X + c.W, Y: c.Y + c.H})
		rect := image.Rect(int(p0.X), int(p0.Y), int(p1.X), int(p1.Y))
		drawDashedRect(dst, rect, 4, 2, color.White, color.Black)
		hs := handleSize / 2
		for _, c := range []image.Point{
			{rect.Min.X, rect.Min.Y}, {rect.Max.X, rect.Min.Y},
			{rect.Min.X, rect.Max.Y}, {rect.Max.X, rect.Max.Y},
		} {
			hr := image.Rect(c.X-hs, c.Y-hs, c.X+hs, c.Y+hs)
			draw.Draw(dst, hr, image.White, image.Point{}, draw.Src)
			drawRectOutline(dst, hr, color.Black, 1)
		}
	}
	if ov.TextCaret != nil {
		t := ov.TextCaret
		face := r.face(t.FontSize * vp.Scale)
		anchor := vp.ToScreen(viewport.Point{X: t.X, Y: t.Y})
		col, err := ParseColor(t.Color)
		if err != nil {
			col = color.RGBA{0, 0, 0, 255}
		}
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
		lineHeight := t.FontSize * vp.Scale * 1.2
		lines := strings.Split(t.Text, "\n")
		for i, line := range lines {
			text := line
			if i == len(lines)-1 {
				text += "|"
			}
			d.Dot = fixed.P(int(anchor.X), int(anchor.Y+float64(i)*lineHeight))
			d.DrawString(text)
		}
	}
}

func (r *Software) shapeRect(a *annotation.Annotation, vp *viewport.Viewport) image.Rectangle {
	p0 := vp.ToScreen(viewport.Point{X: a.X1, Y: a.Y1})
	p1 := vp.ToScreen(viewport.Point{X: a.X2, Y: a.Y2})
	return image.Rect(int(p0.X), int(p0.Y), int(p1.X), int(p1.Y))
}

func (r *Software) screenWidth(w float64, vp *viewport.Viewport) int {
	sw := int(math.Round(w * vp.Scale))
	if sw < 1 {
		sw = 1
	}
	return sw
}

// annotationColor returns the fill color as non-premultiplied NRGBA so
// translucent fills blend correctly under draw.Over.
func (r *Software) annotationColor(a *annotation.Annotation, st State) color.NRGBA {
	parsed, err := ParseColor(a.Color)
	if err != nil {
		parsed = color.RGBA{0, 0, 0, 255}
	}
	col := color.NRGBA{R: parsed.R, G: parsed.G, B: parsed.B, A: parsed.A}
	if st.Faded && a.Kind != annotation.KindHighlighter {
		col.A = 128
	}
	return col
}

func (r *Software) face(pixelSize float64) font.Face {
	size := int(math.Round(pixelSize))
	if size < 4 {
		size = 4
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(annotationFont, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("font face %d: %v", size, err)
		return basicfont.Face7x13
	}
	r.faces[size] = f
	return f
}

func (r *Software) resolveImage(src string) image.Image {
	if img, ok := r.images[src]; ok {
		return img
	}
	if r.failed[src] {
		return nil
	}
	img, err := r.LoadImage(src)
	if err != nil {
		log.Printf("load image %q: %v", truncateSrc(src), err)
		r.failed[src] = true
		return nil
	}
	r.images[src] = img
	return img
}

func truncateSrc(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}

// ParseColor parses a #RRGGBB or #RRGGBBAA annotation color.
func ParseColor(s string) (color.RGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 16),
			G: uint8((val >> 8) & 0xFF),
			B: uint8(val & 0xFF),
			A: 255,
		}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{
			R: uint8(val >> 24),
			G: uint8((val >> 16) & 0xFF),
			B: uint8((val >> 8) & 0xFF),
			A: uint8(val & 0xFF),
		}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}
