package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/moleskine/internal/editor"
	"github.com/example/moleskine/internal/render"
	"github.com/example/moleskine/internal/theme"
)

const (
	titleHeight  = 24
	bottomHeight = 24
)

// toolbarWidth grows at startup to fit the widest button label.
var toolbarWidth = 56

// swatches is the quick-pick color row shown under the tool buttons.
var swatches = []string{
	"#d92626", // red
	"#2563eb", // blue
	"#16a34a", // green
	"#eab308", // yellow
	"#111111", // black
}

// widthPresets are the stroke widths reachable from the toolbar and the
// [ / ] shortcuts, in document units.
var widthPresets = []float64{1, 2, 4, 8}

type toolEntry struct {
	label string
	tool  editor.Tool
}

var toolEntries = []toolEntry{
	{"V:Select", editor.ToolSelect},
	{"P:Pen", editor.ToolPen},
	{"H:High", editor.ToolHighlighter},
	{"R:Rect", editor.ToolRectangle},
	{"C:Circle", editor.ToolCircle},
	{"A:Arrow", editor.ToolArrow},
	{"T:Text", editor.ToolText},
	{"I:Image", editor.ToolImage},
	{"E:Erase", editor.ToolEraser},
}

// ButtonState describes the visual state of a toolbar element.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// shortcut is one clickable label in the bottom bar.
type shortcut struct {
	label  string
	action string
	rect   image.Rectangle
}

// chrome holds the toolbar layout and hover state for one window. It is
// rebuilt lazily and queried by both the painter and the mouse handler.
type chrome struct {
	theme *theme.Theme

	swatchColors []color.RGBA

	toolRects   []image.Rectangle
	swatchRects []image.Rectangle
	widthRects  []image.Rectangle
	shortcuts   []shortcut

	hoverTool     int
	hoverSwatch   int
	hoverWidth    int
	hoverShortcut int
}

func newChrome(th *theme.Theme) *chrome {
	if th == nil {
		th = theme.Default()
	}
	c := &chrome{theme: th, hoverTool: -1, hoverSwatch: -1, hoverWidth: -1, hoverShortcut: -1}
	for _, hex := range swatches {
		col, err := render.ParseColor(hex)
		if err != nil {
			col = color.RGBA{A: 255}
		}
		c.swatchColors = append(c.swatchColors, col)
	}

	// Widen the toolbar to fit the longest label so nothing clips.
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, te := range toolEntries {
		if w := d.MeasureString(te.label).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}
	return c
}

func (c *chrome) clearHover() {
	c.hoverTool = -1
	c.hoverSwatch = -1
	c.hoverWidth = -1
	c.hoverShortcut = -1
}

// layout recomputes the clickable rectangles for the current window size.
func (c *chrome) layout(width, height int) {
	c.toolRects = c.toolRects[:0]
	y := titleHeight
	for range toolEntries {
		c.toolRects = append(c.toolRects, image.Rect(0, y, toolbarWidth, y+24))
		y += 24
	}
	y += 4
	c.swatchRects = c.swatchRects[:0]
	x := 4
	for range swatches {
		c.swatchRects = append(c.swatchRects, image.Rect(x, y, x+16, y+16))
		x += 18
		if x+16 > toolbarWidth {
			x = 4
			y += 18
		}
	}
	y += 18 + 4
	c.widthRects = c.widthRects[:0]
	for range widthPresets {
		c.widthRects = append(c.widthRects, image.Rect(0, y, toolbarWidth, y+16))
		y += 16
	}
}

func (c *chrome) buttonFill(st ButtonState) color.RGBA {
	switch st {
	case StateHover:
		return c.theme.ButtonBackgroundHover
	case StatePressed:
		return c.theme.ButtonBackgroundPress
	default:
		return c.theme.ButtonBackground
	}
}

func (c *chrome) buttonText(st ButtonState) color.RGBA {
	switch st {
	case StateHover:
		return c.theme.ButtonTextHover
	case StatePressed:
		return c.theme.ButtonTextPress
	default:
		return c.theme.ButtonText
	}
}

// drawTitle paints the window title bar with the document name and a
// dirty marker.
func (c *chrome) drawTitle(dst *image.RGBA, width int, doc string, dirty bool) {
	draw.Draw(dst, image.Rect(0, 0, width, titleHeight),
		&image.Uniform{c.theme.TabBackground}, image.Point{}, draw.Src)
	label := "Moleskine"
	if doc != "" {
		label += " - " + doc
	}
	if dirty {
		label += " *"
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.theme.TabText), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	d.DrawString(label)
}

// drawToolbar paints the tool buttons, color swatches and width presets
// down the left edge.
func (c *chrome) drawToolbar(dst *image.RGBA, height int, tool editor.Tool, activeColor string, activeWidth float64) {
	draw.Draw(dst, image.Rect(0, titleHeight, toolbarWidth, height-bottomHeight),
		&image.Uniform{c.theme.ToolbarBackground}, image.Point{}, draw.Src)

	for i, te := range toolEntries {
		st := StateDefault
		if te.tool == tool {
			st = StatePressed
		} else if i == c.hoverTool {
			st = StateHover
		}
		r := c.toolRects[i]
		draw.Draw(dst, r, &image.Uniform{c.buttonFill(st)}, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.buttonText(st)), Face: basicfont.Face7x13,
			Dot: fixed.P(r.Min.X+4, r.Min.Y+16)}
		d.DrawString(te.label)
	}

	for i, col := range c.swatchColors {
		r := c.swatchRects[i]
		draw.Draw(dst, r, &image.Uniform{col}, image.Point{}, draw.Src)
		if i == c.hoverSwatch {
			draw.Draw(dst, r, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if swatches[i] == activeColor {
			drawBorder(dst, r, color.White)
		}
	}

	for i, wd := range widthPresets {
		r := c.widthRects[i]
		fill := c.theme.ButtonBackground
		if wd == activeWidth {
			fill = c.theme.ButtonBackgroundPress
		} else if i == c.hoverWidth {
			fill = c.theme.ButtonBackgroundHover
		}
		draw.Draw(dst, r, &image.Uniform{fill}, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.theme.ButtonText), Face: basicfont.Face7x13,
			Dot: fixed.P(4, r.Min.Y+12)}
		d.DrawString(fmt.Sprintf("%g", wd))
		lineY := r.Min.Y + 8
		col := color.RGBA{A: 255}
		if parsed, err := render.ParseColor(activeColor); err == nil {
			col = parsed
		}
		for t := 0; t < int(wd); t++ {
			for x := 30; x < toolbarWidth-4; x++ {
				dst.Set(x, lineY+t-int(wd)/2, col)
			}
		}
	}
}

// drawShortcuts paints the clickable shortcut bar along the bottom edge
// and records the hit rectangles.
func (c *chrome) drawShortcuts(dst *image.RGBA, width, height int, entries []shortcut, zoom float64) {
	rect := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{c.theme.ToolbarBackground}, image.Point{}, draw.Src)

	c.shortcuts = c.shortcuts[:0]
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	all := append([]shortcut{
		{label: "+:in", action: "zoomin"},
		{label: "-:out", action: "zoomout"},
		{label: fmt.Sprintf("%.0f%%", zoom*100)},
	}, entries...)
	for i := range all {
		sc := all[i]
		w := meas.MeasureString(sc.label).Ceil()
		sc.rect = image.Rect(x-2, y-14, x+w+2, y+4)
		st := StateDefault
		if i == c.hoverShortcut {
			st = StateHover
		}
		draw.Draw(dst, sc.rect, &image.Uniform{c.buttonFill(st)}, image.Point{}, draw.Src)
		drawBorder(dst, sc.rect, c.theme.ButtonBorder)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.buttonText(st)), Face: basicfont.Face7x13,
			Dot: fixed.P(sc.rect.Min.X+2, sc.rect.Min.Y+14)}
		d.DrawString(sc.label)
		c.shortcuts = append(c.shortcuts, sc)
		x = sc.rect.Max.X + 8
	}
}

func drawBorder(dst *image.RGBA, r image.Rectangle, col color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, col)
		dst.Set(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, col)
		dst.Set(r.Max.X-1, y, col)
	}
}
