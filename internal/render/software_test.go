package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/moleskine/internal/annotation"
	"github.com/example/moleskine/internal/viewport"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#d92626", color.RGBA{0xd9, 0x26, 0x26, 0xff}, false},
		{"#00ff0080", color.RGBA{0x00, 0xff, 0x00, 0x80}, false},
		{"d92626", color.RGBA{}, true},
		{"#xyz", color.RGBA{}, true},
		{"#1234", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFillPolygonCoversInterior(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	red := color.RGBA{255, 0, 0, 255}
	fillPolygon(dst, []float64{10, 30, 30, 10}, []float64{10, 10, 30, 30}, red)

	if got := dst.RGBAAt(20, 20); got != red {
		t.Fatalf("interior pixel = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(5, 5); got.A != 0 {
		t.Fatalf("exterior pixel touched: %v", got)
	}
	if got := dst.RGBAAt(35, 20); got.A != 0 {
		t.Fatalf("pixel right of polygon touched: %v", got)
	}
}

func TestFillPolygonTranslucentBlends(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			dst.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	fillPolygon(dst, []float64{0, 20, 20, 0}, []float64{0, 0, 20, 20},
		color.NRGBA{B: 255, A: highlighterAlpha})
	got := dst.RGBAAt(10, 10)
	if got.B != 255 {
		t.Fatalf("blue channel = %d, want 255", got.B)
	}
	// 0.3 alpha over white leaves the other channels bright, not black.
	if got.R < 150 || got.R > 200 {
		t.Fatalf("red channel = %d, want partial coverage of white", got.R)
	}
}

func TestDrawRectangleAnnotation(t *testing.T) {
	r := NewSoftware(nil)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	vp := viewport.New()
	a := annotation.NewShape(annotation.KindRectangle, "#ff0000", 2, 10, 10, "t")
	a.X2, a.Y2 = 60, 60
	r.DrawAnnotation(dst, &a, vp, State{})

	red := color.RGBA{255, 0, 0, 255}
	if got := dst.RGBAAt(30, 10); got != red {
		t.Fatalf("top edge pixel = %v, want %v", got, red)
	}
	if got := dst.RGBAAt(30, 30); got.A != 0 {
		t.Fatalf("rectangle interior filled: %v", got)
	}
}

func TestDrawStrokeFollowsViewportScale(t *testing.T) {
	r := NewSoftware(nil)
	a := annotation.NewStroke(annotation.KindPen, "#000000", 4, annotation.Point{X: 10, Y: 20}, "t")
	a.Points = append(a.Points,
		annotation.Point{X: 30, Y: 20},
		annotation.Point{X: 50, Y: 20},
	)

	vp := viewport.New()
	dst := image.NewRGBA(image.Rect(0, 0, 120, 60))
	r.DrawAnnotation(dst, &a, vp, State{})
	if dst.RGBAAt(30, 20).A == 0 {
		t.Fatal("stroke midpoint not rastered at 1:1")
	}

	vp.Scale = 2
	dst2 := image.NewRGBA(image.Rect(0, 0, 120, 60))
	r.DrawAnnotation(dst2, &a, vp, State{})
	if dst2.RGBAAt(60, 40).A == 0 {
		t.Fatal("stroke midpoint not rastered at 2x")
	}
	if dst2.RGBAAt(30, 20).A != 0 {
		t.Fatal("2x raster left ink at the 1:1 location")
	}
}

func TestDrawBackgroundCheckerAndArtifact(t *testing.T) {
	r := NewSoftware(nil)
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	artifact := image.NewRGBA(image.Rect(0, 0, 16, 16))
	blue := color.RGBA{0, 0, 255, 255}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			artifact.SetRGBA(x, y, blue)
		}
	}
	vp := viewport.New()
	vp.Offset = viewport.Point{X: 20, Y: 20}
	r.DrawBackground(dst, artifact, vp)

	if got := dst.RGBAAt(28, 28); got != blue {
		t.Fatalf("artifact pixel = %v, want %v", got, blue)
	}
	if got := dst.RGBAAt(2, 2); got != r.Theme.CheckerLight && got != r.Theme.CheckerDark {
		t.Fatalf("backdrop pixel = %v, want a checker color", got)
	}
}

func TestMissingImageDrawsPlaceholder(t *testing.T) {
	r := NewSoftware(nil)
	dst := image.NewRGBA(image.Rect(0, 0, 200, 120))
	a := annotation.NewImage("file:///nonexistent/blob.png", 10, 10, 100, 60, "t")
	vp := viewport.New()
	// Must not panic, and must mark the source as failed so the loader
	// is not retried every frame.
	r.DrawAnnotation(dst, &a, vp, State{})
	r.DrawAnnotation(dst, &a, vp, State{})
	if !r.failed[a.Src] {
		t.Fatal("failed source not cached")
	}
}

func TestLoadImageSourceDataURI(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(1, 1, color.RGBA{9, 8, 7, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	got, err := LoadImageSource(uri)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", got.Bounds())
	}

	if _, err := LoadImageSource("data:image/png;base64,!!!"); err == nil {
		t.Fatal("corrupt payload must error")
	}
	if _, err := LoadImageSource("data:nonsense"); err == nil {
		t.Fatal("malformed uri must error")
	}
}
