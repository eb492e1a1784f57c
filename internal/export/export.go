// Package export flattens annotation documents over their artifact into
// shareable files without opening the editor window.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/moleskine/internal/docstore"
	"github.com/example/moleskine/internal/render"
	"github.com/example/moleskine/internal/viewport"
)

// Options adjust the flattened output.
type Options struct {
	// Shadow composites a blurred drop shadow behind the page before
	// encoding, expanding the output bounds to fit it.
	Shadow bool
}

// Raster flattens the artifact and every annotation, in z-order, at the
// artifact's native resolution. Image embeds are resolved one at a time
// through the renderer's loader; an unresolvable embed becomes the
// renderer's placeholder rather than failing the whole export.
func Raster(doc *docstore.Document, artifact image.Image) (*image.RGBA, error) {
	w, h := doc.CanvasWidth, doc.CanvasHeight
	if artifact != nil {
		w = artifact.Bounds().Dx()
		h = artifact.Bounds().Dy()
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("export: no artifact and no canvas dimensions")
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if artifact != nil {
		draw.Draw(out, artifact.Bounds(), artifact, artifact.Bounds().Min, draw.Over)
	}

	r := render.NewSoftware(nil)
	vp := viewport.New() // 1:1, no offset: document space is pixel space
	for i := range doc.Annotations {
		r.DrawAnnotation(out, &doc.Annotations[i], vp, render.State{})
	}
	return out, nil
}

func flatten(doc *docstore.Document, artifact image.Image, opts Options) (*image.RGBA, error) {
	img, err := Raster(doc, artifact)
	if err != nil {
		return nil, err
	}
	if opts.Shadow {
		img = render.ApplyShadow(img, render.DefaultShadowOptions()).Image
	}
	return img, nil
}

// PNG writes the flattened document as a PNG stream.
func PNG(w io.Writer, doc *docstore.Document, artifact image.Image, opts Options) error {
	img, err := flatten(doc, artifact, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes the flattened document as a single-page PDF sized to the
// artifact.
func PDF(w io.Writer, doc *docstore.Document, artifact image.Image, opts Options) error {
	img, err := flatten(doc, artifact, opts)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode page image: %w", err)
	}

	wd := float64(img.Bounds().Dx())
	ht := float64(img.Bounds().Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.AddPage()
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", imgOpts, &buf)
	pdf.ImageOptions("page", 0, 0, wd, ht, false, imgOpts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
