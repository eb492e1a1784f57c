package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/moleskine/internal/docstore"
	"github.com/example/moleskine/internal/export"
	"github.com/example/moleskine/internal/render"
)

// exportCmd flattens a stored document without opening the UI.
type exportCmd struct {
	project  string
	artifact string
	file     string
	output   string
	format   string
	shadow   bool
	*root
	fs *flag.FlagSet
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	e := &exportCmd{root: r.subcommand("export"), fs: fs}
	fs.StringVar(&e.project, "project", "default", "project the artifact belongs to")
	fs.StringVar(&e.artifact, "artifact", "", "artifact id of the stored document")
	fs.StringVar(&e.file, "file", "", "artifact image (overrides the stored artifact URL)")
	fs.StringVar(&e.output, "o", "export.png", "output file path")
	fs.StringVar(&e.format, "format", "", "output format: png or pdf (default: from extension)")
	fs.BoolVar(&e.shadow, "shadow", false, "add a drop shadow behind the flattened page")
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.artifact == "" {
		return nil, &UsageError{of: e}
	}
	if e.format == "" {
		if strings.EqualFold(filepath.Ext(e.output), ".pdf") {
			e.format = "pdf"
		} else {
			e.format = "png"
		}
	}
	switch e.format {
	case "png", "pdf":
	default:
		return nil, fmt.Errorf("unknown format %q (want png or pdf)", e.format)
	}
	return e, nil
}

func (e *exportCmd) Run() error {
	docs, err := e.openDocs()
	if err != nil {
		return err
	}
	defer docs.Close()

	ctx := context.Background()
	key := docstore.Key{ProjectID: e.project, ArtifactID: e.artifact}
	doc, err := docs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("export %s/%s: %w", key.ProjectID, key.ArtifactID, err)
	}

	src := e.file
	if src == "" {
		src = doc.ArtifactURL
	}
	var artifact image.Image
	if src != "" {
		artifact, err = render.LoadImageSource(src)
		if err != nil {
			return fmt.Errorf("load artifact %q: %w", src, err)
		}
	}

	out, err := os.Create(e.output)
	if err != nil {
		return fmt.Errorf("create %q: %w", e.output, err)
	}

	opts := export.Options{Shadow: e.shadow}
	switch e.format {
	case "pdf":
		err = export.PDF(out, doc, artifact, opts)
	default:
		err = export.PNG(out, doc, artifact, opts)
	}
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %q: %w", e.output, err)
	}
	if e.notifier != nil {
		e.notifier.Export(e.output)
	}
	fmt.Fprintf(os.Stderr, "exported %s\n", e.output)
	return nil
}
