package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/example/moleskine/internal/docstore"
	"github.com/example/moleskine/internal/editor"
	"github.com/example/moleskine/internal/render"
	"github.com/example/moleskine/internal/ui"
	"github.com/example/moleskine/internal/viewport"
)

// annotateCmd opens the windowed editor for one artifact.
type annotateCmd struct {
	project  string
	artifact string
	file     string
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)
	a := &annotateCmd{root: r.subcommand("annotate"), fs: fs}
	fs.StringVar(&a.project, "project", "default", "project the artifact belongs to")
	fs.StringVar(&a.artifact, "artifact", "", "artifact id (defaults to the file name)")
	fs.StringVar(&a.file, "file", "", "artifact image to annotate (png, jpeg or gif)")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" && fs.NArg() > 0 {
		a.file = fs.Arg(0)
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	docs, err := a.openDocs()
	if err != nil {
		return err
	}
	defer docs.Close()

	key := docstore.Key{ProjectID: a.project, ArtifactID: a.artifact}
	if key.ArtifactID == "" {
		if a.file == "" {
			return &UsageError{of: a}
		}
		key.ArtifactID = a.file
	}

	store := editor.NewStore()
	vp := viewport.New()
	ed := editor.NewEditor(store, vp, a.config.Identity())
	if a.config.DefaultColor != "" {
		ed.Color = a.config.DefaultColor
	}
	if a.config.DefaultWidth > 0 {
		ed.Width = a.config.DefaultWidth
	}

	sess := editor.NewSession(store, docs, key)
	sess.User = a.config.Identity()
	ctx := context.Background()
	if err := sess.LoadDocument(ctx); err != nil {
		return err
	}

	// The flag wins over the stored artifact URL so a moved file can be
	// re-pointed.
	src := a.file
	if src == "" {
		src = sess.ArtifactURL
	}
	var artifact image.Image
	if src != "" {
		artifact, err = render.LoadImageSource(src)
		if err != nil {
			return fmt.Errorf("load artifact %q: %w", src, err)
		}
		sess.ArtifactURL = src
		sess.CanvasWidth = artifact.Bounds().Dx()
		sess.CanvasHeight = artifact.Bounds().Dy()
	}
	if artifact == nil {
		return fmt.Errorf("no artifact image: pass -file or annotate a stored document")
	}

	blobs, err := docstore.NewDirBlobStore(a.blobDir())
	if err != nil {
		log.Printf("blob store: %v; falling back to inline images", err)
		blobs = nil
	}

	opts := []ui.Option{
		ui.WithNotifier(a.notifier),
		ui.WithLabel(fmt.Sprintf("%s/%s", key.ProjectID, key.ArtifactID)),
	}
	if blobs != nil {
		opts = append(opts, ui.WithBlobs(blobs))
	}
	sh := ui.New(ed, sess, a.activeTheme, artifact, opts...)
	sh.Run()
	return nil
}
