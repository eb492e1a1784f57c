package main

import (
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/moleskine/internal/config"
	"github.com/example/moleskine/internal/docstore"
)

func testRoot(t *testing.T) *root {
	t.Helper()
	return &root{
		program:   "moleskine",
		config:    config.New(),
		storePath: filepath.Join(t.TempDir(), "documents.db"),
	}
}

func TestParseExportRequiresArtifact(t *testing.T) {
	_, err := parseExportCmd([]string{}, testRoot(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "moleskine export"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected usage text to mention %q, got %v", want, err)
	}
}

func TestParseExportFormatFromExtension(t *testing.T) {
	for _, tt := range []struct {
		output string
		want   string
	}{
		{"plan.pdf", "pdf"},
		{"plan.PDF", "pdf"},
		{"plan.png", "png"},
		{"plan", "png"},
	} {
		cmd, err := parseExportCmd([]string{"-artifact", "a", "-o", tt.output}, testRoot(t))
		if err != nil {
			t.Fatalf("parse %q: %v", tt.output, err)
		}
		if cmd.format != tt.want {
			t.Errorf("format for %q = %q, want %q", tt.output, cmd.format, tt.want)
		}
	}
}

func TestParseExportRejectsUnknownFormat(t *testing.T) {
	_, err := parseExportCmd([]string{"-artifact", "a", "-format", "gif"}, testRoot(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "unknown format"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestExportRunMissingDocument(t *testing.T) {
	cmd, err := parseExportCmd([]string{"-artifact", "missing", "-o", filepath.Join(t.TempDir(), "out.png")}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected wrapped not-found, got %v", err)
	}
	if want := "default/missing"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected key context, got %v", err)
	}
}

func TestParseListRejectsArguments(t *testing.T) {
	_, err := parseListCmd([]string{"extra"}, testRoot(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRootRunWithoutSubcommand(t *testing.T) {
	r := testRoot(t)
	r.fs = flag.NewFlagSet("moleskine", flag.ContinueOnError)
	err := r.Run([]string{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
