// Package docstore holds the persistence collaborators the editor talks
// to: a keyed document store with upsert semantics for annotation
// documents, and a blob store for pasted or dropped image bytes. Both
// are interfaces so the hosting environment can swap in its own backend;
// the bundled implementations are SQLite and the local filesystem.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/example/moleskine/internal/annotation"
)

// ErrNotFound is returned by Get when no document exists for the key.
// It is the only error callers may treat as silent; everything else is a
// transport failure and must be surfaced.
var ErrNotFound = errors.New("docstore: document not found")

// Key identifies one annotation document.
type Key struct {
	ProjectID  string
	ArtifactID string
}

// Document is the whole-document payload stored per key. Saves always
// overwrite the full document; there is no delta format.
type Document struct {
	ProjectID    string                  `json:"projectId"`
	ArtifactID   string                  `json:"artifactId"`
	ArtifactURL  string                  `json:"artifactUrl"`
	Annotations  []annotation.Annotation `json:"annotations"`
	CanvasWidth  int                     `json:"canvasWidth"`
	CanvasHeight int                     `json:"canvasHeight"`
	UpdatedBy    string                  `json:"updatedBy"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Store is the document store collaborator.
type Store interface {
	// Get loads the document for key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*Document, error)
	// Upsert stores doc under key, replacing any previous document.
	Upsert(ctx context.Context, key Key, doc *Document) error
}

// BlobStore stores opaque image bytes and returns a URL usable as an
// image annotation source.
type BlobStore interface {
	Put(data []byte, path string) (url string, err error)
}
