package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/moleskine/internal/docstore"
)

// memDocs is an in-memory document store that can be forced to fail.
type memDocs struct {
	mu      sync.Mutex
	docs    map[docstore.Key]*docstore.Document
	upserts int
	fail    error
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[docstore.Key]*docstore.Document{}}
}

func (m *memDocs) Get(_ context.Context, key docstore.Key) (*docstore.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (m *memDocs) Upsert(_ context.Context, key docstore.Key, doc *docstore.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.fail != nil {
		return m.fail
	}
	m.docs[key] = doc
	return nil
}

func (m *memDocs) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

func (m *memDocs) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func newTestSession(t *testing.T) (*Session, *Store, *memDocs) {
	t.Helper()
	store := NewStore()
	docs := newMemDocs()
	s := NewSession(store, docs, docstore.Key{ProjectID: "p", ArtifactID: "a"})
	s.User = "tester"
	return s, store, docs
}

func TestLoadMissingDocumentIsEmpty(t *testing.T) {
	s, store, _ := newTestSession(t)
	if err := s.LoadDocument(context.Background()); err != nil {
		t.Fatalf("missing document must load as empty, got %v", err)
	}
	if store.Len() != 0 || store.Dirty() {
		t.Fatal("missing document must leave an empty, clean store")
	}
}

func TestLoadSurfacesTransportErrors(t *testing.T) {
	store := NewStore()
	docs := newMemDocs()
	docs.docs[docstore.Key{ProjectID: "p", ArtifactID: "a"}] = &docstore.Document{}
	s := NewSession(store, docs, docstore.Key{ProjectID: "p", ArtifactID: "a"})

	boom := errors.New("connection refused")
	brokenGet := &failingDocs{err: boom}
	s.Docs = brokenGet
	err := s.LoadDocument(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("transport error not surfaced: %v", err)
	}
}

type failingDocs struct{ err error }

func (f *failingDocs) Get(context.Context, docstore.Key) (*docstore.Document, error) {
	return nil, f.err
}
func (f *failingDocs) Upsert(context.Context, docstore.Key, *docstore.Document) error {
	return f.err
}

func TestDebounceCoalescesMutations(t *testing.T) {
	s, store, docs := newTestSession(t)
	s.SetDebounce(30 * time.Millisecond)

	saved := make(chan struct{}, 1)
	s.RequestSave = func() {
		_ = s.SaveNow(context.Background())
		select {
		case saved <- struct{}{}:
		default:
		}
	}

	// A burst of mutations within the window collapses to one save.
	for i := 0; i < 5; i++ {
		store.Add(note("a", float64(i), 0))
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Fatal("debounced save never fired")
	}
	if got := docs.upsertCount(); got != 1 {
		t.Fatalf("burst produced %d saves, want 1", got)
	}
	if store.Dirty() {
		t.Fatal("successful save must mark the store clean")
	}
}

func TestSaveNowIsNoopWhenClean(t *testing.T) {
	s, _, docs := newTestSession(t)
	if err := s.SaveNow(context.Background()); err != nil {
		t.Fatalf("clean save returned %v", err)
	}
	if docs.upsertCount() != 0 {
		t.Fatal("clean store must not hit the document store")
	}
}

func TestFailedSaveKeepsDirtyAndRetries(t *testing.T) {
	s, store, docs := newTestSession(t)
	boom := errors.New("upstream 500")
	docs.setFail(boom)

	var notified error
	s.OnSaveError = func(err error) { notified = err }

	store.Add(note("a", 0, 0))
	if err := s.SaveNow(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("save error not returned: %v", err)
	}
	if !errors.Is(notified, boom) {
		t.Fatalf("OnSaveError got %v, want the upstream error", notified)
	}
	if !store.Dirty() {
		t.Fatal("failed save must leave the store dirty")
	}

	docs.setFail(nil)
	if err := s.SaveNow(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if store.Dirty() {
		t.Fatal("retry success must mark the store clean")
	}
}

func TestSaveNowCancelsPendingDebounce(t *testing.T) {
	s, store, docs := newTestSession(t)
	s.SetDebounce(20 * time.Millisecond)
	fired := make(chan struct{}, 1)
	s.RequestSave = func() { fired <- struct{}{} }

	store.Add(note("a", 0, 0))
	if err := s.SaveNow(context.Background()); err != nil {
		t.Fatalf("explicit save failed: %v", err)
	}
	if docs.upsertCount() != 1 {
		t.Fatalf("explicit save wrote %d times, want 1", docs.upsertCount())
	}
	select {
	case <-fired:
		t.Fatal("debounce fired after an explicit save already ran")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestCloseGate(t *testing.T) {
	s, store, docs := newTestSession(t)
	ctx := context.Background()

	// Clean: closes without prompting regardless of decision.
	ok, err := s.Close(ctx, CloseKeepEditing)
	if !ok || err != nil {
		t.Fatalf("clean close = (%v, %v), want (true, nil)", ok, err)
	}

	store.Add(note("a", 0, 0))
	if ok, _ := s.Close(ctx, CloseKeepEditing); ok {
		t.Fatal("keep-editing must not close a dirty session")
	}

	boom := errors.New("upstream 500")
	docs.setFail(boom)
	ok, err = s.Close(ctx, CloseSaveAndClose)
	if ok || !errors.Is(err, boom) {
		t.Fatalf("failed save-and-close = (%v, %v), want (false, %v)", ok, err, boom)
	}

	docs.setFail(nil)
	ok, err = s.Close(ctx, CloseSaveAndClose)
	if !ok || err != nil {
		t.Fatalf("save-and-close = (%v, %v), want (true, nil)", ok, err)
	}
	if store.Dirty() {
		t.Fatal("save-and-close must leave the store clean")
	}

	store.Add(note("b", 1, 0))
	if ok, _ := s.Close(ctx, CloseDiscard); !ok {
		t.Fatal("discard must close a dirty session")
	}
}

func TestSavedDocumentCarriesSessionMetadata(t *testing.T) {
	s, store, docs := newTestSession(t)
	s.ArtifactURL = "file:///artifacts/a.png"
	s.CanvasWidth = 1920
	s.CanvasHeight = 1080

	store.Add(note("a", 0, 0))
	if err := s.SaveNow(context.Background()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	doc := docs.docs[docstore.Key{ProjectID: "p", ArtifactID: "a"}]
	if doc == nil {
		t.Fatal("document not written")
	}
	if doc.ArtifactURL != s.ArtifactURL || doc.CanvasWidth != 1920 || doc.CanvasHeight != 1080 {
		t.Fatalf("metadata not carried: %+v", doc)
	}
	if doc.UpdatedBy != "tester" || doc.UpdatedAt.IsZero() {
		t.Fatalf("authorship not stamped: %+v", doc)
	}
	if len(doc.Annotations) != 1 {
		t.Fatalf("saved %d annotations, want 1", len(doc.Annotations))
	}
}
