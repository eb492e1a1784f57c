package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/moleskine/internal/docstore"
)

// AutosaveDelay is how long after the last committed mutation the
// document is written back; each new mutation resets the countdown.
const AutosaveDelay = 3 * time.Second

// CloseDecision is the user's answer to the unsaved-changes gate.
type CloseDecision int

const (
	CloseKeepEditing CloseDecision = iota
	CloseDiscard
	CloseSaveAndClose
)

// Session glues a Store to the document store collaborator: load once
// per editing session, debounced autosave, explicit save, and the
// close-with-unsaved-changes gate. The debounce is an explicit timer
// handle that is canceled and rescheduled on every dirty mark, so stale
// saves cannot fire; dirty marks arriving while a timer is pending are
// coalesced into one save.
type Session struct {
	Store *Store
	Docs  docstore.Store
	Key   docstore.Key

	ArtifactURL  string
	CanvasWidth  int
	CanvasHeight int
	User         string

	// RequestSave is invoked (from the timer goroutine) when the
	// debounce elapses; the hosting shell forwards it onto the UI loop
	// and calls SaveNow there. Must be set before editing starts.
	RequestSave func()

	// OnSaveError receives save failures so they can be surfaced as a
	// dismissible notification; in-memory state is never rolled back.
	OnSaveError func(error)

	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewSession wires the autosave scheduler into the store's commit hook.
func NewSession(store *Store, docs docstore.Store, key docstore.Key) *Session {
	s := &Session{Store: store, Docs: docs, Key: key, delay: AutosaveDelay}
	store.SetOnCommit(s.markDirty)
	return s
}

// LoadDocument fetches the stored annotation list, treating a missing
// document as an empty one. Transport errors are returned.
func (s *Session) LoadDocument(ctx context.Context) error {
	doc, err := s.Docs.Get(ctx, s.Key)
	if errors.Is(err, docstore.ErrNotFound) {
		s.Store.Load(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}
	s.Store.Load(doc.Annotations)
	if doc.ArtifactURL != "" {
		s.ArtifactURL = doc.ArtifactURL
	}
	return nil
}

// markDirty cancels any pending debounce timer and starts a fresh one.
func (s *Session) markDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		if s.RequestSave != nil {
			s.RequestSave()
		}
	})
}

// SaveNow writes the whole document immediately. On failure the store
// stays dirty so the next debounce tick or explicit save retries.
func (s *Session) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if !s.Store.Dirty() {
		return nil
	}
	doc := &docstore.Document{
		ArtifactURL:  s.ArtifactURL,
		Annotations:  s.Store.Snapshot(),
		CanvasWidth:  s.CanvasWidth,
		CanvasHeight: s.CanvasHeight,
		UpdatedBy:    s.User,
		UpdatedAt:    time.Now(),
	}
	if err := s.Docs.Upsert(ctx, s.Key, doc); err != nil {
		if s.OnSaveError != nil {
			s.OnSaveError(err)
		}
		return err
	}
	s.Store.MarkClean()
	return nil
}

// Close resolves the unsaved-changes gate. It reports whether the editor
// may close; CloseKeepEditing and a failed save-and-close both keep the
// session alive.
func (s *Session) Close(ctx context.Context, decision CloseDecision) (bool, error) {
	if !s.Store.Dirty() {
		s.stopTimer()
		return true, nil
	}
	switch decision {
	case CloseDiscard:
		s.stopTimer()
		return true, nil
	case CloseSaveAndClose:
		if err := s.SaveNow(ctx); err != nil {
			return false, err
		}
		s.stopTimer()
		return true, nil
	default:
		return false, nil
	}
}

func (s *Session) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SetDebounce overrides the autosave delay; tests use short intervals.
func (s *Session) SetDebounce(d time.Duration) { s.delay = d }
