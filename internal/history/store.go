package history

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"

	imgutil "imgedit/internal/image"
)

var (
	// ErrInvalidImageFormat is returned by Commit for nil or non-NRGBA
	// snapshots. It indicates a programming error in the caller.
	ErrInvalidImageFormat = errors.New("invalid image format")

	// ErrNoLayer is returned when committing to a store that has no image.
	ErrNoLayer = errors.New("no layer")
)

type layer struct {
	id      int
	entries []Entry
}

// Store holds the layers of the open image. Each layer keeps at least one
// entry once created. Reads and writes are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	layers  []*layer
	current int
	nextID  int
}

// NewStore creates an empty store. Call Reset to seed it with an image.
func NewStore() *Store {
	return &Store{current: -1}
}

// Reset discards all layers and starts layer 0 with img as an Open entry.
func (s *Store) Reset(img *image.NRGBA) error {
	if img == nil {
		return fmt.Errorf("reset: %w", ErrInvalidImageFormat)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = []*layer{{id: 0, entries: []Entry{{Note: NoteOpen, Image: img, Kind: LoadOrOpen}}}}
	s.current = 0
	s.nextID = 1
	return nil
}

// Commit appends e to the current layer. The store takes ownership of
// e.Image; callers must not modify it afterwards.
func (s *Store) Commit(e Entry) error {
	if e.Image == nil {
		return fmt.Errorf("commit %q: %w", e.Note, ErrInvalidImageFormat)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.currentLayer()
	if l == nil {
		return fmt.Errorf("commit %q: %w", e.Note, ErrNoLayer)
	}
	l.entries = append(l.entries, e)
	return nil
}

// CommitImage is Commit for an arbitrary image.Image; anything other than
// *image.NRGBA is rejected.
func (s *Store) CommitImage(img image.Image, note string, kind ChangeKind) error {
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba == nil {
		return fmt.Errorf("commit %q (%T): %w", note, img, ErrInvalidImageFormat)
	}
	return s.Commit(Entry{Note: note, Image: nrgba, Kind: kind})
}

func (s *Store) currentLayer() *layer {
	if s.current < 0 || s.current >= len(s.layers) {
		return nil
	}
	return s.layers[s.current]
}

// Latest returns the current layer's newest image, or nil.
func (s *Store) Latest() *image.NRGBA {
	e, ok := s.LatestEntry()
	if !ok {
		return nil
	}
	return e.Image
}

// LatestEntry returns the current layer's newest entry.
func (s *Store) LatestEntry() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil || len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Previous returns the second newest image, or nil with fewer than two entries.
func (s *Store) Previous() *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil || len(l.entries) < 2 {
		return nil
	}
	return l.entries[len(l.entries)-2].Image
}

// LatestExcludingKind scans backward for the newest entry whose kind is not
// one of kinds and returns its image.
func (s *Store) LatestExcludingKind(kinds ...ChangeKind) *image.NRGBA {
	return s.scan(func(e Entry) bool { return !slices.Contains(kinds, e.Kind) })
}

// LatestExcludingNote scans backward for the newest entry with a different note.
func (s *Store) LatestExcludingNote(note string) *image.NRGBA {
	return s.scan(func(e Entry) bool { return e.Note != note })
}

func (s *Store) scan(match func(Entry) bool) *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil {
		return nil
	}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if match(l.entries[i]) {
			return l.entries[i].Image
		}
	}
	return nil
}

// Len returns the number of entries in the current layer.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns a copy of the current layer's entries, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil {
		return nil
	}
	return slices.Clone(l.entries)
}

// Undo removes the newest logical edit from the current layer using the
// policy for its kind. It is a no-op on a layer with one entry.
func (s *Store) Undo() (UndoResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.currentLayer()
	if l == nil || len(l.entries) <= 1 {
		return UndoResult{}, false
	}
	undo, ok := policies[l.entries[len(l.entries)-1].Kind]
	if !ok {
		return UndoResult{}, false
	}
	kept, res := undo(l.entries)
	l.entries = kept
	return res, true
}

// DuplicateCurrentLayer creates a layer seeded with a copy of the current
// layer's newest image and makes it current.
func (s *Store) DuplicateCurrentLayer() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.currentLayer()
	if l == nil || len(l.entries) == 0 {
		return 0, false
	}
	src := l.entries[len(l.entries)-1].Image
	nl := &layer{id: s.nextID, entries: []Entry{{
		Note:  NoteBranch,
		Image: imgutil.Clone(src),
		Kind:  LoadOrOpen,
	}}}
	s.nextID++
	s.layers = append(s.layers, nl)
	s.current = len(s.layers) - 1
	return nl.id, true
}

// CurrentLayer returns the current layer id, or -1 when empty.
func (s *Store) CurrentLayer() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.currentLayer()
	if l == nil {
		return -1
	}
	return l.id
}

// SelectLayer makes the layer with the given id current.
func (s *Store) SelectLayer(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.layers {
		if l.id == id {
			s.current = i
			return true
		}
	}
	return false
}

// Layers returns the layer ids in creation order.
func (s *Store) Layers() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.id
	}
	return ids
}

// LayerLatest returns the newest image of the layer with the given id.
func (s *Store) LayerLatest(id int) *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.id == id && len(l.entries) > 0 {
			return l.entries[len(l.entries)-1].Image
		}
	}
	return nil
}
