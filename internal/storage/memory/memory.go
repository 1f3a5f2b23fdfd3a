// Package memory is an in-process EntryStore for development and tests.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"cashledger/internal/core"
	"cashledger/internal/importer"
	"cashledger/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Entry
}

var _ storage.EntryStore = (*Store)(nil)

func New(seed ...core.Entry) *Store {
	s := &Store{items: make(map[string]core.Entry, len(seed))}
	for _, e := range seed {
		s.items[e.ID] = e
	}
	return s
}

// NewFromFile seeds the store from a pasted-sheet export (CSV or TSV). A
// missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	res := importer.NewNormalizer(false).GridToEntries(importer.ParseDelimitedText(string(raw)))
	if len(res.Entries) == 0 && len(res.Errors) > 0 {
		return nil, fmt.Errorf("seed file %s: %s", path, res.Errors[0])
	}
	return New(res.Entries...), nil
}

// FetchAll returns every entry, newest date first.
func (s *Store) FetchAll(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) InsertOne(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(e)
}

func (s *Store) InsertMany(_ context.Context, entries []core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNew(entries); err != nil {
		return err
	}
	for _, e := range entries {
		s.items[e.ID] = withDefaultStatus(e)
	}
	return nil
}

func (s *Store) UpdateOne(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.ID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, e.ID)
	}
	s.items[e.ID] = withDefaultStatus(e)
	return nil
}

func (s *Store) SetStatus(_ context.Context, ids []string, status core.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
		}
	}
	for _, id := range ids {
		s.items[id] = s.items[id].WithStatus(status)
	}
	return nil
}

func (s *Store) ArchiveAndInsert(_ context.Context, entries []core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNew(entries); err != nil {
		return err
	}
	for id, e := range s.items {
		if e.IsActive() {
			s.items[id] = e.WithStatus(core.StatusInactive)
		}
	}
	for _, e := range entries {
		s.items[e.ID] = withDefaultStatus(e)
	}
	return nil
}

func (s *Store) insert(e core.Entry) error {
	if _, dup := s.items[e.ID]; dup {
		return fmt.Errorf("duplicate entry id %s", e.ID)
	}
	s.items[e.ID] = withDefaultStatus(e)
	return nil
}

func (s *Store) checkNew(entries []core.Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := s.items[e.ID]; dup {
			return fmt.Errorf("duplicate entry id %s", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate entry id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

func withDefaultStatus(e core.Entry) core.Entry {
	if e.Status == "" {
		e.Status = core.StatusActive
	}
	return e
}
