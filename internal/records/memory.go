package records

import (
	"context"
	"sync"

	"github.com/pacuit/conferencia/internal/util"
)

// MemoryStore mantém registros em memória, preservando a ordem de criação.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]Record
	order  map[string][]string
	nextID func() string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore cria um armazenamento vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   map[string]map[string]Record{},
		order:  map[string][]string{},
		nextID: util.NewID,
	}
}

func (s *MemoryStore) Create(_ context.Context, collection string, data Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := data.WithoutID()
	id := s.nextID()
	rec["id"] = id

	if s.data[collection] == nil {
		s.data[collection] = map[string]Record{}
	}
	s.data[collection][id] = rec
	s.order[collection] = append(s.order[collection], id)
	return rec.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.data[collection]))
	for _, id := range s.order[collection] {
		if rec, ok := s.data[collection][id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	merged := rec.Merge(patch)
	s.data[collection][id] = merged
	return merged.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)

	ids := s.order[collection]
	for i, existing := range ids {
		if existing == id {
			s.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
