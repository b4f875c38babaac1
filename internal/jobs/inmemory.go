package jobs

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process job store for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Job
}

func NewInMemoryStore(seed []Job) *InMemoryStore {
	s := &InMemoryStore{byID: make(map[string]*Job, len(seed))}
	for i := range seed {
		j := seed[i]
		s.order = append(s.order, j.ID)
		s.byID[j.ID] = &j
	}
	return s
}

func (s *InMemoryStore) List(_ context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

func (s *InMemoryStore) SetLiked(_ context.Context, id string, liked bool) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.byID[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	j.Liked = liked
	return *j, nil
}

func (s *InMemoryStore) SetApplied(_ context.Context, id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.byID[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	j.Applied = true
	return *j, nil
}

func (s *InMemoryStore) Close() error { return nil }
