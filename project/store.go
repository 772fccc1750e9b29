package project

import (
	"sort"
	"sync"
)

// Store persists projects keyed by id. Implementations must return
// ErrProjectNotFound for unknown ids.
type Store interface {
	Put(p *Project) error
	Get(id string) (*Project, error)
	List(userID string) ([]*Project, error)
	Delete(id string) error
}

// MemoryStore is a trivial in-process Store implementation useful for tests,
// examples and single-process prototypes. It keeps all projects in a map
// guarded by an RWMutex. Data is cloned on save / retrieval to avoid
// accidental external mutation of internal buffers.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits or quotas. For anything that should survive a restart, use FileStore.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewMemoryStore returns an empty in-memory project store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*Project)}
}

// Put stores (or overwrites) a clone of the project.
func (s *MemoryStore) Put(p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p.Clone()
	return nil
}

// Get returns a clone of the stored project or ErrProjectNotFound.
func (s *MemoryStore) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return p.Clone(), nil
}

// List returns the user's projects, newest first. The slice is a snapshot and
// safe for caller mutation.
func (s *MemoryStore) List(userID string) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Project
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes the project if present or returns ErrProjectNotFound.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}
