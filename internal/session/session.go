// Package session provides the session repository. Business logic receives
// a Repository instead of reaching into a shared global map.
package session

import (
	"sync"
	"time"
)

// Session groups uploaded documents and the runs generated from them.
// Sessions are in-memory only; losing them on restart is acceptable.
type Session struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentPaths []string  `json:"document_paths,omitempty"`
	RunIDs        []string  `json:"run_ids,omitempty"`
}

// Repository stores sessions by id. Implementations must be safe for
// concurrent use; distinct sessions share no mutable state.
type Repository interface {
	Get(id string) (Session, bool)
	Put(id string, s Session)
	Delete(id string)
	List() []Session
}

// MemoryRepository is the in-memory Repository used by the CLI and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]Session)}
}

// Get implements Repository.
func (r *MemoryRepository) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Put implements Repository.
func (r *MemoryRepository) Put(id string, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = s
}

// Delete implements Repository.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// List implements Repository. Order is unspecified.
func (r *MemoryRepository) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
