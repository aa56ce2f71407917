// Package session keeps uploaded tables in memory between dashboard requests.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/brokerdash-cli/internal/dataset"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or deleted session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one uploaded file and the last threshold applied to it.
type Session struct {
	ID        string         `json:"id"`
	FileName  string         `json:"file_name"`
	Raw       *dataset.Table `json:"-"`
	Threshold int            `json:"min_success_rate"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is an in-memory session map safe for concurrent handlers.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limit    int
}

// NewStore returns an empty store. When limit > 0 the oldest sessions are
// evicted once more than limit are held.
func NewStore(limit int) *Store {
	return &Store{sessions: make(map[string]*Session), limit: limit}
}

// Create registers a freshly parsed table under a new ID.
func (s *Store) Create(fileName string, raw *dataset.Table, threshold int) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Raw:       raw,
		Threshold: threshold,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	s.evictLocked()
	return sess.clone()
}

// Get returns a copy of the session. The raw table is shared and never mutated.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

// SetThreshold records the last threshold viewed for a session.
func (s *Store) SetThreshold(id string, threshold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Threshold = threshold
	sess.UpdatedAt = time.Now()
	return nil
}

// Delete drops a session. Deleting an unknown ID is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// List returns sessions ordered by creation time, newest first.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) evictLocked() {
	if s.limit <= 0 {
		return
	}
	for len(s.sessions) > s.limit {
		var oldest *Session
		for _, sess := range s.sessions {
			if oldest == nil || sess.UpdatedAt.Before(oldest.UpdatedAt) {
				oldest = sess
			}
		}
		delete(s.sessions, oldest.ID)
	}
}

func (sess *Session) clone() *Session {
	c := *sess
	return &c
}
