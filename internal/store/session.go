package store

import (
	"context"
	"sync"
	"time"

	"storysmith/internal/core"
)

// Session is an in-memory, append-only story collection scoped to one process.
type Session struct {
	mu      sync.RWMutex
	stories []core.Story
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

func (s *Session) Add(_ context.Context, story core.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = append(s.stories, story)
	return nil
}

func (s *Session) Get(_ context.Context, id string) (core.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.stories[i], nil
	}
	return core.Story{}, ErrNotFound
}

func (s *Session) List(_ context.Context) ([]core.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Story, len(s.stories))
	copy(out, s.stories)
	return out, nil
}

func (s *Session) UpdateBody(_ context.Context, id, body string, now time.Time) (core.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return core.Story{}, ErrNotFound
	}
	s.stories[i] = s.stories[i].WithBody(body, now)
	return s.stories[i], nil
}

func (s *Session) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.stories = append(s.stories[:i], s.stories[i+1:]...)
	return nil
}

// Close is a no-op.
func (s *Session) Close() error { return nil }

// index must be called with mu held.
func (s *Session) index(id string) int {
	for i := range s.stories {
		if s.stories[i].ID == id {
			return i
		}
	}
	return -1
}
