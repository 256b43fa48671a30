package memory

import (
	"context"
	"sync"

	"github.com/thezakman/tapik/internal/domain"
)

// Store holds only the most recent run, in memory.
type Store struct {
	mu     sync.RWMutex
	latest *domain.Matrix
}

func New() *Store {
	return &Store{}
}

func (s *Store) Put(ctx context.Context, m *domain.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = m
	return nil
}

func (s *Store) Latest(ctx context.Context) (*domain.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}
