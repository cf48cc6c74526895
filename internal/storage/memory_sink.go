package storage

import (
	"context"
	"sync"
)

// MemorySink keeps every saved item in memory.
type MemorySink[T any] struct {
	mu    sync.Mutex
	items []T
}

func (s *MemorySink[T]) Save(_ context.Context, batch []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, batch...)
	return nil
}

// Items returns a copy of everything saved so far.
func (s *MemorySink[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}
