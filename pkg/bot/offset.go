package bot

import (
	"context"
	"sync"
)

// OffsetStore persists the polling offset cursor so a restarted poller
// resumes where the previous one stopped.
type OffsetStore interface {
	LoadOffset(ctx context.Context) (int64, error)
	SaveOffset(ctx context.Context, offset int64) error
}

// MemoryOffsetStore keeps the offset in memory. It is the default store.
type MemoryOffsetStore struct {
	mu     sync.Mutex
	offset int64
}

// LoadOffset returns the last saved offset, or 0.
func (s *MemoryOffsetStore) LoadOffset(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset, nil
}

// SaveOffset records offset.
func (s *MemoryOffsetStore) SaveOffset(_ context.Context, offset int64) error {
	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
	return nil
}
