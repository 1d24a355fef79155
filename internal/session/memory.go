package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/snaketracks/internal/shared"
)

type memoryEntry struct {
	data      []byte
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps encoded sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load decodes a copy of the stored session, so callers never share state through the store.
func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}

	return Decode(id, entry.data, entry.createdAt, entry.updatedAt)
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	createdAt := s.CreatedAt
	if existing, ok := m.entries[s.ID]; ok {
		createdAt = existing.createdAt
	}
	if createdAt.IsZero() {
		createdAt = now
	}

	m.entries[s.ID] = memoryEntry{data: data, createdAt: createdAt, updatedAt: now}
	s.UpdatedAt = now
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Prune(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.entries {
		if entry.updatedAt.Before(before) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
