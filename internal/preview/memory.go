package preview

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	object  Object
	expires time.Time
}

// MemoryStore keeps previews in process. Suitable for a single instance
// deployment and for development.
type MemoryStore struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Acquire(_ context.Context, name, contentType string, data []byte) (Handle, error) {
	h := newHandle()

	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[h.ID] = memoryEntry{
		object:  Object{Name: name, ContentType: contentType, Data: buf},
		expires: m.now().Add(m.ttl),
	}

	return h, nil
}

// Release is idempotent; releasing an unknown handle is not an error.
func (m *MemoryStore) Release(_ context.Context, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, h.ID)
	return nil
}

func (m *MemoryStore) Open(_ context.Context, h Handle) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[h.ID]
	if !ok || m.now().After(entry.expires) {
		return nil, ErrNotFound
	}

	obj := entry.object
	return &obj, nil
}

func (m *MemoryStore) URL(_ context.Context, h Handle) (string, error) {
	return localURL(h), nil
}

// Len reports how many previews are currently held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops expired previews and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.entries {
		if now.After(entry.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired previews every interval until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
