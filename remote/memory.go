package remote

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryTier is an in-memory Tier implementation for testing.
// It records every upload so tests can assert on what was transferred.
// Thread-safe for concurrent uploads.
type MemoryTier struct {
	mu      sync.RWMutex
	infos   []ObjectInfo
	objects map[string][]byte

	// Err, if set, is returned by every Upload without recording anything.
	Err error
}

// NewMemoryTier creates a new in-memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		objects: make(map[string][]byte),
	}
}

// Upload stores the object bytes in memory.
func (m *MemoryTier) Upload(ctx context.Context, info ObjectInfo, body io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	errOverride := m.Err
	m.mu.RUnlock()
	if errOverride != nil {
		return errOverride
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("remote: read upload body for %q: %w", info.Name, err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("remote: upload %q: got %d bytes, want %d", info.Name, len(data), size)
	}

	m.mu.Lock()
	m.infos = append(m.infos, info)
	m.objects[info.Name] = data
	m.mu.Unlock()

	return nil
}

// SetErr makes subsequent uploads fail with err (nil to clear).
func (m *MemoryTier) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Uploads returns the recorded ObjectInfo of every successful upload, in order.
func (m *MemoryTier) Uploads() []ObjectInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ObjectInfo, len(m.infos))
	copy(out, m.infos)
	return out
}

// Object returns the stored bytes for a name.
func (m *MemoryTier) Object(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, true
}
