package medium

import (
	"context"
	"fmt"
	"sync"
)

// MemoryMedium is an in-memory medium, mainly for tests and ephemeral
// vaults. Safe for concurrent use.
type MemoryMedium struct {
	mu  sync.RWMutex
	buf []byte
}

func NewMemoryMedium(size int64) *MemoryMedium {
	return &MemoryMedium{buf: make([]byte, size)}
}

func (m *MemoryMedium) Read(_ context.Context, off int64, size int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if off < 0 || size < 0 || off+int64(size) > int64(len(m.buf)) {
		return nil, fmt.Errorf("%w: read [%d, %d)", ErrOutOfRange, off, off+int64(size))
	}
	out := make([]byte, size)
	copy(out, m.buf[off:])
	return out, nil
}

func (m *MemoryMedium) Write(_ context.Context, off int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off+int64(len(data)) > int64(len(m.buf)) {
		return fmt.Errorf("%w: write [%d, %d)", ErrOutOfRange, off, off+int64(len(data)))
	}
	copy(m.buf[off:], data)
	return nil
}

func (m *MemoryMedium) Size(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.buf)), nil
}

func (m *MemoryMedium) Sync(context.Context) error { return nil }
