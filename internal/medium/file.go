package medium

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileMedium is a fixed-size file-backed medium.
type FileMedium struct {
	f    *os.File
	size int64
}

// NewFileMedium opens (or creates) the backing file and grows it to size.
func NewFileMedium(path string, size int64) (*FileMedium, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileMedium{f: f, size: size}, nil
}

func (m *FileMedium) Read(_ context.Context, off int64, size int) ([]byte, error) {
	if off < 0 || size < 0 || off+int64(size) > m.size {
		return nil, fmt.Errorf("%w: read [%d, %d)", ErrOutOfRange, off, off+int64(size))
	}
	out := make([]byte, size)
	if _, err := m.f.ReadAt(out, off); err != nil && err != io.EOF {
		return nil, err
	}
	return out, nil
}

func (m *FileMedium) Write(_ context.Context, off int64, data []byte) error {
	if off < 0 || off+int64(len(data)) > m.size {
		return fmt.Errorf("%w: write [%d, %d)", ErrOutOfRange, off, off+int64(len(data)))
	}
	_, err := m.f.WriteAt(data, off)
	return err
}

func (m *FileMedium) Size(context.Context) (int64, error) { return m.size, nil }

func (m *FileMedium) Sync(context.Context) error { return m.f.Sync() }

func (m *FileMedium) Close() error { return m.f.Close() }
