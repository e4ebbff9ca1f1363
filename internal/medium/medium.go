// Package medium implements byte-addressable storage backends for scattered
// shard bytes. The scattering engine never touches a medium: callers map
// each coordinate's Spatial dimension to an offset here and perform the I/O
// themselves.
package medium

import (
	"context"
	"errors"
)

var ErrOutOfRange = errors.New("medium: offset outside medium bounds")

// Medium is a fixed-size byte-addressable backend.
type Medium interface {
	// Read returns size bytes starting at off.
	Read(ctx context.Context, off int64, size int) ([]byte, error)
	// Write stores data at off, overwriting what was there.
	Write(ctx context.Context, off int64, data []byte) error
	// Size reports the medium's capacity in bytes.
	Size(ctx context.Context) (int64, error)
	// Sync flushes buffered writes to durable storage.
	Sync(ctx context.Context) error
}

// Offset maps a coordinate's spatial dimension onto a medium of the given
// size, leaving room for span bytes. The mapping is deterministic, so the
// same coordinate always lands on the same offset for a fixed medium size.
func Offset(spatial uint64, mediumSize int64, span int) (int64, error) {
	if int64(span) > mediumSize || span < 0 {
		return 0, ErrOutOfRange
	}
	room := uint64(mediumSize - int64(span) + 1)
	return int64(spatial % room), nil
}
