package main

import "errors"

var errMediumFull = errors.New("medium has no room left for shard placement")

type interval struct{ start, end int64 }

// allocator tracks intervals claimed during one placement run so shard
// pieces never overwrite each other.
type allocator struct {
	used []interval
}

// claim returns the first offset at or after want (wrapping once) where
// length bytes fit without touching an already claimed interval.
func (a *allocator) claim(want int64, length int, mediumSize int64) (int64, error) {
	if int64(length) > mediumSize {
		return 0, errMediumFull
	}
	off := want
	wrapped := false
	// every probe skips past a distinct claimed interval, so this
	// terminates within two passes over them
	for tries := 0; tries <= 2*len(a.used)+2; tries++ {
		if off+int64(length) > mediumSize {
			if wrapped {
				break
			}
			off = 0
			wrapped = true
		}
		c, ok := a.conflict(off, int64(length))
		if !ok {
			a.used = append(a.used, interval{start: off, end: off + int64(length)})
			return off, nil
		}
		off = c.end
	}
	return 0, errMediumFull
}

func (a *allocator) conflict(off, length int64) (interval, bool) {
	for _, iv := range a.used {
		if off < iv.end && iv.start < off+length {
			return iv, true
		}
	}
	return interval{}, false
}
