// Package temporal supplies the coarse-grained epoch value that perturbs
// coordinate derivation over time. Advancing the epoch and re-scattering
// changes every coordinate and mixed byte without touching plaintext, which
// is what the periodic reshuffle maintenance operation relies on.
package temporal

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/sha3"

	"sigmavault/internal/keystate"
)

// DefaultInterval is the wall-clock bucket width. One reshuffle-relevant
// epoch per day is coarse enough that normal write traffic inside a bucket
// stays deterministic.
const DefaultInterval = 24 * time.Hour

// Source yields the epoch for a file at the moment of scattering.
type Source interface {
	Epoch(fileID []byte) uint64
}

// Epoch combines a monotonic bucket with the vault's temporal prime and a
// keyed file offset. It is strictly increasing in bucket for a fixed file,
// and two files in the same bucket land on different epochs.
func Epoch(ks *keystate.KeyState, fileID []byte, bucket uint64) uint64 {
	return bucket*ks.TemporalPrime + fileOffset(ks, fileID)%ks.TemporalPrime
}

// Bucket maps an instant to its interval index.
func Bucket(t time.Time, interval time.Duration) uint64 {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return uint64(t.Unix() / int64(interval/time.Second))
}

func fileOffset(ks *keystate.KeyState, fileID []byte) uint64 {
	d := sha3.New256()
	d.Write(ks.MasterSeed[:])
	d.Write([]byte("sigmavault/epoch/v1"))
	d.Write(fileID)
	return binary.BigEndian.Uint64(d.Sum(nil)[:8])
}

// ClockSource buckets wall-clock time. The zero Interval means
// DefaultInterval, and a nil Now means time.Now.
type ClockSource struct {
	KS       *keystate.KeyState
	Interval time.Duration
	Now      func() time.Time
}

func (s *ClockSource) Epoch(fileID []byte) uint64 {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Epoch(s.KS, fileID, Bucket(now(), s.Interval))
}

// CounterSource is a logical reshuffle counter for callers that prefer
// explicit epoch advancement over wall-clock bucketing.
type CounterSource struct {
	KS *keystate.KeyState

	n atomic.Uint64
}

func (s *CounterSource) Epoch(fileID []byte) uint64 {
	return Epoch(s.KS, fileID, s.n.Load())
}

// Advance moves every subsequent scatter to the next epoch.
func (s *CounterSource) Advance() uint64 {
	return s.n.Add(1)
}
