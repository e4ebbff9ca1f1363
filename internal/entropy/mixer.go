// Package entropy implements the mixing transform that interleaves chunk
// bytes with keyed filler. Mixed output carries no recoverable structure:
// signal bytes are whitened with a ChaCha20 keystream, filler positions are
// raw keystream, and the signal/filler layout is a keyed permutation.
package entropy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"

	"sigmavault/internal/keystate"
	"sigmavault/internal/topology"
)

// ErrCorruptedShard reports mixed bytes whose length or layout is
// inconsistent with the coordinate-derived permutation.
var ErrCorruptedShard = errors.New("entropy: mixed bytes inconsistent with coordinate layout")

const mixTag = "sigmavault/mix/v1"

// Mixer expands chunks with entropy filler and inverts the expansion
// exactly. It holds no mutable state and is safe for concurrent use.
type Mixer struct {
	ks *keystate.KeyState
}

func NewMixer(ks *keystate.KeyState) *Mixer {
	return &Mixer{ks: ks}
}

// MixedLen reports the output size Mix produces for n input bytes. The
// filler share of the output equals the vault's entropy ratio, with at least
// one filler byte for non-empty input.
func (m *Mixer) MixedLen(n int) int {
	if n == 0 {
		return 0
	}
	r := m.ks.EntropyRatio
	filler := int(math.Ceil(float64(n) * r / (1 - r)))
	if filler < 1 {
		filler = 1
	}
	return n + filler
}

// Mix expands data into whitened signal plus filler laid out by a
// permutation seeded from (coord.Entropic, coord.Phase, master seed). The
// transform is deterministic per coordinate and longer than the input for
// every non-empty chunk.
func (m *Mixer) Mix(data []byte, coord topology.Coordinate) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	total := m.MixedLen(len(data))
	perm, mask := m.layout(coord, total)

	// Filler positions keep raw keystream bytes; signal positions hold the
	// chunk XORed against the same stream, so the output is uniformly
	// diverse even for constant input.
	out := mask
	for i, pos := range perm[:len(data)] {
		out[pos] = data[i] ^ mask[pos]
	}
	return out
}

// Unmix recomputes the permutation for originalLen signal bytes, extracts
// them from mixed, removes the whitening and verifies that every filler
// position still carries the coordinate's keystream. The mixer is not
// self-describing: originalLen comes from the caller.
func (m *Mixer) Unmix(mixed []byte, coord topology.Coordinate, originalLen int) ([]byte, error) {
	if originalLen < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrCorruptedShard, originalLen)
	}
	if originalLen == 0 {
		if len(mixed) != 0 {
			return nil, fmt.Errorf("%w: %d trailing bytes for empty chunk", ErrCorruptedShard, len(mixed))
		}
		return []byte{}, nil
	}
	total := m.MixedLen(originalLen)
	if len(mixed) != total {
		return nil, fmt.Errorf("%w: have %d bytes, layout requires %d", ErrCorruptedShard, len(mixed), total)
	}

	perm, mask := m.layout(coord, total)
	out := make([]byte, originalLen)
	for i, pos := range perm[:originalLen] {
		out[i] = mixed[pos] ^ mask[pos]
	}
	// Filler positions hold raw keystream; anything else means the mixed
	// bytes were altered after Mix.
	for _, pos := range perm[originalLen:] {
		if mixed[pos] != mask[pos] {
			return nil, fmt.Errorf("%w: filler bytes diverge from coordinate keystream", ErrCorruptedShard)
		}
	}
	return out, nil
}

// layout derives the position permutation and whitening mask for a mixed
// buffer of the given total size. Both come from ChaCha20 streams keyed by
// the coordinate's entropic and phase dimensions under the master seed.
func (m *Mixer) layout(coord topology.Coordinate, total int) (perm []int, mask []byte) {
	var scalars [16]byte
	binary.BigEndian.PutUint64(scalars[0:8], coord.Entropic)
	binary.BigEndian.PutUint64(scalars[8:16], math.Float64bits(coord.Phase))

	d := sha3.New512()
	d.Write(m.ks.MasterSeed[:])
	d.Write([]byte(mixTag))
	d.Write(scalars[:])
	keys := d.Sum(nil)

	mask = make([]byte, total)
	stream(keys[:32]).XORKeyStream(mask, mask)

	perm = permutation(stream(keys[32:64]), total)
	return perm, mask
}

func stream(key []byte) *chacha20.Cipher {
	// Keys are unique per (seed, coordinate), so a fixed nonce is safe.
	c, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		panic(err) // key size is fixed at 32 bytes
	}
	return c
}

// permutation is a Fisher-Yates shuffle of 0..n-1 driven by cipher
// keystream words.
func permutation(c *chacha20.Cipher, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	var word [8]byte
	for i := n - 1; i > 0; i-- {
		c.XORKeyStream(word[:], word[:])
		j := int(binary.BigEndian.Uint64(word[:]) % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
		word = [8]byte{}
	}
	return perm
}
