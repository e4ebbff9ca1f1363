// Package holo encodes byte buffers into loss-tolerant shard sets. Data is
// packed into field elements and treated as evaluations of a polynomial;
// extra shards carry evaluations at further points, so any
// numShards-lossTolerance intact shards reconstruct the original exactly.
// This is real redundancy coding, never plain splitting.
package holo

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrInsufficientShards = errors.New("holo: not enough intact shards to reconstruct")

// MinShards is the smallest shard count a Coder accepts.
const MinShards = 2

// Coder is an immutable shard encoder/decoder for a fixed geometry.
type Coder struct {
	numShards     int
	lossTolerance int
}

// NewCoder validates the geometry: at least two shards, and a loss tolerance
// of at least one that still leaves one data-bearing shard.
func NewCoder(numShards, lossTolerance int) (Coder, error) {
	if numShards < MinShards {
		return Coder{}, fmt.Errorf("holo: numShards %d below minimum %d", numShards, MinShards)
	}
	if lossTolerance < 1 || lossTolerance >= numShards {
		return Coder{}, fmt.Errorf("holo: loss tolerance %d must be in [1, %d]", lossTolerance, numShards-1)
	}
	return Coder{numShards: numShards, lossTolerance: lossTolerance}, nil
}

func (c Coder) NumShards() int     { return c.numShards }
func (c Coder) LossTolerance() int { return c.lossTolerance }

// dataShards is how many shards carry the polynomial's defining values.
func (c Coder) dataShards() int { return c.numShards - c.lossTolerance }

// stripes is the number of element rows needed for n data bytes.
func (c Coder) stripes(n int) int {
	elements := (n + elementSize - 1) / elementSize
	k := c.dataShards()
	return (elements + k - 1) / k
}

// ShardLen reports the byte length of every shard produced for n data bytes.
func (c Coder) ShardLen(n int) int {
	return c.stripes(n) * evalSize
}

// CreateShards encodes data into exactly numShards equally sized pieces.
// Shards 0..k-1 carry the packed data elements; the rest carry polynomial
// evaluations past the data points. Empty input yields numShards empty
// shards.
func (c Coder) CreateShards(data []byte) [][]byte {
	k := c.dataShards()
	nStripes := c.stripes(len(data))

	shards := make([][]byte, c.numShards)
	for i := range shards {
		shards[i] = make([]byte, 0, nStripes*evalSize)
	}

	xs := make([]int64, k)
	for j := range xs {
		xs[j] = int64(j + 1)
	}

	ys := make([]*big.Int, k)
	var elem [elementSize]byte
	buf := make([]byte, evalSize)

	for s := 0; s < nStripes; s++ {
		for j := 0; j < k; j++ {
			elem = [elementSize]byte{}
			off := (s*k + j) * elementSize
			if off < len(data) {
				copy(elem[:], data[off:])
			}
			ys[j] = new(big.Int).SetBytes(elem[:])
		}
		for i := 0; i < c.numShards; i++ {
			var v *big.Int
			if i < k {
				v = ys[i]
			} else {
				v = lagrangeEval(xs, ys, int64(i+1))
			}
			v.FillBytes(buf)
			shards[i] = append(shards[i], buf...)
		}
	}
	return shards
}

// Reconstruct recovers exactly originalLen bytes from the shard set. Missing
// shards are nil entries; shards of the wrong length or with values outside
// the field are treated as missing. Fewer intact shards than
// numShards-lossTolerance fails with ErrInsufficientShards.
func (c Coder) Reconstruct(shards [][]byte, originalLen int) ([]byte, error) {
	if len(shards) != c.numShards {
		return nil, fmt.Errorf("holo: got %d shard slots, geometry has %d", len(shards), c.numShards)
	}
	if originalLen == 0 {
		return []byte{}, nil
	}

	k := c.dataShards()
	nStripes := c.stripes(originalLen)
	want := nStripes * evalSize

	// Parse every usable shard up front; anything malformed counts as lost.
	parsed := make([][]*big.Int, c.numShards)
	intact := make([]int, 0, c.numShards)
	for i, raw := range shards {
		vals, ok := parseShard(raw, want)
		if !ok {
			continue
		}
		parsed[i] = vals
		intact = append(intact, i)
	}
	if len(intact) < k {
		return nil, fmt.Errorf("%w: have %d of %d required", ErrInsufficientShards, len(intact), k)
	}
	intact = intact[:k]

	xs := make([]int64, k)
	ys := make([]*big.Int, k)
	for j, idx := range intact {
		xs[j] = int64(idx + 1)
	}

	out := make([]byte, 0, nStripes*k*elementSize)
	elem := make([]byte, elementSize)
	for s := 0; s < nStripes; s++ {
		for j, idx := range intact {
			ys[j] = parsed[idx][s]
		}
		for j := 0; j < k; j++ {
			var v *big.Int
			if parsed[j] != nil {
				v = parsed[j][s] // data shard survived, no interpolation needed
			} else {
				v = lagrangeEval(xs, ys, int64(j+1))
			}
			if v.BitLen() > elementSize*8 {
				// interpolation through corrupted values cannot yield a
				// packed data element; the shard set is short of intact ones
				return nil, fmt.Errorf("%w: recovered element outside data range", ErrInsufficientShards)
			}
			v.FillBytes(elem)
			out = append(out, elem...)
		}
	}
	// The last stripe's elements past originalLen were packed from zeros;
	// anything else there is a corrupted shard the fan-out cannot vouch for.
	for _, b := range out[originalLen:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: nonzero padding past recovered data", ErrInsufficientShards)
		}
	}
	return out[:originalLen], nil
}

func parseShard(raw []byte, want int) ([]*big.Int, bool) {
	if raw == nil || len(raw) != want {
		return nil, false
	}
	vals := make([]*big.Int, 0, want/evalSize)
	for off := 0; off < len(raw); off += evalSize {
		v := new(big.Int).SetBytes(raw[off : off+evalSize])
		if v.Cmp(fieldOrder) >= 0 {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, true
}
