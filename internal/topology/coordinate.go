// Package topology maps (key state, file identity, chunk index, epoch) into
// the 8-dimensional coordinate space that addresses scattered chunks.
//
// Every address-determining dimension is a keyed hash of inputs known before
// the chunk content is read back, so lookup never depends on data the reader
// does not yet have. The one content-derived field, Semantic, is an integrity
// fingerprint only.
package topology

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/sha3"

	"sigmavault/internal/keystate"
)

// Coordinate is the 8-scalar address of a chunk within the dimensional
// manifold. Holographic is assigned by the scatter engine when the chunk is
// split across shards; Derive leaves it at zero.
type Coordinate struct {
	Spatial     uint64
	Temporal    uint64
	Entropic    uint64
	Semantic    uint64
	Fractal     uint8
	Phase       float64
	Topological uint64
	Holographic int
}

// Dimension tags keep the per-dimension digests independent.
const (
	tagSpatial     = "sigmavault/dim/spatial"
	tagTemporal    = "sigmavault/dim/temporal"
	tagEntropic    = "sigmavault/dim/entropic"
	tagFractal     = "sigmavault/dim/fractal"
	tagPhase       = "sigmavault/dim/phase"
	tagTopological = "sigmavault/dim/topological"
)

// fractalLevels bounds the Fractal dimension to a small recursion depth.
const fractalLevels = 8

// Derive computes the coordinate for one chunk. Identical inputs always yield
// an identical coordinate; without the master seed the output is
// computationally unpredictable.
func Derive(ks *keystate.KeyState, fileID []byte, chunkIndex, epoch uint64) Coordinate {
	return Coordinate{
		Spatial:     dimension(ks, tagSpatial, fileID, chunkIndex, epoch),
		Temporal:    dimension(ks, tagTemporal, fileID, chunkIndex, epoch),
		Entropic:    dimension(ks, tagEntropic, fileID, chunkIndex, epoch),
		Fractal:     uint8(dimension(ks, tagFractal, fileID, chunkIndex, epoch) % fractalLevels),
		Phase:       phase(dimension(ks, tagPhase, fileID, chunkIndex, epoch)),
		Topological: dimension(ks, tagTopological, fileID, chunkIndex, epoch),
	}
}

// SemanticFingerprint is the truncated content digest stored in the Semantic
// dimension. It verifies integrity after gather and never feeds placement.
func SemanticFingerprint(chunk []byte) uint64 {
	sum := sha3.Sum256(chunk)
	return binary.BigEndian.Uint64(sum[:8])
}

func dimension(ks *keystate.KeyState, tag string, fileID []byte, chunkIndex, epoch uint64) uint64 {
	var scalars [24]byte
	binary.BigEndian.PutUint64(scalars[0:8], uint64(len(fileID)))
	binary.BigEndian.PutUint64(scalars[8:16], chunkIndex)
	binary.BigEndian.PutUint64(scalars[16:24], epoch)

	d := sha3.New512()
	d.Write(ks.MasterSeed[:])
	d.Write([]byte(tag))
	d.Write(scalars[:])
	d.Write(fileID)
	return binary.BigEndian.Uint64(d.Sum(nil)[:8])
}

// phase maps a digest word into [0, 2π).
func phase(v uint64) float64 {
	return 2 * math.Pi * (float64(v>>11) / float64(1<<53))
}
