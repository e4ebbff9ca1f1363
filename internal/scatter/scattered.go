package scatter

import "sigmavault/internal/topology"

// ShardEntry is one mixed chunk piece and the coordinate addressing it. The
// coordinate's Holographic field names the shard the piece belongs to.
type ShardEntry struct {
	Coord topology.Coordinate
	Bytes []byte
}

// ScatteredFile is the caller-owned result of Scatter: per-shard ordered
// lists of (coordinate, mixed bytes) pairs plus the original size needed to
// invert the transform. The engine never persists it; callers map each
// coordinate's Spatial field to physical placement and keep whatever
// manifest format suits them; the value is plain scalars and byte blobs
// throughout.
type ScatteredFile struct {
	OriginalSize uint64
	Shards       [][]ShardEntry
}

// Chunks reports the number of chunks per shard list.
func (sf *ScatteredFile) Chunks() int {
	n := 0
	for _, list := range sf.Shards {
		if len(list) > n {
			n = len(list)
		}
	}
	return n
}

// DropShard marks an entire shard as lost, as a caller would after a failed
// backend read. Gather tolerates up to the engine's loss tolerance of these.
func (sf *ScatteredFile) DropShard(i int) {
	if i < 0 || i >= len(sf.Shards) {
		return
	}
	for j := range sf.Shards[i] {
		sf.Shards[i][j].Bytes = nil
	}
}
