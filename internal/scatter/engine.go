// Package scatter orchestrates the dimensional scattering transform: it
// chunks plaintext, addresses each chunk through the coordinate space, mixes
// it with entropy filler and spreads the result across loss-tolerant shards.
// The engine computes placement only; physical reads and writes belong to
// the caller's backend.
package scatter

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"sigmavault/internal/entropy"
	"sigmavault/internal/holo"
	"sigmavault/internal/keystate"
	"sigmavault/internal/temporal"
	"sigmavault/internal/topology"
)

// ErrCapacityExceeded reports input larger than the configured chunk bound.
var ErrCapacityExceeded = errors.New("scatter: input exceeds configured capacity")

// The remaining closed error kinds, surfaced where callers interact with the
// engine.
var (
	ErrInvalidKeyMaterial = keystate.ErrInvalidKeyMaterial
	ErrCorruptedShard     = entropy.ErrCorruptedShard
	ErrInsufficientShards = holo.ErrInsufficientShards
)

// chunkBytesPerDepth scales chunk size with the vault's scatter depth.
const chunkBytesPerDepth = 512

// Engine performs scatter/gather for one vault session. It is immutable
// after New and safe for concurrent use from multiple goroutines.
type Engine struct {
	ks    *keystate.KeyState
	mixer *entropy.Mixer
	coder holo.Coder
	cfg   config

	chunkSize int
}

// New builds an engine around a derived key state.
func New(ks *keystate.KeyState, opts ...Option) (*Engine, error) {
	if ks == nil {
		return nil, fmt.Errorf("%w: nil key state", ErrInvalidKeyMaterial)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	coder, err := holo.NewCoder(cfg.numShards, cfg.lossTolerance)
	if err != nil {
		return nil, err
	}
	if cfg.epochs == nil {
		cfg.epochs = &temporal.ClockSource{KS: ks, Interval: cfg.epochInterval}
	}
	if cfg.maxChunks < 1 {
		return nil, fmt.Errorf("scatter: max chunks %d below 1", cfg.maxChunks)
	}

	return &Engine{
		ks:        ks,
		mixer:     entropy.NewMixer(ks),
		coder:     coder,
		cfg:       cfg,
		chunkSize: chunkBytesPerDepth * ks.ScatterDepth,
	}, nil
}

// ChunkSize is the fixed plaintext chunk size, derived from scatter depth.
func (e *Engine) ChunkSize() int { return e.chunkSize }

// NumShards is the shard fan-out per chunk.
func (e *Engine) NumShards() int { return e.coder.NumShards() }

// LossTolerance is how many shards Gather can lose and still reconstruct.
func (e *Engine) LossTolerance() int { return e.coder.LossTolerance() }

// Scatter transforms data into a ScatteredFile. Inputs above the streaming
// threshold take the lazy chunk-at-a-time path so peak memory stays
// proportional to the chunk size, not the input.
func (e *Engine) Scatter(fileID, data []byte) (*ScatteredFile, error) {
	if int64(len(data)) > e.cfg.streamingThreshold {
		return e.ScatterReader(fileID, bytes.NewReader(data))
	}

	nChunks := (len(data) + e.chunkSize - 1) / e.chunkSize
	if nChunks > e.cfg.maxChunks {
		return nil, fmt.Errorf("%w: %d chunks over limit %d", ErrCapacityExceeded, nChunks, e.cfg.maxChunks)
	}

	epoch := e.cfg.epochs.Epoch(fileID)
	sf := e.newScatteredFile(uint64(len(data)), nChunks)
	for c := 0; c < nChunks; c++ {
		end := (c + 1) * e.chunkSize
		if end > len(data) {
			end = len(data)
		}
		e.scatterChunk(sf, fileID, uint64(c), epoch, data[c*e.chunkSize:end])
	}

	e.cfg.log.Debug("scattered",
		zap.Int("size", len(data)),
		zap.Int("chunks", nChunks),
		zap.Int("shards", e.coder.NumShards()),
		zap.Uint64("epoch", epoch))
	return sf, nil
}

// ScatterReader is the streaming entry point: chunks are read, mixed and
// sharded one at a time.
func (e *Engine) ScatterReader(fileID []byte, r io.Reader) (*ScatteredFile, error) {
	epoch := e.cfg.epochs.Epoch(fileID)
	sf := e.newScatteredFile(0, 0)

	buf := make([]byte, e.chunkSize)
	var total uint64
	for c := 0; ; c++ {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			// the bound is on chunks produced, so a read that yields no
			// bytes past the last full chunk stays within capacity
			if c >= e.cfg.maxChunks {
				return nil, fmt.Errorf("%w: over %d chunks", ErrCapacityExceeded, e.cfg.maxChunks)
			}
			// scatterChunk hashes and mixes without retaining the buffer,
			// so it is safe to reuse across iterations
			e.scatterChunk(sf, fileID, uint64(c), epoch, buf[:n])
			total += uint64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scatter: read input: %w", err)
		}
	}
	sf.OriginalSize = total

	e.cfg.log.Debug("scattered stream",
		zap.Uint64("size", total),
		zap.Int("shards", e.coder.NumShards()),
		zap.Uint64("epoch", epoch))
	return sf, nil
}

// Gather inverts Scatter: reconstruct each mixed chunk from its shard
// pieces, unmix it and reassemble in order. Tampered or truncated shards
// surface as ErrCorruptedShard; losing more shards than the tolerance
// surfaces as ErrInsufficientShards.
func (e *Engine) Gather(sf *ScatteredFile) ([]byte, error) {
	if sf == nil {
		return nil, fmt.Errorf("%w: nil scattered file", ErrCorruptedShard)
	}
	if len(sf.Shards) != e.coder.NumShards() {
		return nil, fmt.Errorf("%w: %d shard lists, engine uses %d", ErrCorruptedShard, len(sf.Shards), e.coder.NumShards())
	}
	if sf.OriginalSize == 0 {
		return []byte{}, nil
	}

	size := int(sf.OriginalSize)
	nChunks := (size + e.chunkSize - 1) / e.chunkSize
	if sf.Chunks() != nChunks {
		return nil, fmt.Errorf("%w: %d stored chunks, size implies %d", ErrCorruptedShard, sf.Chunks(), nChunks)
	}

	out := make([]byte, 0, size)
	pieces := make([][]byte, e.coder.NumShards())
	for c := 0; c < nChunks; c++ {
		chunkLen := e.chunkSize
		if c == nChunks-1 {
			chunkLen = size - c*e.chunkSize
		}

		var coord topology.Coordinate
		found := false
		for i, list := range sf.Shards {
			pieces[i] = nil
			if c < len(list) {
				pieces[i] = list[c].Bytes
				if !found && list[c].Bytes != nil {
					coord = list[c].Coord
					found = true
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: chunk %d has no surviving pieces", ErrInsufficientShards, c)
		}

		mixed, err := e.coder.Reconstruct(pieces, e.mixer.MixedLen(chunkLen))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c, err)
		}
		chunk, err := e.mixer.Unmix(mixed, coord, chunkLen)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c, err)
		}
		if topology.SemanticFingerprint(chunk) != coord.Semantic {
			return nil, fmt.Errorf("%w: chunk %d content fingerprint mismatch", ErrCorruptedShard, c)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (e *Engine) newScatteredFile(size uint64, chunkCap int) *ScatteredFile {
	sf := &ScatteredFile{
		OriginalSize: size,
		Shards:       make([][]ShardEntry, e.coder.NumShards()),
	}
	for i := range sf.Shards {
		sf.Shards[i] = make([]ShardEntry, 0, chunkCap)
	}
	return sf
}

func (e *Engine) scatterChunk(sf *ScatteredFile, fileID []byte, idx, epoch uint64, chunk []byte) {
	coord := topology.Derive(e.ks, fileID, idx, epoch)
	coord.Semantic = topology.SemanticFingerprint(chunk)

	mixed := e.mixer.Mix(chunk, coord)
	for i, piece := range e.coder.CreateShards(mixed) {
		pc := coord
		pc.Holographic = i
		sf.Shards[i] = append(sf.Shards[i], ShardEntry{Coord: pc, Bytes: piece})
	}
}
