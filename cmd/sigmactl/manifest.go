package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sigmavault/internal/medium"
	"sigmavault/internal/scatter"
	"sigmavault/internal/topology"
)

// manifest is sigmactl's own record of where shard bytes landed. The engine
// deliberately defines no such format; the caller that owns the medium owns
// the manifest too.
type manifest struct {
	Version      int               `json:"version"`
	FileID       string            `json:"file_id"`
	OriginalSize uint64            `json:"original_size"`
	Shards       [][]manifestChunk `json:"shards"`
}

type manifestChunk struct {
	Coord  coordJSON `json:"coord"`
	Offset int64     `json:"offset"`
	Length int       `json:"length"`
}

type coordJSON struct {
	Spatial     uint64  `json:"spatial"`
	Temporal    uint64  `json:"temporal"`
	Entropic    uint64  `json:"entropic"`
	Semantic    uint64  `json:"semantic"`
	Fractal     uint8   `json:"fractal"`
	Phase       float64 `json:"phase"`
	Topological uint64  `json:"topological"`
	Holographic int     `json:"holographic"`
}

func toJSONCoord(c topology.Coordinate) coordJSON {
	return coordJSON(c)
}

func (c coordJSON) coordinate() topology.Coordinate {
	return topology.Coordinate(c)
}

// placeShards writes every shard piece at the offset its spatial dimension
// maps to and records the placement.
func placeShards(ctx context.Context, m medium.Medium, fileID uuid.UUID, sf *scatter.ScatteredFile) (*manifest, error) {
	size, err := m.Size(ctx)
	if err != nil {
		return nil, err
	}

	man := &manifest{
		Version:      1,
		FileID:       fileID.String(),
		OriginalSize: sf.OriginalSize,
		Shards:       make([][]manifestChunk, len(sf.Shards)),
	}
	var alloc allocator
	for i, list := range sf.Shards {
		man.Shards[i] = make([]manifestChunk, 0, len(list))
		for _, ent := range list {
			off, err := medium.Offset(ent.Coord.Spatial, size, len(ent.Bytes))
			if err != nil {
				return nil, err
			}
			// the spatial mapping is collision-oblivious; probe past any
			// interval this run already occupied
			off, err = alloc.claim(off, len(ent.Bytes), size)
			if err != nil {
				return nil, err
			}
			if err := m.Write(ctx, off, ent.Bytes); err != nil {
				return nil, err
			}
			man.Shards[i] = append(man.Shards[i], manifestChunk{
				Coord:  toJSONCoord(ent.Coord),
				Offset: off,
				Length: len(ent.Bytes),
			})
		}
	}
	return man, nil
}

// collect reads shard bytes back from the medium. Unreadable pieces become
// nil entries; the engine's redundancy absorbs them up to its tolerance.
func (man *manifest) collect(ctx context.Context, m medium.Medium, log *zap.Logger) (*scatter.ScatteredFile, error) {
	sf := &scatter.ScatteredFile{
		OriginalSize: man.OriginalSize,
		Shards:       make([][]scatter.ShardEntry, len(man.Shards)),
	}
	for i, list := range man.Shards {
		sf.Shards[i] = make([]scatter.ShardEntry, 0, len(list))
		for c, mc := range list {
			ent := scatter.ShardEntry{Coord: mc.Coord.coordinate()}
			data, err := m.Read(ctx, mc.Offset, mc.Length)
			if err != nil {
				log.Warn("shard piece unreadable",
					zap.Int("shard", i),
					zap.Int("chunk", c),
					zap.Error(err))
			} else {
				ent.Bytes = data
			}
			sf.Shards[i] = append(sf.Shards[i], ent)
		}
	}
	return sf, nil
}

func (man *manifest) save(path string) error {
	b, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

func loadManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var man manifest
	if err := json.Unmarshal(b, &man); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &man, nil
}
