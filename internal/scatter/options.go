package scatter

import (
	"time"

	"go.uber.org/zap"

	"sigmavault/internal/temporal"
)

const (
	DefaultNumShards     = 8
	DefaultLossTolerance = 2

	// DefaultStreamingThreshold is where Scatter switches to the chunk-at-a-
	// time path. Conservative middle ground; tune per deployment.
	DefaultStreamingThreshold = 32 << 20

	// DefaultMaxChunks bounds a single scatter call.
	DefaultMaxChunks = 1 << 20
)

type config struct {
	numShards          int
	lossTolerance      int
	streamingThreshold int64
	maxChunks          int
	epochInterval      time.Duration
	epochs             temporal.Source
	log                *zap.Logger
}

func defaultConfig() config {
	return config{
		numShards:          DefaultNumShards,
		lossTolerance:      DefaultLossTolerance,
		streamingThreshold: DefaultStreamingThreshold,
		maxChunks:          DefaultMaxChunks,
		epochInterval:      temporal.DefaultInterval,
		log:                zap.NewNop(),
	}
}

type Option func(*config)

// WithNumShards sets how many holographic shards each chunk spreads across.
func WithNumShards(n int) Option {
	return func(c *config) { c.numShards = n }
}

// WithLossTolerance sets how many shards may be lost while Gather still
// reconstructs exactly.
func WithLossTolerance(n int) Option {
	return func(c *config) { c.lossTolerance = n }
}

// WithStreamingThreshold sets the input size above which Scatter consumes
// chunks lazily instead of walking a preallocated slice.
func WithStreamingThreshold(n int64) Option {
	return func(c *config) { c.streamingThreshold = n }
}

// WithMaxChunks caps the chunk count a single call may produce.
func WithMaxChunks(n int) Option {
	return func(c *config) { c.maxChunks = n }
}

// WithEpochInterval sets the wall-clock bucket width of the default epoch
// source.
func WithEpochInterval(d time.Duration) Option {
	return func(c *config) { c.epochInterval = d }
}

// WithEpochSource replaces the default wall-clock epoch source, e.g. with a
// temporal.CounterSource for logical reshuffling.
func WithEpochSource(s temporal.Source) Option {
	return func(c *config) { c.epochs = s }
}

// WithLogger attaches a logger; the default is a nop.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
