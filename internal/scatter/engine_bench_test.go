package scatter

import (
	"bytes"
	"crypto/rand"
	"testing"

	"sigmavault/internal/keystate"
	"sigmavault/internal/temporal"
)

func benchEngine(b *testing.B) *Engine {
	b.Helper()
	ks, err := keystate.Derive(bytes.Repeat([]byte{0x42}, 64))
	if err != nil {
		b.Fatalf("derive: %v", err)
	}
	e, err := New(ks, WithEpochSource(&temporal.CounterSource{KS: ks}))
	if err != nil {
		b.Fatalf("new engine: %v", err)
	}
	return e
}

func BenchmarkScatter64K(b *testing.B) {
	e := benchEngine(b)
	data := make([]byte, 64<<10)
	rand.Read(data)
	fileID := []byte("bench-file")
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Scatter(fileID, data); err != nil {
			b.Fatalf("scatter: %v", err)
		}
	}
}

func BenchmarkGather64K(b *testing.B) {
	e := benchEngine(b)
	data := make([]byte, 64<<10)
	rand.Read(data)
	sf, err := e.Scatter([]byte("bench-file"), data)
	if err != nil {
		b.Fatalf("scatter: %v", err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Gather(sf); err != nil {
			b.Fatalf("gather: %v", err)
		}
	}
}
