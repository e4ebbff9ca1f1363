package tests

import (
	"bytes"
	"testing"

	"sigmavault/internal/keystate"
	"sigmavault/internal/scatter"
	"sigmavault/internal/temporal"
)

func FuzzScatterGather(f *testing.F) {
	f.Add([]byte("file-id"), []byte("Hello SIGMAVAULT!"))
	f.Add([]byte{}, []byte{})
	f.Add([]byte{0}, bytes.Repeat([]byte{0xAA}, 5000))

	master := bytes.Repeat([]byte{0x13}, 64)
	ks, err := keystate.Derive(master)
	if err != nil {
		f.Fatal(err)
	}
	eng, err := scatter.New(ks,
		scatter.WithEpochSource(&temporal.CounterSource{KS: ks}),
		scatter.WithMaxChunks(1024),
	)
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, fileID, data []byte) {
		sf, err := eng.Scatter(fileID, data)
		if err != nil {
			t.Skip() // capacity bound hit
		}
		got, err := eng.Gather(sf)
		if err != nil {
			t.Fatalf("gather err: %v", err)
		}
		if got == nil {
			t.Fatal("gather returned nil")
		}
		if !bytes.Equal(data, got) {
			t.Fatal("round trip mismatch")
		}
	})
}
