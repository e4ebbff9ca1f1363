package medium

import (
	"bytes"
	"context"
	"os"
	"testing"
)

// Runs only against a real deployment:
//
//	SIGMAVAULT_TEST_MONGO_URI=mongodb://localhost:27017 go test ./internal/medium/
func TestMongoMedium(t *testing.T) {
	uri := os.Getenv("SIGMAVAULT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SIGMAVAULT_TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	m, err := NewMongoMedium(ctx, uri, "sigmavault_test", "blocks", 1<<20)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer m.Close(ctx)

	// spans a block boundary on purpose
	off := int64(mongoBlockSize - 10)
	data := bytes.Repeat([]byte{0xC3}, 64)
	if err := m.Write(ctx, off, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := m.Read(ctx, off, len(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, got) {
		t.Fatal("mongo round trip mismatch across block boundary")
	}
}
