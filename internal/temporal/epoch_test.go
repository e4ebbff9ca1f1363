package temporal

import (
	"crypto/rand"
	"testing"
	"time"

	"sigmavault/internal/keystate"
)

func testState(t *testing.T) *keystate.KeyState {
	t.Helper()
	master := make([]byte, 64)
	if _, err := rand.Read(master); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	ks, err := keystate.Derive(master)
	if err != nil {
		t.Fatalf("derive key state: %v", err)
	}
	return ks
}

func TestEpochAdvancesWithBucket(t *testing.T) {
	ks := testState(t)
	fileID := []byte("file-a")
	prev := Epoch(ks, fileID, 0)
	for b := uint64(1); b < 64; b++ {
		cur := Epoch(ks, fileID, b)
		if cur <= prev {
			t.Fatalf("epoch not increasing at bucket %d: %d <= %d", b, cur, prev)
		}
		prev = cur
	}
}

func TestEpochDiffersPerFile(t *testing.T) {
	ks := testState(t)
	if Epoch(ks, []byte("file-a"), 3) == Epoch(ks, []byte("file-b"), 3) {
		t.Fatal("distinct files share an epoch within one bucket")
	}
}

func TestBucket(t *testing.T) {
	t0 := time.Unix(0, 0)
	if Bucket(t0, time.Hour) != 0 {
		t.Fatal("bucket of epoch start should be 0")
	}
	if Bucket(t0.Add(time.Hour), time.Hour) != 1 {
		t.Fatal("bucket should advance after one interval")
	}
	if Bucket(t0.Add(59*time.Minute), time.Hour) != 0 {
		t.Fatal("bucket advanced before the interval elapsed")
	}
	// zero interval falls back to the default
	if Bucket(t0.Add(DefaultInterval), 0) != 1 {
		t.Fatal("default interval not applied")
	}
}

func TestClockSource(t *testing.T) {
	ks := testState(t)
	now := time.Unix(1_700_000_000, 0)
	src := &ClockSource{KS: ks, Interval: time.Hour, Now: func() time.Time { return now }}

	a := src.Epoch([]byte("f"))
	if a != src.Epoch([]byte("f")) {
		t.Fatal("epoch changed inside a bucket")
	}
	now = now.Add(2 * time.Hour)
	if src.Epoch([]byte("f")) <= a {
		t.Fatal("epoch did not advance with the clock")
	}
}

func TestCounterSource(t *testing.T) {
	ks := testState(t)
	src := &CounterSource{KS: ks}
	a := src.Epoch([]byte("f"))
	src.Advance()
	if src.Epoch([]byte("f")) <= a {
		t.Fatal("epoch did not advance with the counter")
	}
}
