package keystate

import (
	"bytes"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"
)

func randKey(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestDeriveDeterministic(t *testing.T) {
	master := randKey(t, 64)
	a, err := Derive(master)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := Derive(master)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if *a != *b {
		t.Fatalf("same master key produced different states:\n%+v\n%+v", a, b)
	}
}

func TestDeriveShortKey(t *testing.T) {
	_, err := Derive(randKey(t, MinMasterKeySize-1))
	if !errors.Is(err, ErrInvalidKeyMaterial) {
		t.Fatalf("want ErrInvalidKeyMaterial, got %v", err)
	}
	if _, err := Derive(nil); !errors.Is(err, ErrInvalidKeyMaterial) {
		t.Fatalf("want ErrInvalidKeyMaterial for nil key, got %v", err)
	}
}

func TestDeriveParameterRanges(t *testing.T) {
	for i := 0; i < 32; i++ {
		ks, err := Derive(randKey(t, 64))
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		if ks.EntropyRatio <= 0 || ks.EntropyRatio >= 1 {
			t.Fatalf("entropy ratio out of (0,1): %v", ks.EntropyRatio)
		}
		if ks.ScatterDepth < DepthMin || ks.ScatterDepth > DepthMax {
			t.Fatalf("scatter depth out of bounds: %d", ks.ScatterDepth)
		}
		if !new(big.Int).SetUint64(ks.TemporalPrime).ProbablyPrime(0) {
			t.Fatalf("temporal prime is not prime: %d", ks.TemporalPrime)
		}
	}
}

func TestDeriveDistinctKeys(t *testing.T) {
	a, err := Derive(randKey(t, 64))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := Derive(randKey(t, 64))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a.MasterSeed == b.MasterSeed {
		t.Fatal("distinct master keys produced the same seed")
	}
}

func TestZeroWipesSeed(t *testing.T) {
	ks, err := Derive(randKey(t, 64))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	ks.Zero()
	if !bytes.Equal(ks.MasterSeed[:], make([]byte, len(ks.MasterSeed))) {
		t.Fatal("seed not wiped")
	}
}

func TestNextPrime(t *testing.T) {
	cases := []struct{ in, want uint64 }{
		{0, 2},
		{2, 2},
		{3, 3},
		{4, 5},
		{14, 17},
		{7919, 7919},
		{7920, 7927},
	}
	for _, c := range cases {
		if got := nextPrime(c.in); got != c.want {
			t.Errorf("nextPrime(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
