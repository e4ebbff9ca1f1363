package keysource

import (
	"bytes"
	"errors"
	"testing"

	"sigmavault/internal/keystate"
)

// cheap cost profile so tests stay fast
func testParams() Params {
	return Params{M: 8 * 1024, T: 1, P: 1, Salt: bytes.Repeat([]byte{7}, 32)}
}

func TestMasterKeyDeterministic(t *testing.T) {
	secret := bytes.Repeat([]byte{1}, DeviceSecretSize)
	pass := []byte("correct horse battery staple")

	a, err := MasterKey(secret, pass, testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	b, err := MasterKey(secret, pass, testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same factors produced different master keys")
	}
	if len(a) != MasterKeySize {
		t.Fatalf("master key size %d, want %d", len(a), MasterKeySize)
	}
}

func TestMasterKeyFactorsMatter(t *testing.T) {
	secret := bytes.Repeat([]byte{1}, DeviceSecretSize)
	base, err := MasterKey(secret, []byte("pass"), testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}

	otherPass, err := MasterKey(secret, []byte("Pass"), testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	if bytes.Equal(base, otherPass) {
		t.Fatal("passphrase change did not change the master key")
	}

	otherSecret, err := MasterKey(bytes.Repeat([]byte{2}, DeviceSecretSize), []byte("pass"), testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	if bytes.Equal(base, otherSecret) {
		t.Fatal("device secret change did not change the master key")
	}
}

func TestMasterKeyEmptyPassphrase(t *testing.T) {
	_, err := MasterKey(make([]byte, DeviceSecretSize), nil, testParams())
	if !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("want ErrEmptyPassphrase, got %v", err)
	}
}

func TestMasterKeyFeedsKeyState(t *testing.T) {
	secret, err := GenerateDeviceSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	master, err := MasterKey(secret, []byte("pass"), testParams())
	if err != nil {
		t.Fatalf("master key: %v", err)
	}
	if _, err := keystate.Derive(master); err != nil {
		t.Fatalf("derived master key rejected by key state derivation: %v", err)
	}
}

func TestSealOpenDeviceSecret(t *testing.T) {
	secret, err := GenerateDeviceSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	pass := []byte("unlock-me")

	sealed, err := SealDeviceSecret(secret, pass, testParams())
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := OpenDeviceSecret(sealed, pass, testParams())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(secret, got) {
		t.Fatal("device secret mismatch after seal/open")
	}

	if _, err := OpenDeviceSecret(sealed, []byte("wrong"), testParams()); !errors.Is(err, ErrSealedSecretCorrupt) {
		t.Fatalf("want ErrSealedSecretCorrupt for wrong passphrase, got %v", err)
	}

	mut := append([]byte(nil), sealed...)
	mut[len(mut)-1] ^= 0xFF
	if _, err := OpenDeviceSecret(mut, pass, testParams()); !errors.Is(err, ErrSealedSecretCorrupt) {
		t.Fatalf("want ErrSealedSecretCorrupt after tamper, got %v", err)
	}

	if _, err := OpenDeviceSecret([]byte("short"), pass, testParams()); !errors.Is(err, ErrSealedSecretCorrupt) {
		t.Fatalf("want ErrSealedSecretCorrupt for truncated blob, got %v", err)
	}
}
