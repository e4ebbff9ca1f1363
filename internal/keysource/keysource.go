// Package keysource derives master key bytes from the hybrid device-secret
// plus passphrase scheme. It sits upstream of key-state derivation and only
// ever produces key material; nothing here touches the scattering transform.
package keysource

import (
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the output size handed to key-state derivation.
const MasterKeySize = 64

// DeviceSecretSize is the raw device factor size.
const DeviceSecretSize = 64

var ErrEmptyPassphrase = errors.New("keysource: empty passphrase")

// Params are the argon2id cost parameters for the passphrase factor.
type Params struct {
	M    uint32
	T    uint32
	P    uint8
	Salt []byte
}

// DefaultParams is the desktop-grade cost profile.
func DefaultParams() Params {
	salt := make([]byte, 32)
	_, _ = rand.Read(salt)
	return Params{M: 256 * 1024, T: 3, P: 4, Salt: salt}
}

// GenerateDeviceSecret creates a fresh device factor.
func GenerateDeviceSecret() ([]byte, error) {
	secret := make([]byte, DeviceSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// MasterKey combines both factors into MasterKeySize bytes: the passphrase
// is stretched with argon2id, then the device secret is expanded under the
// stretched key with HKDF-SHA-512. Both factors are required; neither alone
// recovers the output.
func MasterKey(deviceSecret, passphrase []byte, p Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	stretched := argon2.IDKey(passphrase, p.Salt, p.T, p.M, p.P, 32)
	defer Zero(stretched)

	out := make([]byte, MasterKeySize)
	r := hkdf.New(sha512.New, deviceSecret, stretched, []byte("sigmavault/master/v1"))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Zero overwrites key material in memory.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
