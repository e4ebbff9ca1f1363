package keysource

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	xchacha "golang.org/x/crypto/chacha20poly1305"
)

var ErrSealedSecretCorrupt = errors.New("keysource: sealed device secret corrupt or wrong passphrase")

const sealAAD = "sigmavault/device-secret/v1"

// SealDeviceSecret wraps the device secret under the passphrase with
// XChaCha20-Poly1305 so it can rest on disk. Layout: [nonce||ciphertext].
func SealDeviceSecret(secret, passphrase []byte, p Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	key := argon2.IDKey(passphrase, p.Salt, p.T, p.M, p.P, xchacha.KeySize)
	defer Zero(key)

	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, xchacha.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(secret)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, secret, []byte(sealAAD)), nil
}

// OpenDeviceSecret inverts SealDeviceSecret.
func OpenDeviceSecret(sealed, passphrase []byte, p Params) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(sealed) < xchacha.NonceSizeX {
		return nil, ErrSealedSecretCorrupt
	}
	key := argon2.IDKey(passphrase, p.Salt, p.T, p.M, p.P, xchacha.KeySize)
	defer Zero(key)

	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	secret, err := aead.Open(nil, sealed[:xchacha.NonceSizeX], sealed[xchacha.NonceSizeX:], []byte(sealAAD))
	if err != nil {
		return nil, ErrSealedSecretCorrupt
	}
	return secret, nil
}
