package keystate

import (
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// MinMasterKeySize is the smallest master key Derive accepts. Upstream key
// sources should supply 64 bytes.
const MinMasterKeySize = 32

const (
	// DepthMin and DepthMax bound ScatterDepth.
	DepthMin = 4
	DepthMax = 16
)

var ErrInvalidKeyMaterial = errors.New("keystate: master key material too short")

// Domain separation tags for the HKDF expansion rounds. Changing any of these
// changes every derived vault parameter, so they are versioned.
const (
	tagSeed    = "sigmavault/seed/v1"
	tagPrime   = "sigmavault/prime/v1"
	tagEntropy = "sigmavault/entropy/v1"
	tagDepth   = "sigmavault/depth/v1"
)

// KeyState holds the per-vault scattering parameters expanded from the master
// key. It is immutable after Derive and never persisted; callers wipe it with
// Zero when the session ends.
type KeyState struct {
	MasterSeed    [32]byte
	TemporalPrime uint64
	EntropyRatio  float64
	ScatterDepth  int
}

// Derive expands masterKey into a KeyState. The expansion is a pure function:
// the same key always yields the same state, and the state does not reveal
// the key.
func Derive(masterKey []byte) (*KeyState, error) {
	if len(masterKey) < MinMasterKeySize {
		return nil, ErrInvalidKeyMaterial
	}

	ks := &KeyState{}
	if err := expand(masterKey, tagSeed, ks.MasterSeed[:]); err != nil {
		return nil, err
	}

	var buf [8]byte
	if err := expand(masterKey, tagPrime, buf[:]); err != nil {
		return nil, err
	}
	ks.TemporalPrime = nextPrime(uint64(binary.BigEndian.Uint32(buf[:4])) | 1)

	if err := expand(masterKey, tagEntropy, buf[:1]); err != nil {
		return nil, err
	}
	// (b+1)/257 keeps the ratio strictly inside (0,1).
	ks.EntropyRatio = float64(int(buf[0])+1) / 257.0

	if err := expand(masterKey, tagDepth, buf[:1]); err != nil {
		return nil, err
	}
	ks.ScatterDepth = DepthMin + int(buf[0])%(DepthMax-DepthMin+1)

	return ks, nil
}

// Zero wipes the master seed. The scalar parameters are not secret on their
// own and are left intact so late log lines do not read garbage.
func (ks *KeyState) Zero() {
	for i := range ks.MasterSeed {
		ks.MasterSeed[i] = 0
	}
}

func expand(masterKey []byte, tag string, out []byte) error {
	r := hkdf.New(sha512.New, masterKey, nil, []byte(tag))
	_, err := io.ReadFull(r, out)
	return err
}

// nextPrime returns the smallest prime >= n. The search walks odd candidates;
// ProbablyPrime(0) applies Baillie-PSW, which is exact for every uint64.
func nextPrime(n uint64) uint64 {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	p := new(big.Int)
	for {
		if p.SetUint64(n); p.ProbablyPrime(0) {
			return n
		}
		n += 2
	}
}
