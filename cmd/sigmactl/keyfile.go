package main

import (
	"encoding/json"
	"fmt"
	"os"

	"sigmavault/internal/keysource"
)

// keyFile is the on-disk sealed device factor plus the argon2id parameters
// needed to re-derive the sealing key.
type keyFile struct {
	Version int    `json:"version"`
	Algo    string `json:"algo"` // "argon2id"
	M       uint32 `json:"m"`
	T       uint32 `json:"t"`
	P       uint8  `json:"p"`
	Salt    []byte `json:"salt"`
	Sealed  []byte `json:"sealed"`
}

func createKeyFile(path string, passphrase []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file already exists: %s", path)
	}
	secret, err := keysource.GenerateDeviceSecret()
	if err != nil {
		return err
	}
	defer keysource.Zero(secret)

	params := keysource.DefaultParams()
	sealed, err := keysource.SealDeviceSecret(secret, passphrase, params)
	if err != nil {
		return err
	}
	kf := keyFile{
		Version: 1,
		Algo:    "argon2id",
		M:       params.M,
		T:       params.T,
		P:       params.P,
		Salt:    params.Salt,
		Sealed:  sealed,
	}
	b, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}

func unlockMasterKey(path string, passphrase []byte) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(b, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	params := keysource.Params{M: kf.M, T: kf.T, P: kf.P, Salt: kf.Salt}

	secret, err := keysource.OpenDeviceSecret(kf.Sealed, passphrase, params)
	if err != nil {
		return nil, err
	}
	defer keysource.Zero(secret)

	return keysource.MasterKey(secret, passphrase, params)
}
