//go:build linux || darwin

// Package platform holds process hardening used by tooling that keeps key
// material in memory: disable core dumps, pin secret pages out of swap.
package platform

import "golang.org/x/sys/unix"

// DisableCoreDumps zeroes the core rlimit so derived keys never land in a
// crash dump.
func DisableCoreDumps() error {
	var rlim unix.Rlimit
	rlim.Cur = 0
	rlim.Max = 0
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}

// LockMemory pins the pages backing b so they cannot be swapped out.
func LockMemory(b []byte) error { return unix.Mlock(b) }

// UnlockMemory releases pages pinned by LockMemory.
func UnlockMemory(b []byte) error { return unix.Munlock(b) }
