//go:build !linux && !darwin

package platform

// No-ops on platforms without the rlimit/mlock syscalls.

func DisableCoreDumps() error   { return nil }
func LockMemory([]byte) error   { return nil }
func UnlockMemory([]byte) error { return nil }
