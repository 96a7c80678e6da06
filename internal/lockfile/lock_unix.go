//go:build unix

package lockfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// FlockExclusiveBlocking acquires an exclusive blocking lock on the
// file, waiting until any shared or exclusive holder releases it. Used
// to serialize journal appends across processes.
func FlockExclusiveBlocking(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// FlockExclusiveNonBlock attempts to acquire an exclusive lock without
// waiting. Returns ErrLockBusy if any lock (shared or exclusive) is
// already held.
func FlockExclusiveNonBlock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrLockBusy
	}
	return err
}

// FlockSharedNonBlock acquires a shared non-blocking lock on the file.
// Multiple processes can hold shared locks concurrently; it fails with
// ErrLockBusy only against a held exclusive lock.
func FlockSharedNonBlock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_SH|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrLockBusy
	}
	return err
}

// FlockUnlock releases a lock on the file.
func FlockUnlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
