// Package lockfile provides advisory file locking for babel's on-disk
// state: an exclusive blocking lock serializes journal appends across
// processes, and a shared/exclusive non-blocking pair lets the offline
// extraction queue take a cheap read lock without stalling behind a
// writer (spec §4.1, §4.7).
package lockfile

import "errors"

// ErrLockBusy is returned by the non-blocking acquire functions when a
// conflicting lock is already held by another process.
var ErrLockBusy = errors.New("lockfile: lock held by another process")
