package session

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// fileLock is an advisory lock on the token file.
// It lives in a separate lock file so the token file itself can be replaced
// atomically by rename without dropping the lock.
type fileLock struct {
	flock    *flock.Flock
	lockPath string
}

// acquireSharedLock takes a shared (read) lock, blocking until it is available.
func acquireSharedLock(filePath string) (*fileLock, error) {
	fl := &fileLock{lockPath: filePath + ".lock"}
	fl.flock = flock.New(fl.lockPath)

	if err := fl.flock.RLock(); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			// No advisory locking on this platform; proceed unguarded.
			return fl, nil
		}
		return nil, fmt.Errorf("failed to acquire read lock %s: %w", fl.lockPath, err)
	}
	return fl, nil
}

// tryExclusiveLock takes an exclusive (write) lock without blocking.
// It returns ErrLockBusy when another process holds any lock on the file.
func tryExclusiveLock(filePath string) (*fileLock, error) {
	fl := &fileLock{lockPath: filePath + ".lock"}
	fl.flock = flock.New(fl.lockPath)

	locked, err := fl.flock.TryLock()
	if err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return fl, nil
		}
		return nil, fmt.Errorf("failed to acquire write lock %s: %w", fl.lockPath, err)
	}
	if !locked {
		return nil, ErrLockBusy
	}
	return fl, nil
}

// release releases the lock. The lock file stays on disk; removing it
// would let two processes lock different inodes.
func (fl *fileLock) release() error {
	if fl == nil || fl.flock == nil {
		return nil
	}
	return fl.flock.Unlock()
}
