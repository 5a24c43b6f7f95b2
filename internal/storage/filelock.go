package storage

import (
	"fmt"
	"os"
	"syscall"
)

// lockSuffix names the sidecar file that serializes writers of a
// checkpoint. The watcher ignores files with this suffix.
const lockSuffix = ".lock"

// checkpointLock holds an exclusive flock on the sidecar of one checkpoint.
type checkpointLock struct {
	f *os.File
}

// lockCheckpoint blocks until it holds the lock for the checkpoint at path.
// The sidecar is created next to it on first use and left in place.
func lockCheckpoint(path string) (*checkpointLock, error) {
	f, err := os.OpenFile(path+lockSuffix, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("locking checkpoint %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking checkpoint %s: %w", path, err)
	}
	return &checkpointLock{f: f}, nil
}

// release drops the lock. It is safe to call more than once.
func (l *checkpointLock) release() error {
	if l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("unlocking checkpoint: %w", err)
	}
	return nil
}
