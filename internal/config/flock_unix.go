//go:build !windows

package config

import (
	"fmt"
	"os"
	"syscall"
)

// lockConfig takes an exclusive flock on path.lock. Writers running
// `typeahead config set` at the same time queue behind each other.
func lockConfig(path string) (unlock func(), err error) {
	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	fd := int(lockFile.Fd())
	if err := syscall.Flock(fd, syscall.LOCK_EX); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return func() {
		_ = syscall.Flock(fd, syscall.LOCK_UN)
		_ = lockFile.Close()
	}, nil
}
