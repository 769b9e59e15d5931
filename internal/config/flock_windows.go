//go:build windows

package config

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// wholeFile covers every byte LockFileEx can address in the low word.
const wholeFile = 0xFFFFFFFF

// lockConfig takes an exclusive LockFileEx lock on path.lock.
func lockConfig(path string) (unlock func(), err error) {
	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	handle := windows.Handle(lockFile.Fd())
	var overlapped windows.Overlapped
	if err := windows.LockFileEx(handle, windows.LOCKFILE_EXCLUSIVE_LOCK, 0, wholeFile, 0, &overlapped); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return func() {
		var overlapped windows.Overlapped
		_ = windows.UnlockFileEx(handle, 0, wholeFile, 0, &overlapped)
		_ = lockFile.Close()
	}, nil
}
