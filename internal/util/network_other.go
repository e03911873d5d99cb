//go:build !linux && !darwin

package util

import "syscall"

// assume local storage elsewhere
func detectPlatformNetwork(path string, stat *syscall.Statfs_t) (*NetworkInfo, error) {
	return &NetworkInfo{}, nil
}
