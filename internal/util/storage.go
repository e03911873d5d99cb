package util

import (
	"fmt"
	"path/filepath"
	"syscall"
)

// networkWorkers caps parallel audio writes on network mounts, which
// degrade badly under many concurrent small-file writes
const networkWorkers = 4

// NetworkInfo describes the filesystem a path lives on
type NetworkInfo struct {
	IsNetwork bool   // whether the filesystem is network-mounted
	Protocol  string // nfs, cifs, smb, ... or empty if local
	MountPath string // mount point, when known
}

// DetectNetworkFilesystem checks if a path is on a network-mounted
// filesystem (SMB/CIFS, NFS, sshfs) on Linux and macOS
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(absPath, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	return detectPlatformNetwork(absPath, &stat)
}

// TuneWorkers returns the worker count for stages written below baseDir.
// workers <= 0 selects DefaultWorkers; on network mounts the count is
// capped.
func TuneWorkers(baseDir string, workers int) int {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	info, err := DetectNetworkFilesystem(baseDir)
	if err != nil {
		DebugLog("Failed to detect filesystem of %s: %v", baseDir, err)
		return workers
	}
	if !info.IsNetwork || workers <= networkWorkers {
		return workers
	}

	InfoLog("Network filesystem detected: %s is on %s (%s), using %d workers instead of %d",
		baseDir, info.Protocol, info.MountPath, networkWorkers, workers)
	return networkWorkers
}
