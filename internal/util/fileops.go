package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a file atomically using a .part temporary file
func CopyFile(srcPath, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	tempPath := destPath + ".part"
	dest, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(dest, src)
	closeErr := dest.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	DebugLog("Copied: %s -> %s (%d bytes)", srcPath, destPath, written)
	return written, nil
}

// CreatePart opens destPath+".part" for writing. Call the returned commit
// function after a successful write to rename it into place, or discard to
// drop it.
func CreatePart(destPath string) (f *os.File, commit func() error, discard func(), err error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := destPath + ".part"
	f, err = os.Create(tempPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	commit = func() error {
		if err := f.Close(); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("failed to close %s: %w", tempPath, err)
		}
		if err := os.Rename(tempPath, destPath); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("failed to rename: %w", err)
		}
		return nil
	}
	discard = func() {
		f.Close()
		os.Remove(tempPath)
	}
	return f, commit, discard, nil
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
