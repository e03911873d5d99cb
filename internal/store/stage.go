package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/util"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// DataFile is the serialized record collection inside every stage directory
const DataFile = "data.json"

const (
	stagingMarker = ".tmp-"
	retiredMarker = ".old-"
)

// StageStore saves and loads stage directories. A stage is complete exactly
// when its directory exists: new stages are built in a hidden sibling and
// renamed into place only after every file was written.
//
// Producing operations write audio and mel files into the staging directory
// with the os package. A StageStore on any other afero.Fs only serves the
// JSON and CSV files of a stage.
type StageStore struct {
	fs afero.Fs
}

// NewStageStore creates a stage store on fs (the OS filesystem when nil)
func NewStageStore(fs afero.Fs) *StageStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &StageStore{fs: fs}
}

// Fs returns the underlying filesystem
func (s *StageStore) Fs() afero.Fs {
	return s.fs
}

// Exists reports whether a published stage directory exists
func (s *StageStore) Exists(dir string) bool {
	ok, err := afero.DirExists(s.fs, dir)
	return err == nil && ok
}

// Save writes items as the stage's data file
func Save[T any](s *StageStore, dir string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return s.WriteJSON(filepath.Join(dir, DataFile), items)
}

// Load reads the data file of a published stage
func Load[T any](s *StageStore, dir string) ([]T, error) {
	if !s.Exists(dir) {
		return nil, fmt.Errorf("stage %s: %w", dir, util.ErrNotFound)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(dir, DataFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read stage data: %w", err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode stage data %s: %w", dir, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// WriteJSON writes v as indented JSON through a .part file
func (s *StageStore) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return s.WriteFile(path, data)
}

// WriteCSV writes a header and rows as a CSV file
func (s *StageStore) WriteCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return s.WriteFile(path, buf.Bytes())
}

// WriteFile writes data through a .part file and renames it into place
func (s *StageStore) WriteFile(path string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".part"
	if err := afero.WriteFile(s.fs, tempPath, data, 0644); err != nil {
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := s.fs.Rename(tempPath, path); err != nil {
		s.fs.Remove(tempPath)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// BuildResult describes what Build did
type BuildResult struct {
	Skipped  bool // destination existed and overwrite was off
	Replaced bool // an existing destination was replaced
}

// Build is the guard every producing operation goes through.
//
// When dir exists and overwrite is false nothing happens. Otherwise fn
// receives an empty staging directory to fill; once it returns without error
// the staging directory replaces dir. A failing fn leaves dir untouched.
func (s *StageStore) Build(ctx context.Context, dir string, overwrite bool, fn func(staging string) error) (*BuildResult, error) {
	exists := s.Exists(dir)
	if exists && !overwrite {
		util.InfoLog("Already exists: %s", dir)
		return &BuildResult{Skipped: true}, nil
	}

	parent, name := filepath.Split(filepath.Clean(dir))
	if parent == "" {
		parent = "."
	}
	if err := s.fs.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	staging := filepath.Join(parent, "."+name+stagingMarker+uuid.NewString())
	if err := s.fs.MkdirAll(staging, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	if err := fn(staging); err != nil {
		s.fs.RemoveAll(staging)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.fs.RemoveAll(staging)
		return nil, err
	}

	result := &BuildResult{}
	if exists {
		util.InfoLog("Overwriting existing data: %s", dir)
		retired := filepath.Join(parent, "."+name+retiredMarker+uuid.NewString())
		if err := s.fs.Rename(dir, retired); err != nil {
			s.fs.RemoveAll(staging)
			return nil, fmt.Errorf("failed to retire existing stage: %w", err)
		}
		if err := s.fs.Rename(staging, dir); err != nil {
			s.fs.Rename(retired, dir)
			s.fs.RemoveAll(staging)
			return nil, fmt.Errorf("failed to publish stage: %w", err)
		}
		if err := s.fs.RemoveAll(retired); err != nil {
			util.WarnLog("Failed to remove replaced stage %s: %v", retired, err)
		}
		result.Replaced = true
		return result, nil
	}

	if err := s.fs.Rename(staging, dir); err != nil {
		s.fs.RemoveAll(staging)
		return nil, fmt.Errorf("failed to publish stage: %w", err)
	}
	return result, nil
}

// Remove deletes a published stage directory
func (s *StageStore) Remove(dir string) error {
	if !s.Exists(dir) {
		return fmt.Errorf("stage %s: %w", dir, util.ErrNotFound)
	}
	return s.fs.RemoveAll(dir)
}

// FindStaging returns the leftovers of interrupted builds below root
func (s *StageStore) FindStaging(root string) ([]string, error) {
	var found []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || path == root {
			return nil
		}
		base := info.Name()
		if strings.HasPrefix(base, ".") && (strings.Contains(base, stagingMarker) || strings.Contains(base, retiredMarker)) {
			found = append(found, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find staging directories: %w", err)
	}
	return found, nil
}

// CleanStaging removes leftovers of interrupted builds below root and
// returns the removed paths
func (s *StageStore) CleanStaging(root string) ([]string, error) {
	found, err := s.FindStaging(root)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range found {
		if err := s.fs.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
