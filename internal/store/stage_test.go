package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/speech-janitor/internal/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStageStore(t *testing.T) (*StageStore, string) {
	t.Helper()
	return NewStageStore(afero.NewOsFs()), t.TempDir()
}

type testRecord struct {
	EntryID int      `json:"entry_id"`
	Symbols []string `json:"symbols"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []testRecord
	}{
		{"empty", nil},
		{"single", []testRecord{{EntryID: 0, Symbols: []string{"h", "i"}}}},
		{"zero-length symbols", []testRecord{{EntryID: 0, Symbols: []string{}}, {EntryID: 1, Symbols: []string{"a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, base := newTestStageStore(t)
			dir := filepath.Join(base, "ljs", "text", "raw")

			_, err := s.Build(context.Background(), dir, false, func(staging string) error {
				return Save(s, staging, tt.items)
			})
			require.NoError(t, err)

			loaded, err := Load[testRecord](s, dir)
			require.NoError(t, err)
			require.Len(t, loaded, len(tt.items))
			for i := range tt.items {
				assert.Equal(t, tt.items[i].EntryID, loaded[i].EntryID)
				assert.Equal(t, len(tt.items[i].Symbols), len(loaded[i].Symbols))
			}
		})
	}
}

func TestLoadMissingStage(t *testing.T) {
	s, base := newTestStageStore(t)
	_, err := Load[testRecord](s, filepath.Join(base, "missing"))
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestBuildSkipsExisting(t *testing.T) {
	s, base := newTestStageStore(t)
	dir := filepath.Join(base, "ljs", "text", "raw")
	ctx := context.Background()

	_, err := s.Build(ctx, dir, false, func(staging string) error {
		return Save(s, staging, []testRecord{{EntryID: 0}})
	})
	require.NoError(t, err)

	called := false
	result, err := s.Build(ctx, dir, false, func(staging string) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.False(t, called, "build function must not run for an existing stage")

	loaded, err := Load[testRecord](s, dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestBuildOverwriteReplacesEverything(t *testing.T) {
	s, base := newTestStageStore(t)
	dir := filepath.Join(base, "ljs", "wav", "raw")
	ctx := context.Background()

	_, err := s.Build(ctx, dir, false, func(staging string) error {
		if err := s.WriteFile(filepath.Join(staging, "0-2", "0.wav"), []byte("old")); err != nil {
			return err
		}
		return Save(s, staging, []testRecord{{EntryID: 0}, {EntryID: 1}, {EntryID: 2}})
	})
	require.NoError(t, err)

	result, err := s.Build(ctx, dir, true, func(staging string) error {
		return Save(s, staging, []testRecord{{EntryID: 0}})
	})
	require.NoError(t, err)
	assert.True(t, result.Replaced)

	_, err = os.Stat(filepath.Join(dir, "0-2", "0.wav"))
	assert.True(t, os.IsNotExist(err), "files of the replaced stage must be gone")

	loaded, err := Load[testRecord](s, dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)

	siblings, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, siblings, 1, "no staging or retired directories may remain")
	assert.Equal(t, "raw", siblings[0].Name())
}

func TestBuildFailureLeavesNoTrace(t *testing.T) {
	s, base := newTestStageStore(t)
	parent := filepath.Join(base, "ljs", "text")
	dir := filepath.Join(parent, "ipa")

	boom := errors.New("boom")
	_, err := s.Build(context.Background(), dir, false, func(staging string) error {
		if err := Save(s, staging, []testRecord{{EntryID: 0}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, s.Exists(dir))

	entries, err := afero.ReadDir(s.Fs(), parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildFailureKeepsPreviousStage(t *testing.T) {
	s, base := newTestStageStore(t)
	dir := filepath.Join(base, "ljs", "text", "ipa")
	ctx := context.Background()

	_, err := s.Build(ctx, dir, false, func(staging string) error {
		return Save(s, staging, []testRecord{{EntryID: 0}, {EntryID: 1}})
	})
	require.NoError(t, err)

	_, err = s.Build(ctx, dir, true, func(staging string) error {
		return util.ErrInvalidConfig
	})
	require.ErrorIs(t, err, util.ErrInvalidConfig)

	loaded, err := Load[testRecord](s, dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestBuildCancelled(t *testing.T) {
	s, base := newTestStageStore(t)
	dir := filepath.Join(base, "ljs", "mel", "raw")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Build(ctx, dir, false, func(staging string) error {
		return Save(s, staging, []testRecord{})
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Exists(dir))
}

func TestCleanStaging(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStageStore(fs)

	require.NoError(t, fs.MkdirAll("/base/ljs/text/raw", 0755))
	require.NoError(t, fs.MkdirAll("/base/ljs/text/.ipa.tmp-1234/0-9", 0755))
	require.NoError(t, fs.MkdirAll("/base/ljs/wav/.raw.old-5678", 0755))
	require.NoError(t, fs.MkdirAll("/base/ljs/wav/.hidden", 0755))

	found, err := s.FindStaging("/base")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/base/ljs/text/.ipa.tmp-1234", "/base/ljs/wav/.raw.old-5678"}, found)

	removed, err := s.CleanStaging("/base")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	assert.True(t, s.Exists("/base/ljs/text/raw"))
	assert.True(t, s.Exists("/base/ljs/wav/.hidden"))
	assert.False(t, s.Exists("/base/ljs/text/.ipa.tmp-1234"))
	assert.False(t, s.Exists("/base/ljs/wav/.raw.old-5678"))
}

func TestRemoveStage(t *testing.T) {
	s := NewStageStore(afero.NewMemMapFs())
	assert.ErrorIs(t, s.Remove("/base/none"), util.ErrNotFound)

	require.NoError(t, s.Fs().MkdirAll("/base/ljs/mel/22050", 0755))
	require.NoError(t, s.Remove("/base/ljs/mel/22050"))
	assert.False(t, s.Exists("/base/ljs/mel/22050"))
}
