// Package wav holds the audio stages of a dataset. Every transform writes
// its files into chunk directories of the destination stage and keeps the
// entry ids and the order of its input.
package wav

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/util"
)

// WavData is one entry of a wav stage. WavRelativePath is relative to the
// stage directory.
type WavData struct {
	EntryID         int     `json:"entry_id"`
	WavRelativePath string  `json:"wav_relative_path"`
	WavDuration     float64 `json:"wav_duration"`
	WavSamplingRate int     `json:"wav_sampling_rate"`
}

// entryFunc transforms the audio file in into out and returns the updated entry
type entryFunc func(in, out string, entry WavData) (WavData, error)

// transform runs fn for every entry with the source file in origDir and a
// chunked destination path in destDir
func transform(ctx context.Context, description string, data []WavData, origDir, destDir string, workers int, fn entryFunc) ([]WavData, error) {
	count := len(data)
	return util.ParallelMap(ctx, description, data, workers, func(ctx context.Context, entry WavData) (WavData, error) {
		rel := util.ChunkedPath(entry.EntryID, count, ".wav")
		in := filepath.Join(origDir, entry.WavRelativePath)
		out := filepath.Join(destDir, rel)

		updated, err := fn(in, out, entry)
		if err != nil {
			return WavData{}, fmt.Errorf("entry %d: %w", entry.EntryID, err)
		}
		updated.EntryID = entry.EntryID
		updated.WavRelativePath = rel
		return updated, nil
	})
}

// Preprocess copies the wav file of every dataset entry into destDir and
// measures its duration and sample rate
func Preprocess(ctx context.Context, data []ds.DsData, destDir string, workers int) ([]WavData, error) {
	count := len(data)
	return util.ParallelMap(ctx, "preprocessing wavs", data, workers, func(ctx context.Context, entry ds.DsData) (WavData, error) {
		rel := util.ChunkedPath(entry.EntryID, count, ".wav")
		frames, rate, err := audio.CopyFile(entry.WavAbsolutePath, filepath.Join(destDir, rel))
		if err != nil {
			return WavData{}, fmt.Errorf("entry %d (%s): %w", entry.EntryID, entry.Identifier, err)
		}
		return WavData{
			EntryID:         entry.EntryID,
			WavRelativePath: rel,
			WavDuration:     audio.Duration(frames, rate),
			WavSamplingRate: rate,
		}, nil
	})
}

// Resample converts every entry to rate. The duration is carried over from
// the source entry.
func Resample(ctx context.Context, data []WavData, origDir, destDir string, rate, workers int) ([]WavData, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d: %w", rate, util.ErrInvalidConfig)
	}

	return transform(ctx, "resampling wavs", data, origDir, destDir, workers, func(in, out string, entry WavData) (WavData, error) {
		frames, err := audio.ResampleFile(in, out, rate)
		if err != nil {
			return entry, err
		}
		if entry.WavSamplingRate > 0 {
			written := audio.Duration(frames, rate)
			if math.Abs(written-entry.WavDuration) > 1/float64(entry.WavSamplingRate) {
				util.DebugLog("Entry %d: resampled duration %.4fs differs from %.4fs", entry.EntryID, written, entry.WavDuration)
			}
		}
		entry.WavSamplingRate = rate
		return entry, nil
	})
}

// StereoToMono averages the channels of every entry
func StereoToMono(ctx context.Context, data []WavData, origDir, destDir string, workers int) ([]WavData, error) {
	return transform(ctx, "converting to mono", data, origDir, destDir, workers, func(in, out string, entry WavData) (WavData, error) {
		return entry, audio.StereoToMonoFile(in, out)
	})
}

// Normalize peak normalizes every entry
func Normalize(ctx context.Context, data []WavData, origDir, destDir string, workers int) ([]WavData, error) {
	return transform(ctx, "normalizing wavs", data, origDir, destDir, workers, func(in, out string, entry WavData) (WavData, error) {
		return entry, audio.NormalizeFile(in, out)
	})
}

// RemoveSilence trims every entry; the duration is taken from the result
func RemoveSilence(ctx context.Context, data []WavData, origDir, destDir string, opts audio.SilenceOptions, workers int) ([]WavData, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return transform(ctx, "removing silence", data, origDir, destDir, workers, func(in, out string, entry WavData) (WavData, error) {
		duration, err := audio.RemoveSilenceFile(in, out, opts)
		if err != nil {
			return entry, err
		}
		entry.WavDuration = duration
		return entry, nil
	})
}

// Find returns the entry with the given id
func Find(data []WavData, entryID int) (WavData, error) {
	for _, entry := range data {
		if entry.EntryID == entryID {
			return entry, nil
		}
	}
	return WavData{}, fmt.Errorf("entry %d: %w", entryID, util.ErrNotFound)
}
