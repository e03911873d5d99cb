// Package mel computes mel spectrograms for a wav stage and stores them as
// .npy tensors.
package mel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
	"github.com/kshedden/gonpy"
)

// MelData is one entry of a mel stage
type MelData struct {
	EntryID         int    `json:"entry_id"`
	MelRelativePath string `json:"mel_relative_path"`
	MelNChannels    int    `json:"mel_n_channels"`
}

// SaveFunc persists the spectrogram of entry and returns its path relative
// to the mel stage
type SaveFunc func(entry wav.WavData, spec *Spectrogram) (string, error)

// Process computes the spectrogram of every wav entry and hands it to save.
// The result keeps the order and entry ids of data.
func Process(ctx context.Context, data []wav.WavData, wavDir string, stft *STFT, save SaveFunc, workers int) ([]MelData, error) {
	channels := stft.HParams().NMelChannels
	return util.ParallelMap(ctx, "computing mels", data, workers, func(ctx context.Context, entry wav.WavData) (MelData, error) {
		spec, err := stft.MelFromFile(filepath.Join(wavDir, entry.WavRelativePath))
		if err != nil {
			return MelData{}, fmt.Errorf("entry %d: %w", entry.EntryID, err)
		}
		rel, err := save(entry, spec)
		if err != nil {
			return MelData{}, fmt.Errorf("entry %d: %w", entry.EntryID, err)
		}
		return MelData{EntryID: entry.EntryID, MelRelativePath: rel, MelNChannels: channels}, nil
	})
}

// ChunkedSaver stores spectrograms as <chunk>/<id>.npy below destDir. count
// is the number of entries of the stage.
func ChunkedSaver(destDir string, count int) SaveFunc {
	return func(entry wav.WavData, spec *Spectrogram) (string, error) {
		rel := util.ChunkedPath(entry.EntryID, count, ".npy")
		if err := WriteNpy(filepath.Join(destDir, rel), spec); err != nil {
			return "", err
		}
		return rel, nil
	}
}

// WriteNpy writes spec as a float32 array of shape (channels, frames)
func WriteNpy(path string, spec *Spectrogram) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flat := make([]float32, 0, spec.Channels()*spec.Frames())
	for _, row := range spec.Values {
		flat = append(flat, row...)
	}

	tempPath := path + ".part"
	w, err := gonpy.NewFileWriter(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tempPath, err)
	}
	w.Shape = []int{spec.Channels(), spec.Frames()}
	if err := w.WriteFloat32(flat); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// ReadNpy reads a spectrogram written by WriteNpy
func ReadNpy(path string) (*Spectrogram, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(r.Shape) != 2 {
		return nil, fmt.Errorf("%s has shape %v, want two dimensions: %w", path, r.Shape, util.ErrCorrupt)
	}
	flat, err := r.GetFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, util.ErrCorrupt)
	}

	channels, frames := r.Shape[0], r.Shape[1]
	if len(flat) != channels*frames {
		return nil, fmt.Errorf("%s holds %d values for shape %v: %w", path, len(flat), r.Shape, util.ErrCorrupt)
	}
	spec := &Spectrogram{Values: make([][]float32, channels)}
	for c := range spec.Values {
		spec.Values[c] = flat[c*frames : (c+1)*frames]
	}
	return spec, nil
}
