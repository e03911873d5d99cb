package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
)

// PreprocessWav copies the dataset audio into a wav stage
func (a *App) PreprocessWav(ctx context.Context, dataset, wavName string, overwrite bool) (*store.BuildResult, error) {
	data, err := a.LoadDataset(dataset)
	if err != nil {
		return nil, err
	}

	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindWav, wavName},
		source:    stageRef{store.KindDataset, dataset},
		name:      "wav-preprocess",
		overwrite: overwrite,
	}
	return a.run(ctx, op, func(staging string) (int, error) {
		result, err := wav.Preprocess(ctx, data, staging, a.workers)
		if err != nil {
			return 0, err
		}
		return len(result), store.Save(a.stages, staging, result)
	})
}

// ResampleWav resamples a wav stage to rate
func (a *App) ResampleWav(ctx context.Context, dataset, origName, destName string, rate int, overwrite bool) (*store.BuildResult, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d: %w", rate, util.ErrInvalidConfig)
	}
	params := map[string]string{"rate": strconv.Itoa(rate)}
	return a.transformWav(ctx, dataset, origName, destName, "wav-resample", params, overwrite,
		func(data []wav.WavData, origDir, destDir string) ([]wav.WavData, error) {
			return wav.Resample(ctx, data, origDir, destDir, rate, a.workers)
		})
}

// WavToMono averages the channels of a wav stage
func (a *App) WavToMono(ctx context.Context, dataset, origName, destName string, overwrite bool) (*store.BuildResult, error) {
	return a.transformWav(ctx, dataset, origName, destName, "wav-mono", nil, overwrite,
		func(data []wav.WavData, origDir, destDir string) ([]wav.WavData, error) {
			return wav.StereoToMono(ctx, data, origDir, destDir, a.workers)
		})
}

// NormalizeWav peak normalizes a wav stage
func (a *App) NormalizeWav(ctx context.Context, dataset, origName, destName string, overwrite bool) (*store.BuildResult, error) {
	return a.transformWav(ctx, dataset, origName, destName, "wav-normalize", nil, overwrite,
		func(data []wav.WavData, origDir, destDir string) ([]wav.WavData, error) {
			return wav.Normalize(ctx, data, origDir, destDir, a.workers)
		})
}

// RemoveSilence trims leading and trailing silence of a wav stage
func (a *App) RemoveSilence(ctx context.Context, dataset, origName, destName string, opts audio.SilenceOptions, overwrite bool) (*store.BuildResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return a.transformWav(ctx, dataset, origName, destName, "wav-remove-silence", silenceParams(opts), overwrite,
		func(data []wav.WavData, origDir, destDir string) ([]wav.WavData, error) {
			return wav.RemoveSilence(ctx, data, origDir, destDir, opts, a.workers)
		})
}

// PreviewRemoveSilence trims one entry of a wav stage into its trim folder.
// A nil entryID picks a random entry.
func (a *App) PreviewRemoveSilence(dataset, wavName string, entryID *int, opts audio.SilenceOptions) (*wav.TrimPreview, error) {
	data, err := load[wav.WavData](a, dataset, store.KindWav, wavName)
	if err != nil {
		return nil, err
	}
	return wav.PreviewRemoveSilence(a.StageDir(dataset, store.KindWav, wavName), data, entryID, opts)
}

// WavStats returns the per speaker duration table of a wav stage
func (a *App) WavStats(dataset, wavName string) ([]report.StatsRow, error) {
	dsData, err := a.LoadDataset(dataset)
	if err != nil {
		return nil, err
	}
	data, err := load[wav.WavData](a, dataset, store.KindWav, wavName)
	if err != nil {
		return nil, err
	}
	return wav.LogStats(dsData, data)
}

type wavTransform func(data []wav.WavData, origDir, destDir string) ([]wav.WavData, error)

func (a *App) transformWav(ctx context.Context, dataset, origName, destName, name string, params map[string]string, overwrite bool, fn wavTransform) (*store.BuildResult, error) {
	data, err := load[wav.WavData](a, dataset, store.KindWav, origName)
	if err != nil {
		return nil, err
	}

	origDir := a.StageDir(dataset, store.KindWav, origName)
	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindWav, destName},
		source:    stageRef{store.KindWav, origName},
		name:      name,
		params:    params,
		overwrite: overwrite,
	}
	return a.run(ctx, op, func(staging string) (int, error) {
		result, err := fn(data, origDir, staging)
		if err != nil {
			return 0, err
		}
		return len(result), store.Save(a.stages, staging, result)
	})
}

func silenceParams(opts audio.SilenceOptions) map[string]string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		"chunk_size":      strconv.Itoa(opts.ChunkSize),
		"threshold_start": format(opts.ThresholdStart),
		"threshold_end":   format(opts.ThresholdEnd),
		"buffer_start_ms": format(opts.BufferStartMs),
		"buffer_end_ms":   format(opts.BufferEndMs),
	}
}
