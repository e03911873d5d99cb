package app

import (
	"context"

	"github.com/franz/speech-janitor/internal/mel"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
)

// PreprocessMels computes the mel stage of a wav stage. The mel stage takes
// the name of the wav stage. An empty wav stage produces no mel stage.
func (a *App) PreprocessMels(ctx context.Context, dataset, wavName string, customHParams map[string]string, overwrite bool) (*store.BuildResult, error) {
	hp, err := mel.NewHParams(customHParams)
	if err != nil {
		return nil, err
	}
	stft, err := mel.NewSTFT(hp)
	if err != nil {
		return nil, err
	}

	data, err := load[wav.WavData](a, dataset, store.KindWav, wavName)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		util.WarnLog("Wav stage %s has no entries, no mel stage created", wavName)
		return &store.BuildResult{Skipped: true}, nil
	}

	wavDir := a.StageDir(dataset, store.KindWav, wavName)
	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindMel, wavName},
		source:    stageRef{store.KindWav, wavName},
		name:      "mel-preprocess",
		params:    customHParams,
		overwrite: overwrite,
	}
	return a.run(ctx, op, func(staging string) (int, error) {
		result, err := mel.Process(ctx, data, wavDir, stft, mel.ChunkedSaver(staging, len(data)), a.workers)
		if err != nil {
			return 0, err
		}
		if err := mel.SaveHParams(a.stages, staging, hp); err != nil {
			return 0, err
		}
		return len(result), store.Save(a.stages, staging, result)
	})
}
