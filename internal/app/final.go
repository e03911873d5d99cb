package app

import (
	"context"
	"fmt"

	"github.com/franz/speech-janitor/internal/final"
	"github.com/franz/speech-janitor/internal/mel"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/text"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
)

// MergeFinal joins the dataset with a text stage, a wav stage and the mel
// stage of that wav stage
func (a *App) MergeFinal(ctx context.Context, dataset, textName, wavName, finalName string, overwrite bool) (*store.BuildResult, error) {
	sources := []stageRef{
		{store.KindDataset, dataset},
		{store.KindText, textName},
		{store.KindWav, wavName},
		{store.KindMel, wavName},
	}
	for _, src := range sources {
		if !a.stages.Exists(a.StageDir(dataset, src.kind, src.name)) {
			return nil, fmt.Errorf("%s stage %q of dataset %q does not exist: %w", src.kind, src.name, dataset, util.ErrInvalidConfig)
		}
	}

	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindFinal, finalName},
		source:    stageRef{store.KindText, textName},
		name:      "final-merge",
		params:    map[string]string{"text": textName, "wav": wavName},
		overwrite: overwrite,
	}
	return a.run(ctx, op, func(staging string) (int, error) {
		dsData, err := a.LoadDataset(dataset)
		if err != nil {
			return 0, err
		}
		textData, err := load[text.TextData](a, dataset, store.KindText, textName)
		if err != nil {
			return 0, err
		}
		wavData, err := load[wav.WavData](a, dataset, store.KindWav, wavName)
		if err != nil {
			return 0, err
		}
		melData, err := load[mel.MelData](a, dataset, store.KindMel, wavName)
		if err != nil {
			return 0, err
		}

		entries, err := final.FromData(dsData, textData, wavData, melData,
			a.StageDir(dataset, store.KindWav, wavName), a.StageDir(dataset, store.KindMel, wavName))
		if err != nil {
			return 0, err
		}
		return len(entries), final.Save(a.stages, staging, entries)
	})
}
