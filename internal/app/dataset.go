package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
)

const (
	// SpeakersLogFile lists the utterance count per speaker
	SpeakersLogFile = "speakers_log.json"
	// ExamplesDir holds one wav per speaker
	ExamplesDir = "examples"
)

// PreprocessDataset ingests the corpus in corpusDir as dataset. Overwriting
// the dataset replaces the whole dataset directory including every derived
// stage.
func (a *App) PreprocessDataset(ctx context.Context, dataset, corpusDir string, cfg *ds.Config, overwrite bool) (*store.BuildResult, error) {
	if cfg == nil || cfg.Format == nil {
		return nil, fmt.Errorf("no corpus format given: %w", util.ErrInvalidConfig)
	}

	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindDataset, dataset},
		name:      "preprocess-" + cfg.Format.Name,
		params:    map[string]string{"format": cfg.Format.Name, "corpus_dir": corpusDir},
		overwrite: overwrite,
	}
	if cfg.Options.TierName != "" {
		op.params["tier"] = cfg.Options.TierName
	}

	var existing []*store.Stage
	if overwrite && a.catalog != nil {
		var err error
		if existing, err = a.catalog.ListStages(dataset); err != nil {
			util.WarnLog("Failed to list stages in catalog: %v", err)
		}
	}

	result, err := a.run(ctx, op, func(staging string) (int, error) {
		if err := a.download(ctx, corpusDir, cfg); err != nil {
			return 0, err
		}
		res, err := ds.Preprocess(ctx, corpusDir, cfg)
		if err != nil {
			return 0, err
		}
		if err := store.Save(a.stages, staging, res.Data); err != nil {
			return 0, err
		}
		if err := a.stages.WriteJSON(filepath.Join(staging, SpeakersLogFile), ds.SortedSpeakers(res.Speakers)); err != nil {
			return 0, err
		}
		if err := writeSpeakerExamples(filepath.Join(staging, ExamplesDir), res.Data); err != nil {
			return 0, err
		}
		return len(res.Data), nil
	})
	if err != nil {
		return nil, err
	}
	if result.Replaced {
		// derived stages went away with the old dataset directory
		for _, st := range existing {
			if st.Kind != store.KindDataset {
				if err := a.catalog.RemoveStage(dataset, st.Kind, st.Name); err != nil {
					util.WarnLog("Failed to remove %s/%s from catalog: %v", st.Kind, st.Name, err)
				}
			}
		}
	}
	return result, nil
}

// download fetches a missing corpus when the format allows it. Other cases
// are left to ds.Preprocess, which reports the missing directory.
func (a *App) download(ctx context.Context, corpusDir string, cfg *ds.Config) error {
	if !cfg.AutoDownload || cfg.Format.Download == nil {
		return nil
	}
	if _, err := os.Stat(corpusDir); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	util.InfoLog("Corpus not found, downloading %s into %s", cfg.Format.Description, corpusDir)
	start := time.Now()
	err := cfg.Format.Download(ctx, corpusDir)
	a.logger.LogDownload(cfg.Format.Name, corpusDir, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", cfg.Format.Name, err)
	}
	return nil
}

// AddSpeakerExamples regenerates the examples folder of an existing dataset
func (a *App) AddSpeakerExamples(ctx context.Context, dataset string) error {
	data, err := load[ds.DsData](a, dataset, store.KindDataset, dataset)
	if err != nil {
		return err
	}

	dir := filepath.Join(a.DatasetDir(dataset), ExamplesDir)
	_, err = a.stages.Build(ctx, dir, true, func(staging string) error {
		return writeSpeakerExamples(staging, data)
	})
	return err
}

// LoadDataset reads the root stage of a dataset
func (a *App) LoadDataset(dataset string) ([]ds.DsData, error) {
	return load[ds.DsData](a, dataset, store.KindDataset, dataset)
}

// writeSpeakerExamples copies the first utterance of every speaker into dir
func writeSpeakerExamples(dir string, data []ds.DsData) error {
	examples := ds.SpeakerExamples(data)
	for i, entry := range examples {
		dest := filepath.Join(dir, ds.ExampleFilename(i+1, entry))
		if _, err := util.CopyFile(entry.WavAbsolutePath, dest); err != nil {
			return fmt.Errorf("speaker %s: %w", entry.SpeakerName, err)
		}
	}
	util.DebugLog("Wrote %d speaker examples", len(examples))
	return nil
}
