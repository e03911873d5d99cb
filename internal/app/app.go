// Package app runs the pipeline operations on a base directory. Every
// producing operation validates its inputs, loads its source stage, builds
// the destination through the stage guard and records the published stage in
// the catalog.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
)

// App runs operations below one base directory
type App struct {
	baseDir string
	stages  *store.StageStore
	catalog *store.Store
	logger  *report.EventLogger
	workers int
}

// Config holds the dependencies of an App
type Config struct {
	BaseDir string
	Catalog *store.Store        // nil = no catalog
	Logger  *report.EventLogger // nil = no events
	Workers int                 // 0 = util.DefaultWorkers()
}

// New creates an App
func New(cfg *Config) *App {
	if cfg.Workers <= 0 {
		cfg.Workers = util.DefaultWorkers()
	}
	if abs, err := filepath.Abs(cfg.BaseDir); err == nil {
		cfg.BaseDir = abs
	}

	// wav, mel and speaker example files are written into the staging
	// directories through os, so stages stay on the OS filesystem
	return &App{
		baseDir: cfg.BaseDir,
		stages:  store.NewStageStore(nil),
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
		workers: cfg.Workers,
	}
}

// BaseDir returns the absolute base directory
func (a *App) BaseDir() string {
	return a.baseDir
}

// DatasetDir is the root stage directory of a dataset
func (a *App) DatasetDir(dataset string) string {
	return filepath.Join(a.baseDir, dataset)
}

// StageDir is the directory of a named stage. The dataset stage lives in the
// dataset directory itself.
func (a *App) StageDir(dataset, kind, name string) string {
	if kind == store.KindDataset {
		return a.DatasetDir(dataset)
	}
	return filepath.Join(a.DatasetDir(dataset), kind, name)
}

// stageRef names a stage of the current dataset
type stageRef struct {
	kind string
	name string
}

// operation describes one producing call
type operation struct {
	dataset   string
	dest      stageRef
	source    stageRef
	name      string
	params    map[string]string
	overwrite bool
}

// run builds op.dest through the stage guard. build fills the staging
// directory and returns the number of entries written.
func (a *App) run(ctx context.Context, op operation, build func(staging string) (int, error)) (*store.BuildResult, error) {
	dir := a.StageDir(op.dataset, op.dest.kind, op.dest.name)
	source := ""
	if op.source.kind != "" {
		source = op.source.kind + "/" + op.source.name
	}
	a.logger.LogStageStart(op.dataset, op.dest.kind, op.dest.name, op.name, source)
	util.InfoLog("%s: %s/%s", op.name, op.dest.kind, op.dest.name)

	start := time.Now()
	entries := 0
	result, err := a.stages.Build(ctx, dir, op.overwrite, func(staging string) error {
		n, err := build(staging)
		entries = n
		return err
	})
	if err != nil {
		a.logger.LogError(op.dataset, op.dest.kind, op.dest.name, err)
		return nil, err
	}
	if result.Skipped {
		a.logger.LogStageSkip(op.dataset, op.dest.kind, op.dest.name)
		return result, nil
	}

	duration := time.Since(start)
	a.logger.LogStagePublish(op.dataset, op.dest.kind, op.dest.name, op.name, entries, duration, result.Replaced)
	if err := a.catalog.RecordStage(&store.Stage{
		Dataset:    op.dataset,
		Kind:       op.dest.kind,
		Name:       op.dest.name,
		ParentKind: op.source.kind,
		ParentName: op.source.name,
		Operation:  op.name,
		Params:     op.params,
		Entries:    entries,
		RunID:      a.logger.RunID(),
	}); err != nil {
		util.WarnLog("Failed to record stage in catalog: %v", err)
	}
	util.SuccessLog("Done: %d entries in %s", entries, duration.Round(time.Millisecond))
	return result, nil
}

// load reads a published stage; a missing stage is a configuration error
// since no operation can run without its source
func load[T any](a *App, dataset, kind, name string) ([]T, error) {
	dir := a.StageDir(dataset, kind, name)
	if !a.stages.Exists(dir) {
		return nil, fmt.Errorf("%s stage %q of dataset %q does not exist: %w", kind, name, dataset, util.ErrInvalidConfig)
	}
	return store.Load[T](a.stages, dir)
}
