package app

import (
	"fmt"
	"path/filepath"

	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
)

// ListStages returns the cataloged stages of a dataset
func (a *App) ListStages(dataset string) ([]*store.Stage, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("no stage catalog open: %w", util.ErrInvalidConfig)
	}
	return a.catalog.ListStages(dataset)
}

// Summary reports the cataloged stages of a dataset with their size on disk
func (a *App) Summary(dataset string) (*report.SummaryReport, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("no stage catalog open: %w", util.ErrInvalidConfig)
	}
	summary, err := report.GenerateSummaryReport(a.catalog, dataset, func(kind, name string) string {
		return a.StageDir(dataset, kind, name)
	})
	if err != nil {
		return nil, err
	}
	summary.DatabasePath = filepath.Join(a.baseDir, store.CatalogFile)
	summary.EventLogPath = a.logger.Path()
	return summary, nil
}

// RemoveStage deletes a derived stage and its catalog row. The dataset stage
// cannot be removed this way.
func (a *App) RemoveStage(dataset, kind, name string) error {
	if kind == store.KindDataset {
		return fmt.Errorf("the dataset stage cannot be removed: %w", util.ErrInvalidConfig)
	}
	if err := a.stages.Remove(a.StageDir(dataset, kind, name)); err != nil {
		return err
	}
	util.InfoLog("Removed %s/%s", kind, name)
	return a.catalog.RemoveStage(dataset, kind, name)
}

// CleanStaging removes leftovers of interrupted builds below the base directory
func (a *App) CleanStaging() ([]string, error) {
	return a.stages.CleanStaging(a.baseDir)
}
