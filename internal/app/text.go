package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/text"
	"github.com/franz/speech-janitor/internal/util"
)

// PreprocessText creates a text stage from the dataset symbols
func (a *App) PreprocessText(ctx context.Context, dataset, textName string, overwrite bool) (*store.BuildResult, error) {
	data, err := a.LoadDataset(dataset)
	if err != nil {
		return nil, err
	}

	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindText, textName},
		source:    stageRef{store.KindDataset, dataset},
		name:      "text-preprocess",
		overwrite: overwrite,
	}
	return a.saveText(ctx, op, text.Preprocess(data))
}

// NormalizeText normalizes the symbols of a text stage
func (a *App) NormalizeText(ctx context.Context, dataset, origName, destName string, overwrite bool) (*store.BuildResult, error) {
	return a.transformText(ctx, dataset, origName, destName, "text-normalize", nil, overwrite, text.Normalize)
}

// IPAOptions configure ConvertTextToIPA
type IPAOptions struct {
	Converter           symbols.Converter
	Mode                symbols.EngToIPAMode
	ConsiderAnnotations bool
}

// ConvertTextToIPA converts a text stage to IPA. A stage with English
// graphemes needs a mode; without one nothing is written.
func (a *App) ConvertTextToIPA(ctx context.Context, dataset, origName, destName string, opts IPAOptions, overwrite bool) (*store.BuildResult, error) {
	if opts.Converter == nil {
		return nil, fmt.Errorf("no IPA converter given: %w", util.ErrInvalidConfig)
	}
	data, err := load[text.TextData](a, dataset, store.KindText, origName)
	if err != nil {
		return nil, err
	}
	if err := text.CheckConvertToIPA(data, opts.Mode); err != nil {
		return nil, err
	}

	params := map[string]string{
		"mode":                 string(opts.Mode),
		"consider_annotations": strconv.FormatBool(opts.ConsiderAnnotations),
	}
	return a.transformLoaded(ctx, dataset, origName, destName, "text-ipa", params, overwrite, data, func(data []text.TextData) ([]text.TextData, error) {
		return text.ConvertToIPA(data, opts.Converter, opts.Mode, opts.ConsiderAnnotations)
	})
}

// MapTextToIPA maps the ARPA entries of a text stage to IPA
func (a *App) MapTextToIPA(ctx context.Context, dataset, origName, destName string, overwrite bool) (*store.BuildResult, error) {
	return a.transformText(ctx, dataset, origName, destName, "text-map-ipa", nil, overwrite, func(data []text.TextData) ([]text.TextData, error) {
		return text.MapToIPA(data), nil
	})
}

// ChangeTextIPA runs the IPA cleanup passes on a text stage
func (a *App) ChangeTextIPA(ctx context.Context, dataset, origName, destName string, opts symbols.ChangeIPAOptions, overwrite bool) (*store.BuildResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	order := make([]string, len(opts.Order))
	for i, pass := range opts.Order {
		order[i] = string(pass)
	}
	params := map[string]string{
		"ignore_tones":  strconv.FormatBool(opts.IgnoreTones),
		"ignore_arcs":   strconv.FormatBool(opts.IgnoreArcs),
		"ignore_stress": strconv.FormatBool(opts.IgnoreStress),
		"break_nthongs": strconv.FormatBool(opts.BreakNThongs),
		"build_nthongs": strconv.FormatBool(opts.BuildNThongs),
		"order":         strings.Join(order, ","),
	}
	return a.transformText(ctx, dataset, origName, destName, "text-change-ipa", params, overwrite, func(data []text.TextData) ([]text.TextData, error) {
		return text.ChangeIPA(data, opts)
	})
}

// ChangeText applies symbol level text changes to a text stage
func (a *App) ChangeText(ctx context.Context, dataset, origName, destName string, removeSpaceAroundPunctuation bool, overwrite bool) (*store.BuildResult, error) {
	params := map[string]string{"remove_space_around_punctuation": strconv.FormatBool(removeSpaceAroundPunctuation)}
	return a.transformText(ctx, dataset, origName, destName, "text-change", params, overwrite, func(data []text.TextData) ([]text.TextData, error) {
		return text.ChangeText(data, removeSpaceAroundPunctuation), nil
	})
}

// ExportText rewrites text.txt and analysis.csv of a text stage
func (a *App) ExportText(dataset, textName string) error {
	data, err := load[text.TextData](a, dataset, store.KindText, textName)
	if err != nil {
		return err
	}
	return text.ExportText(a.stages, a.StageDir(dataset, store.KindText, textName), data)
}

// TextStats returns the per speaker symbol count table of a text stage
func (a *App) TextStats(dataset, textName string) ([]report.StatsRow, error) {
	dsData, err := a.LoadDataset(dataset)
	if err != nil {
		return nil, err
	}
	data, err := load[text.TextData](a, dataset, store.KindText, textName)
	if err != nil {
		return nil, err
	}
	return text.LogStats(dsData, data)
}

func (a *App) transformText(ctx context.Context, dataset, origName, destName, name string, params map[string]string, overwrite bool, fn func([]text.TextData) ([]text.TextData, error)) (*store.BuildResult, error) {
	data, err := load[text.TextData](a, dataset, store.KindText, origName)
	if err != nil {
		return nil, err
	}
	return a.transformLoaded(ctx, dataset, origName, destName, name, params, overwrite, data, fn)
}

func (a *App) transformLoaded(ctx context.Context, dataset, origName, destName, name string, params map[string]string, overwrite bool, data []text.TextData, fn func([]text.TextData) ([]text.TextData, error)) (*store.BuildResult, error) {
	op := operation{
		dataset:   dataset,
		dest:      stageRef{store.KindText, destName},
		source:    stageRef{store.KindText, origName},
		name:      name,
		params:    params,
		overwrite: overwrite,
	}
	return a.run(ctx, op, func(staging string) (int, error) {
		result, err := fn(data)
		if err != nil {
			return 0, err
		}
		return len(result), text.Save(a.stages, staging, result)
	})
}

func (a *App) saveText(ctx context.Context, op operation, data []text.TextData) (*store.BuildResult, error) {
	return a.run(ctx, op, func(staging string) (int, error) {
		return len(data), text.Save(a.stages, staging, data)
	})
}
