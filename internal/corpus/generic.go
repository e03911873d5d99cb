package corpus

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

// DefaultNDigits is the interval bound precision used when none is configured
const DefaultNDigits = 16

// parseGeneric reads <speaker>;<gender iso5218>;<lang iso639-3>[;accent]
// folders holding <name>.wav files with a <name>.TextGrid annotation. Every
// non-empty interval of the configured tier becomes one symbol.
func parseGeneric(dir string, opts Options) ([]PreData, error) {
	if opts.TierName == "" {
		return nil, fmt.Errorf("generic corpus requires a tier name: %w", util.ErrInvalidConfig)
	}
	if opts.SymbolsFormat == "" {
		return nil, fmt.Errorf("generic corpus requires a symbols format: %w", util.ErrInvalidConfig)
	}
	nDigits := opts.NDigits
	if nDigits <= 0 {
		nDigits = DefaultNDigits
	}

	root, err := absPath(dir)
	if err != nil {
		return nil, err
	}
	speakerDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var result []PreData
	for _, speakerDir := range speakerDirs {
		if !speakerDir.IsDir() || strings.HasPrefix(speakerDir.Name(), ".") {
			continue
		}
		speaker, err := parseSpeakerFolder(speakerDir.Name())
		if err != nil {
			return nil, err
		}

		wavs, err := filepath.Glob(filepath.Join(root, speakerDir.Name(), "*.wav"))
		if err != nil {
			return nil, fmt.Errorf("failed to list wavs: %w", err)
		}
		sort.Strings(wavs)

		for _, wav := range wavs {
			name := stem(wav, ".wav")
			grid := strings.TrimSuffix(wav, ".wav") + ".TextGrid"
			syms, err := readTierSymbols(grid, opts.TierName, nDigits)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", speakerDir.Name(), name, err)
			}

			result = append(result, PreData{
				Identifier:    speaker.name + "/" + name,
				Symbols:       syms,
				SymbolsFormat: opts.SymbolsFormat,
				Language:      speaker.language,
				SpeakerName:   speaker.name,
				SpeakerGender: speaker.gender,
				SpeakerAccent: speaker.accent,
				WavPath:       wav,
			})
		}
	}

	util.DebugLog("Parsed %d annotated utterances", len(result))
	return result, nil
}

type speakerFolder struct {
	name     string
	gender   *symbols.Gender
	language symbols.Language
	accent   string
}

func parseSpeakerFolder(name string) (*speakerFolder, error) {
	parts := strings.Split(name, ";")
	if len(parts) < 3 || len(parts) > 4 || parts[0] == "" {
		return nil, fmt.Errorf("speaker folder %q is not <name>;<gender>;<language>[;accent]: %w", name, util.ErrInvalidConfig)
	}

	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("speaker folder %q: invalid gender code: %w", name, util.ErrInvalidConfig)
	}
	g, err := symbols.GenderFromISO(code)
	if err != nil {
		return nil, fmt.Errorf("speaker folder %q: %w", name, err)
	}
	lang, err := symbols.LanguageFromISO(parts[2])
	if err != nil {
		return nil, fmt.Errorf("speaker folder %q: %w", name, err)
	}

	folder := &speakerFolder{name: parts[0], gender: g, language: lang}
	if len(parts) == 4 {
		folder.accent = parts[3]
	}
	return folder, nil
}

func readTierSymbols(path, tierName string, nDigits int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation: %w", err)
	}
	defer f.Close()

	tiers, err := ParseTextGrid(f)
	if err != nil {
		return nil, err
	}

	for _, tier := range tiers {
		if tier.Name != tierName {
			continue
		}
		return tierSymbols(tier, nDigits)
	}
	return nil, fmt.Errorf("tier %q not found: %w", tierName, util.ErrNotFound)
}

// tierSymbols returns the texts of the non-empty intervals after checking
// that the rounded interval bounds leave no gaps
func tierSymbols(tier Tier, nDigits int) ([]string, error) {
	syms := make([]string, 0, len(tier.Intervals))
	for i, interval := range tier.Intervals {
		if i > 0 {
			prevEnd := round(tier.Intervals[i-1].MaxTime, nDigits)
			if start := round(interval.MinTime, nDigits); start != prevEnd {
				return nil, fmt.Errorf("tier %q: interval %d starts at %v but the previous one ends at %v: %w",
					tier.Name, i+1, start, prevEnd, util.ErrIntegrity)
			}
		}
		if interval.Text != "" {
			syms = append(syms, interval.Text)
		}
	}
	return syms, nil
}

func round(v float64, nDigits int) float64 {
	if nDigits > 15 {
		return v
	}
	p := math.Pow(10, float64(nDigits))
	return math.Round(v*p) / p
}
