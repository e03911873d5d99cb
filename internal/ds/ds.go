// Package ds builds the root dataset stage from a parsed corpus
package ds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/franz/speech-janitor/internal/corpus"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

// DsData is one utterance of the root stage. Every later stage joins on EntryID.
type DsData struct {
	EntryID         int                  `json:"entry_id"`
	Identifier      string               `json:"identifier"`
	Symbols         []string             `json:"symbols"`
	SymbolsFormat   symbols.SymbolFormat `json:"symbols_format"`
	SymbolsLanguage symbols.Language     `json:"symbols_language"`
	SpeakerName     string               `json:"speaker_name"`
	SpeakerGender   *symbols.Gender      `json:"speaker_gender"`
	SpeakerAccent   string               `json:"speaker_accent,omitempty"`
	WavAbsolutePath string               `json:"wav_absolute_path"`
}

// Config selects the corpus layout and how it is read
type Config struct {
	Format  *corpus.Format
	Options corpus.Options

	// AutoDownload lets the caller fetch a missing corpus before Preprocess
	AutoDownload bool
}

// Result of an ingestion
type Result struct {
	Data     []DsData
	Speakers map[string]int // speaker name -> number of utterances
}

// Preprocess reads the corpus in dir and converts it into DsData records.
// entry ids follow the parser's order.
func Preprocess(ctx context.Context, dir string, cfg *Config) (*Result, error) {
	if cfg == nil || cfg.Format == nil {
		return nil, fmt.Errorf("no corpus format given: %w", util.ErrInvalidConfig)
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("corpus directory %s: %w", dir, util.ErrNotFound)
	}

	util.InfoLog("Parsing %s corpus in %s", cfg.Format.Description, dir)
	pre, err := cfg.Format.Parse(dir, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	data, err := FromPreData(ctx, pre)
	if err != nil {
		return nil, err
	}
	if err := CheckWavFiles(data); err != nil {
		return nil, err
	}

	speakers := SpeakerLog(data)
	util.InfoLog("Parsed %d utterances of %d speakers", len(data), len(speakers))
	return &Result{Data: data, Speakers: speakers}, nil
}

// FromPreData assigns entry ids and symbolizes the raw text of each entry.
// Duplicate identifiers are an integrity violation.
func FromPreData(ctx context.Context, pre []corpus.PreData) ([]DsData, error) {
	if err := checkUniqueIdentifiers(pre); err != nil {
		return nil, err
	}

	result := make([]DsData, 0, len(pre))
	for i, entry := range pre {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		syms := entry.Symbols
		if syms == nil {
			var err error
			syms, err = symbols.TextToSymbols(entry.Text, entry.Language, entry.SymbolsFormat)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entry.Identifier, err)
			}
		} else {
			syms = append([]string(nil), syms...)
		}

		result = append(result, DsData{
			EntryID:         i,
			Identifier:      entry.Identifier,
			Symbols:         syms,
			SymbolsFormat:   entry.SymbolsFormat,
			SymbolsLanguage: entry.Language,
			SpeakerName:     entry.SpeakerName,
			SpeakerGender:   entry.SpeakerGender,
			SpeakerAccent:   entry.SpeakerAccent,
			WavAbsolutePath: entry.WavPath,
		})
	}
	return result, nil
}

func checkUniqueIdentifiers(pre []corpus.PreData) error {
	seen := make(map[string]struct{}, len(pre))
	var duplicates []string
	for _, entry := range pre {
		if _, ok := seen[entry.Identifier]; ok {
			duplicates = append(duplicates, entry.Identifier)
			continue
		}
		seen[entry.Identifier] = struct{}{}
	}
	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate identifiers %s: %w", summarize(duplicates), util.ErrIntegrity)
	}
	return nil
}

// CheckWavFiles verifies that every referenced wav file exists
func CheckWavFiles(data []DsData) error {
	var missing []string
	for _, entry := range data {
		if !util.FileExists(entry.WavAbsolutePath) {
			missing = append(missing, entry.WavAbsolutePath)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d wav files missing (%s): %w", len(missing), summarize(missing), util.ErrIntegrity)
	}
	return nil
}

// SpeakerLog counts the utterances per speaker
func SpeakerLog(data []DsData) map[string]int {
	counts := make(map[string]int)
	for _, entry := range data {
		counts[entry.SpeakerName]++
	}
	return counts
}

// SpeakerExamples returns the first entry of each speaker in order of first
// appearance
func SpeakerExamples(data []DsData) []DsData {
	seen := make(map[string]bool)
	var result []DsData
	for _, entry := range data {
		if seen[entry.SpeakerName] {
			continue
		}
		seen[entry.SpeakerName] = true
		result = append(result, entry)
	}
	return result
}

// ExampleFilename is the file name of the i-th (1-based) speaker example
func ExampleFilename(i int, entry DsData) string {
	return fmt.Sprintf("%d-%s-%s.wav", i, symbols.GenderLabel(entry.SpeakerGender), util.ASCIIFilename(entry.SpeakerName))
}

// SpeakerCount is one row of a sorted speaker log
type SpeakerCount struct {
	Name  string `json:"speaker"`
	Count int    `json:"count"`
}

// SortedSpeakers orders a speaker log by count, most frequent first
func SortedSpeakers(counts map[string]int) []SpeakerCount {
	result := make([]SpeakerCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, SpeakerCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func summarize(items []string) string {
	const shown = 5
	if len(items) <= shown {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:shown], ", "), len(items)-shown)
}
