// Package final joins the dataset, text, wav and mel stages into one flat
// training table.
package final

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/mel"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/text"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
)

// AnalysisFile is the flat table written next to data.json
const AnalysisFile = "analysis.csv"

// FinalDsEntry is one joined row
type FinalDsEntry struct {
	EntryID                 int                  `json:"entry_id"`
	Identifier              string               `json:"identifier"`
	SpeakerName             string               `json:"speaker_name"`
	SpeakerGender           *symbols.Gender      `json:"speaker_gender"`
	SymbolsLanguage         symbols.Language     `json:"symbols_language"`
	SymbolsOriginal         []string             `json:"symbols_original"`
	SymbolsOriginalFormat   symbols.SymbolFormat `json:"symbols_original_format"`
	Symbols                 []string             `json:"symbols"`
	SymbolsFormat           symbols.SymbolFormat `json:"symbols_format"`
	WavOriginalAbsolutePath string               `json:"wav_original_absolute_path"`
	WavAbsolutePath         string               `json:"wav_absolute_path"`
	WavDuration             float64              `json:"wav_duration"`
	WavSamplingRate         int                  `json:"wav_sampling_rate"`
	MelAbsolutePath         string               `json:"mel_absolute_path"`
	MelNChannels            int                  `json:"mel_n_channels"`
}

// FromData joins the four stages by entry id in the order of dsData. Every
// derived stage has to hold exactly the dataset's ids once, and the text
// stage must keep the dataset language.
func FromData(dsData []ds.DsData, textData []text.TextData, wavData []wav.WavData, melData []mel.MelData, wavDir, melDir string) ([]FinalDsEntry, error) {
	texts, err := index("text", textData, func(e text.TextData) int { return e.EntryID })
	if err != nil {
		return nil, err
	}
	wavs, err := index("wav", wavData, func(e wav.WavData) int { return e.EntryID })
	if err != nil {
		return nil, err
	}
	mels, err := index("mel", melData, func(e mel.MelData) int { return e.EntryID })
	if err != nil {
		return nil, err
	}

	known := make(map[int]bool, len(dsData))
	var missing []string
	for _, d := range dsData {
		known[d.EntryID] = true
		_, hasText := texts[d.EntryID]
		_, hasWav := wavs[d.EntryID]
		_, hasMel := mels[d.EntryID]
		if !hasText || !hasWav || !hasMel {
			missing = append(missing, fmt.Sprintf("%d (text %t, wav %t, mel %t)", d.EntryID, hasText, hasWav, hasMel))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing entries %s: %w", strings.Join(missing, ", "), util.ErrIntegrity)
	}
	if unknown := unknownIDs(known, texts, wavs, mels); len(unknown) > 0 {
		return nil, fmt.Errorf("derived stages hold entries %v unknown to the dataset: %w", unknown, util.ErrIntegrity)
	}

	result := make([]FinalDsEntry, len(dsData))
	for i, d := range dsData {
		t, w, m := texts[d.EntryID], wavs[d.EntryID], mels[d.EntryID]
		if t.SymbolsLanguage != d.SymbolsLanguage {
			return nil, fmt.Errorf("entry %d changed language from %s to %s: %w", d.EntryID, d.SymbolsLanguage, t.SymbolsLanguage, util.ErrIntegrity)
		}

		result[i] = FinalDsEntry{
			EntryID:                 d.EntryID,
			Identifier:              d.Identifier,
			SpeakerName:             d.SpeakerName,
			SpeakerGender:           d.SpeakerGender,
			SymbolsLanguage:         d.SymbolsLanguage,
			SymbolsOriginal:         d.Symbols,
			SymbolsOriginalFormat:   d.SymbolsFormat,
			Symbols:                 t.Symbols,
			SymbolsFormat:           t.SymbolsFormat,
			WavOriginalAbsolutePath: d.WavAbsolutePath,
			WavAbsolutePath:         filepath.Join(wavDir, w.WavRelativePath),
			WavDuration:             w.WavDuration,
			WavSamplingRate:         w.WavSamplingRate,
			MelAbsolutePath:         filepath.Join(melDir, m.MelRelativePath),
			MelNChannels:            m.MelNChannels,
		}
	}
	return result, nil
}

// index maps entries by id; a repeated id is an integrity error
func index[T any](stage string, entries []T, id func(T) int) (map[int]T, error) {
	result := make(map[int]T, len(entries))
	for _, e := range entries {
		key := id(e)
		if _, dup := result[key]; dup {
			return nil, fmt.Errorf("%s stage holds entry %d twice: %w", stage, key, util.ErrIntegrity)
		}
		result[key] = e
	}
	return result, nil
}

func unknownIDs(known map[int]bool, texts map[int]text.TextData, wavs map[int]wav.WavData, mels map[int]mel.MelData) []int {
	seen := make(map[int]bool)
	for id := range texts {
		seen[id] = true
	}
	for id := range wavs {
		seen[id] = true
	}
	for id := range mels {
		seen[id] = true
	}

	var unknown []int
	for id := range seen {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	sort.Ints(unknown)
	return unknown
}

// AnalysisHeader are the columns of analysis.csv
var AnalysisHeader = []string{
	"Id", "Identifier", "Speaker", "Language",
	"Original symbols", "Original symbols format", "Symbols", "Symbols format",
	"Wav duration (s)", "Wav sampling rate (Hz)", "# Mel-channels",
	"Original wav-path", "Wav-path", "Mel-path",
}

// AnalysisRows flattens entries for analysis.csv
func AnalysisRows(entries []FinalDsEntry) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(e.EntryID),
			e.Identifier,
			e.SpeakerName,
			string(e.SymbolsLanguage),
			symbols.Render(e.SymbolsOriginal),
			string(e.SymbolsOriginalFormat),
			symbols.Render(e.Symbols),
			string(e.SymbolsFormat),
			strconv.FormatFloat(e.WavDuration, 'f', -1, 64),
			strconv.Itoa(e.WavSamplingRate),
			strconv.Itoa(e.MelNChannels),
			e.WavOriginalAbsolutePath,
			e.WavAbsolutePath,
			e.MelAbsolutePath,
		}
	}
	return rows
}

// WriteAnalysisCSV writes analysis.csv into dir
func WriteAnalysisCSV(s *store.StageStore, dir string, entries []FinalDsEntry) error {
	return s.WriteCSV(filepath.Join(dir, AnalysisFile), AnalysisHeader, AnalysisRows(entries))
}

// Save writes data.json and analysis.csv into dir
func Save(s *store.StageStore, dir string, entries []FinalDsEntry) error {
	if err := store.Save(s, dir, entries); err != nil {
		return err
	}
	return WriteAnalysisCSV(s, dir, entries)
}
