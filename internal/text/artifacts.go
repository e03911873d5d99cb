package text

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/symbols"
)

// Inspection files written next to the data of every text stage
const (
	SymbolsFile  = "symbols.csv"
	TextFile     = "text.txt"
	AnalysisFile = "analysis.csv"
)

// SymbolCount is one row of the symbol frequency table
type SymbolCount struct {
	Symbol string
	Count  int
}

// SymbolCounts counts the occurrences of every symbol, ordered by symbol
func SymbolCounts(data []TextData) []SymbolCount {
	counts := make(map[string]int)
	for _, entry := range data {
		for _, symbol := range entry.Symbols {
			counts[symbol]++
		}
	}

	result := make([]SymbolCount, 0, len(counts))
	for symbol, count := range counts {
		result = append(result, SymbolCount{Symbol: symbol, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

// WholeText renders every entry and joins them with a space
func WholeText(data []TextData) string {
	parts := make([]string, len(data))
	for i, entry := range data {
		parts[i] = symbols.Render(entry.Symbols)
	}
	return strings.Join(parts, " ")
}

var analysisHeader = []string{"Id", "Symbols", "# Symbols", "Format", "Language"}

// AnalysisRows is the per-entry table of analysis.csv
func AnalysisRows(data []TextData) [][]string {
	rows := make([][]string, len(data))
	for i, entry := range data {
		rows[i] = []string{
			strconv.Itoa(entry.EntryID),
			symbols.Render(entry.Symbols),
			strconv.Itoa(len(entry.Symbols)),
			string(entry.SymbolsFormat),
			string(entry.SymbolsLanguage),
		}
	}
	return rows
}

// Save writes the stage data and its inspection files into dir
func Save(s *store.StageStore, dir string, data []TextData) error {
	if err := store.Save(s, dir, data); err != nil {
		return err
	}
	if err := writeSymbols(s, dir, data); err != nil {
		return err
	}
	return ExportText(s, dir, data)
}

// ExportText rewrites text.txt and analysis.csv of a stage
func ExportText(s *store.StageStore, dir string, data []TextData) error {
	if err := s.WriteFile(filepath.Join(dir, TextFile), []byte(WholeText(data))); err != nil {
		return err
	}
	return s.WriteCSV(filepath.Join(dir, AnalysisFile), analysisHeader, AnalysisRows(data))
}

func writeSymbols(s *store.StageStore, dir string, data []TextData) error {
	counts := SymbolCounts(data)
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Symbol, strconv.Itoa(c.Count)}
	}
	return s.WriteCSV(filepath.Join(dir, SymbolsFile), []string{"Symbol", "# Occurrences"}, rows)
}
