package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

// ManifestFile is the index of a custom corpus
const ManifestFile = "manifest.csv"

var manifestColumns = []string{"identifier", "text", "language", "speaker", "gender", "accent", "wav"}

// parseCustom reads manifest.csv. Required columns are manifestColumns; an
// optional "format" column sets the symbol format of the text (graphemes
// otherwise). Wav paths are relative to the corpus directory.
func parseCustom(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.ToLower(strings.TrimSpace(column))] = i
	}
	for _, column := range manifestColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("manifest is missing column %q: %w", column, util.ErrInvalidConfig)
		}
	}
	formatColumn, hasFormat := index["format"]

	var result []PreData
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		field := func(name string) string {
			return strings.TrimSpace(record[index[name]])
		}

		lang, err := symbols.ParseLanguage(field("language"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		g, err := symbols.ParseGender(field("gender"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", line, err)
		}
		format := symbols.Graphemes
		if hasFormat && strings.TrimSpace(record[formatColumn]) != "" {
			if format, err = symbols.ParseSymbolFormat(record[formatColumn]); err != nil {
				return nil, fmt.Errorf("manifest line %d: %w", line, err)
			}
		}

		wav := field("wav")
		if !filepath.IsAbs(wav) {
			wav = filepath.Join(root, filepath.FromSlash(wav))
		}

		result = append(result, PreData{
			Identifier:    field("identifier"),
			Text:          field("text"),
			SymbolsFormat: format,
			Language:      lang,
			SpeakerName:   field("speaker"),
			SpeakerGender: g,
			SpeakerAccent: field("accent"),
			WavPath:       wav,
		})
	}

	util.DebugLog("Parsed %d manifest rows", len(result))
	return result, nil
}
