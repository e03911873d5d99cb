package corpus

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

var mailabsLanguages = map[string]symbols.Language{
	"en_us": symbols.English,
	"en_uk": symbols.English,
	"de_de": symbols.German,
}

// parseMAILABS reads <lang>/by_book/<gender>/<speaker>/<book>/metadata.csv
func parseMAILABS(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(dir)
	if err != nil {
		return nil, err
	}

	var result []PreData
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "metadata.csv" {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		byBook := -1
		for i, part := range parts {
			if part == "by_book" {
				byBook = i
			}
		}
		if byBook < 1 || len(parts) < byBook+3 {
			util.DebugLog("Skipping metadata outside by_book layout: %s", path)
			return nil
		}

		langDir := strings.ToLower(parts[byBook-1])
		lang, ok := mailabsLanguages[langDir]
		if !ok {
			util.WarnLog("Skipping unsupported M-AILABS language %s", parts[byBook-1])
			return filepath.SkipDir
		}

		var g *symbols.Gender
		switch parts[byBook+1] {
		case "male":
			g = gender(symbols.Male)
		case "female":
			g = gender(symbols.Female)
		}
		speaker := parts[byBook+2]
		if parts[byBook+1] == "mix" {
			speaker = "mix"
		}

		rows, err := readPipeMetadata(path)
		if err != nil {
			return err
		}
		book := filepath.Dir(path)
		for _, row := range rows {
			result = append(result, PreData{
				Identifier:    row.id,
				Text:          row.text,
				SymbolsFormat: symbols.Graphemes,
				Language:      lang,
				SpeakerName:   speaker,
				SpeakerGender: g,
				WavPath:       filepath.Join(book, "wavs", row.id+".wav"),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse M-AILABS: %w", err)
	}

	util.DebugLog("Parsed %d M-AILABS utterances", len(result))
	return result, nil
}
