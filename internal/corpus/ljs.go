package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

const (
	ljsFolder  = "LJSpeech-1.1"
	ljsSpeaker = "Linda Johnson"
	ljsURL     = "https://data.keithito.com/data/speech/LJSpeech-1.1.tar.bz2"
)

func parseLJS(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(findRoot(dir, ljsFolder))
	if err != nil {
		return nil, err
	}

	rows, err := readPipeMetadata(filepath.Join(root, "metadata.csv"))
	if err != nil {
		return nil, err
	}

	result := make([]PreData, 0, len(rows))
	for _, row := range rows {
		result = append(result, PreData{
			Identifier:    row.id,
			Text:          row.text,
			SymbolsFormat: symbols.Graphemes,
			Language:      symbols.English,
			SpeakerName:   ljsSpeaker,
			SpeakerGender: gender(symbols.Female),
			WavPath:       filepath.Join(root, "wavs", row.id+".wav"),
		})
	}

	util.DebugLog("Parsed %d LJ Speech utterances", len(result))
	return result, nil
}

type metadataRow struct {
	id   string
	text string
}

// readPipeMetadata reads "id|text|normalized text" lines as used by LJ Speech
// and M-AILABS. The normalized column is preferred when present.
func readPipeMetadata(path string) ([]metadataRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata: %w", err)
	}
	defer f.Close()

	var rows []metadataRow
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: expected id|text: %w", path, lineNo, util.ErrCorrupt)
		}
		text := fields[1]
		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			text = fields[2]
		}
		rows = append(rows, metadataRow{id: strings.TrimSpace(fields[0]), text: strings.TrimSpace(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return rows, nil
}
