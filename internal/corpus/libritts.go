package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

const libriTTSFolder = "LibriTTS"

// parseLibriTTS reads <subset>/<reader>/<chapter>/<id>.wav with the
// transcription in <id>.normalized.txt (or <id>.original.txt)
func parseLibriTTS(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(findRoot(dir, libriTTSFolder))
	if err != nil {
		return nil, err
	}

	genders, err := readLibriTTSSpeakers(filepath.Join(root, "SPEAKERS.txt"))
	if err != nil {
		return nil, err
	}

	var result []PreData
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".wav" {
			return nil
		}

		id := stem(path, ".wav")
		text, err := readLibriTTSText(strings.TrimSuffix(path, ".wav"))
		if err != nil {
			return err
		}
		reader, _, _ := strings.Cut(id, "_")

		result = append(result, PreData{
			Identifier:    id,
			Text:          text,
			SymbolsFormat: symbols.Graphemes,
			Language:      symbols.English,
			SpeakerName:   reader,
			SpeakerGender: genders[reader],
			WavPath:       path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse LibriTTS: %w", err)
	}

	util.DebugLog("Parsed %d LibriTTS utterances", len(result))
	return result, nil
}

func readLibriTTSText(base string) (string, error) {
	for _, ext := range []string{".normalized.txt", ".original.txt"} {
		data, err := os.ReadFile(base + ext)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read transcription: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("no transcription for %s: %w", base, util.ErrIntegrity)
}

// readLibriTTSSpeakers parses "READER | GENDER | SUBSET | NAME" lines. A
// missing file yields no genders.
func readLibriTTSSpeakers(path string) (map[string]*symbols.Gender, error) {
	genders := make(map[string]*symbols.Gender)

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return genders, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open speakers file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		reader := strings.TrimSpace(fields[0])
		switch strings.TrimSpace(fields[1]) {
		case "M":
			genders[reader] = gender(symbols.Male)
		case "F":
			genders[reader] = gender(symbols.Female)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read speakers file: %w", err)
	}
	return genders, nil
}
