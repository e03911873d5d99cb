package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

const (
	thchsFolder = "data_thchs30"
	thchsURL    = "https://www.openslr.org/resources/18/data_thchs30.tgz"
)

var thchsKaldiSplits = []string{"train", "dev", "test"}

func parseTHCHS(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(findRoot(dir, thchsFolder))
	if err != nil {
		return nil, err
	}

	wavs, err := filepath.Glob(filepath.Join(root, "data", "*.wav"))
	if err != nil {
		return nil, fmt.Errorf("failed to list wavs: %w", err)
	}
	sort.Strings(wavs)

	result := make([]PreData, 0, len(wavs))
	for _, wav := range wavs {
		text, err := readTranscription(wav + ".trn")
		if err != nil {
			return nil, err
		}
		result = append(result, thchsEntry(wav, text))
	}

	util.DebugLog("Parsed %d THCHS-30 utterances", len(result))
	return result, nil
}

// parseTHCHSKaldi reads the train/dev/test split folders. Their .trn files
// reference the transcription in the shared data folder.
func parseTHCHSKaldi(dir string, _ Options) ([]PreData, error) {
	root, err := absPath(findRoot(dir, thchsFolder))
	if err != nil {
		return nil, err
	}

	var result []PreData
	for _, split := range thchsKaldiSplits {
		wavs, err := filepath.Glob(filepath.Join(root, split, "*.wav"))
		if err != nil {
			return nil, fmt.Errorf("failed to list wavs: %w", err)
		}
		sort.Strings(wavs)

		for _, wav := range wavs {
			text, err := readTranscription(wav + ".trn")
			if err != nil {
				return nil, err
			}
			if ref := filepath.Join(filepath.Dir(wav), text); strings.HasSuffix(text, ".trn") {
				if text, err = readTranscription(ref); err != nil {
					return nil, err
				}
			}
			entry := thchsEntry(wav, text)
			entry.Identifier = split + "/" + entry.Identifier
			result = append(result, entry)
		}
	}

	util.DebugLog("Parsed %d THCHS-30 (Kaldi) utterances", len(result))
	return result, nil
}

func thchsEntry(wav, text string) PreData {
	id := stem(wav, ".wav")
	speaker, _, _ := strings.Cut(id, "_")
	return PreData{
		Identifier:    id,
		Text:          text,
		SymbolsFormat: symbols.Graphemes,
		Language:      symbols.Chinese,
		SpeakerName:   speaker,
		WavPath:       wav,
	}
}

// readTranscription returns the first non-empty line of a .trn file
func readTranscription(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open transcription: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return "", fmt.Errorf("%s is empty: %w", path, util.ErrCorrupt)
}
