package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

type arcticSpeaker struct {
	gender symbols.Gender
	accent string
}

// L2-ARCTIC speakers with their first language
var arcticSpeakers = map[string]arcticSpeaker{
	"ABA":   {symbols.Male, "Arabic"},
	"SKA":   {symbols.Female, "Arabic"},
	"YBAA":  {symbols.Male, "Arabic"},
	"ZHAA":  {symbols.Female, "Arabic"},
	"BWC":   {symbols.Male, "Mandarin"},
	"LXC":   {symbols.Female, "Mandarin"},
	"NCC":   {symbols.Female, "Mandarin"},
	"TXHC":  {symbols.Male, "Mandarin"},
	"ASI":   {symbols.Male, "Hindi"},
	"RRBI":  {symbols.Male, "Hindi"},
	"SVBI":  {symbols.Female, "Hindi"},
	"TNI":   {symbols.Female, "Hindi"},
	"HJK":   {symbols.Female, "Korean"},
	"HKK":   {symbols.Male, "Korean"},
	"YDCK":  {symbols.Female, "Korean"},
	"YKWK":  {symbols.Male, "Korean"},
	"EBVS":  {symbols.Male, "Spanish"},
	"ERMS":  {symbols.Male, "Spanish"},
	"MBMPS": {symbols.Female, "Spanish"},
	"NJS":   {symbols.Female, "Spanish"},
	"HQTV":  {symbols.Male, "Vietnamese"},
	"PNV":   {symbols.Female, "Vietnamese"},
	"THV":   {symbols.Female, "Vietnamese"},
	"TLV":   {symbols.Male, "Vietnamese"},
}

// parseArctic reads <SPEAKER>/wav/<id>.wav with <SPEAKER>/transcript/<id>.txt
func parseArctic(dir string, _ Options) ([]PreData, error) {
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
		if !speakerDir.IsDir() {
			continue
		}
		speaker := speakerDir.Name()
		wavs, err := filepath.Glob(filepath.Join(root, speaker, "wav", "*.wav"))
		if err != nil {
			return nil, fmt.Errorf("failed to list wavs: %w", err)
		}
		if len(wavs) == 0 {
			continue
		}
		sort.Strings(wavs)

		info, known := arcticSpeakers[strings.ToUpper(speaker)]
		if !known {
			util.WarnLog("Unknown L2-ARCTIC speaker %s, gender and accent left empty", speaker)
		}

		for _, wav := range wavs {
			id := stem(wav, ".wav")
			data, err := os.ReadFile(filepath.Join(root, speaker, "transcript", id+".txt"))
			if err != nil {
				return nil, fmt.Errorf("failed to read transcript of %s/%s: %w", speaker, id, err)
			}

			entry := PreData{
				Identifier:    speaker + "/" + id,
				Text:          strings.TrimSpace(string(data)),
				SymbolsFormat: symbols.Graphemes,
				Language:      symbols.English,
				SpeakerName:   speaker,
				WavPath:       wav,
			}
			if known {
				entry.SpeakerGender = gender(info.gender)
				entry.SpeakerAccent = info.accent
			}
			result = append(result, entry)
		}
	}

	util.DebugLog("Parsed %d L2-ARCTIC utterances", len(result))
	return result, nil
}
