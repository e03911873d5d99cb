package text

import (
	"fmt"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/util"
)

// LogStats aggregates the symbol counts of a text stage per speaker
func LogStats(dsData []ds.DsData, data []TextData) ([]report.StatsRow, error) {
	speakers := make(map[int]string, len(dsData))
	for _, entry := range dsData {
		speakers[entry.EntryID] = entry.SpeakerName
	}

	groups := make(map[string][]float64)
	for _, entry := range data {
		speaker, ok := speakers[entry.EntryID]
		if !ok {
			return nil, fmt.Errorf("text entry %d has no dataset entry: %w", entry.EntryID, util.ErrIntegrity)
		}
		groups[speaker] = append(groups[speaker], float64(len(entry.Symbols)))
	}
	return report.ComputeStats(groups), nil
}
