package wav

import (
	"fmt"
	"time"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/util"
)

// LogStats aggregates the durations of a wav stage per speaker
func LogStats(dsData []ds.DsData, data []WavData) ([]report.StatsRow, error) {
	speakers := make(map[int]string, len(dsData))
	for _, entry := range dsData {
		speakers[entry.EntryID] = entry.SpeakerName
	}

	groups := make(map[string][]float64)
	for _, entry := range data {
		speaker, ok := speakers[entry.EntryID]
		if !ok {
			return nil, fmt.Errorf("wav entry %d has no dataset entry: %w", entry.EntryID, util.ErrIntegrity)
		}
		groups[speaker] = append(groups[speaker], entry.WavDuration)
	}
	return report.ComputeStats(groups), nil
}

// FormatSeconds renders a duration in seconds for stats tables
func FormatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond).String()
}
