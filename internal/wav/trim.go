package wav

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"

	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/util"
)

// TrimDir is the folder inside a wav stage holding silence removal previews
const TrimDir = "trim"

// TrimPreview is the result of a silence removal preview
type TrimPreview struct {
	EntryID          int
	OriginalPath     string
	TrimmedPath      string
	OriginalDuration float64
	TrimmedDuration  float64
}

// PreviewRemoveSilence writes the trimmed audio of one entry to
// <wavDir>/trim/<id>/ next to a copy of the original. The stage data is not
// changed. A nil entryID picks a random entry.
func PreviewRemoveSilence(wavDir string, data []WavData, entryID *int, opts audio.SilenceOptions) (*TrimPreview, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("wav stage %s has no entries: %w", wavDir, util.ErrNotFound)
	}

	entry := data[rand.Intn(len(data))]
	if entryID != nil {
		var err error
		if entry, err = Find(data, *entryID); err != nil {
			return nil, err
		}
	}

	src := filepath.Join(wavDir, entry.WavRelativePath)
	dest := filepath.Join(wavDir, TrimDir, strconv.Itoa(entry.EntryID))
	name := fmt.Sprintf("cs=%d,ts=%gdBFS,bs=%gms,te=%gdBFS,be=%gms.wav",
		opts.ChunkSize, opts.ThresholdStart, opts.BufferStartMs, opts.ThresholdEnd, opts.BufferEndMs)

	preview := &TrimPreview{
		EntryID:          entry.EntryID,
		OriginalPath:     filepath.Join(dest, "original.wav"),
		TrimmedPath:      filepath.Join(dest, name),
		OriginalDuration: entry.WavDuration,
	}

	if !util.FileExists(preview.OriginalPath) {
		if _, err := util.CopyFile(src, preview.OriginalPath); err != nil {
			return nil, err
		}
	}

	duration, err := audio.RemoveSilenceFile(src, preview.TrimmedPath, opts)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", entry.EntryID, err)
	}
	preview.TrimmedDuration = duration
	return preview, nil
}
