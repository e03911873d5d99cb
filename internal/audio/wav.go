// Package audio reads and writes PCM wav files and implements the per-file
// transforms of the wav stages.
package audio

import (
	"fmt"
	"math"
	"os"

	"github.com/franz/speech-janitor/internal/util"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	// OutputBitDepth is the bit depth of every written file
	OutputBitDepth = 16
)

// Audio holds deinterleaved samples scaled to [-1, 1]
type Audio struct {
	Channels   [][]float64
	SampleRate int
}

// NumChannels returns the channel count
func (a *Audio) NumChannels() int {
	return len(a.Channels)
}

// Frames returns the number of samples per channel
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the length in seconds
func (a *Audio) Duration() float64 {
	return Duration(a.Frames(), a.SampleRate)
}

// Duration converts a sample count at rate to seconds
func Duration(samples, rate int) float64 {
	if rate <= 0 {
		return 0
	}
	return float64(samples) / float64(rate)
}

// Read decodes an integer PCM wav file
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file: %w", path, util.ErrCorrupt)
	}
	if decoder.WavAudioFormat != formatPCM && decoder.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%s: wav format %d: %w", path, decoder.WavAudioFormat, util.ErrUnsupported)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, util.ErrCorrupt)
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%s: %d channels at %d bit: %w", path, channels, bitDepth, util.ErrUnsupported)
	}

	return fromInterleaved(buf.Data, channels, bitDepth, int(decoder.SampleRate)), nil
}

func fromInterleaved(data []int, channels, bitDepth, rate int) *Audio {
	frames := len(data) / channels
	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		// 8 bit wav samples are unsigned
		offset = scale
	}

	a := &Audio{Channels: make([][]float64, channels), SampleRate: rate}
	for c := range a.Channels {
		a.Channels[c] = make([]float64, frames)
	}
	for i := 0; i < frames*channels; i++ {
		a.Channels[i%channels][i/channels] = (float64(data[i]) - offset) / scale
	}
	return a
}

// Write encodes a as 16 bit PCM. The file appears under path only once it
// was written completely.
func Write(path string, a *Audio) error {
	if a.NumChannels() == 0 || a.SampleRate <= 0 {
		return fmt.Errorf("cannot write %s: no channels or sample rate: %w", path, util.ErrInvalidConfig)
	}

	f, commit, discard, err := util.CreatePart(path)
	if err != nil {
		return err
	}

	encoder := wav.NewEncoder(f, a.SampleRate, OutputBitDepth, a.NumChannels(), formatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: a.NumChannels(), SampleRate: a.SampleRate},
		Data:           toInterleaved(a),
		SourceBitDepth: OutputBitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		discard()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		discard()
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return commit()
}

func toInterleaved(a *Audio) []int {
	channels, frames := a.NumChannels(), a.Frames()
	const maxValue = 1<<(OutputBitDepth-1) - 1
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := math.Max(-1, math.Min(1, a.Channels[c][i]))
			data[i*channels+c] = int(math.Round(v * maxValue))
		}
	}
	return data
}
