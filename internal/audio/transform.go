package audio

import (
	"fmt"
	"math"

	"github.com/franz/speech-janitor/internal/util"
)

// Resample converts a to rate by linear interpolation. The frame count is
// scaled by the rate ratio, so the duration is kept to within one frame.
func Resample(a *Audio, rate int) *Audio {
	if rate == a.SampleRate || a.Frames() == 0 {
		return &Audio{Channels: copyChannels(a.Channels), SampleRate: rate}
	}

	ratio := float64(a.SampleRate) / float64(rate)
	frames := int(math.Round(float64(a.Frames()) / ratio))
	out := &Audio{Channels: make([][]float64, a.NumChannels()), SampleRate: rate}
	for c, samples := range a.Channels {
		resampled := make([]float64, frames)
		last := len(samples) - 1
		for i := range resampled {
			pos := float64(i) * ratio
			j := int(pos)
			if j >= last {
				resampled[i] = samples[last]
				continue
			}
			frac := pos - float64(j)
			resampled[i] = samples[j]*(1-frac) + samples[j+1]*frac
		}
		out.Channels[c] = resampled
	}
	return out
}

// ToMono averages all channels into one
func ToMono(a *Audio) *Audio {
	if a.NumChannels() <= 1 {
		return &Audio{Channels: copyChannels(a.Channels), SampleRate: a.SampleRate}
	}

	mono := make([]float64, a.Frames())
	for _, samples := range a.Channels {
		for i, v := range samples {
			mono[i] += v
		}
	}
	n := float64(a.NumChannels())
	for i := range mono {
		mono[i] /= n
	}
	return &Audio{Channels: [][]float64{mono}, SampleRate: a.SampleRate}
}

// NormalizePeak scales a so that its largest absolute sample is 1. Silence
// is returned unchanged.
func NormalizePeak(a *Audio) *Audio {
	peak := 0.0
	for _, samples := range a.Channels {
		for _, v := range samples {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	out := &Audio{Channels: copyChannels(a.Channels), SampleRate: a.SampleRate}
	if peak == 0 {
		return out
	}
	for _, samples := range out.Channels {
		for i := range samples {
			samples[i] /= peak
		}
	}
	return out
}

// SilenceOptions configure RemoveSilence
type SilenceOptions struct {
	// ChunkSize is the number of frames whose level is measured at once
	ChunkSize int
	// ThresholdStart and ThresholdEnd are the levels in dBFS a chunk has to
	// reach to count as sound
	ThresholdStart float64
	ThresholdEnd   float64
	// BufferStartMs and BufferEndMs of silence are kept before and after the sound
	BufferStartMs float64
	BufferEndMs   float64
}

// Validate checks the options
func (o SilenceOptions) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("silence chunk size must be positive, got %d: %w", o.ChunkSize, util.ErrInvalidConfig)
	}
	if o.BufferStartMs < 0 || o.BufferEndMs < 0 {
		return fmt.Errorf("silence buffers must not be negative: %w", util.ErrInvalidConfig)
	}
	return nil
}

// RemoveSilence trims leading and trailing silence. Audio without any chunk
// above the thresholds is returned unchanged.
func RemoveSilence(a *Audio, opts SilenceOptions) (*Audio, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	frames := a.Frames()
	start, foundStart := firstSoundFrame(a, opts.ChunkSize, opts.ThresholdStart)
	end, foundEnd := lastSoundFrame(a, opts.ChunkSize, opts.ThresholdEnd)
	if !foundStart || !foundEnd || start >= end {
		return &Audio{Channels: copyChannels(a.Channels), SampleRate: a.SampleRate}, nil
	}

	start -= msToFrames(opts.BufferStartMs, a.SampleRate)
	end += msToFrames(opts.BufferEndMs, a.SampleRate)
	start = max(start, 0)
	end = min(end, frames)

	out := &Audio{Channels: make([][]float64, a.NumChannels()), SampleRate: a.SampleRate}
	for c, samples := range a.Channels {
		out.Channels[c] = append([]float64(nil), samples[start:end]...)
	}
	return out, nil
}

// firstSoundFrame returns the first frame of the first chunk reaching threshold
func firstSoundFrame(a *Audio, chunkSize int, threshold float64) (int, bool) {
	for start := 0; start < a.Frames(); start += chunkSize {
		if chunkDBFS(a, start, min(start+chunkSize, a.Frames())) >= threshold {
			return start, true
		}
	}
	return 0, false
}

// lastSoundFrame returns the frame after the last chunk reaching threshold,
// with chunks counted from the end
func lastSoundFrame(a *Audio, chunkSize int, threshold float64) (int, bool) {
	for end := a.Frames(); end > 0; end -= chunkSize {
		if chunkDBFS(a, max(end-chunkSize, 0), end) >= threshold {
			return end, true
		}
	}
	return 0, false
}

// chunkDBFS is the RMS level of frames [from, to) over all channels
func chunkDBFS(a *Audio, from, to int) float64 {
	sum, n := 0.0, 0
	for _, samples := range a.Channels {
		for _, v := range samples[from:to] {
			sum += v * v
			n++
		}
	}
	if n == 0 || sum == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(math.Sqrt(sum/float64(n)))
}

func msToFrames(ms float64, rate int) int {
	return int(math.Round(ms / 1000 * float64(rate)))
}

func copyChannels(channels [][]float64) [][]float64 {
	out := make([][]float64, len(channels))
	for c, samples := range channels {
		out[c] = append([]float64(nil), samples...)
	}
	return out
}
