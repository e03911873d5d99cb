package mel

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
	"github.com/spf13/afero"
)

func sine(freq float64, rate, frames int) []float64 {
	out := make([]float64, frames)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestNewHParams(t *testing.T) {
	hp, err := NewHParams(map[string]string{"hop_length": "128", "mel_fmax": "7600.5"})
	if err != nil {
		t.Fatalf("NewHParams() error = %v", err)
	}
	want := DefaultHParams()
	want.HopLength = 128
	want.MelFmax = 7600.5
	if hp != want {
		t.Errorf("NewHParams() = %+v, want %+v", hp, want)
	}
}

func TestNewHParamsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		custom map[string]string
	}{
		{"unknown key", map[string]string{"n_fft": "512"}},
		{"bad int", map[string]string{"hop_length": "many"}},
		{"bad float", map[string]string{"mel_fmin": "low"}},
		{"window too long", map[string]string{"win_length": "2048"}},
		{"fmax above nyquist", map[string]string{"sampling_rate": "8000"}},
		{"fmin above fmax", map[string]string{"mel_fmin": "9000", "mel_fmax": "8000"}},
		{"zero channels", map[string]string{"n_mel_channels": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHParams(tt.custom); !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("NewHParams(%v) error = %v, want ErrInvalidConfig", tt.custom, err)
			}
		})
	}
}

func TestHParamsFile(t *testing.T) {
	s := store.NewStageStore(afero.NewMemMapFs())
	hp := DefaultHParams()
	hp.NMelChannels = 64

	if err := SaveHParams(s, "/mel/x", hp); err != nil {
		t.Fatalf("SaveHParams() error = %v", err)
	}
	got, err := LoadHParams(s, "/mel/x")
	if err != nil {
		t.Fatalf("LoadHParams() error = %v", err)
	}
	if got != hp {
		t.Errorf("LoadHParams() = %+v, want %+v", got, hp)
	}
}

func TestReflectPad(t *testing.T) {
	got := reflectPad([]float64{1, 2, 3}, 2)
	want := []float64{3, 2, 1, 2, 3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("reflectPad() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reflectPad() = %v, want %v", got, want)
		}
	}

	if got := reflectPad([]float64{5}, 2); got[0] != 5 || got[4] != 5 {
		t.Errorf("reflectPad(single) = %v", got)
	}
}

func TestMelScale(t *testing.T) {
	for _, hz := range []float64{0, 500, 1000, 4000, 8000} {
		if got := melToHz(hzToMel(hz)); math.Abs(got-hz) > 1e-6 {
			t.Errorf("melToHz(hzToMel(%v)) = %v", hz, got)
		}
	}
	if math.Abs(hzToMel(1000)-15) > 1e-9 {
		t.Errorf("hzToMel(1000) = %v, want 15", hzToMel(1000))
	}
}

func TestMelFilterbank(t *testing.T) {
	basis := melFilterbank(22050, 1024, 80, 0, 8000)
	if len(basis) != 80 || len(basis[0]) != 513 {
		t.Fatalf("basis shape = %dx%d, want 80x513", len(basis), len(basis[0]))
	}
	for c, row := range basis {
		sum := 0.0
		for _, w := range row {
			if w < 0 {
				t.Fatalf("channel %d has negative weight", c)
			}
			sum += w
		}
		if sum == 0 {
			t.Errorf("channel %d is empty", c)
		}
	}
}

func TestMel(t *testing.T) {
	hp := DefaultHParams()
	stft, err := NewSTFT(hp)
	if err != nil {
		t.Fatalf("NewSTFT() error = %v", err)
	}

	spec := stft.Mel(sine(1000, hp.SamplingRate, hp.SamplingRate))
	if spec.Channels() != 80 || spec.Frames() != 87 {
		t.Fatalf("spectrogram shape = %dx%d, want 80x87", spec.Channels(), spec.Frames())
	}

	// strongest channel in the middle frame sits near 1 kHz
	frame := spec.Frames() / 2
	best := 0
	for c := range spec.Values {
		if spec.Values[c][frame] > spec.Values[best][frame] {
			best = c
		}
	}
	minMel, maxMel := hzToMel(hp.MelFmin), hzToMel(hp.MelFmax)
	center := melToHz(minMel + (maxMel-minMel)*float64(best+1)/float64(hp.NMelChannels+1))
	if math.Abs(center-1000) > 100 {
		t.Errorf("peak channel %d centered at %.0f Hz, want ~1000 Hz", best, center)
	}
}

func TestMelSilence(t *testing.T) {
	stft, err := NewSTFT(DefaultHParams())
	if err != nil {
		t.Fatalf("NewSTFT() error = %v", err)
	}
	spec := stft.Mel(make([]float64, 2048))
	floor := float32(math.Log(1e-5))
	for c := range spec.Values {
		for _, v := range spec.Values[c] {
			if v != floor {
				t.Fatalf("silent spectrogram value %v, want %v", v, floor)
			}
		}
	}

	if empty := stft.Mel(nil); empty.Frames() != 0 {
		t.Errorf("empty input has %d frames", empty.Frames())
	} else if empty.Channels() != len(spec.Values) {
		t.Errorf("empty input has %d channels, want %d", empty.Channels(), len(spec.Values))
	}
	if one := stft.Mel([]float64{0}); one.Frames() != 1 {
		t.Errorf("single sample has %d frames, want 1", one.Frames())
	}
}

func TestNpyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000-0001", "1.npy")
	spec := &Spectrogram{Values: [][]float32{{1, 2, 3}, {4, 5, 6}}}

	if err := WriteNpy(path, spec); err != nil {
		t.Fatalf("WriteNpy() error = %v", err)
	}
	got, err := ReadNpy(path)
	if err != nil {
		t.Fatalf("ReadNpy() error = %v", err)
	}
	if got.Channels() != 2 || got.Frames() != 3 || got.Values[1][2] != 6 || got.Values[0][1] != 2 {
		t.Errorf("ReadNpy() = %v", got.Values)
	}
}

func TestProcess(t *testing.T) {
	hp := DefaultHParams()
	wavDir := t.TempDir()
	var data []wav.WavData
	for i := 0; i < 3; i++ {
		rel := util.ChunkedPath(i, 3, ".wav")
		a := &audio.Audio{Channels: [][]float64{sine(440, hp.SamplingRate, hp.SamplingRate/2)}, SampleRate: hp.SamplingRate}
		if err := audio.Write(filepath.Join(wavDir, rel), a); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data = append(data, wav.WavData{EntryID: i, WavRelativePath: rel, WavSamplingRate: hp.SamplingRate, WavDuration: 0.5})
	}

	stft, err := NewSTFT(hp)
	if err != nil {
		t.Fatalf("NewSTFT() error = %v", err)
	}
	melDir := t.TempDir()
	result, err := Process(context.Background(), data, wavDir, stft, ChunkedSaver(melDir, len(data)), 2)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("got %d entries, want 3", len(result))
	}
	for i, entry := range result {
		if entry.EntryID != i || entry.MelNChannels != 80 {
			t.Errorf("entry %d = %+v", i, entry)
		}
		if want := util.ChunkedPath(i, 3, ".npy"); entry.MelRelativePath != want {
			t.Errorf("entry %d path = %q, want %q", i, entry.MelRelativePath, want)
		}
		spec, err := ReadNpy(filepath.Join(melDir, entry.MelRelativePath))
		if err != nil {
			t.Fatalf("ReadNpy() error = %v", err)
		}
		if spec.Channels() != 80 {
			t.Errorf("entry %d has %d channels", i, spec.Channels())
		}
	}
}

func TestProcessRateMismatch(t *testing.T) {
	wavDir := t.TempDir()
	a := &audio.Audio{Channels: [][]float64{sine(440, 16000, 1600)}, SampleRate: 16000}
	if err := audio.Write(filepath.Join(wavDir, "0.wav"), a); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	stft, err := NewSTFT(DefaultHParams())
	if err != nil {
		t.Fatalf("NewSTFT() error = %v", err)
	}
	data := []wav.WavData{{EntryID: 0, WavRelativePath: "0.wav", WavSamplingRate: 16000}}
	_, err = Process(context.Background(), data, wavDir, stft, ChunkedSaver(t.TempDir(), 1), 1)
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("Process() error = %v, want ErrInvalidConfig", err)
	}
}
