package mel

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/util"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrogram is a log mel spectrogram laid out channel major:
// Values[c][t] is mel channel c at frame t
type Spectrogram struct {
	Values [][]float32
}

// Channels returns the number of mel channels
func (s *Spectrogram) Channels() int {
	return len(s.Values)
}

// Frames returns the number of time frames
func (s *Spectrogram) Frames() int {
	if len(s.Values) == 0 {
		return 0
	}
	return len(s.Values[0])
}

// STFT computes Tacotron style log mel spectrograms. It is safe for
// concurrent use.
type STFT struct {
	hp     HParams
	window []float64
	basis  [][]float64
	plans  sync.Pool
}

// NewSTFT validates hp and precomputes the window and the mel filterbank
func NewSTFT(hp HParams) (*STFT, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	s := &STFT{
		hp:     hp,
		window: paddedHann(hp.WinLength, hp.FilterLength),
		basis:  melFilterbank(hp.SamplingRate, hp.FilterLength, hp.NMelChannels, hp.MelFmin, hp.MelFmax),
	}
	s.plans.New = func() any {
		return fourier.NewFFT(hp.FilterLength)
	}
	return s, nil
}

// HParams returns the parameters of s
func (s *STFT) HParams() HParams {
	return s.hp
}

// MelFromFile reads a wav file and returns its mel spectrogram. The file has
// to use the configured sample rate; multiple channels are averaged.
func (s *STFT) MelFromFile(path string) (*Spectrogram, error) {
	a, err := audio.Read(path)
	if err != nil {
		return nil, err
	}
	if a.SampleRate != s.hp.SamplingRate {
		return nil, fmt.Errorf("%s has %d Hz, mel parameters expect %d Hz: %w", path, a.SampleRate, s.hp.SamplingRate, util.ErrInvalidConfig)
	}
	if a.NumChannels() > 1 {
		a = audio.ToMono(a)
	}
	if a.NumChannels() == 0 {
		return s.Mel(nil), nil
	}
	return s.Mel(a.Channels[0]), nil
}

// Mel returns the log mel spectrogram of samples in [-1, 1]. The signal is
// reflect padded by half a filter length on both sides. Empty input has no
// frames.
func (s *STFT) Mel(samples []float64) *Spectrogram {
	n := s.hp.FilterLength
	hop := s.hp.HopLength
	padded := reflectPad(samples, n/2)
	frames := 0
	if len(samples) > 0 && len(padded) >= n {
		frames = 1 + (len(padded)-n)/hop
	}

	spec := &Spectrogram{Values: make([][]float32, len(s.basis))}
	for c := range spec.Values {
		spec.Values[c] = make([]float32, frames)
	}

	fft := s.plans.Get().(*fourier.FFT)
	defer s.plans.Put(fft)

	buf := make([]float64, n)
	coeffs := make([]complex128, n/2+1)
	magnitude := make([]float64, n/2+1)
	for t := 0; t < frames; t++ {
		start := t * hop
		for k := 0; k < n; k++ {
			buf[k] = padded[start+k] * s.window[k]
		}
		coeffs = fft.Coefficients(coeffs, buf)
		for k, c := range coeffs {
			magnitude[k] = cmplx.Abs(c)
		}
		for c, weights := range s.basis {
			var sum float64
			for k, w := range weights {
				sum += w * magnitude[k]
			}
			spec.Values[c][t] = float32(math.Log(math.Max(sum, s.hp.ClipVal)))
		}
	}
	return spec
}

// reflectPad mirrors pad samples at both ends without repeating the edge
func reflectPad(x []float64, pad int) []float64 {
	out := make([]float64, len(x)+2*pad)
	if len(x) == 0 {
		return out
	}
	for i := range out {
		out[i] = x[reflectIndex(i-pad, len(x))]
	}
	return out
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// paddedHann returns a periodic Hann window of length win centered in size
func paddedHann(win, size int) []float64 {
	w := make([]float64, size)
	offset := (size - win) / 2
	for i := 0; i < win; i++ {
		w[offset+i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(win))
	}
	return w
}

// melFilterbank returns Slaney normalized triangular filters on the Slaney
// mel scale, one row of n/2+1 weights per mel channel
func melFilterbank(rate, n, channels int, fmin, fmax float64) [][]float64 {
	bins := n/2 + 1
	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(rate) / float64(n)
	}

	minMel, maxMel := hzToMel(fmin), hzToMel(fmax)
	points := make([]float64, channels+2)
	for i := range points {
		points[i] = melToHz(minMel + (maxMel-minMel)*float64(i)/float64(channels+1))
	}

	basis := make([][]float64, channels)
	for c := range basis {
		lower, center, upper := points[c], points[c+1], points[c+2]
		norm := 2 / (upper - lower)
		row := make([]float64, bins)
		for k, f := range fftFreqs {
			rising := (f - lower) / (center - lower)
			falling := (upper - f) / (upper - center)
			row[k] = math.Max(0, math.Min(rising, falling)) * norm
		}
		basis[c] = row
	}
	return basis
}

const (
	melLinearStep = 200.0 / 3
	melLogStartHz = 1000.0
	melLogStart   = melLogStartHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(hz float64) float64 {
	if hz < melLogStartHz {
		return hz / melLinearStep
	}
	return melLogStart + math.Log(hz/melLogStartHz)/melLogStep
}

func melToHz(m float64) float64 {
	if m < melLogStart {
		return m * melLinearStep
	}
	return melLogStartHz * math.Exp(melLogStep*(m-melLogStart))
}
