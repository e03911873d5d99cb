package mel

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// HParamsFile holds the effective parameters inside a mel stage
const HParamsFile = "hparams.yaml"

// HParams configures the mel spectrogram. Defaults follow Tacotron 2.
type HParams struct {
	SamplingRate int     `yaml:"sampling_rate"`
	FilterLength int     `yaml:"filter_length"`
	HopLength    int     `yaml:"hop_length"`
	WinLength    int     `yaml:"win_length"`
	NMelChannels int     `yaml:"n_mel_channels"`
	MelFmin      float64 `yaml:"mel_fmin"`
	MelFmax      float64 `yaml:"mel_fmax"`
	ClipVal      float64 `yaml:"clip_val"`
}

// DefaultHParams returns the Tacotron 2 defaults
func DefaultHParams() HParams {
	return HParams{
		SamplingRate: 22050,
		FilterLength: 1024,
		HopLength:    256,
		WinLength:    1024,
		NMelChannels: 80,
		MelFmin:      0,
		MelFmax:      8000,
		ClipVal:      1e-5,
	}
}

// NewHParams overlays custom on the defaults and validates the result
func NewHParams(custom map[string]string) (HParams, error) {
	hp := DefaultHParams()
	if err := hp.Apply(custom); err != nil {
		return HParams{}, err
	}
	if err := hp.Validate(); err != nil {
		return HParams{}, err
	}
	return hp, nil
}

// Apply sets the fields named by custom. Keys use the yaml names; an unknown
// key or an unparsable value is ErrInvalidConfig.
func (hp *HParams) Apply(custom map[string]string) error {
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := strings.TrimSpace(custom[key])
		var err error
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "sampling_rate":
			hp.SamplingRate, err = strconv.Atoi(raw)
		case "filter_length":
			hp.FilterLength, err = strconv.Atoi(raw)
		case "hop_length":
			hp.HopLength, err = strconv.Atoi(raw)
		case "win_length":
			hp.WinLength, err = strconv.Atoi(raw)
		case "n_mel_channels":
			hp.NMelChannels, err = strconv.Atoi(raw)
		case "mel_fmin":
			hp.MelFmin, err = strconv.ParseFloat(raw, 64)
		case "mel_fmax":
			hp.MelFmax, err = strconv.ParseFloat(raw, 64)
		case "clip_val":
			hp.ClipVal, err = strconv.ParseFloat(raw, 64)
		default:
			return fmt.Errorf("unknown hparam %q: %w", key, util.ErrInvalidConfig)
		}
		if err != nil {
			return fmt.Errorf("invalid value %q for hparam %s: %w", raw, key, util.ErrInvalidConfig)
		}
	}
	return nil
}

// Validate checks that the parameters describe a computable spectrogram
func (hp HParams) Validate() error {
	switch {
	case hp.SamplingRate <= 0:
		return fmt.Errorf("sampling_rate must be positive: %w", util.ErrInvalidConfig)
	case hp.FilterLength <= 0 || hp.HopLength <= 0 || hp.WinLength <= 0:
		return fmt.Errorf("filter, hop and window lengths must be positive: %w", util.ErrInvalidConfig)
	case hp.WinLength > hp.FilterLength:
		return fmt.Errorf("win_length %d exceeds filter_length %d: %w", hp.WinLength, hp.FilterLength, util.ErrInvalidConfig)
	case hp.NMelChannels <= 0:
		return fmt.Errorf("n_mel_channels must be positive: %w", util.ErrInvalidConfig)
	case hp.MelFmin < 0 || hp.MelFmin >= hp.MelFmax:
		return fmt.Errorf("mel_fmin %g must be below mel_fmax %g: %w", hp.MelFmin, hp.MelFmax, util.ErrInvalidConfig)
	case hp.MelFmax > float64(hp.SamplingRate)/2:
		return fmt.Errorf("mel_fmax %g exceeds the Nyquist frequency: %w", hp.MelFmax, util.ErrInvalidConfig)
	case hp.ClipVal <= 0:
		return fmt.Errorf("clip_val must be positive: %w", util.ErrInvalidConfig)
	}
	return nil
}

// SaveHParams writes hp as hparams.yaml into dir
func SaveHParams(s *store.StageStore, dir string, hp HParams) error {
	b, err := yaml.Marshal(hp)
	if err != nil {
		return fmt.Errorf("failed to marshal hparams: %w", err)
	}
	return s.WriteFile(filepath.Join(dir, HParamsFile), b)
}

// LoadHParams reads hparams.yaml from a mel stage
func LoadHParams(s *store.StageStore, dir string) (HParams, error) {
	b, err := afero.ReadFile(s.Fs(), filepath.Join(dir, HParamsFile))
	if err != nil {
		return HParams{}, fmt.Errorf("failed to read hparams: %w", err)
	}
	var hp HParams
	if err := yaml.Unmarshal(b, &hp); err != nil {
		return HParams{}, fmt.Errorf("invalid hparams: %w", util.ErrCorrupt)
	}
	return hp, nil
}
