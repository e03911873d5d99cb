// Package corpus parses and downloads the supported speech corpora
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

// PreData is one utterance as found in a corpus, before entry ids are assigned
type PreData struct {
	Identifier    string
	Text          string
	Symbols       []string // already split symbols, nil when Text has to be symbolized
	SymbolsFormat symbols.SymbolFormat
	Language      symbols.Language
	SpeakerName   string
	SpeakerGender *symbols.Gender
	SpeakerAccent string
	WavPath       string // absolute
}

// Options configure formats whose layout does not fix everything
type Options struct {
	// TierName is the TextGrid tier holding the symbols (generic)
	TierName string
	// NDigits is the precision interval bounds are compared with (generic)
	NDigits int
	// SymbolsFormat of the tier symbols (generic)
	SymbolsFormat symbols.SymbolFormat
}

// Format is a registered corpus layout
type Format struct {
	Name        string
	Description string
	Parse       func(dir string, opts Options) ([]PreData, error)
	// Download fetches the corpus into dir; nil when the corpus has to be
	// provided by the user
	Download func(ctx context.Context, dir string) error
}

var formats = map[string]*Format{}

func register(f *Format) {
	formats[f.Name] = f
}

func init() {
	register(&Format{Name: "ljs", Description: "LJ Speech 1.1", Parse: parseLJS, Download: downloadLJS})
	register(&Format{Name: "thchs", Description: "THCHS-30", Parse: parseTHCHS, Download: downloadTHCHS})
	register(&Format{Name: "thchs-kaldi", Description: "THCHS-30 with Kaldi train/dev/test split", Parse: parseTHCHSKaldi, Download: downloadTHCHS})
	register(&Format{Name: "mailabs", Description: "M-AILABS speech dataset", Parse: parseMAILABS})
	register(&Format{Name: "libritts", Description: "LibriTTS", Parse: parseLibriTTS})
	register(&Format{Name: "arctic", Description: "L2-ARCTIC", Parse: parseArctic})
	register(&Format{Name: "generic", Description: "speaker folders with TextGrid annotations", Parse: parseGeneric})
	register(&Format{Name: "custom", Description: "manifest.csv with one row per utterance", Parse: parseCustom})
}

// Lookup returns the format registered under name
func Lookup(name string) (*Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown corpus format %q (available: %s): %w", name, strings.Join(Names(), ", "), util.ErrInvalidConfig)
	}
	return f, nil
}

// Names lists the registered format names
func Names() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findRoot returns dir/sub when it exists, dir otherwise. Downloaded archives
// extract into a named folder while user-provided copies often do not.
func findRoot(dir, sub string) string {
	candidate := filepath.Join(dir, sub)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dir
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

func gender(g symbols.Gender) *symbols.Gender {
	return &g
}

// stem returns the file name without its (possibly compound) extension
func stem(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}
