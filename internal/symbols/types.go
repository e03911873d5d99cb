// Package symbols turns raw text into symbol sequences and transforms those
// sequences: normalization, IPA conversion, ARPA mapping and IPA cleanup.
package symbols

import (
	"fmt"
	"strings"

	"github.com/franz/speech-janitor/internal/util"
)

// SymbolFormat describes what the entries of a symbol sequence are
type SymbolFormat string

const (
	Graphemes    SymbolFormat = "GRAPHEMES"
	PhonemesARPA SymbolFormat = "PHONEMES_ARPA"
	PhonemesIPA  SymbolFormat = "PHONEMES_IPA"
)

// Language of a symbol sequence. IPA is used for sequences that are already
// language independent phonemes.
type Language string

const (
	English Language = "ENG"
	German  Language = "GER"
	Chinese Language = "CHN"
	IPA     Language = "IPA"
)

// Gender of a speaker
type Gender string

const (
	Male    Gender = "MALE"
	Female  Gender = "FEMALE"
	Unknown Gender = "UNKNOWN"
)

// ParseSymbolFormat parses a format name (case insensitive, "ipa"/"arpa"
// shorthands accepted)
func ParseSymbolFormat(s string) (SymbolFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GRAPHEMES":
		return Graphemes, nil
	case "PHONEMES_ARPA", "ARPA":
		return PhonemesARPA, nil
	case "PHONEMES_IPA", "IPA":
		return PhonemesIPA, nil
	}
	return "", fmt.Errorf("unknown symbol format %q: %w", s, util.ErrInvalidConfig)
}

// ParseLanguage parses a language name ("ENG", "en", "eng", "GER", ...)
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eng", "en":
		return English, nil
	case "ger", "deu", "de":
		return German, nil
	case "chn", "zho", "zh":
		return Chinese, nil
	case "ipa":
		return IPA, nil
	}
	return "", fmt.Errorf("unknown language %q: %w", s, util.ErrInvalidConfig)
}

// LanguageFromISO maps an ISO 639-3 code to a Language
func LanguageFromISO(code string) (Language, error) {
	switch strings.ToLower(code) {
	case "eng":
		return English, nil
	case "deu":
		return German, nil
	case "zho":
		return Chinese, nil
	}
	return "", fmt.Errorf("unsupported ISO 639-3 language %q: %w", code, util.ErrUnsupported)
}

// GenderFromISO maps an ISO/IEC 5218 code to a Gender. 0 (not known) and 9
// (not applicable) map to nil.
func GenderFromISO(code int) (*Gender, error) {
	switch code {
	case 0, 9:
		return nil, nil
	case 1:
		g := Male
		return &g, nil
	case 2:
		g := Female
		return &g, nil
	}
	return nil, fmt.Errorf("invalid ISO 5218 gender code %d: %w", code, util.ErrInvalidConfig)
}

// ParseGender parses a gender name; empty input yields nil
func ParseGender(s string) (*Gender, error) {
	var g Gender
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "m", "male":
		g = Male
	case "f", "female":
		g = Female
	case "u", "unknown":
		g = Unknown
	default:
		return nil, fmt.Errorf("unknown gender %q: %w", s, util.ErrInvalidConfig)
	}
	return &g, nil
}

// GenderLabel renders an optional gender for file names and tables
func GenderLabel(g *Gender) string {
	if g == nil {
		return "none"
	}
	return strings.ToLower(string(*g))
}

// Render joins a symbol sequence back into text
func Render(symbols []string) string {
	return strings.Join(symbols, "")
}
