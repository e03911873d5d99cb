package symbols

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franz/speech-janitor/internal/util"
)

// IPAPass is one cleanup step of ChangeIPA
type IPAPass string

const (
	PassArcs    IPAPass = "arcs"
	PassTones   IPAPass = "tones"
	PassStress  IPAPass = "stress"
	PassNThongs IPAPass = "n-thongs"
)

// DefaultIPAPassOrder is the order passes run in unless configured otherwise
var DefaultIPAPassOrder = []IPAPass{PassArcs, PassTones, PassStress, PassNThongs}

// ChangeIPAOptions selects the IPA cleanup passes. Every flag toggles its
// pass independently; Order decides the sequence (DefaultIPAPassOrder when
// empty).
type ChangeIPAOptions struct {
	IgnoreTones  bool
	IgnoreArcs   bool
	IgnoreStress bool
	BreakNThongs bool
	BuildNThongs bool
	Order        []IPAPass
}

// ParseIPAPassOrder parses a list of pass names
func ParseIPAPassOrder(names []string) ([]IPAPass, error) {
	order := make([]IPAPass, 0, len(names))
	for _, name := range names {
		pass := IPAPass(strings.ToLower(strings.TrimSpace(name)))
		switch pass {
		case PassArcs, PassTones, PassStress, PassNThongs:
			order = append(order, pass)
		default:
			return nil, fmt.Errorf("unknown IPA pass %q: %w", name, util.ErrInvalidConfig)
		}
	}
	return order, nil
}

// Validate checks the options for contradictions
func (o ChangeIPAOptions) Validate() error {
	if o.BreakNThongs && o.BuildNThongs {
		return fmt.Errorf("n-thongs cannot be broken and built at the same time: %w", util.ErrInvalidConfig)
	}

	seen := make(map[IPAPass]bool)
	for _, pass := range o.Order {
		switch pass {
		case PassArcs, PassTones, PassStress, PassNThongs:
		default:
			return fmt.Errorf("unknown IPA pass %q: %w", pass, util.ErrInvalidConfig)
		}
		if seen[pass] {
			return fmt.Errorf("IPA pass %q listed twice: %w", pass, util.ErrInvalidConfig)
		}
		seen[pass] = true
	}
	return nil
}

func (o ChangeIPAOptions) order() []IPAPass {
	if len(o.Order) == 0 {
		return DefaultIPAPassOrder
	}
	return o.Order
}

// ChangeIPA runs the enabled passes over an IPA symbol sequence. Passes that
// are enabled but missing from a custom order do not run.
func ChangeIPA(symbols []string, opts ChangeIPAOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := append([]string{}, symbols...)
	for _, pass := range opts.order() {
		switch {
		case pass == PassArcs && opts.IgnoreArcs:
			result = removeArcs(result)
		case pass == PassTones && opts.IgnoreTones:
			result = removeTones(result)
		case pass == PassStress && opts.IgnoreStress:
			result = removeStress(result)
		case pass == PassNThongs && opts.BreakNThongs:
			result = breakNThongs(result)
		case pass == PassNThongs && opts.BuildNThongs:
			result = buildNThongs(result)
		}
	}
	return result, nil
}

// removeArcs drops tie bars; the formerly tied segments become separate symbols
func removeArcs(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if !strings.ContainsAny(symbol, strings.Join(tieBars, "")) {
			result = append(result, symbol)
			continue
		}
		stripped := symbol
		for _, tie := range tieBars {
			stripped = strings.ReplaceAll(stripped, tie, "")
		}
		result = append(result, splitIPA(stripped)...)
	}
	return result
}

// removeTones drops tone letters and tone digits; symbols that consisted only
// of tone marks disappear
func removeTones(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		stripped := strings.Map(func(r rune) rune {
			if toneLetters[r] || (r >= '1' && r <= '5') {
				return -1
			}
			return r
		}, symbol)
		if stripped == "" {
			continue
		}
		result = append(result, stripped)
	}
	return result
}

func removeStress(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		stripped := strings.NewReplacer(primaryStress, "", secondaryStress, "").Replace(symbol)
		if stripped == "" {
			continue
		}
		result = append(result, stripped)
	}
	return result
}

// breakNThongs splits every symbol made of several vowels into one symbol
// per vowel, each keeping its own modifiers
func breakNThongs(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if !isNThong(symbol) {
			result = append(result, symbol)
			continue
		}
		var current strings.Builder
		for _, r := range symbol {
			if isIPAVowel(r) && current.Len() > 0 {
				result = append(result, current.String())
				current.Reset()
			}
			current.WriteRune(r)
		}
		result = append(result, current.String())
	}
	return result
}

// buildNThongs joins runs of adjacent vowel symbols into one symbol. Stress
// marks, spaces and consonants end a run.
func buildNThongs(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	prevVowel := false
	for _, symbol := range symbols {
		vowel := isVowelSymbol(symbol)
		if vowel && prevVowel {
			result[len(result)-1] += symbol
			continue
		}
		result = append(result, symbol)
		prevVowel = vowel
	}
	return result
}

const ipaVowels = "iyɨʉɯuɪʏʊeøɘɵɤoəɛœɜɞʌɔæɐaɶɑɒɚɝ"

func isIPAVowel(r rune) bool {
	return strings.ContainsRune(ipaVowels, r)
}

// isVowelSymbol reports whether symbol is a vowel possibly followed by
// modifiers or combining marks
func isVowelSymbol(symbol string) bool {
	first, size := utf8.DecodeRuneInString(symbol)
	if size == 0 || !isIPAVowel(first) {
		return false
	}
	for _, r := range symbol[size:] {
		if !isIPAVowel(r) && !ipaModifiers[r] && !isCombining(r) {
			return false
		}
	}
	return true
}

func isNThong(symbol string) bool {
	if !isVowelSymbol(symbol) {
		return false
	}
	vowels := 0
	for _, r := range symbol {
		if isIPAVowel(r) {
			vowels++
		}
	}
	return vowels > 1
}

func isCombining(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}
