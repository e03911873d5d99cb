package symbols

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const (
	primaryStress   = "ˈ"
	secondaryStress = "ˌ"
)

var tieBars = []string{"͡", "͜"}

// Modifiers that belong to the preceding segment: length marks, secondary
// articulations, ejective mark and the tone letters.
var ipaModifiers = map[rune]bool{
	'ː': true, 'ˑ': true, 'ʰ': true, 'ʲ': true, 'ʷ': true, 'ˠ': true, 'ˤ': true, 'ʼ': true,
	'˥': true, '˦': true, '˧': true, '˨': true, '˩': true,
}

var toneLetters = map[rune]bool{'˥': true, '˦': true, '˧': true, '˨': true, '˩': true}

// TextToSymbols splits text into the symbols of the given format.
//
// Graphemes are user-perceived characters. IPA text is split into segments
// with modifiers and tie-bar joined segments kept together. ARPA text is
// split into phonemes; a single space between phonemes is a separator, longer
// whitespace runs and anything that is not a phoneme become symbols.
func TextToSymbols(text string, lang Language, format SymbolFormat) ([]string, error) {
	switch format {
	case PhonemesARPA:
		return splitARPA(text), nil
	case PhonemesIPA:
		return splitIPA(text), nil
	default:
		return splitGraphemes(text), nil
	}
}

func splitGraphemes(text string) []string {
	result := []string{}
	state := -1
	rest := text
	var cluster string
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		result = append(result, cluster)
	}
	return result
}

func splitIPA(text string) []string {
	result := []string{}
	for _, cluster := range splitGraphemes(text) {
		if len(result) > 0 {
			last := result[len(result)-1]
			first, _ := utf8.DecodeRuneInString(cluster)
			if endsWithTie(last) || (ipaModifiers[first] && last != " ") {
				result[len(result)-1] = last + cluster
				continue
			}
		}
		result = append(result, cluster)
	}
	return result
}

func endsWithTie(s string) bool {
	for _, tie := range tieBars {
		if strings.HasSuffix(s, tie) {
			return true
		}
	}
	return false
}

func splitARPA(text string) []string {
	result := []string{}
	runes := []rune(text)
	lastWasPhoneme := false

	for i := 0; i < len(runes); {
		r := runes[i]

		if unicode.IsSpace(r) {
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			next := ""
			if j < len(runes) {
				next, _ = matchARPA(runes[j:])
			}
			if j-i > 1 || !lastWasPhoneme || next == "" {
				result = append(result, " ")
			}
			lastWasPhoneme = false
			i = j
			continue
		}

		if phoneme, n := matchARPA(runes[i:]); phoneme != "" {
			result = append(result, phoneme)
			lastWasPhoneme = true
			i += n
			continue
		}

		result = append(result, string(r))
		lastWasPhoneme = false
		i++
	}
	return result
}

// matchARPA greedily matches one ARPA phoneme with optional stress digit
func matchARPA(runes []rune) (string, int) {
	for _, length := range []int{2, 1} {
		if len(runes) < length {
			continue
		}
		base := string(runes[:length])
		info, ok := arpaToIPA[base]
		if !ok {
			continue
		}
		if info.vowel && len(runes) > length && runes[length] >= '0' && runes[length] <= '2' {
			return base + string(runes[length]), length + 1
		}
		return base, length
	}
	return "", 0
}

func isStressMark(s string) bool {
	return s == primaryStress || s == secondaryStress
}

func isSpaceSymbol(s string) bool {
	return strings.TrimSpace(s) == ""
}
