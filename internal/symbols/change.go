package symbols

import (
	"unicode"
	"unicode/utf8"
)

// ChangeSymbols applies orthographic cleanup to a symbol sequence. With
// removeSpaceAroundPunctuation, spaces inside brackets and before closing
// punctuation are dropped. Languages written without word spaces lose every
// space next to punctuation.
func ChangeSymbols(symbols []string, removeSpaceAroundPunctuation bool, lang Language) []string {
	if !removeSpaceAroundPunctuation {
		return append([]string{}, symbols...)
	}

	spaced := lang != Chinese
	result := make([]string, 0, len(symbols))
	for i, symbol := range symbols {
		if !isSpaceSymbol(symbol) {
			result = append(result, symbol)
			continue
		}

		prev, next := "", ""
		if i > 0 {
			prev = symbols[i-1]
		}
		if i+1 < len(symbols) {
			next = symbols[i+1]
		}

		if isPunctuationSymbol(next) && !(spaced && isOpeningPunctuation(next)) {
			continue
		}
		if isPunctuationSymbol(prev) && !(spaced && !isOpeningPunctuation(prev)) {
			continue
		}
		result = append(result, symbol)
	}
	return result
}

func isPunctuationSymbol(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && size == len(s) && unicode.IsPunct(r)
}

func isOpeningPunctuation(s string) bool {
	switch s {
	case "(", "[", "{", "«", "¿", "¡", "„":
		return true
	}
	return false
}
