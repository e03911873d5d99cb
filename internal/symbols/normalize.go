package symbols

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/neurlang/NumToWordsGo/NumToWords"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	numberPattern     = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// Abbreviations expanded in English text, matched case-sensitively with the
// trailing period
var englishAbbreviations = []struct {
	pattern *regexp.Regexp
	expand  string
}{
	{regexp.MustCompile(`\bMrs\.`), "Misess"},
	{regexp.MustCompile(`\bMr\.`), "Mister"},
	{regexp.MustCompile(`\bDr\.`), "Doctor"},
	{regexp.MustCompile(`\bSt\.`), "Saint"},
	{regexp.MustCompile(`\bCo\.`), "Company"},
	{regexp.MustCompile(`\bJr\.`), "Junior"},
	{regexp.MustCompile(`\bMaj\.`), "Major"},
	{regexp.MustCompile(`\bGen\.`), "General"},
	{regexp.MustCompile(`\bDrs\.`), "Doctors"},
	{regexp.MustCompile(`\bRev\.`), "Reverend"},
	{regexp.MustCompile(`\bLt\.`), "Lieutenant"},
	{regexp.MustCompile(`\bHon\.`), "Honorable"},
	{regexp.MustCompile(`\bSgt\.`), "Sergeant"},
	{regexp.MustCompile(`\bCapt\.`), "Captain"},
	{regexp.MustCompile(`\bEsq\.`), "Esquire"},
	{regexp.MustCompile(`\bLtd\.`), "Limited"},
	{regexp.MustCompile(`\bCol\.`), "Colonel"},
	{regexp.MustCompile(`\bFt\.`), "Fort"},
}

type numberLocale struct {
	code      string
	thousands string
	decimal   string
	point     string
}

var numberLocales = map[Language]numberLocale{
	English: {code: "en", thousands: ",", decimal: ".", point: "point"},
	German:  {code: "de", thousands: ".", decimal: ",", point: "Komma"},
}

// Normalize cleans up text of the given language and format: Unicode NFC and
// whitespace collapsing for every input, plus abbreviation expansion (English)
// and spelled-out numbers (English and German) for graphemes.
func Normalize(text string, lang Language, format SymbolFormat) (string, error) {
	text = norm.NFC.String(text)
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	if format != Graphemes {
		return text, nil
	}

	if lang == English {
		for _, abbr := range englishAbbreviations {
			text = abbr.pattern.ReplaceAllString(text, abbr.expand)
		}
	}

	if locale, ok := numberLocales[lang]; ok {
		text = numberPattern.ReplaceAllStringFunc(text, func(number string) string {
			return spellNumber(number, locale)
		})
		text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	}

	return text, nil
}

// NormalizeSymbols normalizes a symbol sequence. Graphemes are rendered,
// normalized and split again; phoneme sequences keep their symbols and only
// have their word separators collapsed and trimmed.
func NormalizeSymbols(symbols []string, lang Language, format SymbolFormat) ([]string, error) {
	if format == Graphemes {
		text, err := Normalize(Render(symbols), lang, format)
		if err != nil {
			return nil, err
		}
		return TextToSymbols(text, lang, format)
	}

	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if isSpaceSymbol(symbol) {
			if len(result) == 0 || result[len(result)-1] == " " {
				continue
			}
			result = append(result, " ")
			continue
		}
		result = append(result, norm.NFC.String(symbol))
	}
	if n := len(result); n > 0 && result[n-1] == " " {
		result = result[:n-1]
	}
	return result, nil
}

func spellNumber(number string, locale numberLocale) string {
	plain := strings.ReplaceAll(number, locale.thousands, "")
	integer, fraction, hasFraction := strings.Cut(plain, locale.decimal)
	if strings.Contains(fraction, locale.decimal) {
		return number
	}

	words := spellInteger(integer, locale.code)
	if words == "" {
		return number
	}
	if !hasFraction {
		return words
	}

	digits := make([]string, 0, len(fraction))
	for _, d := range fraction {
		w := spellInteger(string(d), locale.code)
		if w == "" {
			return number
		}
		digits = append(digits, w)
	}
	return words + " " + locale.point + " " + strings.Join(digits, " ")
}

func spellInteger(digits, code string) string {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return ""
	}
	words, err := NumToWords.Convert(n, code)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(words), " ")
}
