package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/franz/speech-janitor/internal/util"
)

// EngToIPAMode selects how English graphemes are converted
type EngToIPAMode string

const (
	// ModeDictionary requires every word to be in the pronunciation dictionary
	ModeDictionary EngToIPAMode = "dictionary"
	// ModeKeepOOV keeps words missing from the dictionary as graphemes
	ModeKeepOOV EngToIPAMode = "keep-oov"
)

// ParseEngToIPAMode parses a mode name; the empty string is "no mode"
func ParseEngToIPAMode(s string) (EngToIPAMode, error) {
	switch EngToIPAMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case ModeDictionary:
		return ModeDictionary, nil
	case ModeKeepOOV:
		return ModeKeepOOV, nil
	}
	return "", fmt.Errorf("unknown English to IPA mode %q: %w", s, util.ErrInvalidConfig)
}

// RequiresMode reports whether converting symbols of lang/format to IPA needs
// an explicit EngToIPAMode
func RequiresMode(lang Language, format SymbolFormat) bool {
	return lang == English && format == Graphemes
}

// Converter converts symbol sequences to IPA
type Converter interface {
	ToIPA(symbols []string, lang Language, format SymbolFormat, mode EngToIPAMode, considerAnnotations bool) ([]string, SymbolFormat, error)
}

// Dictionary is a CMUdict style pronunciation dictionary: upper case word
// followed by its ARPA phonemes. Only the first pronunciation of a word is kept.
type Dictionary struct {
	entries map[string][]string
}

// LoadDictionary reads a dictionary in CMUdict format. Lines starting with
// ";;;" are comments; alternative pronunciations ("WORD(1)") are skipped.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{entries: make(map[string][]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("dictionary line %d: missing pronunciation: %w", lineNo, util.ErrCorrupt)
		}
		word := strings.ToUpper(fields[0])
		if strings.HasSuffix(word, ")") && strings.Contains(word, "(") {
			continue
		}
		if _, exists := d.entries[word]; exists {
			continue
		}
		d.entries[word] = fields[1:]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	return d, nil
}

// LoadDictionaryFile reads a dictionary file
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

// Len returns the number of words
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the ARPA pronunciation of word
func (d *Dictionary) Lookup(word string) ([]string, bool) {
	phonemes, ok := d.entries[strings.ToUpper(word)]
	return phonemes, ok
}

// IPAConverter is the default Converter. It dispatches on language and
// format: IPA input is passed through, ARPA input is mapped, English
// graphemes are looked up in the dictionary. Word conversions are cached per
// instance.
type IPAConverter struct {
	dict *Dictionary

	mu    sync.Mutex
	cache map[string][]string
}

// NewIPAConverter creates a converter; dict may be nil when no English
// grapheme input is converted
func NewIPAConverter(dict *Dictionary) *IPAConverter {
	return &IPAConverter{
		dict:  dict,
		cache: make(map[string][]string),
	}
}

// ToIPA converts symbols and returns the new symbols and their format
func (c *IPAConverter) ToIPA(symbols []string, lang Language, format SymbolFormat, mode EngToIPAMode, considerAnnotations bool) ([]string, SymbolFormat, error) {
	switch {
	case format == PhonemesIPA || lang == IPA:
		return append([]string{}, symbols...), PhonemesIPA, nil
	case format == PhonemesARPA:
		return MapARPAToIPA(symbols), PhonemesIPA, nil
	case lang == English && format == Graphemes:
		if mode == "" {
			return nil, "", fmt.Errorf("converting English graphemes to IPA requires a mode: %w", util.ErrInvalidConfig)
		}
		if c.dict == nil {
			return nil, "", fmt.Errorf("converting English graphemes to IPA requires a pronunciation dictionary: %w", util.ErrInvalidConfig)
		}
		result, err := c.englishToIPA(Render(symbols), mode, considerAnnotations)
		if err != nil {
			return nil, "", err
		}
		return result, PhonemesIPA, nil
	}
	return nil, "", fmt.Errorf("no IPA converter for %s %s: %w", lang, format, util.ErrUnsupported)
}

// englishToIPA converts text word by word. With considerAnnotations, parts
// enclosed in slashes are taken as IPA already.
func (c *IPAConverter) englishToIPA(text string, mode EngToIPAMode, considerAnnotations bool) ([]string, error) {
	if !considerAnnotations || strings.Count(text, "/") < 2 {
		return c.convertPlain(text, mode)
	}

	parts := strings.Split(text, "/")
	if len(parts)%2 == 0 {
		// unbalanced: the last slash is literal text
		parts[len(parts)-2] += "/" + parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	result := []string{}
	for i, part := range parts {
		if i%2 == 1 {
			result = append(result, splitIPA(part)...)
			continue
		}
		converted, err := c.convertPlain(part, mode)
		if err != nil {
			return nil, err
		}
		result = append(result, converted...)
	}
	return result, nil
}

func (c *IPAConverter) convertPlain(text string, mode EngToIPAMode) ([]string, error) {
	result := []string{}
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			result = append(result, splitGraphemes(string(runes[i]))...)
			i++
			continue
		}

		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		word := strings.Trim(string(runes[i:j]), "'")
		if word == "" {
			result = append(result, splitGraphemes(string(runes[i:j]))...)
			i = j
			continue
		}

		ipa, err := c.convertWord(word, mode)
		if err != nil {
			return nil, err
		}
		result = append(result, ipa...)
		i = j
	}
	return result, nil
}

func (c *IPAConverter) convertWord(word string, mode EngToIPAMode) ([]string, error) {
	key := strings.ToUpper(word)

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	phonemes, found := c.dict.Lookup(key)
	if !found {
		if mode == ModeKeepOOV {
			util.DebugLog("Keeping out-of-vocabulary word %q", word)
			return splitGraphemes(word), nil
		}
		return nil, fmt.Errorf("word %q not in pronunciation dictionary: %w", word, util.ErrNotFound)
	}

	result := make([]string, 0, len(phonemes)+2)
	for _, phoneme := range phonemes {
		ipa, ok := ARPAToIPA(phoneme)
		if !ok {
			return nil, fmt.Errorf("invalid ARPA phoneme %q for word %q: %w", phoneme, word, util.ErrCorrupt)
		}
		result = append(result, ipa...)
	}

	c.mu.Lock()
	c.cache[key] = result
	c.mu.Unlock()
	return result, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || r == '\''
}
