package symbols

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/franz/speech-janitor/internal/util"
)

func TestTextToSymbols(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lang   Language
		format SymbolFormat
		want   []string
	}{
		{"graphemes", "héllo", English, Graphemes, []string{"h", "é", "l", "l", "o"}},
		{"combining mark stays with base", "e\u0301a", German, Graphemes, []string{"e\u0301", "a"}},
		{"chinese characters", "你好", Chinese, Graphemes, []string{"你", "好"}},
		{"empty", "", English, Graphemes, []string{}},
		{"ipa modifiers and ties", "t͡ʃaːˈb", IPA, PhonemesIPA, []string{"t͡ʃ", "aː", "ˈ", "b"}},
		{"ipa aspiration", "pʰa", IPA, PhonemesIPA, []string{"pʰ", "a"}},
		{"arpa separated", "HH AH0 L OW1", English, PhonemesARPA, []string{"HH", "AH0", "L", "OW1"}},
		{"arpa word gap", "HH AH0  W ER1", English, PhonemesARPA, []string{"HH", "AH0", " ", "W", "ER1"}},
		{"arpa rendered", "HHAH0LOW1", English, PhonemesARPA, []string{"HH", "AH0", "L", "OW1"}},
		{"arpa punctuation", "OW1 .", English, PhonemesARPA, []string{"OW1", " ", "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TextToSymbols(tt.text, tt.lang, tt.format)
			if err != nil {
				t.Fatalf("TextToSymbols() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TextToSymbols(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMapARPAToIPA(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"stress marks", []string{"HH", "AH0", "L", "OW1"}, []string{"h", "ə", "l", "ˈ", "oʊ"}},
		{"secondary stress", []string{"AE2", "T"}, []string{"ˌ", "æ", "t"}},
		{"affricate", []string{"CH", "ER0"}, []string{"t͡ʃ", "ɚ"}},
		{"non arpa kept", []string{"HH", " ", "x", "."}, []string{"h", " ", "x", "."}},
		{"consonant with digit is not arpa", []string{"T1"}, []string{"T1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapARPAToIPA(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapARPAToIPA(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lang   Language
		format SymbolFormat
		want   string
	}{
		{"whitespace", "  a \t b  ", German, Graphemes, "a b"},
		{"abbreviation and number", "Mr. Smith has 42 cats.", English, Graphemes, "Mister Smith has forty two cats."},
		{"thousands separator", "It costs 1,000 dollars", English, Graphemes, "It costs one thousand dollars"},
		{"decimal", "3.5", English, Graphemes, "three point five"},
		{"chinese untouched", "你好 2", Chinese, Graphemes, "你好 2"},
		{"phonemes only collapse whitespace", "h  ə 4", English, PhonemesIPA, "h ə 4"},
		{"nfc", "e\u0301", German, Graphemes, "\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.text, tt.lang, tt.format)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeSymbolsPhonemes(t *testing.T) {
	got, err := NormalizeSymbols([]string{" ", "a", " ", "\t", "b", " "}, IPA, PhonemesIPA)
	if err != nil {
		t.Fatalf("NormalizeSymbols() error = %v", err)
	}
	want := []string{"a", " ", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSymbols() = %q, want %q", got, want)
	}
}

func TestChangeIPA(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		opts  ChangeIPAOptions
		want  []string
	}{
		{"no flags", []string{"ˈ", "aɪ"}, ChangeIPAOptions{}, []string{"ˈ", "aɪ"}},
		{"arcs", []string{"t͡ʃ", "a"}, ChangeIPAOptions{IgnoreArcs: true}, []string{"t", "ʃ", "a"}},
		{"tones", []string{"a˥˩", "˧", "b"}, ChangeIPAOptions{IgnoreTones: true}, []string{"a", "b"}},
		{"stress", []string{"ˈ", "a", "ˌ", "b"}, ChangeIPAOptions{IgnoreStress: true}, []string{"a", "b"}},
		{"break n-thongs", []string{"aɪ", "t", "aːɪ"}, ChangeIPAOptions{BreakNThongs: true}, []string{"a", "ɪ", "t", "aː", "ɪ"}},
		{"build n-thongs", []string{"a", "ɪ", "t", "o", "ʊ", " ", "a"}, ChangeIPAOptions{BuildNThongs: true}, []string{"aɪ", "t", "oʊ", " ", "a"}},
		{
			"stress removed before building",
			[]string{"a", "ˈ", "ɪ"},
			ChangeIPAOptions{IgnoreStress: true, BuildNThongs: true},
			[]string{"aɪ"},
		},
		{
			"building before stress removal",
			[]string{"a", "ˈ", "ɪ"},
			ChangeIPAOptions{IgnoreStress: true, BuildNThongs: true, Order: []IPAPass{PassNThongs, PassStress}},
			[]string{"a", "ɪ"},
		},
		{
			"pass missing from order does not run",
			[]string{"ˈ", "a"},
			ChangeIPAOptions{IgnoreStress: true, Order: []IPAPass{PassArcs}},
			[]string{"ˈ", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChangeIPA(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("ChangeIPA() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChangeIPA(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestChangeIPAInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts ChangeIPAOptions
	}{
		{"break and build", ChangeIPAOptions{BreakNThongs: true, BuildNThongs: true}},
		{"duplicate pass", ChangeIPAOptions{Order: []IPAPass{PassArcs, PassArcs}}},
		{"unknown pass", ChangeIPAOptions{Order: []IPAPass{"vowels"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChangeIPA([]string{"a"}, tt.opts)
			if !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseIPAPassOrder(t *testing.T) {
	order, err := ParseIPAPassOrder([]string{"Stress", " arcs "})
	if err != nil {
		t.Fatalf("ParseIPAPassOrder() error = %v", err)
	}
	if !reflect.DeepEqual(order, []IPAPass{PassStress, PassArcs}) {
		t.Errorf("unexpected order %v", order)
	}

	if _, err := ParseIPAPassOrder([]string{"diphthongs"}); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

const testDictionary = `;;; test dictionary
HELLO  HH AH0 L OW1
HELLO(1)  HH EH0 L OW1
WORLD  W ER1 L D
`

func newTestConverter(t *testing.T) *IPAConverter {
	t.Helper()
	dict, err := LoadDictionary(strings.NewReader(testDictionary))
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	if dict.Len() != 2 {
		t.Fatalf("expected 2 words, got %d", dict.Len())
	}
	return NewIPAConverter(dict)
}

func graphemes(t *testing.T, text string) []string {
	t.Helper()
	s, err := TextToSymbols(text, English, Graphemes)
	if err != nil {
		t.Fatalf("TextToSymbols() error = %v", err)
	}
	return s
}

func TestConverterEnglish(t *testing.T) {
	conv := newTestConverter(t)

	got, format, err := conv.ToIPA(graphemes(t, "Hello world."), English, Graphemes, ModeDictionary, false)
	if err != nil {
		t.Fatalf("ToIPA() error = %v", err)
	}
	if format != PhonemesIPA {
		t.Errorf("expected PHONEMES_IPA, got %s", format)
	}
	want := []string{"h", "ə", "l", "ˈ", "oʊ", " ", "w", "ˈ", "ɝ", "l", "d", "."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToIPA() = %q, want %q", got, want)
	}
}

func TestConverterModes(t *testing.T) {
	conv := newTestConverter(t)
	input := graphemes(t, "hello foo")

	if _, _, err := conv.ToIPA(input, English, Graphemes, "", false); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("missing mode: expected ErrInvalidConfig, got %v", err)
	}

	if _, _, err := conv.ToIPA(input, English, Graphemes, ModeDictionary, false); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("dictionary mode: expected ErrNotFound for OOV word, got %v", err)
	}

	got, _, err := conv.ToIPA(input, English, Graphemes, ModeKeepOOV, false)
	if err != nil {
		t.Fatalf("keep-oov mode: unexpected error %v", err)
	}
	want := []string{"h", "ə", "l", "ˈ", "oʊ", " ", "f", "o", "o"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keep-oov: got %q, want %q", got, want)
	}
}

func TestConverterAnnotations(t *testing.T) {
	conv := newTestConverter(t)

	got, _, err := conv.ToIPA(graphemes(t, "hello /ðə/"), English, Graphemes, ModeDictionary, true)
	if err != nil {
		t.Fatalf("ToIPA() error = %v", err)
	}
	want := []string{"h", "ə", "l", "ˈ", "oʊ", " ", "ð", "ə"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToIPA() = %q, want %q", got, want)
	}
}

func TestConverterDispatch(t *testing.T) {
	conv := NewIPAConverter(nil)

	got, format, err := conv.ToIPA([]string{"HH", "AY1"}, German, PhonemesARPA, "", false)
	if err != nil {
		t.Fatalf("ARPA input: unexpected error %v", err)
	}
	if format != PhonemesIPA || !reflect.DeepEqual(got, []string{"h", "ˈ", "aɪ"}) {
		t.Errorf("ARPA input: got %q (%s)", got, format)
	}

	got, _, err = conv.ToIPA([]string{"a", "b"}, IPA, PhonemesIPA, "", false)
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IPA input: got %q, %v", got, err)
	}

	if _, _, err := conv.ToIPA([]string{"a"}, German, Graphemes, "", false); !errors.Is(err, util.ErrUnsupported) {
		t.Errorf("German graphemes: expected ErrUnsupported, got %v", err)
	}

	if _, _, err := conv.ToIPA([]string{"a"}, English, Graphemes, ModeDictionary, false); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("English without dictionary: expected ErrInvalidConfig, got %v", err)
	}
}

func TestChangeSymbols(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		lang   Language
		remove bool
		want   string
	}{
		{"disabled", "hello , world", English, false, "hello , world"},
		{"english keeps space after comma", "hello , world", English, true, "hello, world"},
		{"brackets", "a ( b ) c", English, true, "a (b) c"},
		{"chinese drops all", "你 ， 好", Chinese, true, "你，好"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, _ := TextToSymbols(tt.input, tt.lang, Graphemes)
			got := Render(ChangeSymbols(input, tt.remove, tt.lang))
			if got != tt.want {
				t.Errorf("ChangeSymbols(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestISOMappings(t *testing.T) {
	for code, want := range map[int]*Gender{0: nil, 9: nil} {
		got, err := GenderFromISO(code)
		if err != nil || got != want {
			t.Errorf("GenderFromISO(%d) = %v, %v", code, got, err)
		}
	}

	male, err := GenderFromISO(1)
	if err != nil || male == nil || *male != Male {
		t.Errorf("GenderFromISO(1) = %v, %v", male, err)
	}
	female, err := GenderFromISO(2)
	if err != nil || female == nil || *female != Female {
		t.Errorf("GenderFromISO(2) = %v, %v", female, err)
	}
	if _, err := GenderFromISO(3); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("GenderFromISO(3): expected ErrInvalidConfig, got %v", err)
	}

	langs := map[string]Language{"eng": English, "deu": German, "zho": Chinese}
	for code, want := range langs {
		got, err := LanguageFromISO(code)
		if err != nil || got != want {
			t.Errorf("LanguageFromISO(%q) = %v, %v", code, got, err)
		}
	}
	if _, err := LanguageFromISO("fra"); !errors.Is(err, util.ErrUnsupported) {
		t.Errorf("LanguageFromISO(fra): expected ErrUnsupported, got %v", err)
	}
}
