package symbols

import "strings"

type arpaPhoneme struct {
	ipa   string
	vowel bool
}

// CMU ARPAbet (39 phonemes) to IPA
var arpaToIPA = map[string]arpaPhoneme{
	"AA": {"ɑ", true},
	"AE": {"æ", true},
	"AH": {"ʌ", true},
	"AO": {"ɔ", true},
	"AW": {"aʊ", true},
	"AY": {"aɪ", true},
	"EH": {"ɛ", true},
	"ER": {"ɝ", true},
	"EY": {"eɪ", true},
	"IH": {"ɪ", true},
	"IY": {"i", true},
	"OW": {"oʊ", true},
	"OY": {"ɔɪ", true},
	"UH": {"ʊ", true},
	"UW": {"u", true},
	"B":  {"b", false},
	"CH": {"t͡ʃ", false},
	"D":  {"d", false},
	"DH": {"ð", false},
	"F":  {"f", false},
	"G":  {"ɡ", false},
	"HH": {"h", false},
	"JH": {"d͡ʒ", false},
	"K":  {"k", false},
	"L":  {"l", false},
	"M":  {"m", false},
	"N":  {"n", false},
	"NG": {"ŋ", false},
	"P":  {"p", false},
	"R":  {"ɹ", false},
	"S":  {"s", false},
	"SH": {"ʃ", false},
	"T":  {"t", false},
	"TH": {"θ", false},
	"V":  {"v", false},
	"W":  {"w", false},
	"Y":  {"j", false},
	"Z":  {"z", false},
	"ZH": {"ʒ", false},
}

// Unstressed variants that have their own IPA vowel
var arpaUnstressed = map[string]string{
	"AH": "ə",
	"ER": "ɚ",
}

// ARPAToIPA converts one ARPA phoneme (with optional stress digit) to IPA
// symbols. Stress 1 and 2 become a leading primary/secondary stress mark.
// ok is false when s is not an ARPA phoneme.
func ARPAToIPA(s string) (result []string, ok bool) {
	base, stress := s, byte(0)
	if n := len(s); n > 1 && s[n-1] >= '0' && s[n-1] <= '2' {
		base, stress = s[:n-1], s[n-1]
	}

	info, found := arpaToIPA[base]
	if !found || (stress != 0 && !info.vowel) {
		return nil, false
	}

	ipa := info.ipa
	if unstressed, has := arpaUnstressed[base]; has && stress == '0' {
		ipa = unstressed
	}

	switch stress {
	case '1':
		return []string{primaryStress, ipa}, true
	case '2':
		return []string{secondaryStress, ipa}, true
	}
	return []string{ipa}, true
}

// MapARPAToIPA replaces every ARPA phoneme of symbols by its IPA symbols and
// leaves all other symbols unchanged
func MapARPAToIPA(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if ipa, ok := ARPAToIPA(strings.TrimSpace(symbol)); ok {
			result = append(result, ipa...)
			continue
		}
		result = append(result, symbol)
	}
	return result
}
