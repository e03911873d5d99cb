package util

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

var filenameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"!", "",
	"\"", "'",
	"<", "",
	">", "",
	"|", "-",
)

// SanitizeFilename removes or replaces characters that are unsafe in filenames
func SanitizeFilename(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFC.String(s)
	s = filenameReplacer.Replace(s)
	s = removeControlChars(s)
	s = strings.Join(strings.Fields(s), " ")

	// Dots at the end cause issues on Windows
	return strings.Trim(s, " .")
}

// ASCIIFilename transliterates s to ASCII with the unidecode table and then
// sanitizes the result. The mapping is deterministic; distinct inputs may
// collapse onto the same output.
func ASCIIFilename(s string) string {
	return SanitizeFilename(unidecode.Unidecode(norm.NFC.String(s)))
}

func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
