// Package text holds the symbol stages of a dataset and their transforms.
// Every transform keeps the entry ids and the order of its input.
package text

import (
	"fmt"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

// TextData is one entry of a text stage
type TextData struct {
	EntryID         int                  `json:"entry_id"`
	Symbols         []string             `json:"symbols"`
	SymbolsFormat   symbols.SymbolFormat `json:"symbols_format"`
	SymbolsLanguage symbols.Language     `json:"symbols_language"`
}

// Preprocess seeds a text stage from the root stage
func Preprocess(data []ds.DsData) []TextData {
	result := make([]TextData, len(data))
	for i, entry := range data {
		result[i] = TextData{
			EntryID:         entry.EntryID,
			Symbols:         append([]string{}, entry.Symbols...),
			SymbolsFormat:   entry.SymbolsFormat,
			SymbolsLanguage: entry.SymbolsLanguage,
		}
	}
	return result
}

// Normalize normalizes the symbols of every entry; format and language stay
func Normalize(data []TextData) ([]TextData, error) {
	return mapEntries(data, func(entry TextData) (TextData, error) {
		normalized, err := symbols.NormalizeSymbols(entry.Symbols, entry.SymbolsLanguage, entry.SymbolsFormat)
		if err != nil {
			return entry, err
		}
		entry.Symbols = normalized
		return entry, nil
	})
}

// CheckConvertToIPA reports a configuration error when an entry needs a mode
// that was not given
func CheckConvertToIPA(data []TextData, mode symbols.EngToIPAMode) error {
	if mode != "" {
		return nil
	}
	for _, entry := range data {
		if symbols.RequiresMode(entry.SymbolsLanguage, entry.SymbolsFormat) {
			return fmt.Errorf("entry %d is %s %s and requires a conversion mode: %w",
				entry.EntryID, entry.SymbolsLanguage, entry.SymbolsFormat, util.ErrInvalidConfig)
		}
	}
	return nil
}

// ConvertToIPA converts every entry to IPA phonemes
func ConvertToIPA(data []TextData, conv symbols.Converter, mode symbols.EngToIPAMode, considerAnnotations bool) ([]TextData, error) {
	if err := CheckConvertToIPA(data, mode); err != nil {
		return nil, err
	}

	return mapEntries(data, func(entry TextData) (TextData, error) {
		converted, format, err := conv.ToIPA(entry.Symbols, entry.SymbolsLanguage, entry.SymbolsFormat, mode, considerAnnotations)
		if err != nil {
			return entry, err
		}
		entry.Symbols = converted
		entry.SymbolsFormat = format
		return entry, nil
	})
}

// MapToIPA replaces ARPA phonemes by their IPA counterparts. Entries in
// other formats are left as they are.
func MapToIPA(data []TextData) []TextData {
	result := make([]TextData, len(data))
	for i, entry := range data {
		if entry.SymbolsFormat == symbols.PhonemesARPA {
			entry.Symbols = symbols.MapARPAToIPA(entry.Symbols)
			entry.SymbolsFormat = symbols.PhonemesIPA
		} else {
			entry.Symbols = append([]string{}, entry.Symbols...)
		}
		result[i] = entry
	}
	return result
}

// ChangeIPA runs the IPA cleanup passes over every IPA entry
func ChangeIPA(data []TextData, opts symbols.ChangeIPAOptions) ([]TextData, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return mapEntries(data, func(entry TextData) (TextData, error) {
		if entry.SymbolsFormat != symbols.PhonemesIPA {
			return entry, nil
		}
		changed, err := symbols.ChangeIPA(entry.Symbols, opts)
		if err != nil {
			return entry, err
		}
		entry.Symbols = changed
		return entry, nil
	})
}

// ChangeText applies orthographic cleanup to every entry
func ChangeText(data []TextData, removeSpaceAroundPunctuation bool) []TextData {
	result := make([]TextData, len(data))
	for i, entry := range data {
		entry.Symbols = symbols.ChangeSymbols(entry.Symbols, removeSpaceAroundPunctuation, entry.SymbolsLanguage)
		result[i] = entry
	}
	return result
}

func mapEntries(data []TextData, fn func(TextData) (TextData, error)) ([]TextData, error) {
	result := make([]TextData, len(data))
	for i, entry := range data {
		changed, err := fn(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", entry.EntryID, err)
		}
		result[i] = changed
	}
	return result, nil
}
