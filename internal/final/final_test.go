package final

import (
	"path/filepath"
	"testing"

	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/mel"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/text"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/franz/speech-janitor/internal/wav"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stages struct {
	ds   []ds.DsData
	text []text.TextData
	wav  []wav.WavData
	mel  []mel.MelData
}

func twoEntries() stages {
	male := symbols.Male
	return stages{
		ds: []ds.DsData{
			{EntryID: 0, Identifier: "LJ001", Symbols: []string{"H", "i"}, SymbolsFormat: symbols.Graphemes, SymbolsLanguage: symbols.English, SpeakerName: "Linda", WavAbsolutePath: "/corpus/LJ001.wav"},
			{EntryID: 1, Identifier: "LJ002", Symbols: []string{"O", "k"}, SymbolsFormat: symbols.Graphemes, SymbolsLanguage: symbols.English, SpeakerName: "Bob", SpeakerGender: &male, WavAbsolutePath: "/corpus/LJ002.wav"},
		},
		text: []text.TextData{
			{EntryID: 0, Symbols: []string{"h", "aɪ"}, SymbolsFormat: symbols.PhonemesIPA, SymbolsLanguage: symbols.English},
			{EntryID: 1, Symbols: []string{"oʊ", "k"}, SymbolsFormat: symbols.PhonemesIPA, SymbolsLanguage: symbols.English},
		},
		wav: []wav.WavData{
			{EntryID: 0, WavRelativePath: "0-1/0.wav", WavDuration: 1.25, WavSamplingRate: 22050},
			{EntryID: 1, WavRelativePath: "0-1/1.wav", WavDuration: 2, WavSamplingRate: 22050},
		},
		mel: []mel.MelData{
			{EntryID: 0, MelRelativePath: "0-1/0.npy", MelNChannels: 80},
			{EntryID: 1, MelRelativePath: "0-1/1.npy", MelNChannels: 80},
		},
	}
}

func TestFromData(t *testing.T) {
	s := twoEntries()

	entries, err := FromData(s.ds, s.text, s.wav, s.mel, "/out/wav/22k", "/out/mel/22k")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, 0, first.EntryID)
	assert.Equal(t, "LJ001", first.Identifier)
	assert.Equal(t, []string{"H", "i"}, first.SymbolsOriginal)
	assert.Equal(t, symbols.Graphemes, first.SymbolsOriginalFormat)
	assert.Equal(t, []string{"h", "aɪ"}, first.Symbols)
	assert.Equal(t, symbols.PhonemesIPA, first.SymbolsFormat)
	assert.Equal(t, "/corpus/LJ001.wav", first.WavOriginalAbsolutePath)
	assert.Equal(t, filepath.Join("/out/wav/22k", "0-1/0.wav"), first.WavAbsolutePath)
	assert.Equal(t, filepath.Join("/out/mel/22k", "0-1/0.npy"), first.MelAbsolutePath)
	assert.Equal(t, 1.25, first.WavDuration)
	assert.Equal(t, 22050, first.WavSamplingRate)
	assert.Equal(t, 80, first.MelNChannels)
	assert.Nil(t, first.SpeakerGender)

	require.NotNil(t, entries[1].SpeakerGender)
	assert.Equal(t, symbols.Male, *entries[1].SpeakerGender)
}

func TestFromDataMissingEntry(t *testing.T) {
	s := twoEntries()
	s.wav = s.wav[:1]

	_, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
	require.ErrorIs(t, err, util.ErrIntegrity)
	assert.Contains(t, err.Error(), "1 (text true, wav false, mel true)")
}

func TestFromDataJoinsByID(t *testing.T) {
	s := twoEntries()
	s.mel[0], s.mel[1] = s.mel[1], s.mel[0]

	entries, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/m", "0-1/0.npy"), entries[0].MelAbsolutePath)
	assert.Equal(t, filepath.Join("/m", "0-1/1.npy"), entries[1].MelAbsolutePath)
}

func TestFromDataIDMismatch(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*stages)
	}{
		{"duplicate id", func(s *stages) { s.wav[1].EntryID = 0 }},
		{"unknown id", func(s *stages) { s.text[1].EntryID = 5 }},
		{"extra entry", func(s *stages) { s.mel = append(s.mel, mel.MelData{EntryID: 2}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoEntries()
			tt.modify(&s)
			_, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
			assert.ErrorIs(t, err, util.ErrIntegrity)
		})
	}
}

func TestFromDataLanguageMismatch(t *testing.T) {
	s := twoEntries()
	s.text[1].SymbolsLanguage = symbols.German

	_, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
	require.ErrorIs(t, err, util.ErrIntegrity)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestFromDataEmpty(t *testing.T) {
	entries, err := FromData(nil, nil, nil, nil, "/w", "/m")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalysisRows(t *testing.T) {
	s := twoEntries()
	entries, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
	require.NoError(t, err)

	rows := AnalysisRows(entries)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(AnalysisHeader))
	assert.Equal(t, []string{"0", "LJ001", "Linda", "ENG", "Hi", "GRAPHEMES", "haɪ", "PHONEMES_IPA", "1.25", "22050", "80"}, rows[0][:11])
}

func TestSave(t *testing.T) {
	s := twoEntries()
	entries, err := FromData(s.ds, s.text, s.wav, s.mel, "/w", "/m")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	st := store.NewStageStore(fs)
	require.NoError(t, fs.MkdirAll("/final/x", 0755))
	require.NoError(t, Save(st, "/final/x", entries))

	loaded, err := store.Load[FinalDsEntry](st, "/final/x")
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	csv, err := afero.ReadFile(fs, "/final/x/"+AnalysisFile)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "Id,Identifier,Speaker,Language")
	assert.Contains(t, string(csv), "1,LJ002,Bob,ENG,Ok,GRAPHEMES,oʊk,PHONEMES_IPA,2,22050,80")
}
