package ds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/speech-janitor/internal/corpus"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/franz/speech-janitor/internal/util"
)

func female() *symbols.Gender {
	g := symbols.Female
	return &g
}

// writeWavs creates empty wav files and returns their paths
func writeWavs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name+".wav")
		if err := os.WriteFile(paths[i], []byte("RIFF"), 0644); err != nil {
			t.Fatalf("failed to write wav: %v", err)
		}
	}
	return paths
}

func threeEntryCorpus(t *testing.T) []corpus.PreData {
	t.Helper()
	wavs := writeWavs(t, t.TempDir(), "a1", "a2", "b1")
	return []corpus.PreData{
		{Identifier: "a1", Text: "Hi", SymbolsFormat: symbols.Graphemes, Language: symbols.English, SpeakerName: "A", SpeakerGender: female(), WavPath: wavs[0]},
		{Identifier: "a2", Text: "Ho", SymbolsFormat: symbols.Graphemes, Language: symbols.English, SpeakerName: "A", SpeakerGender: female(), WavPath: wavs[1]},
		{Identifier: "b1", Symbols: []string{"h", "aɪ"}, SymbolsFormat: symbols.PhonemesIPA, Language: symbols.English, SpeakerName: "B", WavPath: wavs[2]},
	}
}

func staticFormat(pre []corpus.PreData) *corpus.Format {
	return &corpus.Format{
		Name:        "static",
		Description: "test corpus",
		Parse: func(string, corpus.Options) ([]corpus.PreData, error) {
			return pre, nil
		},
	}
}

func TestPreprocess(t *testing.T) {
	pre := threeEntryCorpus(t)
	result, err := Preprocess(context.Background(), t.TempDir(), &Config{Format: staticFormat(pre)})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	if len(result.Data) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Data))
	}
	for i, entry := range result.Data {
		if entry.EntryID != i {
			t.Errorf("entry %d has id %d", i, entry.EntryID)
		}
		if entry.Identifier != pre[i].Identifier || entry.WavAbsolutePath != pre[i].WavPath {
			t.Errorf("entry %d does not follow parse order: %+v", i, entry)
		}
	}

	if got := symbols.Render(result.Data[0].Symbols); got != "Hi" || len(result.Data[0].Symbols) != 2 {
		t.Errorf("expected graphemes of Hi, got %q", result.Data[0].Symbols)
	}
	if len(result.Data[2].Symbols) != 2 || result.Data[2].SymbolsFormat != symbols.PhonemesIPA {
		t.Errorf("preset symbols not kept: %+v", result.Data[2])
	}

	if result.Speakers["A"] != 2 || result.Speakers["B"] != 1 {
		t.Errorf("unexpected speaker log %v", result.Speakers)
	}
}

func TestSpeakerExamples(t *testing.T) {
	data, err := FromPreData(context.Background(), threeEntryCorpus(t))
	if err != nil {
		t.Fatalf("FromPreData() error = %v", err)
	}

	examples := SpeakerExamples(data)
	if len(examples) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(examples))
	}
	if examples[0].EntryID != 0 || examples[0].SpeakerName != "A" {
		t.Errorf("expected first A entry, got %+v", examples[0])
	}
	if examples[1].EntryID != 2 || examples[1].SpeakerName != "B" {
		t.Errorf("expected first B entry, got %+v", examples[1])
	}

	if name := ExampleFilename(1, examples[0]); name != "1-female-A.wav" {
		t.Errorf("unexpected example name %s", name)
	}
	if name := ExampleFilename(2, examples[1]); name != "2-none-B.wav" {
		t.Errorf("unexpected example name %s", name)
	}
	if name := ExampleFilename(3, DsData{SpeakerName: "Jürgen Müller"}); name != "3-none-Jurgen Muller.wav" {
		t.Errorf("expected transliterated name, got %s", name)
	}
}

func TestPreprocessDuplicateIdentifiers(t *testing.T) {
	pre := threeEntryCorpus(t)
	pre[2].Identifier = "a1"

	_, err := Preprocess(context.Background(), t.TempDir(), &Config{Format: staticFormat(pre)})
	if !errors.Is(err, util.ErrIntegrity) {
		t.Errorf("expected ErrIntegrity, got %v", err)
	}
}

func TestPreprocessMissingWav(t *testing.T) {
	pre := threeEntryCorpus(t)
	pre[1].WavPath = filepath.Join(t.TempDir(), "missing.wav")

	_, err := Preprocess(context.Background(), t.TempDir(), &Config{Format: staticFormat(pre)})
	if !errors.Is(err, util.ErrIntegrity) {
		t.Errorf("expected ErrIntegrity, got %v", err)
	}
}

func TestPreprocessMissingCorpus(t *testing.T) {
	format := staticFormat(threeEntryCorpus(t))
	downloads := 0
	format.Download = func(_ context.Context, target string) error {
		downloads++
		return os.MkdirAll(target, 0755)
	}

	dir := filepath.Join(t.TempDir(), "corpus")
	for _, auto := range []bool{false, true} {
		_, err := Preprocess(context.Background(), dir, &Config{Format: format, AutoDownload: auto})
		if !errors.Is(err, util.ErrNotFound) {
			t.Errorf("AutoDownload=%v: expected ErrNotFound, got %v", auto, err)
		}
	}
	if downloads != 0 {
		t.Errorf("Preprocess downloaded %d times", downloads)
	}
}

func TestSortedSpeakers(t *testing.T) {
	sorted := SortedSpeakers(map[string]int{"b": 1, "a": 3, "c": 1})
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, sorted[i].Name)
		}
	}
}
