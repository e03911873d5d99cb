package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/speech-janitor/internal/store"
)

func TestComputeStats(t *testing.T) {
	rows := ComputeStats(map[string][]float64{
		"A": {1, 3},
		"B": {10},
		"C": {},
	})

	if len(rows) != 3 {
		t.Fatalf("Expected overall row plus 2 speakers, got %d rows", len(rows))
	}

	overall := rows[0]
	if overall.Name != OverallRow || overall.Entries != 3 || overall.Total != 14 {
		t.Errorf("Unexpected overall row %+v", overall)
	}
	if overall.Min != 1 || overall.Max != 10 {
		t.Errorf("Unexpected overall bounds %+v", overall)
	}

	if rows[1].Name != "B" || rows[2].Name != "A" {
		t.Errorf("Expected groups sorted by total, got %s, %s", rows[1].Name, rows[2].Name)
	}
	if rows[2].Mean != 2 {
		t.Errorf("Expected mean 2 for A, got %v", rows[2].Mean)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	rows := ComputeStats(nil)
	if len(rows) != 1 || rows[0].Entries != 0 || rows[0].Total != 0 {
		t.Errorf("Expected a single empty overall row, got %+v", rows)
	}
}

func TestFormatStatsTable(t *testing.T) {
	rows := ComputeStats(map[string][]float64{"Linda Johnson": {1.5, 2.5}})
	table := FormatStatsTable("Speaker", rows, func(v float64) string { return fmt.Sprintf("%.1fs", v) })

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d lines:\n%s", len(lines), table)
	}
	if !strings.Contains(lines[0], "# Entries") || !strings.Contains(lines[2], "Linda Johnson") {
		t.Errorf("Unexpected table:\n%s", table)
	}
	if !strings.Contains(lines[1], "4.0s") {
		t.Errorf("Expected overall total 4.0s, got %q", lines[1])
	}
}

func TestGenerateSummaryReport(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := store.Open(filepath.Join(tmpDir, store.CatalogFile))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	datasetDir := filepath.Join(tmpDir, "ljs")
	stageDir := func(kind, name string) string {
		if kind == store.KindDataset {
			return datasetDir
		}
		return filepath.Join(datasetDir, kind, name)
	}

	writeFile := func(path string, size int) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(filepath.Join(datasetDir, "data.json"), 100)
	writeFile(filepath.Join(datasetDir, "examples", "1-female-Linda Johnson.wav"), 50)
	writeFile(filepath.Join(datasetDir, "wav", "raw", "data.json"), 1000)

	for _, st := range []*store.Stage{
		{Dataset: "ljs", Kind: store.KindDataset, Name: "ljs", Operation: "preprocess", Entries: 3},
		{Dataset: "ljs", Kind: store.KindWav, Name: "raw", ParentKind: store.KindDataset, ParentName: "ljs", Operation: "preprocess", Entries: 3},
		{Dataset: "ljs", Kind: store.KindText, Name: "gone", ParentKind: store.KindDataset, ParentName: "ljs", Operation: "preprocess", Entries: 3},
	} {
		if err := db.RecordStage(st); err != nil {
			t.Fatalf("RecordStage failed: %v", err)
		}
	}

	report, err := GenerateSummaryReport(db, "ljs", stageDir)
	if err != nil {
		t.Fatalf("GenerateSummaryReport failed: %v", err)
	}

	if len(report.Stages) != 3 {
		t.Fatalf("Expected 3 stages, got %d", len(report.Stages))
	}
	byKind := map[string]StageSummary{}
	for _, st := range report.Stages {
		byKind[st.Kind] = st
	}

	if got := byKind[store.KindDataset].SizeBytes; got != 150 {
		t.Errorf("Expected the dataset stage to count its own files only (150 bytes), got %d", got)
	}
	if got := byKind[store.KindWav]; got.SizeBytes != 1000 || got.Parent != "ds/ljs" {
		t.Errorf("Unexpected wav stage %+v", got)
	}
	if byKind[store.KindText].OnDisk {
		t.Error("Expected the deleted text stage to be reported as missing")
	}
	if report.TotalBytes != 1150 {
		t.Errorf("Expected total 1150 bytes, got %d", report.TotalBytes)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "summary.md")

	report := &SummaryReport{
		GeneratedAt:  time.Now(),
		Dataset:      "ljs",
		DatabasePath: "/data/catalog.db",
		EventLogPath: "/data/logs/events.jsonl",
		TotalBytes:   3 * 1000 * 1000,
		Stages: []StageSummary{
			{Kind: "ds", Name: "ljs", Operation: "preprocess", Entries: 13100, SizeBytes: 1000 * 1000, OnDisk: true},
			{Kind: "wav", Name: "22k", Parent: "wav/raw", Operation: "resample", Entries: 13100, SizeBytes: 2 * 1000 * 1000, OnDisk: true},
			{Kind: "text", Name: "ipa", Parent: "text/raw", Operation: "convert-to-ipa", Entries: 13100},
		},
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	md := string(content)

	for _, want := range []string{"# Dataset ljs", "## Stages", "13,100", "2.0 MB", "missing", "wav/raw", "/data/catalog.db", "**Total size:** 3.0 MB"} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestWriteMarkdownReportEmpty(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "summary.md")
	if err := WriteMarkdownReport(&SummaryReport{Dataset: "empty"}, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, _ := os.ReadFile(outputPath)
	if !strings.Contains(string(content), "No stages recorded.") {
		t.Error("Expected an empty report to say so")
	}
}

func TestTruncatePath(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		maxLen int
	}{
		{"Short path - no truncation", "/data/ljs", 50},
		{"Long path - truncate middle", "/very/long/path/to/some/speech/corpus/wav/stage/name", 30},
		{"Exactly at limit", "/data/ljs/text", 14},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := truncatePath(tc.path, tc.maxLen)

			if len(result) > tc.maxLen {
				t.Errorf("Result length %d exceeds maxLen %d", len(result), tc.maxLen)
			}
			if len(tc.path) > tc.maxLen && !strings.Contains(result, "...") {
				t.Error("Expected truncated path to contain '...'")
			}
			if len(tc.path) <= tc.maxLen && result != tc.path {
				t.Errorf("Short path should not be truncated: expected '%s', got '%s'", tc.path, result)
			}
		})
	}
}
