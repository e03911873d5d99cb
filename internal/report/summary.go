package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/speech-janitor/internal/store"
)

// OverallRow is the name of the row aggregating every group
const OverallRow = "Overall"

// StatsRow aggregates the values of one group (a speaker, or all entries)
type StatsRow struct {
	Name    string
	Entries int
	Min     float64
	Max     float64
	Mean    float64
	Total   float64
}

// ComputeStats aggregates per-group values. The overall row comes first,
// followed by the groups with the largest total first.
func ComputeStats(groups map[string][]float64) []StatsRow {
	rows := make([]StatsRow, 0, len(groups)+1)
	var all []float64
	for name, values := range groups {
		if len(values) == 0 {
			continue
		}
		rows = append(rows, aggregate(name, values))
		all = append(all, values...)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Name < rows[j].Name
	})

	return append([]StatsRow{aggregate(OverallRow, all)}, rows...)
}

func aggregate(name string, values []float64) StatsRow {
	row := StatsRow{Name: name, Entries: len(values)}
	if len(values) == 0 {
		return row
	}
	row.Min, row.Max = values[0], values[0]
	for _, v := range values {
		row.Total += v
		if v < row.Min {
			row.Min = v
		}
		if v > row.Max {
			row.Max = v
		}
	}
	row.Mean = row.Total / float64(len(values))
	return row
}

// FormatStatsTable renders stats rows as an aligned text table; format
// renders min, max, mean and total
func FormatStatsTable(groupColumn string, rows []StatsRow, format func(float64) string) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t# Entries\tMin\tMax\tAvg\tTotal\t\n", groupColumn)
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Name, humanize.Comma(int64(row.Entries)),
			format(row.Min), format(row.Max), format(row.Mean), format(row.Total))
	}
	w.Flush()
	return sb.String()
}

// SummaryReport describes the stages of one dataset
type SummaryReport struct {
	GeneratedAt  time.Time
	Dataset      string
	DatabasePath string
	EventLogPath string
	Stages       []StageSummary
	TotalBytes   int64
}

// StageSummary is one stage of a summary report
type StageSummary struct {
	Kind        string
	Name        string
	Parent      string
	Operation   string
	Entries     int
	SizeBytes   int64
	PublishedAt time.Time
	OnDisk      bool
}

// GenerateSummaryReport lists the cataloged stages of a dataset. stageDir
// maps a stage to its directory; stages whose directory is gone are reported
// but not sized.
func GenerateSummaryReport(db *store.Store, dataset string, stageDir func(kind, name string) string) (*SummaryReport, error) {
	stages, err := db.ListStages(dataset)
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		GeneratedAt: time.Now(),
		Dataset:     dataset,
		Stages:      make([]StageSummary, 0, len(stages)),
	}

	for _, st := range stages {
		summary := StageSummary{
			Kind:        st.Kind,
			Name:        st.Name,
			Operation:   st.Operation,
			Entries:     st.Entries,
			PublishedAt: st.PublishedAt,
		}
		if st.ParentKind != "" {
			summary.Parent = st.ParentKind + "/" + st.ParentName
		}

		dir := stageDir(st.Kind, st.Name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			summary.OnDisk = true
			summary.SizeBytes = stageSize(dir, st.Kind == store.KindDataset)
			report.TotalBytes += summary.SizeBytes
		}

		report.Stages = append(report.Stages, summary)
	}

	return report, nil
}

// stageSize sums the file sizes below dir. The dataset stage holds the other
// stages below it, so only its top level files and examples are counted.
func stageSize(dir string, topLevelOnly bool) int64 {
	var total int64
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if topLevelOnly && path != dir && filepath.Dir(path) == dir && d.Name() != "examples" {
				return filepath.SkipDir
			}
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// WriteMarkdownReport writes the summary report as Markdown
func WriteMarkdownReport(report *SummaryReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString(fmt.Sprintf("# Dataset %s\n\n", report.Dataset))
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Catalog:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}

	md.WriteString("---\n\n")

	if len(report.Stages) == 0 {
		md.WriteString("No stages recorded.\n")
	} else {
		md.WriteString("## Stages\n\n")
		md.WriteString("| Kind | Name | Source | Operation | Entries | Size | Published |\n")
		md.WriteString("|------|------|--------|-----------|---------|------|-----------|\n")
		for _, st := range report.Stages {
			size := "missing"
			if st.OnDisk {
				size = humanize.Bytes(uint64(st.SizeBytes))
			}
			parent := st.Parent
			if parent == "" {
				parent = "-"
			}
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				st.Kind, truncatePath(st.Name, 40), truncatePath(parent, 40), st.Operation,
				humanize.Comma(int64(st.Entries)), size, st.PublishedAt.Format("2006-01-02 15:04")))
		}
		md.WriteString("\n")
		md.WriteString(fmt.Sprintf("**Total size:** %s\n\n", humanize.Bytes(uint64(report.TotalBytes))))
	}

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// truncatePath truncates a path to a maximum length, keeping start and end
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
