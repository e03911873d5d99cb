package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/franz/speech-janitor/internal/app"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <dataset>",
	Short: "Show the stages of a dataset",
	Long: `List every stage recorded in the catalog for a dataset with its source
stage, the producing operation, the number of entries and the size on disk.

Stages whose directory was deleted by hand are shown as missing. Use
--report to also write the table as a Markdown file.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runShow),
}

var rmCmd = &cobra.Command{
	Use:   "rm <dataset> <kind> <name>",
	Short: "Remove a text, wav, mel or final stage",
	Long: `Remove a derived stage directory and its catalog row. Stages built from
it are left alone. Remove a whole dataset by deleting its directory.`,
	Args: cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		if err := a.RemoveStage(args[0], args[1], args[2]); err != nil {
			return err
		}
		util.SuccessLog("Removed %s/%s of %s", args[1], args[2], args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(showCmd, rmCmd)

	showCmd.Flags().String("report", "", "write the stage table as Markdown to this file")
}

func runShow(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
	summary, err := a.Summary(args[0])
	if err != nil {
		return err
	}

	if len(summary.Stages) == 0 {
		util.InfoLog("No stages recorded for %s", args[0])
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tNAME\tSOURCE\tOPERATION\tENTRIES\tSIZE\tPUBLISHED")
		for _, st := range summary.Stages {
			size := "missing"
			if st.OnDisk {
				size = humanize.Bytes(uint64(st.SizeBytes))
			}
			parent := st.Parent
			if parent == "" {
				parent = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				st.Kind, st.Name, parent, st.Operation,
				humanize.Comma(int64(st.Entries)), size, humanize.Time(st.PublishedAt))
		}
		w.Flush()
		fmt.Printf("\nTotal: %s\n", humanize.Bytes(uint64(summary.TotalBytes)))
	}

	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath != "" {
		if err := report.WriteMarkdownReport(summary, reportPath); err != nil {
			return err
		}
		util.SuccessLog("Report written: %s", reportPath)
	}
	return nil
}
