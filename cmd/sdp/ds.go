package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/franz/speech-janitor/internal/app"
	"github.com/franz/speech-janitor/internal/corpus"
	"github.com/franz/speech-janitor/internal/ds"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/spf13/cobra"
)

var dsCmd = &cobra.Command{
	Use:   "ds",
	Short: "Ingest corpora into datasets",
}

var dsPreprocessCmd = &cobra.Command{
	Use:   "preprocess <format> <corpus-dir> <dataset>",
	Short: "Read a corpus into a new dataset",
	Long: `Read the corpus in <corpus-dir> laid out as <format> and write the
dataset stage: data.json with one entry per utterance, speakers_log.json
and one example recording per speaker.

Entry ids follow the order in which the corpus lists its utterances.
Use 'sdp ds formats' to list the known layouts.`,
	Args: cobra.ExactArgs(3),
	RunE: withApp(runDsPreprocess),
}

var dsExamplesCmd = &cobra.Command{
	Use:   "examples <dataset>",
	Short: "Rewrite the speaker example recordings of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		return a.AddSpeakerExamples(ctx, args[0])
	}),
}

var dsFormatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported corpus formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range corpus.Names() {
			format, err := corpus.Lookup(name)
			if err != nil {
				return err
			}
			download := ""
			if format.Download != nil {
				download = " (downloadable)"
			}
			fmt.Printf("%-12s %s%s\n", format.Name, format.Description, download)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dsCmd)
	dsCmd.AddCommand(dsPreprocessCmd, dsExamplesCmd, dsFormatsCmd)

	dsPreprocessCmd.Flags().Bool("overwrite", false, "replace an existing dataset including all its stages")
	dsPreprocessCmd.Flags().Bool("auto-download", false, "download the corpus when the directory does not exist")
	dsPreprocessCmd.Flags().String("tier", "", "TextGrid tier holding the symbols (generic format)")
	dsPreprocessCmd.Flags().Int("n-digits", corpus.DefaultNDigits, "precision of interval bounds (generic format)")
	dsPreprocessCmd.Flags().String("symbols-format", string(symbols.PhonemesIPA), "format of the tier symbols (generic format)")
}

func runDsPreprocess(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
	formatName, corpusDir, dataset := args[0], args[1], args[2]

	format, err := corpus.Lookup(strings.ToLower(formatName))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overwrite, _ := flags.GetBool("overwrite")
	autoDownload, _ := flags.GetBool("auto-download")
	tier, _ := flags.GetString("tier")
	nDigits, _ := flags.GetInt("n-digits")
	symbolsFormat, _ := flags.GetString("symbols-format")

	sf, err := symbols.ParseSymbolFormat(symbolsFormat)
	if err != nil {
		return err
	}

	_, err = a.PreprocessDataset(ctx, dataset, corpusDir, &ds.Config{
		Format: format,
		Options: corpus.Options{
			TierName:      tier,
			NDigits:       nDigits,
			SymbolsFormat: sf,
		},
		AutoDownload: autoDownload,
	}, overwrite)
	return err
}
