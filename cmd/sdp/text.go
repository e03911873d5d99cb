package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/franz/speech-janitor/internal/app"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/symbols"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Create and transform text stages",
}

var textPreprocessCmd = &cobra.Command{
	Use:   "preprocess <dataset> <text-name>",
	Short: "Copy the dataset symbols into a text stage",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.PreprocessText(ctx, args[0], args[1], overwriteFlag(cmd))
		return err
	}),
}

var textNormalizeCmd = &cobra.Command{
	Use:   "normalize <dataset> <orig-name> <dest-name>",
	Short: "Normalize whitespace, abbreviations and numbers",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.NormalizeText(ctx, args[0], args[1], args[2], overwriteFlag(cmd))
		return err
	}),
}

var textIPACmd = &cobra.Command{
	Use:   "ipa <dataset> <orig-name> <dest-name>",
	Short: "Convert symbols to IPA phonemes",
	Long: `Convert the symbols of a text stage to IPA.

English graphemes are converted through a pronunciation dictionary
(--dictionary or text.dictionary) and need --mode:

  dictionary   every word has to be in the dictionary
  keep-oov     words missing from the dictionary stay graphemes

Without a mode nothing is written.`,
	Args: cobra.ExactArgs(3),
	RunE: withApp(runTextIPA),
}

var textMapIPACmd = &cobra.Command{
	Use:   "map-ipa <dataset> <orig-name> <dest-name>",
	Short: "Map ARPAbet phonemes to IPA",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.MapTextToIPA(ctx, args[0], args[1], args[2], overwriteFlag(cmd))
		return err
	}),
}

var textChangeIPACmd = &cobra.Command{
	Use:   "change-ipa <dataset> <orig-name> <dest-name>",
	Short: "Strip tones, arcs or stress and split or join n-thongs",
	Args:  cobra.ExactArgs(3),
	RunE:  withApp(runTextChangeIPA),
}

var textChangeCmd = &cobra.Command{
	Use:   "change <dataset> <orig-name> <dest-name>",
	Short: "Apply generic symbol changes",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		remove, _ := cmd.Flags().GetBool("remove-space-around-punctuation")
		_, err := a.ChangeText(ctx, args[0], args[1], args[2], remove, overwriteFlag(cmd))
		return err
	}),
}

var textStatsCmd = &cobra.Command{
	Use:   "stats <dataset> <text-name>",
	Short: "Show symbol counts per speaker",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		rows, err := a.TextStats(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Print(report.FormatStatsTable("Speaker", rows, formatCount))
		return nil
	}),
}

var textExportCmd = &cobra.Command{
	Use:   "export <dataset> <text-name>",
	Short: "Rewrite text.txt and analysis.csv of a text stage",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		return a.ExportText(args[0], args[1])
	}),
}

func init() {
	rootCmd.AddCommand(textCmd)
	textCmd.AddCommand(textPreprocessCmd, textNormalizeCmd, textIPACmd, textMapIPACmd,
		textChangeIPACmd, textChangeCmd, textStatsCmd, textExportCmd)

	for _, cmd := range []*cobra.Command{textPreprocessCmd, textNormalizeCmd, textIPACmd,
		textMapIPACmd, textChangeIPACmd, textChangeCmd} {
		cmd.Flags().Bool("overwrite", false, "replace an existing destination stage")
	}

	textIPACmd.Flags().String("mode", "", "English conversion mode (dictionary, keep-oov)")
	textIPACmd.Flags().Bool("consider-annotations", false, "pass /.../ annotated words through as IPA")
	textIPACmd.Flags().String("dictionary", "", "pronunciation dictionary in CMU format")
	viper.BindPFlag("text.dictionary", textIPACmd.Flags().Lookup("dictionary"))

	textChangeIPACmd.Flags().Bool("ignore-tones", false, "remove tone letters")
	textChangeIPACmd.Flags().Bool("ignore-arcs", false, "remove tie bars")
	textChangeIPACmd.Flags().Bool("ignore-stress", false, "remove stress marks")
	textChangeIPACmd.Flags().Bool("break-nthongs", false, "split diphthongs and triphthongs into vowels")
	textChangeIPACmd.Flags().Bool("build-nthongs", false, "join adjacent vowels into n-thongs")
	textChangeIPACmd.Flags().StringSlice("ipa-pass-order", nil, "order of the passes (arcs, tones, stress, n-thongs)")

	textChangeCmd.Flags().Bool("remove-space-around-punctuation", false, "drop spaces next to punctuation")
}

func overwriteFlag(cmd *cobra.Command) bool {
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	return overwrite
}

func formatCount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func runTextIPA(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
	modeName, _ := cmd.Flags().GetString("mode")
	mode, err := symbols.ParseEngToIPAMode(modeName)
	if err != nil {
		return err
	}
	considerAnnotations, _ := cmd.Flags().GetBool("consider-annotations")

	var dict *symbols.Dictionary
	if path := GetConfigString("text.dictionary", ""); path != "" {
		dict, err = symbols.LoadDictionaryFile(path)
		if err != nil {
			return err
		}
	}

	opts := app.IPAOptions{
		Converter:           symbols.NewIPAConverter(dict),
		Mode:                mode,
		ConsiderAnnotations: considerAnnotations,
	}
	_, err = a.ConvertTextToIPA(ctx, args[0], args[1], args[2], opts, overwriteFlag(cmd))
	return err
}

func runTextChangeIPA(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
	flags := cmd.Flags()
	order, err := ipaPassOrder(cmd)
	if err != nil {
		return err
	}

	var opts symbols.ChangeIPAOptions
	opts.IgnoreTones, _ = flags.GetBool("ignore-tones")
	opts.IgnoreArcs, _ = flags.GetBool("ignore-arcs")
	opts.IgnoreStress, _ = flags.GetBool("ignore-stress")
	opts.BreakNThongs, _ = flags.GetBool("break-nthongs")
	opts.BuildNThongs, _ = flags.GetBool("build-nthongs")
	opts.Order = order

	_, err = a.ChangeTextIPA(ctx, args[0], args[1], args[2], opts, overwriteFlag(cmd))
	return err
}
