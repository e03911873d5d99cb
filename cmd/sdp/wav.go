package main

import (
	"context"
	"fmt"

	"github.com/franz/speech-janitor/internal/app"
	"github.com/franz/speech-janitor/internal/audio"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/wav"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var wavCmd = &cobra.Command{
	Use:   "wav",
	Short: "Create and transform wav stages",
}

var wavPreprocessCmd = &cobra.Command{
	Use:   "preprocess <dataset> <wav-name>",
	Short: "Copy the corpus recordings into a wav stage",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.PreprocessWav(ctx, args[0], args[1], overwriteFlag(cmd))
		return err
	}),
}

var wavResampleCmd = &cobra.Command{
	Use:   "resample <dataset> <orig-name> <dest-name>",
	Short: "Resample every recording to --rate",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		rate, _ := cmd.Flags().GetInt("rate")
		_, err := a.ResampleWav(ctx, args[0], args[1], args[2], rate, overwriteFlag(cmd))
		return err
	}),
}

var wavMonoCmd = &cobra.Command{
	Use:   "mono <dataset> <orig-name> <dest-name>",
	Short: "Mix every recording down to one channel",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.WavToMono(ctx, args[0], args[1], args[2], overwriteFlag(cmd))
		return err
	}),
}

var wavNormalizeCmd = &cobra.Command{
	Use:   "normalize <dataset> <orig-name> <dest-name>",
	Short: "Peak normalize every recording",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.NormalizeWav(ctx, args[0], args[1], args[2], overwriteFlag(cmd))
		return err
	}),
}

var wavRemoveSilenceCmd = &cobra.Command{
	Use:   "remove-silence <dataset> <orig-name> <dest-name>",
	Short: "Trim leading and trailing silence",
	Long: `Trim leading and trailing silence of every recording.

The level of each chunk of --chunk-size frames is compared against the
thresholds; --buffer-start-ms and --buffer-end-ms of audio are kept around
the detected sound. Durations are recomputed from the trimmed files.
Try the parameters with 'sdp wav remove-silence-preview' first.`,
	Args: cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		opts := silenceOptions(cmd.Flags())
		_, err := a.RemoveSilence(ctx, args[0], args[1], args[2], opts, overwriteFlag(cmd))
		return err
	}),
}

var wavPreviewCmd = &cobra.Command{
	Use:   "remove-silence-preview <dataset> <wav-name>",
	Short: "Trim one recording into the trim folder of a wav stage",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		var entryID *int
		if cmd.Flags().Changed("entry-id") {
			id, _ := cmd.Flags().GetInt("entry-id")
			entryID = &id
		}

		preview, err := a.PreviewRemoveSilence(args[0], args[1], entryID, silenceOptions(cmd.Flags()))
		if err != nil {
			return err
		}
		fmt.Printf("Entry %d\n", preview.EntryID)
		fmt.Printf("  original: %s (%s)\n", preview.OriginalPath, wav.FormatSeconds(preview.OriginalDuration))
		fmt.Printf("  trimmed:  %s (%s)\n", preview.TrimmedPath, wav.FormatSeconds(preview.TrimmedDuration))
		return nil
	}),
}

var wavStatsCmd = &cobra.Command{
	Use:   "stats <dataset> <wav-name>",
	Short: "Show recording durations per speaker",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		rows, err := a.WavStats(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Print(report.FormatStatsTable("Speaker", rows, wav.FormatSeconds))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(wavCmd)
	wavCmd.AddCommand(wavPreprocessCmd, wavResampleCmd, wavMonoCmd, wavNormalizeCmd,
		wavRemoveSilenceCmd, wavPreviewCmd, wavStatsCmd)

	for _, cmd := range []*cobra.Command{wavPreprocessCmd, wavResampleCmd, wavMonoCmd,
		wavNormalizeCmd, wavRemoveSilenceCmd} {
		cmd.Flags().Bool("overwrite", false, "replace an existing destination stage")
	}

	wavResampleCmd.Flags().Int("rate", 22050, "target sampling rate in Hz")

	for _, cmd := range []*cobra.Command{wavRemoveSilenceCmd, wavPreviewCmd} {
		cmd.Flags().Int("chunk-size", 5, "frames measured at once")
		cmd.Flags().Float64("threshold-start", -25, "level in dBFS where sound starts")
		cmd.Flags().Float64("threshold-end", -25, "level in dBFS where sound ends")
		cmd.Flags().Float64("buffer-start-ms", 100, "silence kept before the sound")
		cmd.Flags().Float64("buffer-end-ms", 150, "silence kept after the sound")
	}
	wavPreviewCmd.Flags().Int("entry-id", 0, "entry to trim (random when not given)")
}

func silenceOptions(flags *pflag.FlagSet) audio.SilenceOptions {
	var opts audio.SilenceOptions
	opts.ChunkSize, _ = flags.GetInt("chunk-size")
	opts.ThresholdStart, _ = flags.GetFloat64("threshold-start")
	opts.ThresholdEnd, _ = flags.GetFloat64("threshold-end")
	opts.BufferStartMs, _ = flags.GetFloat64("buffer-start-ms")
	opts.BufferEndMs, _ = flags.GetFloat64("buffer-end-ms")
	return opts
}
