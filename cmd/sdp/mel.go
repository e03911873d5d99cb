package main

import (
	"context"

	"github.com/franz/speech-janitor/internal/app"
	"github.com/spf13/cobra"
)

var melCmd = &cobra.Command{
	Use:   "mel",
	Short: "Compute mel spectrograms",
}

var melPreprocessCmd = &cobra.Command{
	Use:   "preprocess <dataset> <wav-name>",
	Short: "Compute the mel spectrograms of a wav stage",
	Long: `Compute one log mel spectrogram per recording of a wav stage. The mel
stage takes the name of the wav stage and keeps the parameters it was
computed with in hparams.yaml.

Parameters default to 22.05 kHz, 1024 point FFT, hop 256, 80 channels
between 0 and 8000 Hz. Override them with --hparam key=value or the
mel.hparams config map; every recording has to use the sampling rate.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.PreprocessMels(ctx, args[0], args[1], melHParams(cmd), overwriteFlag(cmd))
		return err
	}),
}

func init() {
	rootCmd.AddCommand(melCmd)
	melCmd.AddCommand(melPreprocessCmd)

	melPreprocessCmd.Flags().Bool("overwrite", false, "replace an existing mel stage")
	melPreprocessCmd.Flags().StringToString("hparam", nil, "override a mel parameter (e.g. sampling_rate=16000)")
}
