package main

import (
	"context"

	"github.com/franz/speech-janitor/internal/app"
	"github.com/spf13/cobra"
)

var finalCmd = &cobra.Command{
	Use:   "final",
	Short: "Merge stages into the training table",
}

var finalMergeCmd = &cobra.Command{
	Use:   "merge <dataset> <text-name> <wav-name> <final-name>",
	Short: "Join dataset, text, wav and mel stages by entry id",
	Long: `Join the dataset with a text stage, a wav stage and the mel stage of
that wav stage. Every entry has to be present in all of them; missing or
unknown ids fail the merge without writing anything.`,
	Args: cobra.ExactArgs(4),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		_, err := a.MergeFinal(ctx, args[0], args[1], args[2], args[3], overwriteFlag(cmd))
		return err
	}),
}

func init() {
	rootCmd.AddCommand(finalCmd)
	finalCmd.AddCommand(finalMergeCmd)

	finalMergeCmd.Flags().Bool("overwrite", false, "replace an existing final stage")
}
