package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/franz/speech-janitor/internal/app"
	"github.com/franz/speech-janitor/internal/report"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "sdp",
		Short: "Speech dataset preprocessing - turn speech corpora into training datasets",
		Long: `sdp (speech dataset preprocessing) converts raw speech corpora into a
multi-stage dataset. Every step writes a named stage below the base directory:

  <base>/<dataset>/              ingested corpus, speaker log and examples
  <base>/<dataset>/text/<name>   symbol sequences
  <base>/<dataset>/wav/<name>    audio copies
  <base>/<dataset>/mel/<name>    mel spectrograms of the wav stage <name>
  <base>/<dataset>/final/<name>  merged training table

Existing stages are left alone unless --overwrite is given.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// opened lazily by commands that run pipeline operations
	session struct {
		catalog *store.Store
		logger  *report.EventLogger
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/sdp.yaml)")
	rootCmd.PersistentFlags().String("base-dir", "datasets", "base directory holding all datasets")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().Int("workers", 0, "parallel workers for audio operations (0 = CPUs - 1)")
	rootCmd.PersistentFlags().String("log-file", "", "mirror log output into this file (default <base-dir>/logs/sdp.log)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().String("event-level", "info", "minimum level of run events (debug, info, warning, error)")

	// Bind flags to viper
	viper.BindPFlag("base_dir", rootCmd.PersistentFlags().Lookup("base-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("event_level", rootCmd.PersistentFlags().Lookup("event-level"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("sdp")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match (SDP_TEXT_DICTIONARY for text.dictionary)
	viper.SetEnvPrefix("SDP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	configErr := viper.ReadInConfig()

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	util.SetColors(!viper.GetBool("no_color") && os.Getenv("NO_COLOR") == "")

	if configErr == nil {
		util.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

// openApp opens the catalog and the event log of the base directory
func openApp() (*app.App, error) {
	baseDir := GetConfigString("base_dir", "datasets")
	logDir := filepath.Join(baseDir, "logs")

	if err := util.SetLogFile(GetConfigString("log_file", filepath.Join(logDir, "sdp.log"))); err != nil {
		util.WarnLog("Failed to open log file: %v", err)
	}

	catalog, err := store.Open(filepath.Join(baseDir, store.CatalogFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	session.catalog = catalog

	logger, err := report.NewEventLogger(logDir, report.ParseLevel(GetConfigString("event_level", "info")))
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		logger = report.NullLogger()
	}
	session.logger = logger
	if logger.Path() != "" {
		util.DebugLog("Event log: %s", logger.Path())
	}

	return app.New(&app.Config{
		BaseDir: baseDir,
		Catalog: catalog,
		Logger:  logger,
		Workers: util.TuneWorkers(baseDir, GetConfigInt("workers", 0)),
	}), nil
}

func closeSession() {
	session.logger.Close()
	session.catalog.Close()
	util.CloseLogFile()
}

// withApp wraps a command body that needs the pipeline
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fn(ctx, cmd, a, args)
	}
}

func main() {
	err := rootCmd.Execute()
	closeSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
