package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/vgsales/internal/config"
	"github.com/YuminosukeSato/vgsales/pipeline"
	"github.com/YuminosukeSato/vgsales/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cleaning and modeling pipeline end to end",
	RunE:  runPipeline,

	// Errors are logged structurally below; keep cobra from re-printing them.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	runCmd.Flags().StringP("input", "i", "", "input CSV path")
	runCmd.Flags().StringP("model-out", "o", "", "path for the persisted model")
	runCmd.Flags().Float64("test-ratio", 0, "fraction of rows held out for testing")
	runCmd.Flags().Int64("seed", 0, "random seed for split, forest and cross-validation")
	runCmd.Flags().Int("cv-folds", 0, "number of cross-validation folds for grid search")

	_ = viper.BindPFlag("input", runCmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("model_out", runCmd.Flags().Lookup("model-out"))
	_ = viper.BindPFlag("test_ratio", runCmd.Flags().Lookup("test-ratio"))
	_ = viper.BindPFlag("seed", runCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("cv_folds", runCmd.Flags().Lookup("cv-folds"))

	rootCmd.AddCommand(runCmd)
}

func runPipeline(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.GetLogger().Error("invalid configuration", "error", err)
		return err
	}

	log.ConfigureConsole(toZerologLevel(cfg.LogLevel))
	log.InstallWarningBridge()

	result, err := pipeline.Run(cfg)
	if err != nil {
		log.GetLogger().Error("pipeline failed", "error", err)
		return err
	}

	logger := log.GetLoggerWithName("vgsales")
	logger.Info("run summary",
		"rows_raw", result.RowsRaw,
		"rows_cleaned", result.RowsCleaned,
		"linear_test", result.Linear.Test,
		"forest_test", result.Forest.Test,
		"selected", result.Selected,
	)
	return nil
}

func toZerologLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
