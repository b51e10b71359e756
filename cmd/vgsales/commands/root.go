// Package commands implements the CLI commands for vgsales.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/vgsales/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "vgsales",
	Short: "Video game sales cleaning and regression pipeline",
	Long: `vgsales ingests a CSV of historical video game sales, cleans and
imputes it, and fits two regressors (OLS linear regression and a
grid-searched random forest) to predict North American sales.

The model with the higher test R-squared is persisted for later reuse.

Examples:
  # Run with defaults (vgsales.csv in the working directory)
  vgsales run

  # Explicit paths and a fixed seed
  vgsales run --input data/vgsales.csv --model-out out/model.gob --seed 7

  # Settings from a config file
  vgsales run --config pipeline.yaml`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .vgsales.yaml in the working directory)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".vgsales")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VGSALES")
	viper.AutomaticEnv()

	// Config file is optional; flags and defaults are enough to run.
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
