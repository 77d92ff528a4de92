// Package cmd provides the tide command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--config, --port, ...)
//  2. Environment variables with the TIDE_ prefix (TIDE_SERVER_PORT, ...)
//  3. Configuration file (.tide.yml in the working directory, or the
//     file named by --config)
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lilBchii/tide/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tide",
	Short: "A live preview and export companion for Typst projects",
	Long: `Tide keeps an in-memory image of a Typst project, recompiles it as
sources change, and renders only the pages visible in the viewport.

Quick Start:
  tide serve .              Watch a project and serve the live preview
  tide compile .            One-shot compile with diagnostics
  tide export . -o doc.pdf  Export the project
  tide projects             List recently opened projects`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tide.yml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tide")
	}

	viper.SetEnvPrefix("TIDE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger from the merged configuration.
func newLogger() logging.Logger {
	level := viper.GetString("log-level")
	if level == "" {
		level = logLevel
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(level),
		Format: "text",
		Output: os.Stderr,
	})
}

// projectRoot resolves the positional project directory argument.
func projectRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve project directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot open project directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
