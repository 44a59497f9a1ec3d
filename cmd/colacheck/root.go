package main

import (
	"github.com/spf13/cobra"

	"colacheck/internal/api"
	"colacheck/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "colacheck",
	Short: "Alcohol label verification against COLA applications",
	Long: `colacheck verifies alcohol beverage labels against their COLA
(Certificate of Label Approval) applications.

The pipeline:
  - Classifies uploaded label images and application PDFs
  - Extracts brand name, class/type, ABV, net contents and other regulated fields
  - Matches each label to its most likely application
  - Verifies every matched pair field by field, including the
    government warning text required by 27 CFR Part 16`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.colacheck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "colacheck home directory (default: ~/.colacheck)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
