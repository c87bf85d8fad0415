package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "ifad",
	Short: "Filter gene and annotation datasets by evidence segments",
	Long: `ifad loads a gene list and its GAF annotation file, indexes every
annotation under an (aspect, evidence status) segment, and filters both
files down to the genes matching a segment query.

The filter subcommand runs one query and writes the filtered pair back to
disk; serve exposes the same queries over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity (debug|info|warn|error)")
}
