package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridable at build time:
//
//	go build -ldflags "-X main.version=1.2.3" ./cmd/ifad
var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ifad version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ifad", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
