package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Release-notes tooling for the weft CHANGELOG",
	Long: `Parse, validate and extract release entries from weft's CHANGELOG.md.

The file follows the Keep a Changelog format; CI runs "validate" on every
change and "extract" when cutting a release tag.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
