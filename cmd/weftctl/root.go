package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weftctl",
	Short: "Operator CLI for the weft resource store",
	Long: `weftctl manages the weft resource store: database schema,
master-key material, and integration credential lifecycle.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
