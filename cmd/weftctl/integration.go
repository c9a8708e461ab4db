package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// integrationCmd represents the integration command
var integrationCmd = &cobra.Command{
	Use:   "integration",
	Short: "Manage integrations",
	Long:  `Manage provider integrations and their data-encryption keys.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'integration' requires a subcommand (create, rotate-dek)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(integrationCmd)
}
