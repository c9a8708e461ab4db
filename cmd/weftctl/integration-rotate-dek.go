package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wefthq/weft/pkg/envelope"
)

// integrationRotateDekCmd represents the integration rotate-dek command
var integrationRotateDekCmd = &cobra.Command{
	Use:   "rotate-dek [id]",
	Short: "Rotate an integration's data-encryption key",
	Long: `Rotate an integration's data-encryption key.

This command issues a fresh data key, re-encrypts every stored credential
field under it, and replaces the wrapped key, all in one transaction.
Old ciphertexts are unreadable once the rotation commits.

Example:
  weftctl integration rotate-dek 7b0a7265-...`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "error: integration id is required")
			os.Exit(1)
		}

		if err := rotateIntegrationDEK(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate data key: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Rotated data key for integration '%s'\n", args[0])
	},
}

func init() {
	integrationCmd.AddCommand(integrationRotateDekCmd)
}

func rotateIntegrationDEK(id string) error {
	keyring, err := masterKeyring()
	if err != nil {
		return err
	}

	adapter, err := connectAdapter()
	if err != nil {
		return err
	}

	vault := envelope.NewIntegrationVault(adapter, keyring)
	return vault.RotateDEK(context.Background(), id)
}
