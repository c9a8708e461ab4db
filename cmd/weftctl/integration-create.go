package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/model"
)

// integrationCreateCmd represents the integration create command
var integrationCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Register a provider integration",
	Long: `Register a provider integration.

This command inserts a new integrations row and issues its data-encryption
key under the master key. The WEFT_MASTER_KEY must be available in the
environment since the issued key is wrapped before it is stored.

Example:
  weftctl integration create salesforce
  weftctl integration create salesforce --config '{"api_version":"v60"}'`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "error: integration name is required")
			os.Exit(1)
		}
		configJSON, _ := cmd.Flags().GetString("config")

		id, err := createIntegration(args[0], configJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create integration: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created integration '%s'\n", args[0])
		fmt.Println(id)
	},
}

func init() {
	integrationCmd.AddCommand(integrationCreateCmd)
	integrationCreateCmd.Flags().StringP("config", "c", "{}", "Integration config as a JSON object")
}

func createIntegration(name, configJSON string) (string, error) {
	keyring, err := masterKeyring()
	if err != nil {
		return "", err
	}

	if !json.Valid([]byte(configJSON)) {
		return "", fmt.Errorf("--config must be valid JSON")
	}

	adapter, err := connectAdapter()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	integration := &model.Integration{
		ID:          uuid.NewString(),
		Name:        name,
		Config:      json.RawMessage(configJSON),
		Credentials: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	row, err := integration.Row()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	if _, err := adapter.Insert(ctx, integration.TableName(), row); err != nil {
		return "", err
	}

	vault := envelope.NewIntegrationVault(adapter, keyring)
	if err := vault.IssueNewDEK(ctx, integration.ID); err != nil {
		return "", fmt.Errorf("failed to issue data key: %w", err)
	}

	return integration.ID, nil
}
