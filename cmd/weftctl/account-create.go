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
	"github.com/wefthq/weft/pkg/store"
)

// accountCreateCmd represents the account create command
var accountCreateCmd = &cobra.Command{
	Use:   "create [tenant] [integration-id]",
	Short: "Create a tenant/provider account",
	Long: `Create a tenant/provider account.

This command pairs a tenant with a registered integration and issues the
account's own data-encryption key under the master key. Each account
keeps its own key so rotating one tenant's credentials never touches
another's.

Example:
  weftctl account create acme 7b0a7265-...`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "error: tenant and integration id are required")
			os.Exit(1)
		}

		id, err := createAccount(args[0], args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created account for tenant '%s'\n", args[0])
		fmt.Println(id)
	},
}

func init() {
	accountCmd.AddCommand(accountCreateCmd)
}

func createAccount(tenantID, integrationID string) (string, error) {
	keyring, err := masterKeyring()
	if err != nil {
		return "", err
	}

	adapter, err := connectAdapter()
	if err != nil {
		return "", err
	}
	ctx := context.Background()

	// The integration must exist before an account can reference it.
	existing, err := adapter.FindOne(ctx, model.Integration{}.TableName(), []store.Where{store.Eq("id", integrationID)})
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", fmt.Errorf("integration '%s' does not exist", integrationID)
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		IntegrationID: integrationID,
		Config:        json.RawMessage("{}"),
		Credentials:   map[string]string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	row, err := account.Row()
	if err != nil {
		return "", err
	}

	if _, err := adapter.Insert(ctx, account.TableName(), row); err != nil {
		return "", err
	}

	vault := envelope.NewAccountVault(adapter, keyring)
	if err := vault.IssueNewDEK(ctx, account.ID); err != nil {
		return "", fmt.Errorf("failed to issue data key: %w", err)
	}

	return account.ID, nil
}
