package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/events"
	"github.com/wefthq/weft/pkg/model"
	"github.com/wefthq/weft/pkg/plugin"
	"github.com/wefthq/weft/pkg/schema"
	"github.com/wefthq/weft/pkg/store"
)

// StepsContext holds state shared between step definitions.
type StepsContext struct {
	tc       *TestContext
	registry *plugin.Registry
	bound    map[string]*plugin.Context

	integrationIDs map[string]string
}

// NewStepsContext creates a new steps context.
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:             tc,
		registry:       plugin.NewRegistry(tc.Keyring, zap.NewNop()),
		bound:          map[string]*plugin.Context{},
		integrationIDs: map[string]string{},
	}
}

// RegisterSteps registers all step definitions.
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a clean database$`, s.aCleanDatabase)
	sc.Step(`^a plugin "([^"]*)" with a "([^"]*)" service is registered$`, s.aPluginWithServiceIsRegistered)
	sc.Step(`^tenant "([^"]*)" is bound to plugin "([^"]*)"$`, s.tenantIsBoundToPlugin)

	sc.Step(`^tenant "([^"]*)" upserts (\w+) "([^"]*)" named "([^"]*)"$`, s.tenantUpserts)
	sc.Step(`^tenant "([^"]*)" should find (\w+) "([^"]*)" named "([^"]*)"$`, s.tenantShouldFind)
	sc.Step(`^tenant "([^"]*)" should not find (\w+) "([^"]*)"$`, s.tenantShouldNotFind)
	sc.Step(`^tenant "([^"]*)" should count (\d+) (\w+) records?$`, s.tenantShouldCount)

	sc.Step(`^tenant "([^"]*)" logs a (\w+) "([^"]*)" event$`, s.tenantLogsEvent)
	sc.Step(`^tenant "([^"]*)" should have (\d+) "([^"]*)" events?$`, s.tenantShouldHaveEvents)

	sc.Step(`^an integration "([^"]*)" exists with an issued data key$`, s.integrationExistsWithDataKey)
	sc.Step(`^credential "([^"]*)" of integration "([^"]*)" is set to "([^"]*)"$`, s.credentialIsSet)
	sc.Step(`^credential "([^"]*)" of integration "([^"]*)" should decrypt to "([^"]*)"$`, s.credentialShouldDecryptTo)
	sc.Step(`^the stored credentials of integration "([^"]*)" should not contain "([^"]*)"$`, s.storedCredentialsShouldNotContain)
	sc.Step(`^the data key of integration "([^"]*)" is rotated$`, s.dataKeyIsRotated)
}

func (s *StepsContext) aCleanDatabase(ctx context.Context) error {
	s.bound = map[string]*plugin.Context{}
	s.integrationIDs = map[string]string{}
	return s.tc.Reset(ctx)
}

func (s *StepsContext) aPluginWithServiceIsRegistered(pluginName, service string) error {
	err := s.registry.Register(plugin.Definition{
		Name: pluginName,
		Schema: schema.Schema{
			Name: pluginName,
			Services: map[string]schema.Entity{
				service: {
					Version: "1",
					Fields: map[string]schema.Field{
						"name": {Kind: schema.KindText, Required: true},
					},
				},
			},
		},
	})
	// Scenarios share one registry; a plugin registered by an earlier
	// scenario is fine.
	if errors.Is(err, plugin.ErrAlreadyRegistered) {
		return nil
	}
	return err
}

func (s *StepsContext) tenantIsBoundToPlugin(tenantID, pluginName string) error {
	pctx, err := s.registry.Bind(s.tc.Adapter, pluginName, tenantID)
	if err != nil {
		return err
	}
	s.bound[tenantID] = pctx
	return nil
}

func (s *StepsContext) contextFor(tenantID string) (*plugin.Context, error) {
	pctx, ok := s.bound[tenantID]
	if !ok {
		return nil, fmt.Errorf("tenant %q is not bound to a plugin", tenantID)
	}
	return pctx, nil
}

func (s *StepsContext) tenantUpserts(ctx context.Context, tenantID, service, resourceID, name string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	client := pctx.Service(service)
	if client == nil {
		return fmt.Errorf("plugin has no service %q", service)
	}
	_, err = client.UpsertByResourceID(ctx, resourceID, map[string]any{"name": name})
	return err
}

func (s *StepsContext) tenantShouldFind(ctx context.Context, tenantID, service, resourceID, name string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	record, err := pctx.Service(service).FindByResourceID(ctx, resourceID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("expected %s %q to be visible to tenant %q", service, resourceID, tenantID)
	}
	if got := record.Data["name"]; got != name {
		return fmt.Errorf("expected name %q, got %v", name, got)
	}
	return nil
}

func (s *StepsContext) tenantShouldNotFind(ctx context.Context, tenantID, service, resourceID string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	record, err := pctx.Service(service).FindByResourceID(ctx, resourceID)
	if err != nil {
		return err
	}
	if record != nil {
		return fmt.Errorf("%s %q leaked into tenant %q", service, resourceID, tenantID)
	}
	return nil
}

func (s *StepsContext) tenantShouldCount(ctx context.Context, tenantID string, want int, service string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	got, err := pctx.Service(service).Count(ctx, nil)
	if err != nil {
		return err
	}
	if got != int64(want) {
		return fmt.Errorf("expected %d %s records for tenant %q, got %d", want, service, tenantID, got)
	}
	return nil
}

func (s *StepsContext) tenantLogsEvent(ctx context.Context, tenantID, statusName, eventType string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	status, err := events.StatusString(statusName)
	if err != nil {
		return err
	}
	pctx.LogEvent(ctx, eventType, map[string]any{"at": time.Now().UTC().Format(time.RFC3339)}, status)
	return nil
}

func (s *StepsContext) tenantShouldHaveEvents(ctx context.Context, tenantID string, want int, eventType string) error {
	pctx, err := s.contextFor(tenantID)
	if err != nil {
		return err
	}
	got, err := pctx.Events.Query(ctx, tenantID, eventType, store.Page{})
	if err != nil {
		return err
	}
	if len(got) != want {
		return fmt.Errorf("expected %d %q events for tenant %q, got %d", want, eventType, tenantID, len(got))
	}
	return nil
}

func (s *StepsContext) integrationExistsWithDataKey(ctx context.Context, name string) error {
	now := time.Now().UTC()
	integration := &model.Integration{
		ID:          uuid.NewString(),
		Name:        name,
		Config:      json.RawMessage("{}"),
		Credentials: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	row, err := integration.Row()
	if err != nil {
		return err
	}
	if _, err := s.tc.Adapter.Insert(ctx, integration.TableName(), row); err != nil {
		return err
	}
	s.integrationIDs[name] = integration.ID

	vault := envelope.NewIntegrationVault(s.tc.Adapter, s.tc.Keyring)
	return vault.IssueNewDEK(ctx, integration.ID)
}

func (s *StepsContext) vaultFor(name string) (*envelope.Vault, string, error) {
	id, ok := s.integrationIDs[name]
	if !ok {
		return nil, "", fmt.Errorf("integration %q does not exist", name)
	}
	return envelope.NewIntegrationVault(s.tc.Adapter, s.tc.Keyring), id, nil
}

func (s *StepsContext) credentialIsSet(ctx context.Context, field, name, value string) error {
	vault, id, err := s.vaultFor(name)
	if err != nil {
		return err
	}
	return vault.SetField(ctx, id, field, value)
}

func (s *StepsContext) credentialShouldDecryptTo(ctx context.Context, field, name, want string) error {
	vault, id, err := s.vaultFor(name)
	if err != nil {
		return err
	}
	got, err := vault.GetField(ctx, id, field)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected credential %q to decrypt to %q, got %q", field, want, got)
	}
	return nil
}

func (s *StepsContext) storedCredentialsShouldNotContain(ctx context.Context, name, plaintext string) error {
	id, ok := s.integrationIDs[name]
	if !ok {
		return fmt.Errorf("integration %q does not exist", name)
	}
	var stored string
	err := s.tc.RawDB.QueryRowContext(ctx,
		"SELECT credentials::text FROM integrations WHERE id = $1", id).Scan(&stored)
	if err != nil {
		return err
	}
	if strings.Contains(stored, plaintext) {
		return fmt.Errorf("plaintext %q appears in the stored credentials", plaintext)
	}
	return nil
}

func (s *StepsContext) dataKeyIsRotated(ctx context.Context, name string) error {
	vault, id, err := s.vaultFor(name)
	if err != nil {
		return err
	}
	return vault.RotateDEK(ctx, id)
}
