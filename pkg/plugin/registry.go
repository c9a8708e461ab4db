package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wefthq/weft/pkg/config"
	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/schema"
	"github.com/wefthq/weft/pkg/store"
)

// Definition declares one plugin: its identifier and the shape of the
// entities it stores. Plugins without stored entities leave
// Schema.Services nil.
type Definition struct {
	Name   string
	Schema schema.Schema
}

// Registry maps plugin identifiers to their definitions. Register every
// plugin at startup, then treat the registry as read-only.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Definition
	keyring *envelope.Keyring
	logger  *zap.Logger

	// tenantTables is the table set every bound scope enforces; empty
	// means store.TenantTables(). listLimitMax caps service FindMany
	// pages; zero means unbounded.
	tenantTables []string
	listLimitMax int
}

// NewRegistry builds an empty registry. The keyring carries the operator
// KEK and is shared by every bound context's credential accessor.
func NewRegistry(keyring *envelope.Keyring, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.L()
	}
	return &Registry{
		plugins: map[string]Definition{},
		keyring: keyring,
		logger:  logger,
	}
}

// NewRegistryFromConfig builds a registry carrying the host's settings:
// the tenant-scoped table set and the FindMany page cap both come from
// configuration instead of the package defaults.
func NewRegistryFromConfig(cfg config.Config, keyring *envelope.Keyring, logger *zap.Logger) *Registry {
	r := NewRegistry(keyring, logger)
	r.tenantTables = cfg.TenantTables
	r.listLimitMax = cfg.ResourceListLimitMax
	return r
}

// ErrAlreadyRegistered reports a second Register call for the same
// plugin name. Callers that tolerate re-registration match it with
// errors.Is.
var ErrAlreadyRegistered = errors.New("plugin already registered")

// Register adds a plugin definition. Re-registering a name is a
// programming error and fails loudly.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Name == "" {
		return fmt.Errorf("plugin definition has no name")
	}
	if _, ok := r.plugins[def.Name]; ok {
		return fmt.Errorf("plugin %q: %w", def.Name, ErrAlreadyRegistered)
	}
	r.plugins[def.Name] = def
	return nil
}

// Plugins returns the registered plugin names, sorted.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind builds the capability bundle handed to one plugin's operations
// for one tenant. The adapter is wrapped in a tenant scope here; plugin
// code never sees the raw adapter.
func (r *Registry) Bind(adapter store.Adapter, pluginName, tenantID string) (*Context, error) {
	r.mu.RLock()
	def, ok := r.plugins[pluginName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plugin %q is not registered", pluginName)
	}

	scoped := store.NewTenantScope(adapter, tenantID, r.tenantTables...)
	return newContext(def, scoped, r.keyring, r.logger, r.listLimitMax), nil
}
