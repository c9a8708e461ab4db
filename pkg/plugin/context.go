package plugin

import (
	"context"

	"go.uber.org/zap"

	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/events"
	"github.com/wefthq/weft/pkg/orm"
	"github.com/wefthq/weft/pkg/store"
)

// Context is the capability bundle a plugin operation runs against. All
// handles are bound to one tenant; the bundle carries no way to widen
// that scope.
type Context struct {
	// Database is the tenant-scoped store handle.
	Database *store.TenantScope

	// Credentials decrypts the tenant's account credentials on demand.
	Credentials *envelope.Vault

	// Events is the operation log; see LogEvent.
	Events *events.Log

	services map[string]*orm.Client
	plugin   string
}

func newContext(def Definition, scoped *store.TenantScope, keyring *envelope.Keyring, logger *zap.Logger, listLimit int) *Context {
	pc := &Context{
		Database:    scoped,
		Credentials: envelope.NewAccountVault(scoped, keyring),
		Events:      events.New(scoped, logger),
		services:    map[string]*orm.Client{},
		plugin:      def.Name,
	}

	// Branch on the schema variant explicitly: a plugin without stored
	// entities simply gets no service clients.
	if def.Schema.HasServices() {
		for name, entity := range def.Schema.Services {
			client := orm.NewClient(scoped, def.Name, name, entity)
			if listLimit > 0 {
				client = client.WithListLimit(listLimit)
			}
			pc.services[name] = client
		}
	}
	return pc
}

// Plugin returns the owning plugin's identifier.
func (c *Context) Plugin() string {
	return c.plugin
}

// TenantID returns the bound tenant.
func (c *Context) TenantID() string {
	return c.Database.TenantID()
}

// Service returns the typed client for one declared service collection,
// or nil if the plugin does not declare it.
func (c *Context) Service(name string) *orm.Client {
	return c.services[name]
}

// LogEvent appends one operation record to the event log. Best-effort:
// it never fails the operation it describes.
func (c *Context) LogEvent(ctx context.Context, eventType string, payload any, status events.Status) {
	c.Events.Append(ctx, c.TenantID(), eventType, payload, status)
}
