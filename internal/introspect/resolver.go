// Package introspect resolves table identifiers to their owning connection
// and builds normalized table descriptions across every registered
// connection.
package introspect

import (
	"context"

	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/koustreak/schemaroute/internal/registry"
	"github.com/koustreak/schemaroute/internal/schema"
)

// Resolver maps table identifiers to (connection, bare table) pairs.
type Resolver struct {
	reg *registry.Registry
	log *logger.Logger
}

// NewResolver returns a Resolver over reg. log may be nil.
func NewResolver(reg *registry.Registry, log *logger.Logger) *Resolver {
	return &Resolver{reg: reg, log: logger.OrNop(log)}
}

// Resolve finds the connection that owns identifier.
//
// A qualified identifier ("conn__table") whose connection has the table is
// returned without consulting other connections. Anything else, including
// a qualified identifier whose connection lacks the table, is resolved by
// asking every connection in registry order; the last one that has the
// bare table wins.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (connection, table string, err error) {
	prefix, bare, qualified := schema.SplitIdentifier(identifier)

	if qualified && r.reg.Has(prefix) {
		ok, err := r.exists(ctx, prefix, bare)
		if err != nil {
			return "", "", err
		}
		if ok {
			r.log.DebugWith("resolved qualified table", map[string]any{"table": bare, "connection": prefix})
			return prefix, bare, nil
		}
	}

	for _, name := range r.reg.Connections() {
		ok, err := r.exists(ctx, name, bare)
		if err != nil {
			return "", "", err
		}
		if ok {
			connection = name
		}
	}

	if connection == "" {
		return "", "", errs.NoAcceptableConnection(bare)
	}

	r.log.DebugWith("resolved table by scan", map[string]any{"table": bare, "connection": connection})
	return connection, bare, nil
}

func (r *Resolver) exists(ctx context.Context, connection, table string) (bool, error) {
	adapter, err := r.reg.Adapter(connection)
	if err != nil {
		return false, err
	}
	ok, err := adapter.TablesExist(ctx, table)
	if err != nil {
		return false, errs.Introspection("existence check for "+table+" on "+connection+" failed", err)
	}
	return ok, nil
}
