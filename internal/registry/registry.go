// Package registry holds the ordered set of named database connections.
// Order matters: table resolution scans connections in registry order.
package registry

import (
	"context"

	"github.com/koustreak/schemaroute/internal/config"
	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/database/mysql"
	"github.com/koustreak/schemaroute/internal/database/postgres"
	"github.com/koustreak/schemaroute/internal/database/sqlite"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/logger"
)

// Connection pairs a logical connection name with its adapter.
type Connection struct {
	Name    string
	Adapter database.Adapter
}

// Registry is an immutable, ordered view of the configured connections.
type Registry struct {
	conns  []Connection
	byName map[string]database.Adapter
}

// Factory opens an adapter for one connection.
type Factory func(ctx context.Context, cfg *database.Config) (database.Adapter, error)

// Factories maps each supported driver to its constructor.
var Factories = map[database.Driver]Factory{
	database.DriverPostgres: func(ctx context.Context, cfg *database.Config) (database.Adapter, error) {
		return postgres.New(ctx, cfg)
	},
	database.DriverMySQL: func(ctx context.Context, cfg *database.Config) (database.Adapter, error) {
		return mysql.New(ctx, cfg)
	},
	database.DriverSQLite: func(ctx context.Context, cfg *database.Config) (database.Adapter, error) {
		return sqlite.New(ctx, cfg)
	},
}

// New builds a Registry from already opened connections. Later entries
// with a duplicate name are ignored.
func New(conns ...Connection) *Registry {
	r := &Registry{byName: make(map[string]database.Adapter, len(conns))}
	for _, c := range conns {
		if _, dup := r.byName[c.Name]; dup {
			continue
		}
		r.conns = append(r.conns, c)
		r.byName[c.Name] = c.Adapter
	}
	return r
}

// Open connects every configured connection in order. If any connection
// fails, those already opened are closed and the error is returned.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Registry, error) {
	log = logger.OrNop(log)

	conns := make([]Connection, 0, len(cfg.Connections))
	closeAll := func() {
		for _, c := range conns {
			c.Adapter.Close()
		}
	}

	for _, c := range cfg.Connections {
		factory, ok := Factories[c.Driver]
		if !ok {
			closeAll()
			return nil, errs.Newf(errs.ErrKindInvalidInput, "connection %q: unsupported driver %q", c.Name, c.Driver)
		}

		dbCfg := c.Config
		adapter, err := factory(ctx, &dbCfg)
		if err != nil {
			closeAll()
			log.ErrorWith("failed to open connection", err, map[string]any{"connection": c.Name, "driver": string(c.Driver)})
			return nil, err
		}

		log.With().Str("connection", c.Name).Str("driver", string(c.Driver)).Logger().Debug("connection opened")
		conns = append(conns, Connection{Name: c.Name, Adapter: adapter})
	}

	log.With().Strs("connections", cfg.ConnectionNames()).Logger().Info("registry opened")
	return New(conns...), nil
}

// Connections returns connection names in registry order.
func (r *Registry) Connections() []string {
	names := make([]string, len(r.conns))
	for i, c := range r.conns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether name is a registered connection.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Adapter returns the adapter registered under name.
func (r *Registry) Adapter(name string) (database.Adapter, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown connection %q", name)
	}
	return a, nil
}

// Default returns the first registered connection.
func (r *Registry) Default() (string, database.Adapter, error) {
	if len(r.conns) == 0 {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "no connections registered")
	}
	return r.conns[0].Name, r.conns[0].Adapter, nil
}

// Ping checks every connection and returns the first failure.
func (r *Registry) Ping(ctx context.Context) error {
	for _, c := range r.conns {
		if err := c.Adapter.Ping(ctx); err != nil {
			return errs.Wrap(errs.KindOf(err), "connection "+c.Name+" unreachable", err)
		}
	}
	return nil
}

// Close closes every adapter.
func (r *Registry) Close() {
	for _, c := range r.conns {
		c.Adapter.Close()
	}
}
