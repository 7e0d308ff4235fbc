// Package postgres implements database.Adapter for PostgreSQL on top of
// pgxpool. Introspection reads information_schema and the pg_catalog
// relations for a single configured schema ("public" by default).
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/schemaroute/internal/database"
)

// Driver introspects one PostgreSQL schema through a pgxpool. Safe for
// concurrent use.
type Driver struct {
	pool   *pgxpool.Pool
	schema string
}

var _ database.Adapter = (*Driver)(nil)

// New opens the pool and pings it within cfg.ConnectTimeout; an
// unreachable server is reported here rather than on first use.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	cfg.ApplyDefaults()

	pool, err := buildPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	d := &Driver{pool: pool, schema: cfg.Schema}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return d, nil
}

// Dialect reports DialectPostgres.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectPostgres
}

// Ping acquires and releases a pooled connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close waits for acquired connections to be released.
func (d *Driver) Close() {
	d.pool.Close()
}

// SupportsForeignKeys is always true for PostgreSQL.
func (d *Driver) SupportsForeignKeys() bool {
	return true
}

// CreateTable executes the rendered DDL inside one transaction; Postgres
// DDL is transactional, so a failing index leaves no half-created table.
func (d *Driver) CreateTable(ctx context.Context, spec database.TableSpec) error {
	stmts, err := database.CreateTable(spec, database.DialectPostgres).Build()
	if err != nil {
		return err
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+database.DialectPostgres.Quote(d.schema)); err != nil {
		return mapError(err, "failed to select schema")
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return mapError(err, "failed to create table "+spec.Name)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "failed to commit table creation")
	}
	return nil
}
