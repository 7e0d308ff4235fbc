// Package mysql implements database.Adapter for MySQL and MariaDB using
// database/sql with go-sql-driver/mysql. Introspection is scoped to the
// database selected in the DSN.
package mysql

import (
	"context"
	"database/sql"

	"github.com/koustreak/schemaroute/internal/database"
)

// Driver introspects the DSN's MySQL database over a *sql.DB pool.
type Driver struct {
	db *sql.DB
}

var _ database.Adapter = (*Driver)(nil)

// New opens the pool and pings it before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	cfg.ApplyDefaults()

	db, err := buildPool(cfg)
	if err != nil {
		return nil, err
	}

	d := NewFromDB(db)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// NewFromDB wraps an already opened pool. The Driver takes ownership and
// closes db on Close.
func NewFromDB(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// Dialect reports DialectMySQL.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectMySQL
}

// Ping checks that a pooled connection can reach the server.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close closes the underlying *sql.DB.
func (d *Driver) Close() {
	_ = d.db.Close()
}

// SupportsForeignKeys is true; MyISAM tables simply report none.
func (d *Driver) SupportsForeignKeys() bool {
	return true
}

// CreateTable runs the rendered statements in order. MySQL commits DDL
// implicitly, so a failure part way leaves earlier statements applied.
func (d *Driver) CreateTable(ctx context.Context, spec database.TableSpec) error {
	stmts, err := database.CreateTable(spec, database.DialectMySQL).Build()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "failed to create table "+spec.Name)
		}
	}
	return nil
}
