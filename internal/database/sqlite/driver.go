// Package sqlite implements database.Adapter for SQLite using the pure Go
// modernc.org/sqlite driver. Introspection relies on the table-valued
// PRAGMA functions, so SQLite 3.16 or newer is required.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Driver is a SQLite implementation of database.Adapter.
type Driver struct {
	db          *sql.DB
	foreignKeys bool
}

var _ database.Adapter = (*Driver)(nil)

// New opens the database file named by cfg.DSN. In-memory databases are
// private to a connection, so their pool is pinned to one connection.
//
// Foreign key enforcement is read once here; enable it with
// "?_pragma=foreign_keys(1)" in the DSN.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	cfg.ApplyDefaults()

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	if isMemory(cfg.DSN) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(int(cfg.MaxConns))
		db.SetMaxIdleConns(int(cfg.MinConns))
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	d := &Driver{db: db}
	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	var enabled int
	if err := db.QueryRowContext(pingCtx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		_ = db.Close()
		return nil, mapError(err, "failed to read foreign_keys pragma")
	}
	d.foreignKeys = enabled == 1

	return d, nil
}

func isMemory(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Dialect reports DialectSQLite.
func (d *Driver) Dialect() database.Dialect {
	return database.DialectSQLite
}

// Ping checks that the database file can be opened.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close closes the underlying *sql.DB; in-memory databases are discarded.
func (d *Driver) Close() {
	_ = d.db.Close()
}

// SupportsForeignKeys reports whether foreign key enforcement was on when
// the database was opened.
func (d *Driver) SupportsForeignKeys() bool {
	return d.foreignKeys
}

// CreateTable executes the rendered DDL inside one transaction.
func (d *Driver) CreateTable(ctx context.Context, spec database.TableSpec) error {
	stmts, err := database.CreateTable(spec, database.DialectSQLite).Build()
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return mapError(err, "failed to create table "+spec.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapError(err, "failed to commit table creation")
	}
	return nil
}
