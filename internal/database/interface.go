package database

import "context"

// Adapter is the capability set every backend exposes for introspection.
// All layers above this package talk only to this interface; they never
// import the postgres, mysql or sqlite packages directly.
//
// Implementations must be safe for concurrent use and must not cache:
// every call re-queries the live backend.
type Adapter interface {
	// Dialect identifies the SQL flavour spoken by the backend.
	Dialect() Dialect

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// TablesExist reports whether every named table exists.
	TablesExist(ctx context.Context, names ...string) (bool, error)

	// ListTableNames returns all user-defined table names.
	ListTableNames(ctx context.Context) ([]string, error)

	// ListTableColumns returns the table's columns in native order.
	// A missing table is reported as an introspection failure.
	ListTableColumns(ctx context.Context, table string) ([]Column, error)

	// SupportsForeignKeys reports whether ListTableForeignKeys may be called.
	SupportsForeignKeys() bool

	// ListTableForeignKeys returns the table's foreign keys ordered by name.
	ListTableForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)

	// ListTableIndexes returns the table's indexes ordered by name.
	ListTableIndexes(ctx context.Context, table string) ([]Index, error)

	// CreateTable renders spec for this dialect and executes it.
	CreateTable(ctx context.Context, spec TableSpec) error
}
