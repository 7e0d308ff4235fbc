package mysql

import (
	"context"
	"fmt"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
)

// ListTableNames returns the base tables of the DSN's database, sorted.
func (d *Driver) ListTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	names, err := database.ScanStrings(rows)
	if err != nil {
		return nil, mapError(err, "failed to scan table names")
	}
	return names, nil
}

// TablesExist reports whether every named table exists in the database.
// Duplicate names count once.
func (d *Driver) TablesExist(ctx context.Context, names ...string) (bool, error) {
	want := database.Dedupe(names)
	if len(want) == 0 {
		return true, nil
	}

	q := `
		SELECT COUNT(DISTINCT table_name)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		  AND table_name IN (` + database.DialectMySQL.Placeholders(len(want)) + `)`

	args := make([]any, len(want))
	for i, n := range want {
		args[i] = n
	}

	var found int
	if err := d.db.QueryRowContext(ctx, q, args...).Scan(&found); err != nil {
		return false, mapError(err, "failed to check table existence")
	}
	return found == len(want), nil
}

// ListTableColumns returns the table's columns in ordinal order. A table
// without columns does not exist and is reported as an introspection error.
func (d *Driver) ListTableColumns(ctx context.Context, table string) ([]database.Column, error) {
	const q = `
		SELECT column_name,
		       column_type,
		       is_nullable = 'YES',
		       column_default,
		       character_maximum_length,
		       numeric_precision,
		       numeric_scale,
		       extra LIKE '%auto_increment%',
		       column_comment
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		ORDER BY ordinal_position`

	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	cols := make([]database.Column, 0)
	for rows.Next() {
		var c database.Column
		if err := rows.Scan(&c.Name, &c.DBType, &c.Nullable, &c.Default,
			&c.Length, &c.Precision, &c.Scale, &c.AutoIncrement, &c.Comment); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		c.Normalize()
		// information_schema reports precision for every numeric type.
		if c.Type != "decimal" {
			c.Precision, c.Scale = nil, nil
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}

	if len(cols) == 0 {
		return nil, errs.Introspection(fmt.Sprintf("table %s not found or has no columns", table), nil)
	}
	return cols, nil
}

// ListTableIndexes groups information_schema.statistics rows by index
// name; the PRIMARY index is reported as IndexPrimary.
func (d *Driver) ListTableIndexes(ctx context.Context, table string) ([]database.Index, error) {
	const q = `
		SELECT index_name,
		       column_name,
		       non_unique
		FROM information_schema.statistics
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		  AND column_name IS NOT NULL
		ORDER BY index_name, seq_in_index`

	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var b database.IndexBuilder
	for rows.Next() {
		var name, column string
		var nonUnique int
		if err := rows.Scan(&name, &column, &nonUnique); err != nil {
			return nil, mapError(err, "failed to scan index")
		}
		b.Add(name, column, indexKind(name, nonUnique == 0))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating indexes")
	}
	return b.Indexes(), nil
}

// ListTableForeignKeys returns the table's foreign key constraints with
// their referential actions.
func (d *Driver) ListTableForeignKeys(ctx context.Context, table string) ([]database.ForeignKey, error) {
	const q = `
		SELECT k.constraint_name,
		       k.column_name,
		       k.referenced_table_name,
		       k.referenced_column_name,
		       r.delete_rule,
		       r.update_rule
		FROM information_schema.key_column_usage k
		JOIN information_schema.referential_constraints r
		  ON r.constraint_schema = k.constraint_schema
		 AND r.constraint_name   = k.constraint_name
		 AND r.table_name        = k.table_name
		WHERE k.table_schema = DATABASE()
		  AND k.table_name   = ?
		  AND k.referenced_table_name IS NOT NULL
		ORDER BY k.constraint_name, k.ordinal_position`

	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	defer rows.Close()

	var b database.ForeignKeyBuilder
	for rows.Next() {
		var name, column, refTable, refColumn, onDelete, onUpdate string
		if err := rows.Scan(&name, &column, &refTable, &refColumn, &onDelete, &onUpdate); err != nil {
			return nil, mapError(err, "failed to scan foreign key")
		}
		b.Add(name, column, refTable, refColumn, onDelete, onUpdate)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating foreign keys")
	}
	return b.ForeignKeys(), nil
}

// indexKind: MySQL always names the primary key index PRIMARY.
func indexKind(name string, unique bool) database.IndexKind {
	switch {
	case name == "PRIMARY":
		return database.IndexPrimary
	case unique:
		return database.IndexUnique
	default:
		return database.IndexPlain
	}
}
