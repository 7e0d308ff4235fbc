package postgres

import (
	"context"
	"fmt"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
)

// ListTableNames returns all user-defined table names in the schema.
func (d *Driver) ListTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := d.pool.Query(ctx, q, d.schema)
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

// TablesExist reports whether every named table exists in the schema.
func (d *Driver) TablesExist(ctx context.Context, names ...string) (bool, error) {
	want := database.Dedupe(names)
	if len(want) == 0 {
		return true, nil
	}

	const q = `
		SELECT count(*)
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = ANY($2)`

	var found int
	if err := d.pool.QueryRow(ctx, q, d.schema, want).Scan(&found); err != nil {
		return false, mapError(err, "failed to check table existence")
	}
	return found == len(want), nil
}

// ListTableColumns returns column details in ordinal order.
func (d *Driver) ListTableColumns(ctx context.Context, table string) ([]database.Column, error) {
	const q = `
		SELECT c.column_name,
		       CASE WHEN c.data_type IN ('USER-DEFINED', 'ARRAY') THEN c.udt_name ELSE c.data_type END,
		       c.is_nullable = 'YES',
		       c.column_default,
		       c.character_maximum_length,
		       CASE WHEN c.data_type = 'numeric' THEN c.numeric_precision END,
		       CASE WHEN c.data_type = 'numeric' THEN c.numeric_scale END,
		       c.is_identity = 'YES' OR COALESCE(c.column_default, '') LIKE 'nextval(%',
		       COALESCE(pg_catalog.col_description(
		           format('%I.%I', c.table_schema, c.table_name)::regclass::oid,
		           c.ordinal_position), '')
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		  AND c.table_name   = $2
		ORDER BY c.ordinal_position`

	rows, err := d.pool.Query(ctx, q, d.schema, table)
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
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}

	if len(cols) == 0 {
		return nil, errs.Introspection(fmt.Sprintf("table %s.%s not found or has no columns", d.schema, table), nil)
	}
	return cols, nil
}

// ListTableIndexes returns every index on the table ordered by name, with
// columns in key order. Expression members are skipped.
func (d *Driver) ListTableIndexes(ctx context.Context, table string) ([]database.Index, error) {
	const q = `
		SELECT i.relname,
		       a.attname,
		       ix.indisunique,
		       ix.indisprimary
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class t      ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_class i      ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_namespace n  ON n.oid = t.relnamespace
		JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_catalog.pg_attribute a  ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1
		  AND t.relname = $2
		ORDER BY i.relname, k.ord`

	rows, err := d.pool.Query(ctx, q, d.schema, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var b database.IndexBuilder
	for rows.Next() {
		var name, column string
		var unique, primary bool
		if err := rows.Scan(&name, &column, &unique, &primary); err != nil {
			return nil, mapError(err, "failed to scan index")
		}
		b.Add(name, column, indexKind(unique, primary))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating indexes")
	}
	return b.Indexes(), nil
}

// ListTableForeignKeys returns the table's foreign key constraints ordered
// by name, with column pairs in constraint order.
func (d *Driver) ListTableForeignKeys(ctx context.Context, table string) ([]database.ForeignKey, error) {
	rows, err := d.pool.Query(ctx, foreignKeysQuery, d.schema, table)
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

var foreignKeysQuery = `
	SELECT c.conname,
	       a.attname,
	       rt.relname,
	       ra.attname,
	       ` + fkAction("c.confdeltype") + `,
	       ` + fkAction("c.confupdtype") + `
	FROM pg_catalog.pg_constraint c
	JOIN pg_catalog.pg_class t      ON t.oid = c.conrelid
	JOIN pg_catalog.pg_namespace n  ON n.oid = t.relnamespace
	JOIN pg_catalog.pg_class rt     ON rt.oid = c.confrelid
	JOIN LATERAL unnest(c.conkey, c.confkey) WITH ORDINALITY AS k(attnum, refattnum, ord) ON true
	JOIN pg_catalog.pg_attribute a  ON a.attrelid = c.conrelid  AND a.attnum  = k.attnum
	JOIN pg_catalog.pg_attribute ra ON ra.attrelid = c.confrelid AND ra.attnum = k.refattnum
	WHERE c.contype = 'f'
	  AND n.nspname = $1
	  AND t.relname = $2
	ORDER BY c.conname, k.ord`

func fkAction(col string) string {
	return `CASE ` + col + `
		           WHEN 'r' THEN 'RESTRICT'
		           WHEN 'c' THEN 'CASCADE'
		           WHEN 'n' THEN 'SET NULL'
		           WHEN 'd' THEN 'SET DEFAULT'
		           ELSE 'NO ACTION' END`
}

func indexKind(unique, primary bool) database.IndexKind {
	switch {
	case primary:
		return database.IndexPrimary
	case unique:
		return database.IndexUnique
	default:
		return database.IndexPlain
	}
}
