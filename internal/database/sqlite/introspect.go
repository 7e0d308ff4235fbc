package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
)

// primaryIndexName labels the primary key of tables whose key has no
// backing index (INTEGER PRIMARY KEY aliases the rowid).
const primaryIndexName = "PRIMARY"

// ListTableNames returns user tables, skipping SQLite's internal sqlite_ tables.
func (d *Driver) ListTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

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

// TablesExist reports whether every named table exists. SQLite
// identifiers are case-insensitive, so names are compared lower-cased.
func (d *Driver) TablesExist(ctx context.Context, names ...string) (bool, error) {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	want := database.Dedupe(lowered)
	if len(want) == 0 {
		return true, nil
	}

	q := `
		SELECT COUNT(DISTINCT lower(name))
		FROM sqlite_master
		WHERE type = 'table'
		  AND lower(name) IN (` + database.DialectSQLite.Placeholders(len(want)) + `)`

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

type tableInfo struct {
	name    string
	typ     string
	notNull bool
	dflt    sql.NullString
	pk      int
}

func (d *Driver) tableInfo(ctx context.Context, table string) ([]tableInfo, error) {
	const q = `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var out []tableInfo
	for rows.Next() {
		var ti tableInfo
		if err := rows.Scan(&ti.name, &ti.typ, &ti.notNull, &ti.dflt, &ti.pk); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		out = append(out, ti)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return out, nil
}

// ListTableColumns reports the single INTEGER primary key column as
// auto-incrementing, since it aliases the rowid.
func (d *Driver) ListTableColumns(ctx context.Context, table string) ([]database.Column, error) {
	infos, err := d.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, errs.Introspection(fmt.Sprintf("table %s not found or has no columns", table), nil)
	}

	pkCount := 0
	for _, ti := range infos {
		if ti.pk > 0 {
			pkCount++
		}
	}

	cols := make([]database.Column, 0, len(infos))
	for _, ti := range infos {
		c := database.Column{
			Name:     ti.name,
			DBType:   ti.typ,
			Nullable: !ti.notNull && ti.pk == 0,
		}
		if ti.dflt.Valid {
			v := ti.dflt.String
			c.Default = &v
		}
		c.Normalize()
		c.AutoIncrement = pkCount == 1 && ti.pk > 0 && strings.EqualFold(ti.typ, "integer")
		cols = append(cols, c)
	}
	return cols, nil
}

// ListTableIndexes reads pragma_index_list. A rowid primary key has no
// index of its own and is reported under the name PRIMARY.
func (d *Driver) ListTableIndexes(ctx context.Context, table string) ([]database.Index, error) {
	type listed struct {
		name   string
		unique bool
		origin string
	}

	// Drain the list before querying members: an in-memory database has
	// a single connection.
	rows, err := d.db.QueryContext(ctx, `SELECT name, "unique", origin FROM pragma_index_list(?) ORDER BY name`, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	var list []listed
	for rows.Next() {
		var l listed
		if err := rows.Scan(&l.name, &l.unique, &l.origin); err != nil {
			_ = rows.Close()
			return nil, mapError(err, "failed to scan index")
		}
		list = append(list, l)
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return nil, mapError(err, "error iterating indexes")
	}

	var b database.IndexBuilder
	hasPrimary := false
	for _, l := range list {
		kind := database.IndexPlain
		switch {
		case l.origin == "pk":
			kind = database.IndexPrimary
			hasPrimary = true
		case l.unique:
			kind = database.IndexUnique
		}

		members, err := d.indexColumns(ctx, l.name)
		if err != nil {
			return nil, err
		}
		for _, col := range members {
			b.Add(l.name, col, kind)
		}
	}

	if !hasPrimary {
		infos, err := d.tableInfo(ctx, table)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(infos, func(i, j int) bool { return infos[i].pk < infos[j].pk })
		for _, ti := range infos {
			if ti.pk > 0 {
				b.Add(primaryIndexName, ti.name, database.IndexPrimary)
			}
		}
	}

	indexes := b.Indexes()
	sort.SliceStable(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	return indexes, nil
}

func (d *Driver) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM pragma_index_info(?) ORDER BY seqno`, index)
	if err != nil {
		return nil, mapError(err, "failed to fetch index columns")
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan index column")
		}
		// expression members have no name
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating index columns")
	}
	return cols, nil
}

// ListTableForeignKeys names each constraint fk_<table>_<id>, as SQLite
// keeps no constraint names. A missing target column means the parent's
// primary key.
func (d *Driver) ListTableForeignKeys(ctx context.Context, table string) ([]database.ForeignKey, error) {
	type row struct {
		id, seq            int
		refTable, from     string
		to                 sql.NullString
		onUpdate, onDelete string
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, seq, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq`, table)
	if err != nil {
		return nil, mapError(err, "failed to fetch foreign keys")
	}
	var list []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.seq, &r.refTable, &r.from, &r.to, &r.onUpdate, &r.onDelete); err != nil {
			_ = rows.Close()
			return nil, mapError(err, "failed to scan foreign key")
		}
		list = append(list, r)
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return nil, mapError(err, "error iterating foreign keys")
	}

	var b database.ForeignKeyBuilder
	for _, r := range list {
		to := r.to.String
		if !r.to.Valid || to == "" {
			to, err = d.primaryKeyColumn(ctx, r.refTable, r.seq+1)
			if err != nil {
				return nil, err
			}
		}
		b.Add(fmt.Sprintf("fk_%s_%d", table, r.id), r.from, r.refTable, to, r.onDelete, r.onUpdate)
	}

	fks := b.ForeignKeys()
	sort.SliceStable(fks, func(i, j int) bool { return fks[i].Name < fks[j].Name })
	return fks, nil
}

func (d *Driver) primaryKeyColumn(ctx context.Context, table string, pos int) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, `SELECT name FROM pragma_table_info(?) WHERE pk = ?`, table, pos).Scan(&name)
	if err != nil {
		return "", mapError(err, fmt.Sprintf("could not resolve primary key column %d of %s", pos, table))
	}
	return name, nil
}
