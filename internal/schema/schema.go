// Package schema holds the in-memory table model and the normalized column
// descriptors built from it. Nothing here performs I/O.
package schema

import (
	"sort"

	"github.com/koustreak/schemaroute/internal/database"
)

// Table is an introspected table. Build one with NewTable; a Table is
// never modified afterwards and is rebuilt on every introspection call.
type Table struct {
	Name        string                `json:"name" yaml:"name"`
	Connection  string                `json:"connection" yaml:"connection"`
	Columns     []database.Column     `json:"columns" yaml:"columns"`
	Indexes     []database.Index      `json:"indexes" yaml:"indexes"`
	ForeignKeys []database.ForeignKey `json:"foreign_keys" yaml:"foreign_keys"`

	covering map[string][]database.Index
}

// NewTable assembles a Table. Columns keep the given order; nil index and
// foreign key slices are normalized to empty.
func NewTable(connection, name string, columns []database.Column, indexes []database.Index, fks []database.ForeignKey) *Table {
	if indexes == nil {
		indexes = []database.Index{}
	}
	if fks == nil {
		fks = []database.ForeignKey{}
	}

	t := &Table{
		Name:        name,
		Connection:  connection,
		Columns:     columns,
		Indexes:     indexes,
		ForeignKeys: fks,
		covering:    make(map[string][]database.Index, len(columns)),
	}

	for _, idx := range indexes {
		for _, col := range idx.Columns {
			t.covering[col] = append(t.covering[col], idx)
		}
	}
	for col, list := range t.covering {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Kind.Priority() > list[j].Kind.Priority()
		})
		t.covering[col] = list
	}
	return t
}

// QualifiedName returns the connection-qualified identifier of the table.
func (t *Table) QualifiedName() string {
	return Qualify(t.Connection, t.Name)
}

// CoveringIndexes returns the indexes that include column, primary first,
// then unique, then plain. Equal kinds keep their enumeration order.
func (t *Table) CoveringIndexes(column string) []database.Index {
	list := t.covering[column]
	out := make([]database.Index, len(list))
	copy(out, list)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (database.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return database.Column{}, false
}

// ColumnNames returns column names in native order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the columns of the primary index, or nil.
func (t *Table) PrimaryKey() []string {
	for _, idx := range t.Indexes {
		if idx.Kind == database.IndexPrimary {
			return idx.Columns
		}
	}
	return nil
}
