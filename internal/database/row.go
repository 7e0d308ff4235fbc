package database

// Rows is the iteration surface shared by pgx.Rows and *sql.Rows.
// Closing stays with the caller because the two libraries disagree on
// Close's signature.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// ScanStrings reads a single text column from every row.
// The returned slice is always non-nil (empty slice on zero rows).
func ScanStrings(rows Rows) ([]string, error) {
	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dedupe drops repeated names, keeping first occurrences in order.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// IndexBuilder accumulates (index, column) rows, preserving the order in
// which indexes and their columns are first seen.
type IndexBuilder struct {
	order []string
	byKey map[string]*Index
}

// Add records that column belongs to the named index.
func (b *IndexBuilder) Add(name, column string, kind IndexKind) {
	if b.byKey == nil {
		b.byKey = make(map[string]*Index)
	}
	if idx, ok := b.byKey[name]; ok {
		idx.Columns = append(idx.Columns, column)
		return
	}
	b.byKey[name] = &Index{Name: name, Columns: []string{column}, Kind: kind}
	b.order = append(b.order, name)
}

// Indexes returns the collected indexes. Always non-nil.
func (b *IndexBuilder) Indexes() []Index {
	out := make([]Index, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.byKey[name])
	}
	return out
}

// ForeignKeyBuilder groups per-column foreign key rows by constraint name.
type ForeignKeyBuilder struct {
	order []string
	byKey map[string]*ForeignKey
}

// Add records one (column -> refColumn) pair of the named constraint.
func (b *ForeignKeyBuilder) Add(name, column, refTable, refColumn, onDelete, onUpdate string) {
	if b.byKey == nil {
		b.byKey = make(map[string]*ForeignKey)
	}
	if fk, ok := b.byKey[name]; ok {
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
		return
	}
	b.byKey[name] = &ForeignKey{
		Name:       name,
		Columns:    []string{column},
		RefTable:   refTable,
		RefColumns: []string{refColumn},
		OnDelete:   onDelete,
		OnUpdate:   onUpdate,
	}
	b.order = append(b.order, name)
}

// ForeignKeys returns the collected constraints. Always non-nil.
func (b *ForeignKeyBuilder) ForeignKeys() []ForeignKey {
	out := make([]ForeignKey, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.byKey[name])
	}
	return out
}
