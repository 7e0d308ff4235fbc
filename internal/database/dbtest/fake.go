// Package dbtest provides an in-memory database.Adapter for tests of the
// layers above the backends.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
)

// Table is the metadata a Fake reports for one table.
type Table struct {
	Columns     []database.Column
	Indexes     []database.Index
	ForeignKeys []database.ForeignKey
}

// Fake is a database.Adapter over a map of tables. Calls are counted so
// tests can assert which metadata was fetched.
type Fake struct {
	mu sync.Mutex

	dialect     database.Dialect
	tables      map[string]Table
	foreignKeys bool

	// Err, when set, is returned by every introspection call.
	Err error

	calls map[string]int
}

var _ database.Adapter = (*Fake)(nil)

// New returns an empty Fake that supports foreign keys.
func New() *Fake {
	return &Fake{
		dialect:     database.DialectSQLite,
		tables:      make(map[string]Table),
		foreignKeys: true,
		calls:       make(map[string]int),
	}
}

// WithTable registers a table and returns f for chaining.
func (f *Fake) WithTable(name string, t Table) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[name] = t
	return f
}

// WithoutForeignKeys makes SupportsForeignKeys report false.
func (f *Fake) WithoutForeignKeys() *Fake {
	f.foreignKeys = false
	return f
}

// Calls returns how often the named method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.Err
}

func (f *Fake) Dialect() database.Dialect { return f.dialect }

func (f *Fake) Ping(context.Context) error { return f.record("Ping") }

func (f *Fake) Close() { _ = f.record("Close") }

func (f *Fake) SupportsForeignKeys() bool { return f.foreignKeys }

func (f *Fake) TablesExist(_ context.Context, names ...string) (bool, error) {
	if err := f.record("TablesExist"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		if _, ok := f.tables[n]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *Fake) ListTableNames(context.Context) ([]string, error) {
	if err := f.record("ListTableNames"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.tables))
	for n := range f.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) ListTableColumns(_ context.Context, table string) ([]database.Column, error) {
	t, err := f.lookup("ListTableColumns", table)
	if err != nil {
		return nil, err
	}
	return append([]database.Column(nil), t.Columns...), nil
}

func (f *Fake) ListTableIndexes(_ context.Context, table string) ([]database.Index, error) {
	t, err := f.lookup("ListTableIndexes", table)
	if err != nil {
		return nil, err
	}
	return append([]database.Index{}, t.Indexes...), nil
}

func (f *Fake) ListTableForeignKeys(_ context.Context, table string) ([]database.ForeignKey, error) {
	t, err := f.lookup("ListTableForeignKeys", table)
	if err != nil {
		return nil, err
	}
	return append([]database.ForeignKey{}, t.ForeignKeys...), nil
}

// CreateTable validates spec through the SQLite DDL builder and registers
// the table with columns derived from it.
func (f *Fake) CreateTable(_ context.Context, spec database.TableSpec) error {
	if err := f.record("CreateTable"); err != nil {
		return err
	}
	if _, err := database.CreateTable(spec, f.dialect).Build(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[spec.Name]; ok {
		return errs.Newf(errs.ErrKindInvalidInput, "table %q already exists", spec.Name)
	}

	t := Table{Indexes: append([]database.Index{}, spec.Indexes...), ForeignKeys: spec.ForeignKeys}
	for _, c := range spec.Columns {
		t.Columns = append(t.Columns, database.Column{
			Name:          c.Name,
			Type:          c.Type,
			DBType:        c.Type,
			Nullable:      c.Nullable,
			Default:       c.Default,
			AutoIncrement: c.AutoIncrement,
		})
	}
	if len(spec.PrimaryKey) > 0 {
		t.Indexes = append(t.Indexes, database.Index{Name: "PRIMARY", Columns: spec.PrimaryKey, Kind: database.IndexPrimary})
	}
	f.tables[spec.Name] = t
	return nil
}

func (f *Fake) lookup(method, table string) (Table, error) {
	if err := f.record(method); err != nil {
		return Table{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[table]
	if !ok {
		return Table{}, errs.Introspection(fmt.Sprintf("table %s not found or has no columns", table), nil)
	}
	return t, nil
}

// Col is shorthand for a non-null column of the given semantic type.
func Col(name, typ string) database.Column {
	return database.Column{Name: name, Type: typ, DBType: typ}
}

// Idx is shorthand for an index.
func Idx(name string, kind database.IndexKind, columns ...string) database.Index {
	return database.Index{Name: name, Columns: columns, Kind: kind}
}
