package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/schemaroute/internal/errs"
)

// Dialect controls identifier quoting, placeholders and native type names.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double quotes".
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backticks`.
	DialectMySQL

	// DialectSQLite uses ? placeholders and "double quotes".
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// Placeholder returns the bind parameter for position idx (1-based).
func (d Dialect) Placeholder(idx int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

// Placeholders returns n comma-separated bind parameters, for IN lists.
func (d Dialect) Placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// Quote wraps a SQL identifier so reserved words and mixed case survive.
func (d Dialect) Quote(name string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// NativeType renders the dialect's column type for a semantic type.
func (d Dialect) NativeType(c ColumnSpec) (string, error) {
	length := c.Length
	if length == 0 {
		length = 255
	}
	precision, scale := c.Precision, c.Scale
	if precision == 0 {
		precision = 10
	}

	switch strings.ToLower(c.Type) {
	case "integer":
		if d == DialectMySQL {
			return "INT", nil
		}
		return "INTEGER", nil
	case "bigint":
		if d == DialectSQLite {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case "smallint":
		if d == DialectSQLite {
			return "INTEGER", nil
		}
		return "SMALLINT", nil
	case "string":
		return fmt.Sprintf("VARCHAR(%d)", length), nil
	case "text":
		if d == DialectMySQL {
			return "LONGTEXT", nil
		}
		return "TEXT", nil
	case "boolean":
		if d == DialectMySQL {
			return "TINYINT(1)", nil
		}
		return "BOOLEAN", nil
	case "decimal":
		if d == DialectPostgres {
			return fmt.Sprintf("NUMERIC(%d, %d)", precision, scale), nil
		}
		return fmt.Sprintf("DECIMAL(%d, %d)", precision, scale), nil
	case "float":
		switch d {
		case DialectPostgres:
			return "DOUBLE PRECISION", nil
		case DialectMySQL:
			return "DOUBLE", nil
		}
		return "REAL", nil
	case "date":
		return "DATE", nil
	case "datetime":
		if d == DialectPostgres {
			return "TIMESTAMP(0) WITHOUT TIME ZONE", nil
		}
		return "DATETIME", nil
	case "datetimetz":
		if d == DialectPostgres {
			return "TIMESTAMP(0) WITH TIME ZONE", nil
		}
		return "DATETIME", nil
	case "time":
		return "TIME", nil
	case "json":
		switch d {
		case DialectPostgres:
			return "JSONB", nil
		case DialectMySQL:
			return "JSON", nil
		}
		return "TEXT", nil
	case "binary":
		switch d {
		case DialectPostgres:
			return "BYTEA", nil
		case DialectMySQL:
			return fmt.Sprintf("VARBINARY(%d)", length), nil
		}
		return "BLOB", nil
	case "blob":
		switch d {
		case DialectPostgres:
			return "BYTEA", nil
		case DialectMySQL:
			return "LONGBLOB", nil
		}
		return "BLOB", nil
	case "guid":
		if d == DialectPostgres {
			return "UUID", nil
		}
		return "CHAR(36)", nil
	}
	return "", errs.Newf(errs.ErrKindInvalidInput, "unsupported column type %q for column %q", c.Type, c.Name)
}

// CreateTableBuilder renders the statements that create a table and its
// secondary indexes.
//
// Usage:
//
//	stmts, err := database.CreateTable(spec, database.DialectMySQL).Build()
type CreateTableBuilder struct {
	spec    TableSpec
	dialect Dialect
}

// CreateTable starts a builder for spec in dialect d.
func CreateTable(spec TableSpec, d Dialect) *CreateTableBuilder {
	return &CreateTableBuilder{spec: spec, dialect: d}
}

// Build validates the spec and returns CREATE TABLE followed by one
// CREATE INDEX per non-primary index. Default values are SQL expressions
// and are emitted verbatim.
func (b *CreateTableBuilder) Build() ([]string, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	q := b.dialect.Quote
	pk := b.primaryKey()

	// SQLite only honours AUTOINCREMENT on an inline INTEGER PRIMARY KEY.
	inlinePK := ""
	if b.dialect == DialectSQLite && len(pk) == 1 {
		for _, c := range b.spec.Columns {
			if c.Name == pk[0] && c.AutoIncrement {
				inlinePK = c.Name
			}
		}
	}

	defs := make([]string, 0, len(b.spec.Columns)+1+len(b.spec.ForeignKeys))
	for _, c := range b.spec.Columns {
		def, err := b.columnDef(c, c.Name == inlinePK)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if len(pk) > 0 && inlinePK == "" {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", b.quoteList(pk)))
	}

	for _, fk := range b.spec.ForeignKeys {
		var sb strings.Builder
		if fk.Name != "" {
			sb.WriteString("CONSTRAINT ")
			sb.WriteString(q(fk.Name))
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s (%s)",
			b.quoteList(fk.Columns), q(fk.RefTable), b.quoteList(fk.RefColumns))
		if fk.OnDelete != "" {
			sb.WriteString(" ON DELETE ")
			sb.WriteString(strings.ToUpper(fk.OnDelete))
		}
		if fk.OnUpdate != "" {
			sb.WriteString(" ON UPDATE ")
			sb.WriteString(strings.ToUpper(fk.OnUpdate))
		}
		defs = append(defs, sb.String())
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", q(b.spec.Name), strings.Join(defs, ",\n  ")),
	}

	for _, idx := range b.spec.Indexes {
		if idx.Kind == IndexPrimary {
			continue
		}
		name := idx.Name
		if name == "" {
			name = fmt.Sprintf("idx_%s_%s", b.spec.Name, strings.Join(idx.Columns, "_"))
		}
		unique := ""
		if idx.Kind == IndexUnique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
			unique, q(name), q(b.spec.Name), b.quoteList(idx.Columns)))
	}

	return stmts, nil
}

func (b *CreateTableBuilder) columnDef(c ColumnSpec, inlinePK bool) (string, error) {
	typ, err := b.dialect.NativeType(c)
	if err != nil {
		return "", err
	}

	if c.AutoIncrement && b.dialect == DialectPostgres {
		switch strings.ToLower(c.Type) {
		case "bigint":
			typ = "BIGSERIAL"
		case "smallint":
			typ = "SMALLSERIAL"
		default:
			typ = "SERIAL"
		}
	}

	var sb strings.Builder
	sb.WriteString(b.dialect.Quote(c.Name))
	sb.WriteString(" ")
	if inlinePK {
		sb.WriteString("INTEGER PRIMARY KEY AUTOINCREMENT")
		return sb.String(), nil
	}
	sb.WriteString(typ)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(*c.Default)
	}
	if c.AutoIncrement && b.dialect == DialectMySQL {
		sb.WriteString(" AUTO_INCREMENT")
	}
	return sb.String(), nil
}

// primaryKey prefers the explicit PrimaryKey list and falls back to the
// first index of primary kind.
func (b *CreateTableBuilder) primaryKey() []string {
	if len(b.spec.PrimaryKey) > 0 {
		return b.spec.PrimaryKey
	}
	for _, idx := range b.spec.Indexes {
		if idx.Kind == IndexPrimary {
			return idx.Columns
		}
	}
	return nil
}

func (b *CreateTableBuilder) validate() error {
	if strings.TrimSpace(b.spec.Name) == "" {
		return errs.New(errs.ErrKindInvalidInput, "table name is required")
	}
	if len(b.spec.Columns) == 0 {
		return errs.Newf(errs.ErrKindInvalidInput, "table %q has no columns", b.spec.Name)
	}

	known := make(map[string]bool, len(b.spec.Columns))
	for _, c := range b.spec.Columns {
		if c.Name == "" {
			return errs.Newf(errs.ErrKindInvalidInput, "table %q has a column without a name", b.spec.Name)
		}
		if known[c.Name] {
			return errs.Newf(errs.ErrKindInvalidInput, "duplicate column %q", c.Name)
		}
		known[c.Name] = true
	}

	check := func(what string, cols []string) error {
		if len(cols) == 0 {
			return errs.Newf(errs.ErrKindInvalidInput, "%s lists no columns", what)
		}
		for _, c := range cols {
			if !known[c] {
				return errs.Newf(errs.ErrKindInvalidInput, "%s references unknown column %q", what, c)
			}
		}
		return nil
	}

	if len(b.spec.PrimaryKey) > 0 {
		if err := check("primary key", b.spec.PrimaryKey); err != nil {
			return err
		}
	}
	for _, idx := range b.spec.Indexes {
		if err := check(fmt.Sprintf("index %q", idx.Name), idx.Columns); err != nil {
			return err
		}
	}
	for _, fk := range b.spec.ForeignKeys {
		if err := check(fmt.Sprintf("foreign key %q", fk.Name), fk.Columns); err != nil {
			return err
		}
		if fk.RefTable == "" || len(fk.RefColumns) != len(fk.Columns) {
			return errs.Newf(errs.ErrKindInvalidInput,
				"foreign key %q must reference a table with as many columns as it covers", fk.Name)
		}
	}
	return nil
}

func (b *CreateTableBuilder) quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = b.dialect.Quote(c)
	}
	return strings.Join(quoted, ", ")
}
