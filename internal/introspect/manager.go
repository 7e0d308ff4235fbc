package introspect

import (
	"context"
	"strings"

	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/koustreak/schemaroute/internal/registry"
	"github.com/koustreak/schemaroute/internal/schema"
)

// Manager is the caller-facing introspection API. It holds no state
// beyond the registry: every call re-reads the live backends.
type Manager struct {
	reg      *registry.Registry
	resolver *Resolver
	log      *logger.Logger
}

// NewManager returns a Manager over reg. log may be nil.
func NewManager(reg *registry.Registry, log *logger.Logger) *Manager {
	log = logger.OrNop(log)
	return &Manager{
		reg:      reg,
		resolver: NewResolver(reg, log),
		log:      log,
	}
}

// Registry exposes the underlying connection registry.
func (m *Manager) Registry() *registry.Registry {
	return m.reg
}

// Resolve reports which connection owns identifier and its bare name.
func (m *Manager) Resolve(ctx context.Context, identifier string) (connection, table string, err error) {
	return m.resolver.Resolve(ctx, identifier)
}

// BuildTable resolves identifier and fetches columns, foreign keys (only
// when the backend supports them) and indexes. Any failed fetch fails
// the whole call.
func (m *Manager) BuildTable(ctx context.Context, identifier string) (*schema.Table, error) {
	connection, table, err := m.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return m.buildTable(ctx, connection, table)
}

func (m *Manager) buildTable(ctx context.Context, connection, table string) (*schema.Table, error) {
	adapter, err := m.reg.Adapter(connection)
	if err != nil {
		return nil, err
	}

	columns, err := adapter.ListTableColumns(ctx, table)
	if err != nil {
		return nil, m.fail("failed to fetch columns", connection, table, err)
	}

	fks := []database.ForeignKey{}
	if adapter.SupportsForeignKeys() {
		fks, err = adapter.ListTableForeignKeys(ctx, table)
		if err != nil {
			return nil, m.fail("failed to fetch foreign keys", connection, table, err)
		}
	}

	indexes, err := adapter.ListTableIndexes(ctx, table)
	if err != nil {
		return nil, m.fail("failed to fetch indexes", connection, table, err)
	}

	return schema.NewTable(connection, table, columns, indexes, fks), nil
}

// DescribeTable returns one descriptor per column of the resolved table,
// in native column order.
func (m *Manager) DescribeTable(ctx context.Context, identifier string) ([]schema.ColumnDescriptor, error) {
	t, err := m.BuildTable(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return schema.Describe(t), nil
}

// ListTableColumnNames returns the resolved table's column names without
// fetching index or foreign key metadata.
func (m *Manager) ListTableColumnNames(ctx context.Context, identifier string) ([]string, error) {
	connection, table, err := m.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	adapter, err := m.reg.Adapter(connection)
	if err != nil {
		return nil, err
	}

	columns, err := adapter.ListTableColumns(ctx, table)
	if err != nil {
		return nil, m.fail("failed to fetch columns", connection, table, err)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names, nil
}

// ListTableNames returns the table names of every connection.
func (m *Manager) ListTableNames(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(m.reg.Connections()))
	for _, connection := range m.reg.Connections() {
		adapter, err := m.reg.Adapter(connection)
		if err != nil {
			return nil, err
		}
		names, err := adapter.ListTableNames(ctx)
		if err != nil {
			return nil, errs.Introspection("failed to list tables on "+connection, err)
		}
		out[connection] = names
	}
	return out, nil
}

// ListTables builds every table on every connection, keyed by its
// qualified name ("conn__table").
func (m *Manager) ListTables(ctx context.Context) (map[string]*schema.Table, error) {
	names, err := m.ListTableNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*schema.Table)
	for _, connection := range m.reg.Connections() {
		for _, table := range names[connection] {
			t, err := m.buildTable(ctx, connection, table)
			if err != nil {
				return nil, err
			}
			out[t.QualifiedName()] = t
		}
	}
	return out, nil
}

// TableExists reports whether any connection has all of the named tables.
// Connection prefixes are stripped; this is an existence check only and
// does not route.
func (m *Manager) TableExists(ctx context.Context, identifiers ...string) (bool, error) {
	bare := make([]string, len(identifiers))
	for i, id := range identifiers {
		bare[i] = schema.BareName(strings.TrimSpace(id))
	}

	for _, connection := range m.reg.Connections() {
		adapter, err := m.reg.Adapter(connection)
		if err != nil {
			return false, err
		}
		ok, err := adapter.TablesExist(ctx, bare...)
		if err != nil {
			return false, errs.Introspection("existence check on "+connection+" failed", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// GetTable is BuildTable for callers that want an explicit
// ErrKindTableNotFound when no connection has the table.
func (m *Manager) GetTable(ctx context.Context, identifier string) (*schema.Table, error) {
	identifier = strings.TrimSpace(identifier)

	ok, err := m.TableExists(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.TableNotFound(identifier)
	}
	return m.BuildTable(ctx, identifier)
}

// GetColumn returns one column of the resolved table.
func (m *Manager) GetColumn(ctx context.Context, identifier, column string) (database.Column, error) {
	t, err := m.GetTable(ctx, identifier)
	if err != nil {
		return database.Column{}, err
	}
	c, ok := t.Column(column)
	if !ok {
		return database.Column{}, errs.ColumnNotFound(t.Name, column)
	}
	return c, nil
}

// CreateTable forwards spec to the default connection. It is not retried.
func (m *Manager) CreateTable(ctx context.Context, spec database.TableSpec) error {
	connection, adapter, err := m.reg.Default()
	if err != nil {
		return err
	}

	if err := adapter.CreateTable(ctx, spec); err != nil {
		m.log.ErrorWith("create table failed", err, map[string]any{"table": spec.Name, "connection": connection})
		return err
	}

	m.log.With().Str("table", spec.Name).Str("connection", connection).Logger().Info("table created")
	return nil
}

func (m *Manager) fail(msg, connection, table string, err error) error {
	m.log.ErrorWith(msg, err, map[string]any{"table": table, "connection": connection})
	return errs.Introspection(msg+" for "+connection+"."+table, err)
}
