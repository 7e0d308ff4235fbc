package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/schema"
	"github.com/spf13/cobra"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of every connection",
		Example: `  schemaroute tables
  schemaroute tables -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				byConn, err := mgr.ListTableNames(cmd.Context())
				if err != nil {
					return err
				}

				var rows []table.Row
				for _, conn := range mgr.Registry().Connections() {
					for _, name := range byConn[conn] {
						rows = append(rows, table.Row{conn, name, schema.Qualify(conn, name)})
					}
				}
				return a.out.Render(byConn, table.Row{"Connection", "Table", "Qualified"}, rows)
			})
		},
	}
}

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Describe the columns of a table",
		Example: `  schemaroute describe users
  schemaroute describe reporting__users -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				t, err := mgr.GetTable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				descs := schema.Describe(t)

				rows := make([]table.Row, len(descs))
				for i, d := range descs {
					rows[i] = table.Row{d.Field, d.Type, d.DBType, yesNo(d.Nullable), d.Key, deref(d.Default), extra(d), indexNames(d.Indexes)}
				}
				if a.out.format == FormatTable {
					fmt.Fprintf(a.out.w, "%s (%s)\n", t.Name, t.Connection)
				}
				return a.out.Render(descs, table.Row{"Field", "Type", "DB Type", "Null", "Key", "Default", "Extra", "Indexes"}, rows)
			})
		},
	}
}

func newColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "List the column names of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				names, err := mgr.ListTableColumnNames(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				rows := make([]table.Row, len(names))
				for i, n := range names {
					rows[i] = table.Row{n}
				}
				return a.out.Render(names, table.Row{"Column"}, rows)
			})
		},
	}
}

func newColumnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "column <table> <column>",
		Short: "Show one column of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				c, err := mgr.GetColumn(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				rows := []table.Row{
					{"name", c.Name},
					{"type", c.Type},
					{"db_type", c.DBType},
					{"nullable", yesNo(c.Nullable)},
					{"default", deref(c.Default)},
					{"autoincrement", yesNo(c.AutoIncrement)},
					{"comment", c.Comment},
				}
				return a.out.Render(c, table.Row{"Property", "Value"}, rows)
			})
		},
	}
}

func newExistsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <table>...",
		Short: "Report whether every named table exists on a single connection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				ok, err := mgr.TableExists(cmd.Context(), args...)
				if err != nil {
					return err
				}
				return a.out.Render(map[string]bool{"exists": ok},
					table.Row{"Tables", "Exists"}, []table.Row{{strings.Join(args, ", "), ok}})
			})
		},
	}
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <table>",
		Short: "Show which connection serves a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				conn, name, err := mgr.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.out.Render(map[string]string{"connection": conn, "table": name},
					table.Row{"Connection", "Table"}, []table.Row{{conn, name}})
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func extra(d schema.ColumnDescriptor) string {
	var parts []string
	if d.AutoIncrement {
		parts = append(parts, "auto_increment")
	}
	if d.Unsigned {
		parts = append(parts, "unsigned")
	}
	return strings.Join(parts, " ")
}

func indexNames(idx []schema.IndexDescriptor) string {
	names := make([]string, len(idx))
	for i, d := range idx {
		names[i] = d.Name
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
