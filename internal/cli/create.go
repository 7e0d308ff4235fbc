package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func newCreateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a table on the default connection from a YAML definition",
		Example: `  schemaroute create -f widgets.yaml

  # widgets.yaml
  name: widgets
  columns:
    - {name: id, type: integer, autoincrement: true}
    - {name: label, type: string, length: 64}
  primary_key: [id]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := readTableSpec(file)
			if err != nil {
				return err
			}
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				if err := mgr.CreateTable(cmd.Context(), spec); err != nil {
					return err
				}
				conn, _, err := mgr.Registry().Default()
				if err != nil {
					return err
				}
				return a.out.Render(map[string]string{"connection": conn, "table": spec.Name},
					table.Row{"Connection", "Created"}, []table.Row{{conn, spec.Name}})
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML table definition")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readTableSpec(path string) (database.TableSpec, error) {
	var spec database.TableSpec
	b, err := os.ReadFile(path)
	if err != nil {
		return spec, errs.Wrap(errs.ErrKindInvalidInput, "failed to read "+path, err)
	}
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, errs.Wrap(errs.ErrKindInvalidInput, "invalid table definition in "+path, err)
	}
	return spec, nil
}
