package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/filestore"
	"github.com/koustreak/schemaroute/internal/filestore/minio"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/snapshot"
	"github.com/spf13/cobra"
)

// openStore connects to the snapshot store; replaced in tests.
var openStore = func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	return minio.New(ctx, cfg)
}

func withStore(cmd *cobra.Command, fn func(a *app, store filestore.Store, bucket string) error) error {
	a := appFrom(cmd)
	store, err := openStore(cmd.Context(), &a.cfg.Snapshot)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(a, store, a.cfg.Snapshot.Bucket)
}

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store and compare catalogs of every connection",
		Long: `A catalog is the described schema of every table on every connection.
Catalogs are stored as JSON objects in the configured bucket under "` + snapshot.Prefix + `".`,
	}
	cmd.AddCommand(
		newSnapshotSaveCommand(),
		newSnapshotListCommand(),
		newSnapshotShowCommand(),
		newSnapshotDiffCommand(),
	)
	return cmd
}

func newSnapshotSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Describe every table and store the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				cat, err := snapshot.Build(cmd.Context(), mgr, time.Now())
				if err != nil {
					return err
				}
				return withStore(cmd, func(_ *app, store filestore.Store, bucket string) error {
					info, err := snapshot.Save(cmd.Context(), store, bucket, snapshot.Key(cat.CreatedAt), cat)
					if err != nil {
						return err
					}
					a.log.With().Str("key", info.Key).Int("tables", len(cat.Tables)).Logger().Info("catalog saved")
					return a.out.Render(info, table.Row{"Key", "Tables", "Size"},
						[]table.Row{{info.Key, len(cat.Tables), info.Size}})
				})
			})
		},
	}
}

func newSnapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored catalogs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(a *app, store filestore.Store, bucket string) error {
				objs, err := snapshot.List(cmd.Context(), store, bucket)
				if err != nil {
					return err
				}
				rows := make([]table.Row, len(objs))
				for i, o := range objs {
					rows[i] = table.Row{o.Key, o.Size, o.LastModified.Format(time.RFC3339)}
				}
				return a.out.Render(objs, table.Row{"Key", "Size", "Last Modified"}, rows)
			})
		},
	}
}

func newSnapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Print a stored catalog (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(a *app, store filestore.Store, bucket string) error {
				key, err := keyOrLatest(cmd.Context(), store, bucket, args)
				if err != nil {
					return err
				}
				cat, err := snapshot.Load(cmd.Context(), store, bucket, key)
				if err != nil {
					return err
				}

				var rows []table.Row
				for _, name := range sortedKeys(cat.Tables) {
					t := cat.Tables[name]
					rows = append(rows, table.Row{name, t.Connection, len(t.Columns), len(t.ForeignKeys)})
				}
				return a.out.Render(cat, table.Row{"Table", "Connection", "Columns", "Foreign Keys"}, rows)
			})
		},
	}
}

// DiffResult is the structured output of snapshot diff.
type DiffResult struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Same   bool   `json:"same" yaml:"same"`
	Report string `json:"report,omitempty" yaml:"report,omitempty"`
}

func newSnapshotDiffCommand() *cobra.Command {
	var color, failOnDrift bool

	cmd := &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Compare stored catalogs or a stored catalog against the live schema",
		Long: `With no arguments the latest stored catalog is compared with the live
schema. With one key that catalog is compared with the live schema. With two
keys the stored catalogs are compared with each other.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStore(cmd, func(a *app, store filestore.Store, bucket string) error {
				from, err := keyOrLatest(ctx, store, bucket, args)
				if err != nil {
					return err
				}
				old, err := snapshot.Load(ctx, store, bucket, from)
				if err != nil {
					return err
				}

				res := DiffResult{From: from, To: "live"}
				var cur *snapshot.Catalog
				if len(args) == 2 {
					res.To = args[1]
					if cur, err = snapshot.Load(ctx, store, bucket, args[1]); err != nil {
						return err
					}
				} else {
					err = withManager(cmd, func(_ *app, mgr *introspect.Manager) error {
						cur, err = snapshot.Build(ctx, mgr, time.Now())
						return err
					})
					if err != nil {
						return err
					}
				}

				if res.Same, res.Report, err = snapshot.Diff(old, cur, color); err != nil {
					return err
				}
				if res.Same {
					res.Report = ""
				}

				if a.out.format == FormatTable {
					if res.Same {
						fmt.Fprintf(a.out.w, "%s and %s match\n", res.From, res.To)
					} else {
						fmt.Fprintln(a.out.w, res.Report)
					}
				} else if err := a.out.Render(res, nil, nil); err != nil {
					return err
				}

				if failOnDrift && !res.Same {
					return errs.Newf(errs.ErrKindQueryFailed, "schema drift between %s and %s", res.From, res.To)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "colorize the report")
	cmd.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "exit with an error when the catalogs differ")
	return cmd
}

func keyOrLatest(ctx context.Context, store filestore.Store, bucket string, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return snapshot.Latest(ctx, store, bucket)
}

func sortedKeys(m map[string]snapshot.Table) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
