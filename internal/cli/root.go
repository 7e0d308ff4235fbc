// Package cli provides the schemaroute command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/koustreak/schemaroute/internal/config"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/koustreak/schemaroute/internal/registry"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// app is the per-invocation state shared by every command.
type app struct {
	cfg *config.Config
	log *logger.Logger
	out *Renderer
}

type appKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile, outputFormat string

	root := &cobra.Command{
		Use:   "schemaroute",
		Short: "Inspect relational schemas across several database connections",
		Long: `schemaroute resolves table names across a set of named database
connections and describes their columns, indexes and foreign keys.

Tables are addressed either by bare name ("users"), which is looked up on
every connection with the last registered match winning, or qualified by
connection ("reporting__users").`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg.Log.Output = cmd.ErrOrStderr()

			out, err := NewRenderer(cmd.OutOrStdout(), Format(outputFormat))
			if err != nil {
				return err
			}

			a := &app{cfg: cfg, log: logger.New(&cfg.Log), out: out}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.FileName+")")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("log-format", "", "log format (json|console)")
	pf.StringVarP(&outputFormat, "output", "o", string(FormatTable), "output format (table|json|yaml)")

	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newTablesCommand(),
		newDescribeCommand(),
		newColumnsCommand(),
		newColumnCommand(),
		newExistsCommand(),
		newResolveCommand(),
		newCreateCommand(),
		newSnapshotCommand(),
		newServeCommand(),
	)
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: &config.Config{}, log: logger.Nop(), out: &Renderer{w: cmd.OutOrStdout(), format: FormatTable}}
}

// withManager opens every configured connection, runs fn and closes them.
func withManager(cmd *cobra.Command, fn func(a *app, mgr *introspect.Manager) error) error {
	a := appFrom(cmd)
	ctx := cmd.Context()

	reg, err := registry.Open(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer reg.Close()

	if len(reg.Connections()) == 0 {
		return errs.New(errs.ErrKindInvalidInput, "no connections configured")
	}
	return fn(a, introspect.NewManager(reg, a.log))
}
