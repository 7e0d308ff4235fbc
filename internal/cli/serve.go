package cli

import (
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the introspection API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(cmd, func(a *app, mgr *introspect.Manager) error {
				return server.New(mgr, a.cfg.Server, a.log).Serve(cmd.Context())
			})
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}
