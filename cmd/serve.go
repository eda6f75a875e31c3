package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathlingo/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the practice API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := settings.cfg
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := api.New(rt.engine, rt.log,
			api.WithGinMode(cfg.Server.GinMode),
			api.WithCORS(cfg.Server.CORSOrigins),
		)
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
