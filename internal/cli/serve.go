package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harmonyhq/linework/internal/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scene HTTP API",
		Long: `Run the scene HTTP API.

The server stores scenes, serves them back, and normalizes individual layers
on request. Storage and cache backends are configured via a TOML file; by
default scenes live in memory and merge results are not cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.DefaultConfig()
			if configPath != "" {
				loaded, err := server.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Addr = addr
			}

			srv, err := server.NewFromConfig(cmd.Context(), cfg, c.Logger)
			if err != nil {
				return fmt.Errorf("initialize server: %w", err)
			}
			defer func() {
				_ = srv.Close(context.Background())
			}()

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	return cmd
}
