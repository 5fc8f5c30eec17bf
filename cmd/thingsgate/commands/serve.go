package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/thingsgate/internal/app"
	"go.trai.ch/thingsgate/internal/core/domain"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SmartThings tools behind a shared cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.app.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, &cfg.Server); err != nil {
				return err
			}

			watch, _ := cmd.Flags().GetBool("watch")
			trace, _ := cmd.Flags().GetBool("trace")
			return c.app.Serve(cmd.Context(), cfg, app.ServeOptions{
				Watch: watch,
				Trace: trace,
				In:    cmd.InOrStdin(),
				Out:   cmd.OutOrStdout(),
				Overrides: func(srv *domain.ServerConfig) error {
					return applyServeFlags(cmd, srv)
				},
			})
		},
	}

	flags := cmd.Flags()
	flags.StringP("transport", "t", string(domain.TransportHTTP), "Transport: grpc, http or stdio")
	flags.String("host", domain.DefaultListenHost, "Address to listen on")
	flags.IntP("port", "p", domain.DefaultPort, "Port to listen on")
	flags.String("auth", "", "Default SmartThings token for calls without an auth parameter")
	flags.String("base-url", domain.DefaultBaseURL, "SmartThings API base URL")
	flags.String("invalidation", string(domain.InvalidationCoarse), "Cache invalidation on writes: coarse or precise")
	flags.Int("cache-ttl", domain.DefaultCacheTTLSeconds, "Cache entry lifetime in seconds")
	flags.Int("cache-size", domain.DefaultCacheMaxSize, "Maximum number of cached responses")
	flags.BoolP("no-cache", "n", false, "Disable the response cache")
	flags.Duration("idle-timeout", 0, "Shut down after this long without requests (0 disables)")
	flags.BoolP("watch", "w", false, "Reload the cache settings when the configuration file changes")
	flags.Bool("trace", false, "Log a line for every finished trace span")
	return cmd
}

// applyServeFlags overrides the configuration with every flag set on the command line.
//
//nolint:cyclop // one branch per flag
func applyServeFlags(cmd *cobra.Command, srv *domain.ServerConfig) error {
	flags := cmd.Flags()

	if flags.Changed("transport") {
		s, _ := flags.GetString("transport")
		t, err := domain.ParseTransport(s)
		if err != nil {
			return err
		}
		srv.Transport = t
	}
	if flags.Changed("host") {
		srv.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		srv.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("auth") {
		srv.Auth, _ = flags.GetString("auth")
	}
	if flags.Changed("base-url") {
		srv.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("invalidation") {
		s, _ := flags.GetString("invalidation")
		mode, err := domain.ParseInvalidationMode(s)
		if err != nil {
			return err
		}
		srv.Cache.Invalidation = mode
	}
	if flags.Changed("cache-ttl") {
		srv.Cache.TTLSeconds, _ = flags.GetInt("cache-ttl")
	}
	if flags.Changed("cache-size") {
		srv.Cache.MaxSize, _ = flags.GetInt("cache-size")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		srv.Cache.Enabled = false
	}
	if flags.Changed("idle-timeout") {
		srv.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	}
	return srv.Cache.Validate()
}
