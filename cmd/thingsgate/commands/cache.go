package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and control the server cache",
	}

	flags := cmd.PersistentFlags()
	flags.StringP("transport", "t", string(domain.TransportHTTP), "Transport: grpc, http or stdio")
	flags.String("host", domain.DefaultHost, "Server host")
	flags.IntP("port", "p", domain.DefaultPort, "Server port")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show server cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.clientConfig(cmd)
			if err != nil {
				return err
			}
			return c.app.CacheStats(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every entry of the server cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.clientConfig(cmd)
			if err != nil {
				return err
			}
			return c.app.ClearCache(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ttl <seconds>",
		Short: "Change the server cache entry lifetime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[0])
			if err != nil {
				return zerr.With(zerr.Wrap(domain.ErrInvalidParam, "ttl must be a whole number of seconds"), "ttl", args[0])
			}
			return c.configure(cmd, domain.CacheUpdate{TTLSeconds: &seconds})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Enable the server cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enabled := true
			return c.configure(cmd, domain.CacheUpdate{Enabled: &enabled})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Disable and empty the server cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enabled := false
			return c.configure(cmd, domain.CacheUpdate{Enabled: &enabled})
		},
	})

	return cmd
}

func (c *CLI) configure(cmd *cobra.Command, update domain.CacheUpdate) error {
	cfg, err := c.clientConfig(cmd)
	if err != nil {
		return err
	}
	return c.app.ConfigureCache(cmd.Context(), cfg, update, cmd.OutOrStdout())
}
