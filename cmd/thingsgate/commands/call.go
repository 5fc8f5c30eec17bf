package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/thingsgate/internal/app"
	"go.trai.ch/thingsgate/internal/core/domain"
)

func (c *CLI) newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a tool on a running server",
		Example: `  thingsgate call --action list_devices
  thingsgate call --action execute_command --params '{"device_id":"abc","capability":"switch","command":"on"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			action, _ := cmd.Flags().GetString("action")
			if action == "" {
				return domain.ErrMissingAction
			}
			cfg, err := c.clientConfig(cmd)
			if err != nil {
				return err
			}

			params, _ := cmd.Flags().GetString("params")
			pretty, _ := cmd.Flags().GetBool("pretty")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			return c.app.Call(cmd.Context(), cfg, app.CallOptions{
				Action:  action,
				Params:  params,
				Pretty:  pretty,
				NoCache: noCache,
			}, cmd.OutOrStdout())
		},
	}

	addClientFlags(cmd)
	cmd.Flags().StringP("action", "a", "", "Tool to call, or list_tools")
	cmd.Flags().String("params", "{}", "Tool parameters as a JSON object")
	cmd.Flags().Bool("pretty", false, "Indent the JSON result")
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the client cache")
	return cmd
}

func (c *CLI) newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run tool calls read from stdin against one cached client",
		Long: `Each input line is "<action> [json params]". The client cache is kept for the
whole session. The directives :stats, :clear and :quit inspect and control it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.clientConfig(cmd)
			if err != nil {
				return err
			}
			return c.app.Session(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	addClientFlags(cmd)
	return cmd
}

func (c *CLI) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools and how their calls are cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Tools(cmd.OutOrStdout())
		},
	}
}

func addClientFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("transport", "t", string(domain.TransportHTTP), "Transport: grpc, http or stdio")
	flags.String("host", domain.DefaultHost, "Server host")
	flags.IntP("port", "p", domain.DefaultPort, "Server port")
	flags.String("auth", "", "SmartThings token added to calls without an auth parameter")
}

// clientConfig loads the client section and overrides it with every client flag set on the command line.
func (c *CLI) clientConfig(cmd *cobra.Command) (domain.ClientConfig, error) {
	cfg, err := c.app.LoadConfig(c.configPath)
	if err != nil {
		return domain.ClientConfig{}, err
	}
	client := cfg.Client

	flags := cmd.Flags()
	if flags.Changed("transport") {
		s, _ := flags.GetString("transport")
		t, err := domain.ParseTransport(s)
		if err != nil {
			return domain.ClientConfig{}, err
		}
		client.Transport = t
	}
	if flags.Changed("host") {
		client.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		client.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("auth") {
		client.Auth, _ = flags.GetString("auth")
	}
	return client, nil
}
