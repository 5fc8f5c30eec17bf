// Package commands implements the CLI commands for thingsgate.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/thingsgate/internal/app"
	"go.trai.ch/thingsgate/internal/build"
	"go.trai.ch/thingsgate/internal/core/domain"
)

// CLI represents the command line interface for thingsgate.
type CLI struct {
	app        Application
	rootCmd    *cobra.Command
	configPath string
	logFormat  string
}

// Application represents the application logic interface.
type Application interface {
	ConfigureLogging(format string) error
	LoadConfig(path string) (*domain.Config, error)
	Serve(ctx context.Context, cfg *domain.Config, opts app.ServeOptions) error
	Call(ctx context.Context, cfg domain.ClientConfig, opts app.CallOptions, out io.Writer) error
	Session(ctx context.Context, cfg domain.ClientConfig, in io.Reader, out io.Writer) error
	Tools(out io.Writer) error
	CacheStats(ctx context.Context, cfg domain.ClientConfig, out io.Writer) error
	ClearCache(ctx context.Context, cfg domain.ClientConfig, out io.Writer) error
	ConfigureCache(ctx context.Context, cfg domain.ClientConfig, update domain.CacheUpdate, out io.Writer) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "thingsgate",
		Short:         "A caching gateway for the SmartThings API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to "+domain.ConfigFileName+" (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&c.logFormat, "log-format", "auto", "Log format: auto, pretty or json")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return c.app.ConfigureLogging(c.logFormat)
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newCallCmd())
	rootCmd.AddCommand(c.newSessionCmd())
	rootCmd.AddCommand(c.newToolsCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// SetInput sets the input stream read by session and the stdio server. Used for testing.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}
