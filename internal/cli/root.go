// Package cli is the console front end.
//
// Running `projects` with no subcommand starts the interactive menu. The
// subcommands cover the same operations non-interactively, plus `ping`
// and `migrate` for setting up the database.
package cli

import (
	"context"
	"io"

	"github.com/deppfellow/projects/internal/app"
	"github.com/deppfellow/projects/internal/cli/output"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// Bootstrapper builds the App. Tests substitute their own.
type Bootstrapper func() (*app.App, error)

// Options are the global flags.
type Options struct {
	JSON    bool
	Verbose bool
}

// Command holds what every subcommand shares once PersistentPreRunE has run.
type Command struct {
	bootstrap Bootstrapper
	opts      Options

	app      *app.App
	pipeline *Pipeline
	out      *output.Printer
	in       io.Reader
}

// NewRootCommand builds the command tree.
func NewRootCommand(bootstrap Bootstrapper) *cobra.Command {
	return (&Command{bootstrap: bootstrap}).root()
}

// Execute runs the command tree with ctx and flushes telemetry afterwards,
// whether or not the command failed.
func Execute(ctx context.Context, bootstrap Bootstrapper) error {
	c := &Command{bootstrap: bootstrap}
	defer c.shutdown()

	return c.root().ExecuteContext(ctx)
}

func (c *Command) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "projects",
		Short: "Track DIY projects, their materials, steps and categories",
		Long: `projects keeps a list of projects in PostgreSQL.

Without a subcommand it starts an interactive menu:
  1) Add a project
  2) List projects
  3) Select a project
  4) Update project details
  5) Delete a project

Connection settings come from PROJECTS_* environment variables or a .env file.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menu := NewMenu(c.app.Services.Projects, c.pipeline, c.in, c.out)
			return menu.Run(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVar(&c.opts.JSON, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVarP(&c.opts.Verbose, "verbose", "v", false, "Verbose output and debug logging")

	root.AddCommand(
		c.newListCommand(),
		c.newShowCommand(),
		c.newDeleteCommand(),
		c.newCategoriesCommand(),
		c.newPingCommand(),
		c.newMigrateCommand(),
	)

	return root
}

func (c *Command) setup(cmd *cobra.Command, _ []string) error {
	application, err := c.bootstrap()
	if err != nil {
		return err
	}

	if c.opts.Verbose {
		// The provider shares this pointer, so statement tracing follows.
		*application.Logger = application.Logger.Level(zerolog.DebugLevel)
	}

	c.app = application
	c.pipeline = NewPipeline(application.Logger, application.LoggerService.GetApplication())
	c.out = output.New(cmd.OutOrStdout(), c.opts.Verbose)
	c.in = cmd.InOrStdin()
	return nil
}

func (c *Command) shutdown() {
	if c.app != nil {
		c.app.Shutdown()
	}
}
