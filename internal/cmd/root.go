package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for todomark
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "todomark",
		Short: "Collect TODO-style markers into a single block",
		Long: `todomark scans the files below a directory for embedded markers such as
TODO, FIXME or HACK comments and renders them as one block, grouped by marker
type, with a @file:// link back to every line.

The block can be printed, previewed as HTML, or embedded into a TODO document
that is kept up to date while you work.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.rootDir, "root", ".", "Directory to scan")
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: <root>/.todomark.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log progress to stderr")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to a rotating log file")

	// Add subcommands
	cmd.AddCommand(newRenderCommand(a))
	cmd.AddCommand(newEmbedCommand(a))
	cmd.AddCommand(newStatsCommand(a))
	cmd.AddCommand(newWatchCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
