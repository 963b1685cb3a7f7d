package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/patrickward/todomark/internal/config"
	"github.com/patrickward/todomark/internal/rendering"
)

// Output formats of the render command
const (
	formatText = "text"
	formatHTML = "html"
	formatYAML = "yaml"
)

func newRenderCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the marker block",
		Long: `Scan the files below the root and print the marker block.

Formats:
  text  the block as it is embedded into documents (default)
  html  an HTML preview with file:// links
  yaml  the marker index: type -> file -> occurrences`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scanConfig(cmd, a.cfg)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return runRender(cmd, a, cfg, format)
		},
	}

	cmd.Flags().StringP("format", "f", formatText, "Output format: text, html or yaml")
	cmd.Flags().Bool("group-by-file", false, "Emit a file line before each file's markers")
	cmd.Flags().String("indent", "", "One level of indentation (default from config)")
	cmd.Flags().String("bullet", "", "Symbol in front of every marker line (default from config)")
	cmd.Flags().String("regex", "", "Marker pattern, the first capture group names the marker type")
	cmd.Flags().StringArray("include", nil, "Glob of files to scan (repeatable)")
	cmd.Flags().StringArray("exclude", nil, "Glob of files and directories to skip (repeatable)")
	cmd.Flags().Int("limit", 0, "Maximum number of files to scan (0 = unlimited)")

	return cmd
}

func runRender(cmd *cobra.Command, a *app, cfg *config.Config, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case formatText, formatHTML:
		block, err := a.block(cmd.Context(), cfg, cfg.RenderConfig())
		if err != nil {
			return err
		}
		if format == formatText {
			_, err = fmt.Fprint(out, block)
			return err
		}

		preview, err := rendering.NewPreviewRenderer().Render(block)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, preview)
		return err

	case formatYAML:
		index, err := a.index(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(index)
		if err != nil {
			return fmt.Errorf("failed to encode index: %w", err)
		}
		_, err = out.Write(data)
		return err

	default:
		return fmt.Errorf("unknown format %q (want text, html or yaml)", format)
	}
}

// scanConfig returns a copy of base with the scan and layout flags that were set applied.
func scanConfig(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	flags := cmd.Flags()

	if flags.Changed("group-by-file") {
		cfg.Embedded.GroupByFile, _ = flags.GetBool("group-by-file")
	}
	if flags.Changed("indent") {
		cfg.Indentation, _ = flags.GetString("indent")
	}
	if flags.Changed("bullet") {
		cfg.Symbols.Box, _ = flags.GetString("bullet")
	}
	if flags.Changed("regex") {
		cfg.Embedded.Regex, _ = flags.GetString("regex")
	}
	if flags.Changed("include") {
		cfg.Embedded.Include, _ = flags.GetStringArray("include")
	}
	if flags.Changed("exclude") {
		cfg.Embedded.Exclude, _ = flags.GetStringArray("exclude")
	}
	if flags.Changed("limit") {
		cfg.Embedded.Limit, _ = flags.GetInt("limit")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
