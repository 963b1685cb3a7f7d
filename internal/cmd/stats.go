package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/patrickward/todomark"
)

func newStatsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count markers per type",
		Long: `Scan the files below the root and print, for every marker type, how many
markers were found and in how many files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("color")
			out := cmd.OutOrStdout()

			useColor, err := colorEnabled(mode, out)
			if err != nil {
				return err
			}

			index, err := a.index(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			displayStats(out, todomark.Summarize(index), useColor)
			return nil
		},
	}

	cmd.Flags().String("color", "auto", "Colorize output: auto, always or never")

	return cmd
}

// colorEnabled decides whether output to w is colored. Under "auto" only terminals are.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
}

// displayStats writes one line per marker type and a total line.
func displayStats(w io.Writer, summaries []todomark.TypeSummary, useColor bool) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)
	for _, c := range []*color.Color{cyan, yellow, bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "No markers found")
		return
	}

	width := len("total")
	for _, s := range summaries {
		width = max(width, len(s.Type))
	}

	total := 0
	for _, s := range summaries {
		total += s.Occurrences
		_, _ = fmt.Fprintf(w, "%s %s in %s\n",
			cyan.Sprintf("%-*s", width, s.Type),
			yellow.Sprintf("%4d", s.Occurrences),
			plural(s.Files, "file"))
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprintf("%-*s", width, "total"), bold.Sprintf("%4d", total))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
