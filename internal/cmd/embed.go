package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/patrickward/todomark/internal/document"
)

// ErrNoDocument is returned when no target document exists and creating one was not requested.
var ErrNoDocument = errors.New("no target document found")

type embedOptions struct {
	into    string
	create  bool
	prepend bool
}

func newEmbedCommand(a *app) *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Write the marker block into a document",
		Long: `Scan the files below the root and write the marker block between the start
and end markers of the target document, replacing the previous block. A
document without markers gets a new marked section.

The target is --into, or else the first existing document.candidates entry
of the configuration. Frontmatter of the document may override the layout:

  ---
  todomark:
    indentation: "    "
    group_by_file: true
    bullet: "-"
  ---`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runEmbed(cmd.Context(), a, opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&opts.into, "into", "", "Target document, relative to the root")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create the target document if it does not exist")
	cmd.Flags().BoolVar(&opts.prepend, "prepend", false, "Put a new section after the title instead of at the end")

	return cmd
}

// targetDocument returns the root-relative path of the document to embed into.
func targetDocument(a *app, opts *embedOptions) (string, error) {
	if opts.into != "" {
		rel, err := a.relPath(opts.into)
		if err != nil {
			return "", err
		}
		if !opts.create && !a.rm.FileExists(rel) {
			return "", fmt.Errorf("%w: %s", ErrNoDocument, rel)
		}
		return rel, nil
	}

	if rel, ok := document.FindDocument(a.rm, a.cfg.Document.Candidates); ok {
		return rel, nil
	}

	if opts.create && len(a.cfg.Document.Candidates) > 0 {
		return a.cfg.Document.Candidates[0], nil
	}

	return "", fmt.Errorf("%w below %s (tried %v)", ErrNoDocument, a.rm.Path(), a.cfg.Document.Candidates)
}

// runEmbed refreshes the block of the target document and reports whether it changed.
func runEmbed(ctx context.Context, a *app, opts *embedOptions, out io.Writer) (bool, error) {
	target, err := targetDocument(a, opts)
	if err != nil {
		return false, err
	}

	doc, err := document.Open(a.rm.Abs(target))
	if err != nil {
		return false, err
	}

	overrides, err := document.RenderOverrides(doc.Content())
	if err != nil {
		return false, fmt.Errorf("failed to read frontmatter of %s: %w", target, err)
	}

	// The document holds the previous block, so it is never scanned itself
	block, err := a.block(ctx, a.cfg, overrides.Apply(a.cfg.RenderConfig()), target, target+".lock")
	if err != nil {
		return false, err
	}

	strategy := document.AppendToFile
	if opts.prepend {
		strategy = document.PrependToFile
	}

	markers := document.Markers{Start: a.cfg.Document.StartMarker, End: a.cfg.Document.EndMarker}
	changed, err := doc.Embed(block, markers, strategy)
	if err != nil {
		return false, err
	}

	if !changed && doc.Exists() {
		_, _ = fmt.Fprintf(out, "%s is up to date\n", target)
		return false, nil
	}

	if err := doc.Save(); err != nil {
		return false, err
	}

	log.Printf("Embedded marker block into %s", doc.Path)
	_, _ = fmt.Fprintf(out, "Updated %s\n", target)
	return true, nil
}
