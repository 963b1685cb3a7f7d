package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/patrickward/todomark/internal/watch"
	"github.com/patrickward/todomark/internal/workers"
)

func newWatchCommand(a *app) *cobra.Command {
	opts := &embedOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a document's marker block up to date",
		Long: `Embed the marker block like the embed command, then embed it again whenever
a scanned file changes, until interrupted.

With --interval the block is also refreshed periodically, which catches
changes the file watcher cannot see (network filesystems, inotify limits).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")
			interval, _ := cmd.Flags().GetDuration("interval")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, a, opts, debounce, interval, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.into, "into", "", "Target document, relative to the root")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Create the target document if it does not exist")
	cmd.Flags().BoolVar(&opts.prepend, "prepend", false, "Put a new section after the title instead of at the end")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period after a change before embedding")
	cmd.Flags().Duration("interval", 0, "Also embed periodically at this interval (0 = never)")

	return cmd
}

// runWatch embeds once and then on every change below the root until ctx is done.
func runWatch(ctx context.Context, a *app, opts *embedOptions, debounce, interval time.Duration, out io.Writer) error {
	target, err := targetDocument(a, opts)
	if err != nil {
		return err
	}
	// Later runs must find the document created by the first one
	opts.into = target

	var mu sync.Mutex
	refresh := func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := runEmbed(ctx, a, opts, out)
		return err
	}

	if err := refresh(ctx); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{
		BaseDir:  a.rm.Path(),
		Patterns: a.cfg.Embedded.Include,
		Ignore:   append([]string{target}, a.cfg.Embedded.Exclude...),
		Debounce: debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			log.Printf("Changed: %v", changed)
			return refresh(ctx)
		},
	})
	if err != nil {
		return err
	}

	worker := workers.NewBackgroundWorker(ctx)
	worker.Start(workers.BackgroundTask{
		Name:     "watch",
		Handler:  w.Run,
		Critical: true,
	})
	if interval > 0 {
		worker.StartPeriodicTask("refresh", interval, refresh)
	}

	<-worker.Done()
	return worker.Shutdown()
}
