package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "watch <scene.yaml>",
		Short: "Re-render a scene whenever it changes",
		Long: `Render the scene, then watch the scene file and render again on every
change until interrupted. Render errors are logged and watching continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watchScene(ctx, args[0], opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

// watchScene renders path and re-renders it on change until ctx is done.
func watchScene(ctx context.Context, path string, opts *renderOptions) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file on save.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	render := func() {
		if err := renderScene(path, opts); err != nil {
			slog.Warn("render failed", slog.String("scene", path), slog.Any("err", err))
		}
	}
	render()
	slog.Info("watching", slog.String("scene", abs))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("scene changed", slog.String("op", event.Op.String()), slog.String("file", event.Name))
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.Any("err", err))
		case <-debounce:
			debounce = nil
			render()
		}
	}
}
