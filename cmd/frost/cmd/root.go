// Package cmd implements the frost CLI commands.
//
// The root command dispatches to render, watch and version.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/go-drift/frost/pkg/errors"
	"github.com/go-drift/frost/pkg/frost"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "frost",
		Short: "Render frosted-glass view scenes",
		Long: `frost builds a window from a YAML scene, runs its frame loop on a
software canvas and writes the result as PNG. Blur views in the scene
capture the content behind them each frame, blur it and draw it tinted.

Use "frost <command> --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log per-frame diagnostics and stack traces")

	rootCmd.AddCommand(newRenderCmd(), newWatchCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "frost %s (built %s)\n", Version, BuildTime)
		},
	}
}

// setupLogging routes frost diagnostics and reported errors to w.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	frost.SetLogger(logger)
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: verbose})
}
