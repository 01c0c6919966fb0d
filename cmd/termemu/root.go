// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the termemu command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termemu",
		Short: "A Linux-like shell over a virtual filesystem",
		Long: TitleStyle.Render("termemu") + SubtitleStyle.Render(" - A Linux-like shell over a virtual filesystem") + `

termemu opens an interactive shell session over an in-memory filesystem
seeded with a small home directory. Files you create are saved between
sessions.

` + SubtitleStyle.Render("Examples:") + `
  termemu                          Start the interactive shell
  termemu exec "ls -l" "cat notes.txt"   Run lines without the TUI
  termemu reset                    Restore the initial filesystem
  termemu serve                    Share the shell over SSH
  termemu config show              Show current configuration`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.loadConfig(cmd.Context(), cmd.Flags().Changed("verbose"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runShell(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/termemu/config.cue)")

	rootCmd.AddCommand(
		newShellCommand(app),
		newExecCommand(app),
		newResetCommand(app),
		newServeCommand(app),
		newConfigCommand(app),
		newGuideCommand(app),
		newCompletionCommand(),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process streams and exits with the command's
// status. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			printError(w, err, app.verbose)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// printError writes err unless it is a bare ExitError whose failure was
// already reported.
func printError(w io.Writer, err error, verboseMode bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verboseMode))
}
