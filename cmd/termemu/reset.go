// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/termemu/termemu/internal/issue"
)

// newResetCommand creates the `termemu reset` command.
func newResetCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the initial filesystem",
		Long: `Discard every change to the saved filesystem and return to the initial
home directory. The same happens inside the shell with "resetfs".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reset(cmd.Context(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking for confirmation")
	return cmd
}

func (a *App) reset(ctx context.Context, yes bool) error {
	if !yes {
		if !a.interactive() {
			return issue.NewErrorContext().
				WithOperation("confirm reset").
				WithSuggestion("Pass --yes to reset without a prompt").
				WithGuide(issue.TerminalRequiredId).
				Wrap(errors.New("confirmation needs an interactive terminal")).
				BuildError()
		}
		confirmed, err := a.confirmReset()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(a.stdout, SubtitleStyle.Render("Reset cancelled."))
			return nil
		}
	}

	sess, err := a.openSession(ctx, nil)
	if err != nil {
		return err
	}
	sess.term.Reset()
	if err := sess.Close(ctx); err != nil {
		return fmt.Errorf("failed to save reset filesystem: %w", err)
	}
	fmt.Fprintf(a.stdout, "%s Filesystem restored to its initial state\n", SuccessStyle.Render("✓"))
	return nil
}

func (a *App) confirmReset() (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Reset the filesystem?").
			Description("Files and directories you created will be lost.").
			Affirmative("Reset").
			Negative("Cancel").
			Value(&confirmed),
	)).
		WithTheme(huh.ThemeCharm()).
		WithInput(a.stdin).
		WithOutput(a.stdout)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
