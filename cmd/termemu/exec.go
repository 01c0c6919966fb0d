// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// newExecCommand creates the `termemu exec` command.
func newExecCommand(app *App) *cobra.Command {
	var echo bool
	cmd := &cobra.Command{
		Use:   "exec [line...]",
		Short: "Run shell lines without the interactive view",
		Long: `Run shell lines against the saved filesystem and print their output.

Each argument is one command line. Without arguments, lines are read from
stdin. The exit status is 1 when any line failed.`,
		Example: `  termemu exec "mkdir projects" "cd projects" "touch todo.txt" "ls"
  printf 'pwd\nls -l\n' | termemu exec --echo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			failed, err := app.runLines(cmd.Context(), lineRun{lines: args, input: app.stdin, echo: echo})
			if err != nil {
				return err
			}
			if failed > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&echo, "echo", false, "print each line after its prompt")
	return cmd
}
