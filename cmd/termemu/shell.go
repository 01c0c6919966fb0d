// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/termemu/termemu/internal/shell"
	"github.com/termemu/termemu/internal/tui"
)

type (
	// lineView prints terminal output as plain lines. Error lines go to errOut.
	lineView struct {
		out    io.Writer
		errOut io.Writer
		styles tui.Styles
		// echo prints each submitted line after its prompt.
		echo bool
	}

	// lineRun configures runLines.
	lineRun struct {
		lines   []string
		input   io.Reader
		echo    bool
		welcome bool
	}
)

func (v *lineView) Write(l shell.Line) {
	w := v.out
	switch l.Kind {
	case shell.LinePlain:
		fmt.Fprintln(w, l.Text)
		return
	case shell.LineCommand:
		if !v.echo {
			return
		}
	case shell.LineError:
		w = v.errOut
	}
	// Styled multi-line blocks are padded to a common width; style each line.
	for _, text := range strings.Split(l.Text, "\n") {
		l.Text = text
		fmt.Fprintln(w, v.styles.Render(l))
	}
}

func (v *lineView) Clear() {}

// newShellCommand creates the `termemu shell` command.
func newShellCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell (default)",
		Long: `Start the interactive shell.

When stdin is not a terminal the shell reads one command per line and prints
each prompt followed by the command's output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runShell(cmd.Context())
		},
	}
}

func (a *App) runShell(ctx context.Context) error {
	if !a.interactive() {
		_, err := a.runLines(ctx, lineRun{input: a.stdin, echo: true, welcome: a.cfg.UI.Welcome})
		return err
	}
	return a.runTUI(ctx)
}

func (a *App) runTUI(ctx context.Context) error {
	// Log lines would tear the full-screen view; save failures reach the
	// model through the relay instead.
	a.logger.SetOutput(io.Discard)

	relay := &tui.ErrorRelay{}
	sess, err := a.openSession(ctx, relay.Report)
	if err != nil {
		return err
	}

	m := tui.New(tui.Options{
		Terminal: sess.term,
		Context:  ctx,
		Renderer: a.renderer(a.stdout),
		Welcome:  a.cfg.UI.Welcome,
	})
	p := tui.NewProgram(m, tea.WithContext(ctx), tea.WithInput(a.stdin), tea.WithOutput(a.stdout))
	relay.Attach(p)

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	return errors.Join(runErr, sess.Close(ctx))
}

// runLines executes lines from run.lines, or from run.input when lines is
// empty, and returns how many produced an error.
func (a *App) runLines(ctx context.Context, run lineRun) (int, error) {
	sess, err := a.openSession(ctx, nil)
	if err != nil {
		return 0, err
	}

	view := &lineView{
		out:    a.stdout,
		errOut: a.stderr,
		styles: tui.NewStyles(a.renderer(a.stdout)),
		echo:   run.echo,
	}
	sess.term.SetView(view)
	if run.welcome {
		for _, text := range tui.WelcomeLines {
			sess.term.Info(text)
		}
	}

	failed := 0
	exec := func(line string) {
		if sess.term.Execute(ctx, line) != nil {
			failed++
		}
	}
	if len(run.lines) > 0 {
		for _, line := range run.lines {
			if ctx.Err() != nil {
				break
			}
			exec(line)
		}
	} else {
		sc := bufio.NewScanner(run.input)
		for sc.Scan() && ctx.Err() == nil {
			exec(sc.Text())
		}
		if scanErr := sc.Err(); scanErr != nil {
			err = fmt.Errorf("failed to read input: %w", scanErr)
		}
	}

	return failed, errors.Join(err, sess.Close(ctx))
}
