// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/spf13/cobra"

	"github.com/termemu/termemu/internal/config"
	"github.com/termemu/termemu/internal/issue"
	"github.com/termemu/termemu/internal/shell"
	"github.com/termemu/termemu/internal/sshserver"
	"github.com/termemu/termemu/internal/tui"
)

// newServeCommand creates the `termemu serve` command.
func newServeCommand(app *App) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell over SSH",
		Long: `Serve the shell over SSH. One client is served at a time; the session and
its filesystem survive reconnects and are saved like a local session.

` + SubtitleStyle.Render("Example:") + `
  termemu serve --port 2222
  ssh -p 2222 localhost`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				app.cfg.SSH.Host = host
			}
			if cmd.Flags().Changed("port") {
				app.cfg.SSH.Port = config.SSHPort(port)
			}
			return app.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "address to listen on (default from config: localhost)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config: 2222)")
	return cmd
}

func (a *App) serve(ctx context.Context) error {
	if ok, errs := a.cfg.SSH.Port.IsValid(); !ok {
		return errs[0]
	}
	hostKey, err := a.cfg.HostKeyPath()
	if err != nil {
		return err
	}

	// Save failures are logged by the writer; there is no view to show them on
	// between connections.
	sess, err := a.openSession(ctx, nil)
	if err != nil {
		return err
	}

	srv := sshserver.New(sshserver.Config{
		Host:        a.cfg.SSH.Host,
		Port:        int(a.cfg.SSH.Port),
		HostKeyPath: hostKey,
		Handler:     sessionHandler(sess.term, a.cfg.UI.Welcome),
		Logger:      a.logger.WithPrefix("ssh-server"),
	})
	if err := srv.Start(ctx); err != nil {
		return errors.Join(issue.NewErrorContext().
			WithOperation("start SSH server").
			WithResource(fmt.Sprintf("%s:%d", a.cfg.SSH.Host, a.cfg.SSH.Port)).
			WithSuggestion("Choose another port with --port or ssh.port").
			WithGuide(issue.SSHServerStartFailedId).
			Wrap(err).
			BuildError(), sess.Close(ctx))
	}

	fmt.Fprintf(a.stdout, "%s Serving on %s (press Ctrl+C to stop)\n", SuccessStyle.Render("✓"), CmdStyle.Render("ssh://"+srv.Address()))

	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-srv.Err():
		if ok {
			serveErr = err
		}
	}
	return errors.Join(serveErr, srv.Stop(), sess.Close(ctx))
}

// sessionHandler hosts t in every accepted connection. The server admits one
// connection at a time, so t is never driven concurrently.
func sessionHandler(t *shell.Terminal, welcome bool) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, _ := s.Pty()
		m := tui.New(tui.Options{
			Terminal: t,
			Context:  s.Context(),
			Renderer: bubbletea.MakeRenderer(s),
			Welcome:  welcome,
			Width:    pty.Window.Width,
			Height:   pty.Window.Height,
		})
		return m, []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
}
