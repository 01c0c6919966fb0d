// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/termemu/termemu/internal/config"
	"github.com/termemu/termemu/internal/issue"
	"github.com/termemu/termemu/internal/persist"
	"github.com/termemu/termemu/internal/shell"
	"github.com/termemu/termemu/internal/vfs"
)

// closeTimeout bounds the final flush of saved state.
const closeTimeout = 5 * time.Second

type (
	// App wires CLI services and shared dependencies. Cobra command handlers
	// receive an App reference and open sessions through it.
	App struct {
		Config config.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// Set by flags and the persistent pre-run hook.
		verbose bool
		cfgFile string
		cfg     *config.Config
		cfgErr  error
		logger  *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is an opened shell with its persistence wiring.
	session struct {
		term   *shell.Terminal
		writer *persist.Writer
		// path is where state is stored, empty for in-memory backends.
		path string
	}
)

// NewApp creates an App from deps.
func NewApp(deps Dependencies) *App {
	a := &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if a.Config == nil {
		a.Config = config.NewProvider()
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	a.cfg = config.DefaultConfig()
	a.logger = log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	return a
}

// loadConfig reads configuration for the current invocation. A failure is
// reported as a warning and defaults are used; config show returns it.
func (a *App) loadConfig(ctx context.Context, verboseChanged bool) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	a.cfgErr = err
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	if !verboseChanged {
		a.verbose = cfg.UI.Verbose
	}
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	} else {
		a.logger.SetLevel(log.InfoLevel)
	}
}

// interactive reports whether stdin and stdout are both terminals.
func (a *App) interactive() bool {
	in, ok := a.stdin.(*os.File)
	if !ok {
		return false
	}
	out, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

// renderer returns a lipgloss renderer for w honoring ui.color_scheme.
func (a *App) renderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		r.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		r.SetHasDarkBackground(false)
	}
	return r
}

// glamourStyle maps ui.color_scheme to a glamour style name.
func (a *App) glamourStyle() string {
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// openSession opens the configured store, restores saved state and attaches
// a background writer. onError receives failed saves and may be nil.
func (a *App) openSession(ctx context.Context, onError func(error)) (*session, error) {
	path, err := a.cfg.StatePath()
	if err != nil {
		return nil, err
	}
	backend := persist.Backend(a.cfg.Persistence.Backend)
	store, err := persist.Open(ctx, backend, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open saved state").
			WithResource(path).
			WithSuggestion("Check that the state directory is writable").
			WithSuggestion("Run with TERMEMU_PERSISTENCE_BACKEND=none to start without saved state").
			WithGuide(issue.PersistenceUnavailableId).
			Wrap(err).
			BuildError()
	}

	user := a.cfg.User.String()
	t := shell.New(vfs.New(vfs.DefaultTree(user)), shell.Options{
		Session: shell.SessionOptions{
			User:         user,
			Hostname:     a.cfg.Hostname.String(),
			HistoryLimit: a.cfg.History.Limit,
			IgnoreDups:   a.cfg.History.IgnoreDups,
		},
		Logger: a.logger,
	})

	st, err := persist.Load(ctx, store)
	switch {
	case errors.Is(err, persist.ErrCorruptSnapshot):
		warn := issue.NewErrorContext().
			WithOperation("restore saved filesystem").
			WithResource(path).
			WithSuggestion("The initial filesystem is used; the next change overwrites the saved state").
			WithGuide(issue.SnapshotCorruptId).
			Wrap(err).
			Build()
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+warn.Format(a.verbose))
	case err != nil:
		_ = store.Close()
		return nil, issue.WrapWithContext(err, "load saved state", path)
	}
	t.Restore(st.Root, st.Directory)

	w := persist.NewWriter(store, persist.WriterOptions{Logger: a.logger, OnError: onError})
	t.SetPersister(w)
	a.logger.Debug("session opened", "backend", backend, "path", path, "restored", st.Root != nil)

	return &session{term: t, writer: w, path: path}, nil
}

// Close flushes pending saves. The writer owns the store and closes it.
func (s *session) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	return s.writer.Close(ctx)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
