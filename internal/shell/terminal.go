// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

type (
	// Options configures a Terminal. Zero values select defaults.
	Options struct {
		Session   SessionOptions
		Registry  *Registry
		View      View
		Persister Persister
		Logger    *log.Logger
		// Clock is used by date. Defaults to time.Now.
		Clock func() time.Time
		// Seed builds the tree restored by Reset. Defaults to vfs.DefaultTree.
		Seed func(user string) *vfs.Node
	}

	// HandlerContext gives a builtin access to the session it runs in.
	HandlerContext struct {
		FS       *vfs.FileSystem
		Session  *Session
		Registry *Registry
		Terminal *Terminal
		Now      func() time.Time
	}

	// Terminal is the dispatcher for one session. It is not safe for
	// concurrent use; views serialize calls to Execute, Complete and SaveEdit.
	Terminal struct {
		fs        *vfs.FileSystem
		session   *Session
		registry  *Registry
		view      View
		persister Persister
		logger    *log.Logger
		now       func() time.Time
		seed      func(user string) *vfs.Node
	}
)

// New returns a Terminal over fs. When opts.Registry is nil the default
// builtins are registered.
func New(fs *vfs.FileSystem, opts Options) *Terminal {
	t := &Terminal{
		fs:        fs,
		session:   NewSession(opts.Session),
		registry:  opts.Registry,
		view:      opts.View,
		persister: opts.Persister,
		logger:    opts.Logger,
		now:       opts.Clock,
		seed:      opts.Seed,
	}
	if t.registry == nil {
		t.registry = NewRegistry()
		RegisterBuiltins(t.registry)
	}
	if t.view == nil {
		t.view = nopView{}
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.seed == nil {
		t.seed = vfs.DefaultTree
	}
	return t
}

// FS returns the filesystem.
func (t *Terminal) FS() *vfs.FileSystem { return t.fs }

// Session returns the session state.
func (t *Terminal) Session() *Session { return t.session }

// Registry returns the command registry.
func (t *Terminal) Registry() *Registry { return t.registry }

// Prompt returns the current prompt text.
func (t *Terminal) Prompt() string { return t.session.Prompt() }

// SetView replaces the output target.
func (t *Terminal) SetView(v View) {
	if v == nil {
		v = nopView{}
	}
	t.view = v
}

// SetPersister replaces the persistence target. A nil Persister disables saving.
func (t *Terminal) SetPersister(p Persister) { t.persister = p }

// Write sends one line to the view.
func (t *Terminal) Write(l Line) { t.view.Write(l) }

// Info writes an informational line.
func (t *Terminal) Info(text string) { t.view.Write(Line{Kind: LineInfo, Text: text}) }

// ClearView clears the view.
func (t *Terminal) ClearView() { t.view.Clear() }

// Restore installs a previously saved tree and working directory. A nil or
// malformed root keeps the current tree. A cwd that is not an existing
// directory falls back to the home directory. It reports whether root was
// installed.
func (t *Terminal) Restore(root *vfs.Node, cwd vpath.Path) bool {
	restored := false
	if root != nil {
		if err := root.Validate(); err != nil {
			t.logger.Warn("discarding malformed snapshot", "err", err)
		} else {
			t.fs.Replace(root)
			restored = true
		}
	}
	t.session.SetCwd(t.session.Home())
	if ok, _ := cwd.IsValid(); ok {
		if e, err := t.fs.Stat(cwd); err == nil && e.Kind == vfs.KindDirectory {
			t.session.SetCwd(cwd)
		}
	}
	return restored
}

// Execute runs one input line. Blank lines are ignored. Every other line is
// recorded in the history, echoed to the view and dispatched. The returned
// error is the failure already written to the view, if any.
func (t *Terminal) Execute(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	t.session.History().Add(line)
	t.view.Write(Line{Kind: LineCommand, Prompt: t.session.Prompt(), Text: line})

	gen, cwd := t.fs.Generation(), t.session.Cwd()
	cmd := Parse(line)
	err := t.dispatch(ctx, cmd)
	if err != nil {
		t.view.Write(Line{Kind: LineError, Text: err.Error()})
	}
	t.logger.Debug("executed", "command", cmd.Name, "args", len(cmd.Args), "err", err)
	t.persist(gen, cwd)
	return err
}

func (t *Terminal) dispatch(ctx context.Context, cmd Command) error {
	var (
		out string
		err error
	)
	if b, ok := t.registry.Lookup(cmd.Name); ok {
		out, err = b.Run(ctx, t.handlerContext(), cmd)
	} else if strings.HasPrefix(cmd.Name, "./") {
		out, err = runScript(t.handlerContext(), cmd)
	} else {
		return &CommandError{Command: cmd.Name, Message: "command not found", Err: ErrUnknownCommand}
	}
	if out != "" {
		t.view.Write(Line{Kind: LinePlain, Text: out})
	}
	return err
}

func (t *Terminal) handlerContext() *HandlerContext {
	return &HandlerContext{
		FS:       t.fs,
		Session:  t.session,
		Registry: t.registry,
		Terminal: t,
		Now:      t.now,
	}
}

// persist hands changed state to the persister.
func (t *Terminal) persist(gen uint64, cwd vpath.Path) {
	if t.persister == nil {
		return
	}
	if t.fs.Generation() != gen {
		t.persister.SaveSnapshot(t.fs.Snapshot())
	}
	if t.session.Cwd() != cwd {
		t.persister.SaveDirectory(t.session.Cwd())
	}
}

// Complete proposes a completion for the partial input line.
func (t *Terminal) Complete(input string) Completion {
	return Complete(input, t.registry.Names(), t.fs, t.session)
}

// Reset restores the seed tree and moves to the home directory.
func (t *Terminal) Reset() {
	t.fs.Replace(t.seed(t.session.User()))
	t.session.SetCwd(t.session.Home())
	if t.persister != nil {
		t.persister.SaveSnapshot(t.fs.Snapshot())
		t.persister.SaveDirectory(t.session.Cwd())
	}
}

// Edit opens p in the view's editor.
func (t *Terminal) Edit(display string, p vpath.Path) error {
	ed, ok := t.view.(Editor)
	if !ok {
		return ErrNoEditor
	}
	content, err := t.fs.Read(p)
	if err != nil {
		return err
	}
	return ed.OpenEditor(EditRequest{Path: p, Display: display, Content: content})
}

// SaveEdit stores content written in the editor and confirms it on the view.
func (t *Terminal) SaveEdit(req EditRequest, content string) error {
	gen := t.fs.Generation()
	if err := t.fs.WriteFile(req.Path, content); err != nil {
		werr := failf("edit", err, "cannot save '%s': %s", req.Display, reason(err))
		t.view.Write(Line{Kind: LineError, Text: werr.Error()})
		return werr
	}
	t.view.Write(Line{Kind: LineSuccess, Text: "File saved: " + req.Display})
	t.persist(gen, t.session.Cwd())
	return nil
}
