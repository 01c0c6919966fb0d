// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

type (
	cdCommand    struct{ baseBuiltin }
	mkdirCommand struct{ baseBuiltin }
	touchCommand struct{ baseBuiltin }
	catCommand   struct{ baseBuiltin }
	rmCommand    struct{ baseBuiltin }
	chmodCommand struct{ baseBuiltin }
)

func newCdCommand() *cdCommand {
	return &cdCommand{baseBuiltin{name: "cd", description: "Change the current directory"}}
}

// Run executes the cd command. Without an operand it changes to the home directory.
func (c *cdCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	op := cmd.Arg(0, "~")
	p := hc.Session.Resolve(op)
	e, err := hc.FS.Stat(p)
	if err != nil {
		return "", failf(c.name, err, "%s: %s", op, reason(err))
	}
	if e.Kind != vfs.KindDirectory {
		return "", failf(c.name, vfs.ErrNotADirectory, "%s: %s", op, reason(vfs.ErrNotADirectory))
	}
	hc.Session.SetCwd(p)
	return "", nil
}

func newMkdirCommand() *mkdirCommand {
	return &mkdirCommand{baseBuiltin{
		name:        "mkdir",
		description: "Create directories",
		flags:       []FlagInfo{{Name: "p", Description: "no error if existing, make parent directories as needed"}},
	}}
}

// Run executes the mkdir command.
func (c *mkdirCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", missingOperand(c.name, "")
	}
	var errs []error
	for _, op := range cmd.Args {
		p := hc.Session.Resolve(op)
		var err error
		switch {
		case cmd.Has("p"):
			err = hc.FS.CreateDirectoryAll(p)
		case p.IsRoot():
			err = vfs.ErrAlreadyExists
		default:
			err = hc.FS.CreateDirectory(p)
		}
		if err != nil {
			errs = append(errs, failf(c.name, err, "cannot create directory '%s': %s", op, reason(err)))
		}
	}
	return "", errors.Join(errs...)
}

func newTouchCommand() *touchCommand {
	return &touchCommand{baseBuiltin{name: "touch", description: "Create empty files"}}
}

// Run executes the touch command. Existing files are left untouched.
func (c *touchCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", missingOperand(c.name, "file")
	}
	var errs []error
	for _, op := range cmd.Args {
		p := hc.Session.Resolve(op)
		if hc.FS.Exists(p) {
			continue
		}
		if err := hc.FS.Touch(p); err != nil {
			errs = append(errs, failf(c.name, err, "cannot touch '%s': %s", op, reason(err)))
		}
	}
	return "", errors.Join(errs...)
}

func newCatCommand() *catCommand {
	return &catCommand{baseBuiltin{name: "cat", description: "Display file contents"}}
}

// Run executes the cat command. Readable operands are printed even when
// others fail.
func (c *catCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", missingOperand(c.name, "file")
	}
	var (
		out  []string
		errs []error
	)
	for _, op := range cmd.Args {
		content, err := hc.FS.Read(hc.Session.Resolve(op))
		if err != nil {
			errs = append(errs, failf(c.name, err, "%s: %s", op, reason(err)))
			continue
		}
		out = append(out, strings.TrimSuffix(content, "\n"))
	}
	return strings.Join(out, "\n"), errors.Join(errs...)
}

func newRmCommand() *rmCommand {
	return &rmCommand{baseBuiltin{
		name:        "rm",
		description: "Remove files or directories",
		flags: []FlagInfo{
			{Name: "r", Description: "remove directories and their contents recursively"},
			{Name: "R", Description: "same as -r"},
			{Name: "f", Description: "ignore nonexistent files and missing operands"},
		},
	}}
}

// Run executes the rm command.
func (c *rmCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	force := cmd.Has("f")
	if len(cmd.Args) == 0 {
		if force {
			return "", nil
		}
		return "", missingOperand(c.name, "")
	}
	recursive := cmd.Has("r", "R")
	var errs []error
	for _, op := range cmd.Args {
		if isDotOperand(op) {
			errs = append(errs, failf(c.name, ErrInvalidArgument, "refusing to remove '.' or '..' directory: skipping '%s'", op))
			continue
		}
		err := hc.FS.Remove(hc.Session.Resolve(op), recursive)
		switch {
		case err == nil:
		case force && errors.Is(err, vfs.ErrNotFound):
		case errors.Is(err, vfs.ErrMissingName):
			errs = append(errs, failf(c.name, err, "cannot remove '%s': %s", op, reason(vfs.ErrIsADirectory)))
		default:
			errs = append(errs, failf(c.name, err, "cannot remove '%s': %s", op, reason(err)))
		}
	}
	if cwd := hc.Session.Cwd(); !hc.FS.Exists(cwd) {
		hc.Session.SetCwd(nearestDirectory(hc.FS, cwd))
	}
	return "", errors.Join(errs...)
}

// isDotOperand reports whether the last element of a raw operand is . or ..
func isDotOperand(op string) bool {
	last := strings.TrimRight(op, vpath.Separator)
	if i := strings.LastIndex(last, vpath.Separator); i >= 0 {
		last = last[i+1:]
	}
	return last == "." || last == ".."
}

// nearestDirectory walks up from p to the closest directory that still exists.
func nearestDirectory(fs *vfs.FileSystem, p vpath.Path) vpath.Path {
	for !p.IsRoot() {
		if e, err := fs.Stat(p); err == nil && e.Kind == vfs.KindDirectory {
			return p
		}
		p, _ = vpath.Split(p)
	}
	return vpath.Root
}

func newChmodCommand() *chmodCommand {
	return &chmodCommand{baseBuiltin{
		name:        "chmod",
		description: "Change the executable flag of files (+x, -x or an octal mode)",
		flags:       []FlagInfo{{Name: "x", Description: "clear the executable flag (as in chmod -x)"}},
	}}
}

// Run executes the chmod command. Only the owner execute bit is modeled.
func (c *chmodCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	operands := cmd.Args
	executable := false
	if !cmd.Has("x") {
		if len(operands) == 0 {
			return "", missingOperand(c.name, "")
		}
		var ok bool
		if executable, ok = parseMode(operands[0]); !ok {
			return "", failf(c.name, ErrInvalidArgument, "invalid mode: '%s'", operands[0])
		}
		operands = operands[1:]
	}
	if len(operands) == 0 {
		return "", missingOperand(c.name, "")
	}
	var errs []error
	for _, op := range operands {
		if err := hc.FS.SetExecutable(hc.Session.Resolve(op), executable); err != nil {
			errs = append(errs, failf(c.name, err, "cannot access '%s': %s", op, reason(err)))
		}
	}
	return "", errors.Join(errs...)
}

// parseMode reports whether mode sets or clears the owner execute bit.
// Symbolic modes must mention x; octal modes use the owner digit.
func parseMode(mode string) (executable, ok bool) {
	if mode == "" {
		return false, false
	}
	if strings.Trim(mode, "01234567") == "" && len(mode) <= 4 {
		owner := mode[0]
		if len(mode) > 3 {
			owner = mode[1]
		} else if len(mode) < 3 {
			return false, false
		}
		return (owner-'0')&1 == 1, true
	}
	who, perms, found := strings.Cut(mode, "+")
	if !found {
		return false, false
	}
	if strings.Trim(who, "ugoa") != "" || !strings.Contains(perms, "x") || strings.Trim(perms, "rwx") != "" {
		return false, false
	}
	return true, true
}
