// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"

	"github.com/termemu/termemu/internal/vfs"
)

type editCommand struct {
	baseBuiltin
}

func newEditCommand() *editCommand {
	return &editCommand{baseBuiltin{name: "edit", description: "Edit a file in the built-in editor"}}
}

// Run executes the edit command. A missing file is created empty before the
// editor opens.
func (c *editCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	op := cmd.Arg(0, "")
	if op == "" {
		return "", missingOperand(c.name, "file")
	}
	p := hc.Session.Resolve(op)
	e, err := hc.FS.Stat(p)
	switch {
	case err == nil && e.Kind == vfs.KindDirectory:
		return "", failf(c.name, vfs.ErrIsADirectory, "cannot edit '%s': %s", op, reason(vfs.ErrIsADirectory))
	case err != nil:
		if p.IsRoot() {
			return "", failf(c.name, vfs.ErrIsADirectory, "cannot edit '%s': %s", op, reason(vfs.ErrIsADirectory))
		}
		if terr := hc.FS.Touch(p); terr != nil {
			return "", failf(c.name, terr, "cannot edit '%s': %s", op, reason(terr))
		}
	}
	if err := hc.Terminal.Edit(op, p); err != nil {
		if errors.Is(err, ErrNoEditor) {
			return "", failf(c.name, err, "no editor available in this session")
		}
		return "", failf(c.name, err, "cannot edit '%s': %s", op, reason(err))
	}
	return "", nil
}
