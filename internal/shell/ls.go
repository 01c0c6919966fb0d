// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/termemu/termemu/internal/vfs"
)

// lsTimestamp is shown for every entry; the tree keeps no modification times.
const lsTimestamp = "Jan 1 12:00"

type lsCommand struct {
	baseBuiltin
}

func newLsCommand() *lsCommand {
	return &lsCommand{baseBuiltin{
		name:        "ls",
		description: "List directory contents",
		flags: []FlagInfo{
			{Name: "l", Description: "use a long listing format"},
			{Name: "h", Description: "with -l, print sizes in human readable format"},
		},
	}}
}

// Run executes the ls command.
func (c *lsCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	operands := cmd.Args
	if len(operands) == 0 {
		operands = []string{"."}
	}

	var (
		blocks []string
		errs   []error
	)
	for _, op := range operands {
		p := hc.Session.Resolve(op)
		entry, err := hc.FS.Stat(p)
		if err != nil {
			errs = append(errs, failf(c.name, err, "cannot access '%s': %s", op, reason(err)))
			continue
		}
		var entries []vfs.Entry
		if entry.Kind == vfs.KindDirectory {
			if entries, err = hc.FS.List(p); err != nil {
				errs = append(errs, failf(c.name, err, "cannot access '%s': %s", op, reason(err)))
				continue
			}
		} else {
			entry.Name = op
			entries = []vfs.Entry{entry}
		}

		body := c.format(hc, cmd, entries)
		if len(operands) > 1 && entry.Kind == vfs.KindDirectory {
			body = strings.TrimRight(op+":\n"+body, "\n")
		}
		if body != "" {
			blocks = append(blocks, body)
		}
	}
	return strings.Join(blocks, "\n\n"), errors.Join(errs...)
}

func (c *lsCommand) format(hc *HandlerContext, cmd Command, entries []vfs.Entry) string {
	if !cmd.Has("l") {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = displayName(e)
		}
		return strings.Join(names, "  ")
	}

	sizes := make([]string, len(entries))
	width := 0
	for i, e := range entries {
		if cmd.Has("h") {
			sizes[i] = humanize.Bytes(uint64(e.Size))
		} else {
			sizes[i] = strconv.Itoa(e.Size)
		}
		width = max(width, len(sizes[i]))
	}

	user := hc.Session.User()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s 1 %s %s %*s %s %s", mode(e), user, user, width, sizes[i], lsTimestamp, displayName(e))
	}
	return strings.Join(lines, "\n")
}

func mode(e vfs.Entry) string {
	switch {
	case e.Kind == vfs.KindDirectory:
		return "drwxr-xr-x"
	case e.Executable:
		return "-rwxr-xr-x"
	default:
		return "-rw-r--r--"
	}
}

func displayName(e vfs.Entry) string {
	if e.Kind == vfs.KindDirectory {
		return e.Name + "/"
	}
	return e.Name
}
