// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/termemu/termemu/internal/vfs"
)

const (
	redirectWrite  = ">"
	redirectAppend = ">>"
)

// echoCommand prints its arguments or writes them to a file when a ">" or
// ">>" token is followed by a target.
type echoCommand struct {
	baseBuiltin
}

func newEchoCommand() *echoCommand {
	return &echoCommand{baseBuiltin{name: "echo", description: "Display a message or write it to a file"}}
}

// Run executes the echo command.
func (c *echoCommand) Run(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	i := slices.IndexFunc(cmd.Args, func(a string) bool { return a == redirectWrite || a == redirectAppend })
	if i < 0 || i == len(cmd.Args)-1 {
		return strings.Join(cmd.Args, " "), nil
	}

	text := strings.Join(cmd.Args[:i], " ")
	target := cmd.Args[i+1]
	p := hc.Session.Resolve(target)

	var err error
	if cmd.Args[i] == redirectAppend {
		existing, rerr := hc.FS.Read(p)
		if rerr != nil && !errors.Is(rerr, vfs.ErrNotFound) {
			return "", failf(c.name, rerr, "%s: %s", target, reason(rerr))
		}
		if existing != "" && !strings.HasSuffix(existing, "\n") {
			text = "\n" + text
		}
		err = hc.FS.AppendFile(p, text)
	} else {
		err = hc.FS.CreateFile(p, text)
	}
	if err != nil {
		return "", failf(c.name, err, "%s: %s", target, reason(err))
	}
	return "", nil
}
