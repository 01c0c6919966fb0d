// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Command is one parsed input line.
type Command struct {
	// Name is the first token, or "" for a blank line.
	Name string
	// Args are the remaining non-flag tokens in their original order.
	Args []string
	// Options is the set of flags present on the line.
	Options map[string]bool
}

// Parse splits line into a Command. Tokens starting with "--" become named
// flags; tokens starting with a single "-" set one flag per following
// character. Every flag token is dropped from Args.
func Parse(line string) Command {
	fields := strings.Fields(line)
	cmd := Command{Options: map[string]bool{}}
	if len(fields) == 0 {
		return cmd
	}
	cmd.Name = fields[0]
	for _, tok := range fields[1:] {
		switch {
		case strings.HasPrefix(tok, "--"):
			if name := tok[2:]; name != "" {
				cmd.Options[name] = true
			}
		case strings.HasPrefix(tok, "-"):
			for _, r := range tok[1:] {
				cmd.Options[string(r)] = true
			}
		default:
			cmd.Args = append(cmd.Args, tok)
		}
	}
	return cmd
}

// Has reports whether any of the given flags is set.
func (c Command) Has(flags ...string) bool {
	return slices.ContainsFunc(flags, func(f string) bool { return c.Options[f] })
}

// Arg returns the positional argument at index i, or def when absent.
func (c Command) Arg(i int, def string) string {
	if i < 0 || i >= len(c.Args) {
		return def
	}
	return c.Args[i]
}

// Flags returns the set flags in sorted order.
func (c Command) Flags() []string {
	out := make([]string, 0, len(c.Options))
	for f, on := range c.Options {
		if on {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}
