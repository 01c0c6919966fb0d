// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// SystemName is reported by uname.
	SystemName = "Linux"
	// SystemRelease is the emulator release reported by uname -a.
	SystemRelease = "1.0.0"
)

// baseBuiltin provides the Name, Description and SupportedFlags methods
// shared by struct builtins.
type baseBuiltin struct {
	name        string
	description string
	flags       []FlagInfo
}

func (b baseBuiltin) Name() string { return b.name }

func (b baseBuiltin) Description() string { return b.description }

func (b baseBuiltin) SupportedFlags() []FlagInfo { return b.flags }

// RegisterBuiltins registers every builtin command in r. The order here is
// the order used for command completion.
func RegisterBuiltins(r *Registry) {
	r.Register(newEchoCommand())
	r.Register(clearCommand("clear"))
	r.RegisterFunc("help", "Display help information", runHelp)
	r.RegisterFunc("pwd", "Print working directory", runPwd)
	r.RegisterFunc("whoami", "Print current user name", runWhoami)
	r.RegisterFunc("date", "Print current date and time", runDate)
	r.RegisterFunc("env", "Print environment variables", runEnv)
	r.Register(newLsCommand())
	r.Register(newCdCommand())
	r.Register(newMkdirCommand())
	r.Register(newTouchCommand())
	r.Register(newCatCommand())
	r.Register(newRmCommand())
	r.Register(clearCommand("cls"))
	r.RegisterFunc("uname", "Show system information", runUname,
		FlagInfo{Name: "a", Description: "print all information"})
	r.RegisterFunc("history", "Show command history", runHistory)
	r.Register(newChmodCommand())
	r.Register(newEditCommand())
	r.RegisterFunc("resetfs", "Reset the file system to its default state", runResetFS)
}

func clearCommand(name string) Builtin {
	return NewBuiltin(name, "Clear the terminal screen", func(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
		hc.Terminal.ClearView()
		return "", nil
	})
}

func runHelp(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	if name := cmd.Arg(0, ""); name != "" {
		b, ok := hc.Registry.Lookup(name)
		if !ok {
			return "", failf("help", ErrUnknownCommand, "no help topics match '%s'", name)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s - %s", b.Name(), b.Description())
		for _, f := range b.SupportedFlags() {
			dash := "-"
			if len(f.Name) > 1 {
				dash = "--"
			}
			fmt.Fprintf(&sb, "\n  %s%s\t%s", dash, f.Name, f.Description)
		}
		return sb.String(), nil
	}

	builtins := hc.Registry.Builtins()
	width := 0
	for _, b := range builtins {
		width = max(width, len(b.Name()))
	}
	lines := make([]string, 0, len(builtins)+1)
	lines = append(lines, "Available commands:")
	for _, b := range builtins {
		lines = append(lines, fmt.Sprintf("  %-*s - %s", width, b.Name(), b.Description()))
	}
	lines = append(lines, fmt.Sprintf("  %-*s - %s", width, "./script", "Execute an executable file"))
	return strings.Join(lines, "\n"), nil
}

func runPwd(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	return string(hc.Session.Cwd()), nil
}

func runWhoami(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	user, _ := hc.Session.Getenv("USER")
	return user, nil
}

func runDate(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	return hc.Now().Format(time.UnixDate), nil
}

func runEnv(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	return strings.Join(hc.Session.Environ(), "\n"), nil
}

func runUname(_ context.Context, hc *HandlerContext, cmd Command) (string, error) {
	if cmd.Has("a") {
		return fmt.Sprintf("%s %s %s termemu x86_64", SystemName, hc.Session.Hostname(), SystemRelease), nil
	}
	return SystemName, nil
}

func runHistory(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	entries := hc.Session.History().Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%5d  %s", i+1, e)
	}
	return strings.Join(lines, "\n"), nil
}

func runResetFS(_ context.Context, hc *HandlerContext, _ Command) (string, error) {
	hc.Terminal.Reset()
	hc.Terminal.Write(Line{Kind: LineSuccess, Text: "File system has been reset to defaults."})
	return "", nil
}
