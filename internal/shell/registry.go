// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

type (
	// Builtin is a command implemented inside the emulator.
	Builtin interface {
		// Name returns the command name (e.g., "ls", "cat").
		Name() string

		// Description is the one-line summary shown by help.
		Description() string

		// Run executes the command. A non-empty output is shown as one block of
		// plain text; a non-nil error is shown as an error line.
		Run(ctx context.Context, hc *HandlerContext, cmd Command) (string, error)

		// SupportedFlags returns the flags this builtin understands.
		// Unsupported flags are silently ignored during execution.
		SupportedFlags() []FlagInfo
	}

	// HandlerFunc adapts a plain function to the Run method of a Builtin.
	HandlerFunc func(ctx context.Context, hc *HandlerContext, cmd Command) (string, error)

	// FlagInfo describes a flag understood by a builtin.
	FlagInfo struct {
		// Name is the flag name without dashes (e.g., "r" for -r).
		Name string
		// Description explains what the flag does.
		Description string
	}

	// Registry maps command names to builtins. It is safe for concurrent use.
	Registry struct {
		mu       sync.RWMutex
		commands map[string]Builtin
		order    []string
	}

	funcBuiltin struct {
		name        string
		description string
		flags       []FlagInfo
		run         HandlerFunc
	}
)

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Builtin)}
}

// Register adds b to the registry. Registering a name that already exists
// replaces the earlier builtin and keeps its original position.
func (r *Registry) Register(b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := b.Name()
	if name == "" {
		panic("shell: cannot register command with empty name")
	}
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = b
}

// RegisterFunc registers fn under name.
func (r *Registry) RegisterFunc(name, description string, fn HandlerFunc, flags ...FlagInfo) {
	r.Register(NewBuiltin(name, description, fn, flags...))
}

// Lookup retrieves a builtin by name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.commands[name]
	return b, ok
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Builtins returns the registered builtins sorted by name.
func (r *Registry) Builtins() []Builtin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Builtin, 0, len(r.commands))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	slices.SortFunc(out, func(a, b Builtin) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// NewBuiltin wraps fn as a Builtin.
func NewBuiltin(name, description string, fn HandlerFunc, flags ...FlagInfo) Builtin {
	return &funcBuiltin{name: name, description: description, flags: flags, run: fn}
}

func (b *funcBuiltin) Name() string { return b.name }

func (b *funcBuiltin) Description() string { return b.description }

func (b *funcBuiltin) SupportedFlags() []FlagInfo { return b.flags }

func (b *funcBuiltin) Run(ctx context.Context, hc *HandlerContext, cmd Command) (string, error) {
	return b.run(ctx, hc, cmd)
}
