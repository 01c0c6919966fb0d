// SPDX-License-Identifier: MPL-2.0

// Package shell implements the command engine of the terminal emulator.
//
// A Terminal ties together the pieces of one session:
//
//   - Parse turns an input line into a Command (name, positional args and
//     boolean flags).
//   - Registry maps command names to Builtins. Re-registering a name replaces
//     the previous builtin while keeping its original position, so the order
//     seen by completion is stable.
//   - Session holds the working directory, environment and History.
//   - Complete proposes command or path completions for partial input.
//
// Terminal.Execute is synchronous and run-to-completion. Output is written to
// a View as categorized Lines. When a command mutates the virtual filesystem
// or changes the working directory, the Terminal hands a snapshot to its
// Persister, which is expected to save it asynchronously.
//
// # Flag Parsing
//
// Flags never take values. "--name" sets the flag "name"; "-abc" sets the
// single-character flags "a", "b" and "c". Flag tokens are removed from the
// positional arguments. Builtins document the flags they understand through
// SupportedFlags; unknown flags are ignored.
//
// # Error Format
//
// Builtins report failures as *CommandError values whose message follows the
// conventional shell phrasing:
//
//	cat: notes.txt: No such file or directory
//	rm: cannot remove 'documents': Is a directory
package shell
