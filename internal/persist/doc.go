// SPDX-License-Identifier: MPL-2.0

// Package persist saves and restores the virtual filesystem and the working
// directory between sessions.
//
// A Store is a synchronous backend. Four are provided:
//
//   - none: nothing is stored; every session starts from the seed tree.
//   - memory: state lives in the process, useful for tests and the SSH server.
//   - file: a single TOML document written atomically.
//   - sqlite: a key/value table in a SQLite database (pure Go driver).
//
// The Writer wraps a Store with one background goroutine so that saving never
// blocks command execution. Requests are coalesced: only the newest pending
// snapshot and directory are written. Failures are reported to a callback and
// never affect the in-memory state.
package persist
