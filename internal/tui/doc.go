// SPDX-License-Identifier: MPL-2.0

// Package tui is the interactive front end of a shell session.
//
// Model is a Bubble Tea model that owns the scrollback (a bubbles viewport),
// the prompt (a textinput) and the file editor overlay (a textarea). It
// implements shell.View and shell.Editor, so a Terminal writes its output
// straight into the model while Update runs.
package tui
