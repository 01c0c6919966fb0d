// SPDX-License-Identifier: MPL-2.0

// Package sshserver exposes the shell session over SSH using the Wish library.
//
// Each connection runs a Bubble Tea program built by the caller. Only one
// client is served at a time; further connections are told the session is
// busy and closed.
package sshserver
