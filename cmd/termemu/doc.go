// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the termemu command line.
//
// The root command opens the interactive shell. Subcommands run lines
// non-interactively, reset the saved filesystem, serve the shell over SSH and
// manage configuration.
package cmd
