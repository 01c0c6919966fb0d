// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/termemu/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/termemu/config.cue on macOS, %APPDATA%\termemu\config.cue
// on Windows), then overridden by TERMEMU_* environment variables. It covers the session
// identity, history, persistence backend, UI and SSH front end settings.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they are
// merged into Viper, so type errors are reported with the offending field path.
package config
