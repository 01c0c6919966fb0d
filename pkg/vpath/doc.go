// SPDX-License-Identifier: MPL-2.0

// Package vpath implements path arithmetic for the virtual filesystem.
//
// Virtual paths are always slash-separated and independent of the host OS.
// A canonical Path is absolute, has no empty, "." or ".." segments, no trailing
// slash, and the root is exactly "/". Normalize and Resolver.Resolve never fail:
// any input string maps to some canonical Path.
package vpath
