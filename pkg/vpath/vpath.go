// SPDX-License-Identifier: MPL-2.0

package vpath

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Root is the canonical root path.
	Root Path = "/"

	// Separator is the virtual path separator.
	Separator = "/"

	// HomeAlias is the token that expands to the session home directory.
	HomeAlias = "~"
)

// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
var ErrInvalidPath = errors.New("invalid virtual path")

type (
	// Path is a canonical absolute virtual path such as "/home/user".
	Path string

	// InvalidPathError is returned when a Path value is not in canonical form.
	InvalidPathError struct {
		Value Path
	}

	// Resolver turns user-typed path strings into canonical paths relative to
	// a working directory. Home is the target of "~".
	Resolver struct {
		Home Path
	}
)

// String returns the string representation of the Path.
func (p Path) String() string { return string(p) }

// IsRoot reports whether p is the root directory.
func (p Path) IsRoot() bool { return p == Root }

// IsValid returns whether the Path is canonical.
func (p Path) IsValid() (bool, []error) {
	if p == "" || Normalize(string(p)) != p {
		return false, []error{&InvalidPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPathError.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid virtual path %q: must be absolute and normalized", e.Value)
}

// Unwrap returns ErrInvalidPath for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// Normalize collapses raw into canonical form. Empty and "." segments are
// dropped, ".." pops the previous segment and is a no-op at the root.
func Normalize(raw string) Path {
	var stack []string
	for seg := range strings.SplitSeq(raw, Separator) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}
	if len(stack) == 0 {
		return Root
	}
	return Path(Separator + strings.Join(stack, Separator))
}

// Resolve maps raw, as typed by the user, to a canonical path.
//
//	""        -> cwd
//	"~"       -> home
//	"~/rest"  -> home/rest
//	"/abs"    -> /abs
//	"rel"     -> cwd/rel
func (r Resolver) Resolve(raw string, cwd Path) Path {
	switch {
	case raw == "":
		return cwd
	case raw == HomeAlias:
		return r.home()
	case strings.HasPrefix(raw, HomeAlias+Separator):
		return Normalize(string(r.home()) + Separator + raw[len(HomeAlias)+1:])
	case strings.HasPrefix(raw, Separator):
		return Normalize(raw)
	default:
		return Normalize(string(cwd) + Separator + raw)
	}
}

func (r Resolver) home() Path {
	if r.Home == "" {
		return Root
	}
	return Normalize(string(r.Home))
}

// Segments returns the names along p from the root. The root has no segments.
func Segments(p Path) []string {
	if p.IsRoot() || p == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(string(p), Separator), Separator)
}

// Split returns the parent directory and final name of p. For the root the
// name is empty and the parent is the root itself.
func Split(p Path) (parent Path, name string) {
	if p.IsRoot() || p == "" {
		return Root, ""
	}
	i := strings.LastIndex(string(p), Separator)
	if i <= 0 {
		return Root, string(p)[i+1:]
	}
	return p[:i], string(p)[i+1:]
}

// Join appends name to dir. The result is normalized.
func Join(dir Path, name string) Path {
	return Normalize(string(dir) + Separator + name)
}

// Base returns the last element of p, or "/" for the root.
func Base(p Path) string {
	if p.IsRoot() {
		return Separator
	}
	_, name := Split(p)
	return name
}

// Shorten renders p relative to home using "~" when p is home or below it.
func Shorten(p, home Path) string {
	switch {
	case home == "" || home.IsRoot():
		return string(p)
	case p == home:
		return HomeAlias
	case strings.HasPrefix(string(p), string(home)+Separator):
		return HomeAlias + string(p)[len(home):]
	default:
		return string(p)
	}
}
