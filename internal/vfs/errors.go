// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"errors"
	"fmt"

	"github.com/termemu/termemu/pkg/vpath"
)

var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("no such file or directory")
	// ErrNotADirectory is returned when a directory was required but a file was found.
	ErrNotADirectory = errors.New("not a directory")
	// ErrIsADirectory is returned when a file was required but a directory was found.
	ErrIsADirectory = errors.New("is a directory")
	// ErrAlreadyExists is returned when creating a directory over an existing node.
	ErrAlreadyExists = errors.New("file exists")
	// ErrMissingName is returned when an operation needs a final name but got the root.
	ErrMissingName = errors.New("missing name")
	// ErrParentNotFound is returned when the parent of a new node does not exist.
	ErrParentNotFound = errors.New("parent directory does not exist")
	// ErrParentNotADirectory is returned when the parent of a new node is a file.
	ErrParentNotADirectory = errors.New("parent is not a directory")
	// ErrIsADirectoryNotRecursive is returned when removing a directory without recursion.
	ErrIsADirectoryNotRecursive = errors.New("is a directory (use recursive removal)")
)

// PathError records the operation and path that caused a filesystem error.
// Err is always one of the package sentinels.
type PathError struct {
	Op   string
	Path vpath.Path
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is() compatibility.
func (e *PathError) Unwrap() error { return e.Err }

func pathErr(op string, p vpath.Path, err error) error {
	return &PathError{Op: op, Path: p, Err: err}
}
