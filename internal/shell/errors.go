// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"

	"github.com/termemu/termemu/internal/vfs"
)

var (
	// ErrMissingOperand is returned when a command needs an argument it did not get.
	ErrMissingOperand = errors.New("missing operand")
	// ErrUnknownCommand is returned for names that are not registered.
	ErrUnknownCommand = errors.New("command not found")
	// ErrPermissionDenied is returned when running a file that is not executable.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidArgument is returned for arguments a command cannot interpret.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoEditor is returned by edit when the view cannot host an editor.
	ErrNoEditor = errors.New("no editor available")
)

// CommandError is a failure reported by a builtin. Its message is the full
// line shown to the user; Err is the underlying cause for errors.Is().
type CommandError struct {
	Command string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Command + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error { return e.Err }

// failf builds a CommandError for cmd with a formatted message.
func failf(cmd string, cause error, format string, args ...any) error {
	return &CommandError{Command: cmd, Message: fmt.Sprintf(format, args...), Err: cause}
}

// missingOperand reports a command called without its required argument.
func missingOperand(cmd, what string) error {
	msg := "missing operand"
	if what != "" {
		msg = "missing " + what + " operand"
	}
	return &CommandError{Command: cmd, Message: msg, Err: ErrMissingOperand}
}

// reason maps a filesystem error to the conventional strerror text.
func reason(err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound), errors.Is(err, vfs.ErrParentNotFound):
		return "No such file or directory"
	case errors.Is(err, vfs.ErrNotADirectory), errors.Is(err, vfs.ErrParentNotADirectory):
		return "Not a directory"
	case errors.Is(err, vfs.ErrIsADirectory), errors.Is(err, vfs.ErrIsADirectoryNotRecursive):
		return "Is a directory"
	case errors.Is(err, vfs.ErrAlreadyExists):
		return "File exists"
	case errors.Is(err, vfs.ErrMissingName), errors.Is(err, ErrInvalidArgument):
		return "Invalid argument"
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied"
	default:
		return err.Error()
	}
}
