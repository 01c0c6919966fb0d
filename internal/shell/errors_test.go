// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"
	"testing"

	"github.com/termemu/termemu/internal/vfs"
)

func TestReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{vfs.ErrNotFound, "No such file or directory"},
		{&vfs.PathError{Op: "mkdir", Path: "/a/b", Err: vfs.ErrParentNotFound}, "No such file or directory"},
		{vfs.ErrParentNotADirectory, "Not a directory"},
		{vfs.ErrIsADirectoryNotRecursive, "Is a directory"},
		{vfs.ErrAlreadyExists, "File exists"},
		{ErrPermissionDenied, "Permission denied"},
		{fmt.Errorf("disk on fire"), "disk on fire"},
	}
	for _, tt := range tests {
		if got := reason(tt.err); got != tt.want {
			t.Errorf("reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	t.Parallel()

	err := failf("cat", vfs.ErrNotFound, "%s: %s", "x", reason(vfs.ErrNotFound))
	if got, want := err.Error(), "cat: x: No such file or directory"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, vfs.ErrNotFound) {
		t.Error("CommandError should unwrap to its cause")
	}
	if got := missingOperand("touch", "file").Error(); got != "touch: missing file operand" {
		t.Errorf("missingOperand() = %q", got)
	}
	if !errors.Is(missingOperand("rm", ""), ErrMissingOperand) {
		t.Error("missingOperand() should wrap ErrMissingOperand")
	}
}
