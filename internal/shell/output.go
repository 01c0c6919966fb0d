// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

const (
	// LinePlain is regular command output.
	LinePlain LineKind = iota
	// LineInfo is an informational notice from the emulator itself.
	LineInfo
	// LineError is a failure message.
	LineError
	// LineSuccess confirms a completed action.
	LineSuccess
	// LineCommand echoes a submitted input line after its prompt.
	LineCommand
)

type (
	// LineKind is the semantic category of an output line.
	LineKind int

	// Line is one unit of output. Text may span several physical lines.
	// Prompt is only set for LineCommand.
	Line struct {
		Kind   LineKind
		Text   string
		Prompt string
	}

	// View receives the output of a Terminal.
	View interface {
		Write(Line)
		Clear()
	}

	// Editor is implemented by views that can host the full-screen file
	// editor used by the edit command.
	Editor interface {
		OpenEditor(EditRequest) error
	}

	// EditRequest describes a file opened for editing. The view calls
	// Terminal.SaveEdit with Path when the user saves.
	EditRequest struct {
		Path    vpath.Path
		Display string
		Content string
	}

	// Persister receives state that should be saved. Implementations must not
	// block the caller.
	Persister interface {
		SaveSnapshot(root *vfs.Node)
		SaveDirectory(cwd vpath.Path)
	}

	// BufferView is a View that records lines in memory.
	BufferView struct {
		Lines []Line
	}

	nopView struct{}
)

// String returns the name of the line kind.
func (k LineKind) String() string {
	switch k {
	case LinePlain:
		return "plain"
	case LineInfo:
		return "info"
	case LineError:
		return "error"
	case LineSuccess:
		return "success"
	case LineCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Write appends l.
func (b *BufferView) Write(l Line) { b.Lines = append(b.Lines, l) }

// Clear drops all recorded lines.
func (b *BufferView) Clear() { b.Lines = nil }

// Texts returns the text of every recorded line except command echoes.
func (b *BufferView) Texts() []string {
	var out []string
	for _, l := range b.Lines {
		if l.Kind != LineCommand {
			out = append(out, l.Text)
		}
	}
	return out
}

// Last returns the most recent line, or the zero Line.
func (b *BufferView) Last() Line {
	if len(b.Lines) == 0 {
		return Line{}
	}
	return b.Lines[len(b.Lines)-1]
}

func (nopView) Write(Line) {}

func (nopView) Clear() {}
