// SPDX-License-Identifier: MPL-2.0

package shell

import "golang.org/x/exp/slices"

// DefaultHistoryLimit is the number of entries kept when no limit is configured.
const DefaultHistoryLimit = 50

// History is a bounded list of submitted lines with a navigation cursor.
// The cursor ranges over [0, Len()]; Len() is the past-end position where the
// input field is empty.
type History struct {
	entries    []string
	cursor     int
	limit      int
	ignoreDups bool
}

// NewHistory returns an empty History that keeps at most limit entries.
// A non-positive limit selects DefaultHistoryLimit. With ignoreDups set, a
// line equal to the most recent entry is not recorded again.
func NewHistory(limit int, ignoreDups bool) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, ignoreDups: ignoreDups}
}

// Add records line and parks the cursor past the end. The oldest entry is
// evicted once the limit is reached.
func (h *History) Add(line string) {
	if !h.ignoreDups || len(h.entries) == 0 || h.entries[len(h.entries)-1] != line {
		h.entries = append(h.entries, line)
		if over := len(h.entries) - h.limit; over > 0 {
			h.entries = slices.Delete(h.entries, 0, over)
		}
	}
	h.cursor = len(h.entries)
}

// Previous moves the cursor one entry back and returns that entry. At the
// oldest entry the cursor stays put. ok is false when the history is empty.
func (h *History) Previous() (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves the cursor one entry forward. Moving past the newest entry parks
// the cursor at the end and returns "".
func (h *History) Next() string {
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor]
	}
	h.cursor = len(h.entries)
	return ""
}

// Cursor returns the current cursor position.
func (h *History) Cursor() int { return h.cursor }

// Len returns the number of recorded entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the recorded lines, oldest first.
func (h *History) Entries() []string { return slices.Clone(h.entries) }

// Limit returns the maximum number of entries kept.
func (h *History) Limit() int { return h.limit }
