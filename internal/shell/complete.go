// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"strings"
	"unicode/utf8"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

type (
	// Completion is the result of completing partial input.
	Completion struct {
		// Completed is the full input line with the last token completed.
		// It equals the input when several candidates share no longer prefix.
		Completed string
		// OK is false when there is nothing to complete.
		OK bool
		// Matches lists the candidates when more than one exists.
		Matches []Match
	}

	// Match is one completion candidate.
	Match struct {
		Name string
		Dir  bool
	}
)

// Display returns the candidate as shown in a listing; directories end in "/".
func (m Match) Display() string {
	if m.Dir {
		return m.Name + "/"
	}
	return m.Name
}

// Complete proposes a completion for input. A single token is completed
// against names; otherwise the last space-separated token is completed as a
// path relative to the session's working directory. Complete never mutates fs.
func Complete(input string, names []string, fs *vfs.FileSystem, s *Session) Completion {
	if strings.TrimSpace(input) == "" {
		return Completion{}
	}
	parts := strings.Split(input, " ")
	if len(parts) == 1 {
		return completeCommand(input, names)
	}
	head := strings.Join(parts[:len(parts)-1], " ") + " "
	c := completePath(parts[len(parts)-1], fs, s)
	if c.OK {
		c.Completed = head + c.Completed
	}
	return c
}

func completeCommand(token string, names []string) Completion {
	var matches []Match
	for _, name := range names {
		if strings.HasPrefix(name, token) {
			matches = append(matches, Match{Name: name})
		}
	}
	switch len(matches) {
	case 0:
		return Completion{}
	case 1:
		return Completion{Completed: matches[0].Name, OK: true}
	}
	completed := token
	if prefix := commonPrefix(matches); len(prefix) > len(token) {
		completed = prefix
	}
	return Completion{Completed: completed, OK: true, Matches: matches}
}

func completePath(token string, fs *vfs.FileSystem, s *Session) Completion {
	if token == vpath.HomeAlias {
		return Completion{Completed: vpath.HomeAlias + vpath.Separator, OK: true}
	}

	typedDir, fragment := "", token
	dir := s.Cwd()
	if i := strings.LastIndex(token, vpath.Separator); i >= 0 {
		typedDir, fragment = token[:i+1], token[i+1:]
		if raw := token[:i]; raw == "" {
			dir = vpath.Root
		} else {
			dir = s.Resolve(raw)
		}
	}

	entries, err := fs.List(dir)
	if err != nil {
		return Completion{}
	}
	var matches []Match
	for _, e := range entries {
		if strings.HasPrefix(e.Name, fragment) {
			matches = append(matches, Match{Name: e.Name, Dir: e.Kind == vfs.KindDirectory})
		}
	}

	switch len(matches) {
	case 0:
		return Completion{}
	case 1:
		return Completion{Completed: typedDir + matches[0].Display(), OK: true}
	}
	completed := token
	if prefix := commonPrefix(matches); len(prefix) > len(fragment) {
		completed = typedDir + prefix
	}
	return Completion{Completed: completed, OK: true, Matches: matches}
}

// commonPrefix returns the longest prefix of whole runes shared by every
// match name.
func commonPrefix(matches []Match) string {
	prefix := matches[0].Name
	for _, m := range matches[1:] {
		j := 0
		for j < len(prefix) && j < len(m.Name) {
			_, size := utf8.DecodeRuneInString(prefix[j:])
			if !strings.HasPrefix(m.Name[j:], prefix[j:j+size]) {
				break
			}
			j += size
		}
		prefix = prefix[:j]
	}
	return prefix
}
