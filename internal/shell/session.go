// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/termemu/termemu/internal/vfs"
	"github.com/termemu/termemu/pkg/vpath"
)

const (
	// DefaultHostname appears in the prompt when none is configured.
	DefaultHostname = "linux"

	// DefaultPath is the PATH value of a fresh session.
	DefaultPath = "/bin:/usr/bin"
)

type (
	// SessionOptions configures NewSession.
	SessionOptions struct {
		User         string
		Hostname     string
		HistoryLimit int
		IgnoreDups   bool
	}

	// Session is the mutable state of the single running session.
	Session struct {
		user     string
		hostname string
		home     vpath.Path
		cwd      vpath.Path
		env      map[string]string
		history  *History
	}
)

// NewSession returns a session positioned in the user's home directory.
func NewSession(opts SessionOptions) *Session {
	user := opts.User
	if user == "" {
		user = vfs.DefaultUser
	}
	hostname := opts.Hostname
	if hostname == "" {
		hostname = DefaultHostname
	}
	home := vpath.Join("/home", user)
	s := &Session{
		user:     user,
		hostname: hostname,
		home:     home,
		history:  NewHistory(opts.HistoryLimit, opts.IgnoreDups),
		env: map[string]string{
			"USER": user,
			"HOME": string(home),
			"PATH": DefaultPath,
		},
	}
	s.SetCwd(home)
	return s
}

// User returns the session user name.
func (s *Session) User() string { return s.user }

// Hostname returns the host name shown in the prompt.
func (s *Session) Hostname() string { return s.hostname }

// Home returns the home directory.
func (s *Session) Home() vpath.Path { return s.home }

// Cwd returns the current working directory.
func (s *Session) Cwd() vpath.Path { return s.cwd }

// SetCwd changes the working directory and mirrors it into PWD. The caller
// is responsible for checking that p is a directory.
func (s *Session) SetCwd(p vpath.Path) {
	s.cwd = p
	s.env["PWD"] = string(p)
}

// History returns the command history.
func (s *Session) History() *History { return s.history }

// Resolver returns a path resolver anchored at the session home.
func (s *Session) Resolver() vpath.Resolver { return vpath.Resolver{Home: s.home} }

// Resolve maps raw to a canonical path relative to the working directory.
func (s *Session) Resolve(raw string) vpath.Path {
	return s.Resolver().Resolve(raw, s.cwd)
}

// Getenv returns the value of an environment variable.
func (s *Session) Getenv(name string) (string, bool) {
	v, ok := s.env[name]
	return v, ok
}

// Setenv sets an environment variable. PWD cannot be set directly.
func (s *Session) Setenv(name, value string) {
	if name == "PWD" {
		return
	}
	s.env[name] = value
}

// Environ returns the environment as sorted NAME=value pairs.
func (s *Session) Environ() []string {
	names := make([]string, 0, len(s.env))
	for name := range s.env {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name + "=" + s.env[name]
	}
	return out
}

// Prompt renders the prompt, e.g. "user@linux:~/documents$".
func (s *Session) Prompt() string {
	return fmt.Sprintf("%s@%s:%s$", s.user, s.hostname, vpath.Shorten(s.cwd, s.home))
}

// Title is a short description of the session used by views.
func (s *Session) Title() string {
	return fmt.Sprintf("%s@%s %s", s.user, s.hostname, s.cwd)
}
