// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/termemu/termemu/internal/vfs"
)

// runScript "executes" the file named by a "./name" command. The file must be
// executable. Nothing is interpreted except the first echo call, whose
// arguments become the output; a file without echo just reports that it ran.
func runScript(hc *HandlerContext, cmd Command) (string, error) {
	name := cmd.Name
	p := hc.Session.Resolve(name)
	n, ok := hc.FS.Lookup(p)
	switch {
	case !ok:
		return "", failf(name, vfs.ErrNotFound, "%s", reason(vfs.ErrNotFound))
	case n.IsDir():
		return "", failf(name, vfs.ErrIsADirectory, "%s", reason(vfs.ErrIsADirectory))
	case !n.Executable:
		return "", failf(name, ErrPermissionDenied, "%s", reason(ErrPermissionDenied))
	}

	if !strings.Contains(n.Content, "echo") {
		hc.Terminal.Write(Line{Kind: LineSuccess, Text: "Executed: " + strings.TrimPrefix(name, "./")})
		return "", nil
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(n.Content), name)
	if err != nil {
		return "", failf(name, err, "%v", err)
	}
	out, _ := firstEcho(file, hc.Session)
	return out, nil
}

// firstEcho finds the first simple "echo" command in file and renders its
// arguments. Parameter expansions are looked up in the session environment.
func firstEcho(file *syntax.File, s *Session) (string, bool) {
	var (
		out   string
		found bool
	)
	syntax.Walk(file, func(node syntax.Node) bool {
		if found {
			return false
		}
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 || call.Args[0].Lit() != "echo" {
			return true
		}
		words := make([]string, 0, len(call.Args)-1)
		for _, w := range call.Args[1:] {
			words = append(words, renderParts(w.Parts, s))
		}
		out, found = strings.Join(words, " "), true
		return false
	})
	return out, found
}

func renderParts(parts []syntax.WordPart, s *Session) string {
	var sb strings.Builder
	for _, part := range parts {
		switch x := part.(type) {
		case *syntax.Lit:
			sb.WriteString(x.Value)
		case *syntax.SglQuoted:
			sb.WriteString(x.Value)
		case *syntax.DblQuoted:
			sb.WriteString(renderParts(x.Parts, s))
		case *syntax.ParamExp:
			if x.Param != nil {
				v, _ := s.Getenv(x.Param.Value)
				sb.WriteString(v)
			}
		}
	}
	return sb.String()
}
