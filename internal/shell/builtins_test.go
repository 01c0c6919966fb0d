// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup []string
		line  string
		want  []Line
	}{
		{"echo joins args", nil, "echo hello   world", []Line{{Kind: LinePlain, Text: "hello world"}}},
		{"echo trailing redirect is text", nil, "echo a >", []Line{{Kind: LinePlain, Text: "a >"}}},
		{"echo no args", nil, "echo", nil},
		{"pwd", nil, "pwd", []Line{{Kind: LinePlain, Text: "/home/user"}}},
		{"whoami", nil, "whoami", []Line{{Kind: LinePlain, Text: "user"}}},
		{"date", nil, "date", []Line{{Kind: LinePlain, Text: fixedNow.Format(time.UnixDate)}}},
		{"env", nil, "env", []Line{{Kind: LinePlain, Text: "HOME=/home/user\nPATH=/bin:/usr/bin\nPWD=/home/user\nUSER=user"}}},
		{"uname", nil, "uname", []Line{{Kind: LinePlain, Text: "Linux"}}},
		{"uname -a", nil, "uname -a", []Line{{Kind: LinePlain, Text: "Linux linux 1.0.0 termemu x86_64"}}},
		{"ls home", nil, "ls", []Line{{Kind: LinePlain, Text: "documents/  downloads/  hello.sh  welcome.txt"}}},
		{"ls path", nil, "ls ~/documents", []Line{{Kind: LinePlain, Text: "notes.txt  todo.txt"}}},
		{"ls file", nil, "ls /etc/passwd", []Line{{Kind: LinePlain, Text: "/etc/passwd"}}},
		{"ls empty dir", nil, "ls downloads", nil},
		{"ls long", nil, "ls -l", []Line{{Kind: LinePlain, Text: strings.Join([]string{
			"drwxr-xr-x 1 user user 4096 Jan 1 12:00 documents/",
			"drwxr-xr-x 1 user user 4096 Jan 1 12:00 downloads/",
			"-rwxr-xr-x 1 user user   32 Jan 1 12:00 hello.sh",
			"-rw-r--r-- 1 user user   39 Jan 1 12:00 welcome.txt",
		}, "\n")}}},
		{"ls long human", nil, "ls -lh /home/user/downloads /etc", []Line{{Kind: LinePlain, Text: strings.Join([]string{
			"/home/user/downloads:",
			"",
			"/etc:",
			"-rw-r--r-- 1 user user 74 B Jan 1 12:00 passwd",
		}, "\n")}}},
		{"ls missing", nil, "ls nope", []Line{{Kind: LineError, Text: "ls: cannot access 'nope': No such file or directory"}}},
		{"cd home", []string{"cd /etc"}, "cd", nil},
		{"cd file", nil, "cd welcome.txt", []Line{{Kind: LineError, Text: "cd: welcome.txt: Not a directory"}}},
		{"cd missing", nil, "cd nowhere", []Line{{Kind: LineError, Text: "cd: nowhere: No such file or directory"}}},
		{"mkdir missing operand", nil, "mkdir", []Line{{Kind: LineError, Text: "mkdir: missing operand"}}},
		{"mkdir exists", nil, "mkdir documents", []Line{{Kind: LineError, Text: "mkdir: cannot create directory 'documents': File exists"}}},
		{"mkdir root", nil, "mkdir /", []Line{{Kind: LineError, Text: "mkdir: cannot create directory '/': File exists"}}},
		{"mkdir no parent", nil, "mkdir a/b", []Line{{Kind: LineError, Text: "mkdir: cannot create directory 'a/b': No such file or directory"}}},
		{"mkdir under file", nil, "mkdir welcome.txt/x", []Line{{Kind: LineError, Text: "mkdir: cannot create directory 'welcome.txt/x': Not a directory"}}},
		{"mkdir several", nil, "mkdir x documents y", []Line{{Kind: LineError, Text: "mkdir: cannot create directory 'documents': File exists"}}},
		{"mkdir -p", nil, "mkdir -p a/b/c", nil},
		{"touch missing operand", nil, "touch", []Line{{Kind: LineError, Text: "touch: missing file operand"}}},
		{"touch no parent", nil, "touch x/y", []Line{{Kind: LineError, Text: "touch: cannot touch 'x/y': No such file or directory"}}},
		{"cat missing operand", nil, "cat", []Line{{Kind: LineError, Text: "cat: missing file operand"}}},
		{"cat directory", nil, "cat documents", []Line{{Kind: LineError, Text: "cat: documents: Is a directory"}}},
		{"cat several", nil, "cat welcome.txt nope", []Line{
			{Kind: LinePlain, Text: "Welcome to the Linux Terminal Emulator!"},
			{Kind: LineError, Text: "cat: nope: No such file or directory"},
		}},
		{"rm missing operand", nil, "rm", []Line{{Kind: LineError, Text: "rm: missing operand"}}},
		{"rm -f missing operand", nil, "rm -f", nil},
		{"rm directory", nil, "rm documents", []Line{{Kind: LineError, Text: "rm: cannot remove 'documents': Is a directory"}}},
		{"rm root", nil, "rm -rf /", []Line{{Kind: LineError, Text: "rm: cannot remove '/': Is a directory"}}},
		{"rm missing", nil, "rm ghost", []Line{{Kind: LineError, Text: "rm: cannot remove 'ghost': No such file or directory"}}},
		{"rm -f missing", nil, "rm -f ghost", nil},
		{"rm dot", nil, "rm -rf .", []Line{{Kind: LineError, Text: "rm: refusing to remove '.' or '..' directory: skipping '.'"}}},
		{"rm dotdot", nil, "rm -r documents/..", []Line{{Kind: LineError, Text: "rm: refusing to remove '.' or '..' directory: skipping 'documents/..'"}}},
		{"chmod bad mode", nil, "chmod 9x welcome.txt", []Line{{Kind: LineError, Text: "chmod: invalid mode: '9x'"}}},
		{"chmod missing file", nil, "chmod +x", []Line{{Kind: LineError, Text: "chmod: missing operand"}}},
		{"chmod missing target", nil, "chmod +x ghost", []Line{{Kind: LineError, Text: "chmod: cannot access 'ghost': No such file or directory"}}},
		{"history", []string{"pwd", "whoami"}, "history", []Line{{Kind: LinePlain, Text: "    1  pwd\n    2  whoami\n    3  history"}}},
		{"help topic", nil, "help rm", []Line{{Kind: LinePlain, Text: "rm - Remove files or directories\n  -r\tremove directories and their contents recursively\n  -R\tsame as -r\n  -f\tignore nonexistent files and missing operands"}}},
		{"help unknown topic", nil, "help nope", []Line{{Kind: LineError, Text: "help: no help topics match 'nope'"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			term, view := newTestTerminal(t)
			for _, line := range tt.setup {
				run(t, term, view, line)
			}
			got := run(t, term, view, tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("%q output mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestBuiltinEffects(t *testing.T) {
	t.Parallel()

	ctx := func(t *testing.T, lines ...string) *Terminal {
		t.Helper()
		term, view := newTestTerminal(t)
		for _, l := range lines {
			run(t, term, view, l)
		}
		return term
	}

	t.Run("cd changes cwd and PWD", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "cd documents", "cd ../downloads")
		if got := term.Session().Cwd(); got != "/home/user/downloads" {
			t.Errorf("Cwd() = %q", got)
		}
		if got, _ := term.Session().Getenv("PWD"); got != "/home/user/downloads" {
			t.Errorf("PWD = %q", got)
		}
	})

	t.Run("mkdir creates every operand", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "mkdir x documents y")
		for _, p := range []string{"/home/user/x", "/home/user/y"} {
			if !term.FS().Exists(term.Session().Resolve(p)) {
				t.Errorf("%s not created", p)
			}
		}
	})

	t.Run("touch keeps content", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "touch welcome.txt new.txt")
		if got, _ := term.FS().Read("/home/user/welcome.txt"); got == "" {
			t.Error("touch truncated existing file")
		}
		if got, err := term.FS().Read("/home/user/new.txt"); err != nil || got != "" {
			t.Errorf("new.txt = %q, %v", got, err)
		}
	})

	t.Run("rm -r removes tree", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "rm -r documents")
		if term.FS().Exists("/home/user/documents") {
			t.Error("documents still present")
		}
	})

	t.Run("echo append", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "echo one >> log.txt", "echo two >> log.txt")
		if got, _ := term.FS().Read("/home/user/log.txt"); got != "one\ntwo" {
			t.Errorf("log.txt = %q, want %q", got, "one\ntwo")
		}
	})

	t.Run("echo overwrite", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "echo one > a.txt", "echo two words > a.txt")
		if got, _ := term.FS().Read("/home/user/a.txt"); got != "two words" {
			t.Errorf("a.txt = %q", got)
		}
	})

	t.Run("chmod toggles executable", func(t *testing.T) {
		t.Parallel()
		term := ctx(t, "chmod +x welcome.txt", "chmod -x hello.sh")
		if e, _ := term.FS().Stat("/home/user/welcome.txt"); !e.Executable {
			t.Error("welcome.txt should be executable")
		}
		if e, _ := term.FS().Stat("/home/user/hello.sh"); e.Executable {
			t.Error("hello.sh should not be executable")
		}
		term2 := ctx(t, "chmod 644 hello.sh")
		if e, _ := term2.FS().Stat("/home/user/hello.sh"); e.Executable {
			t.Error("chmod 644 should clear the executable flag")
		}
	})
}

func TestClearAndCls(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"clear", "cls"} {
		term, view := newTestTerminal(t)
		run(t, term, view, "pwd")
		run(t, term, view, name)
		if len(view.Lines) != 0 {
			t.Errorf("%s left %d lines", name, len(view.Lines))
		}
	}
}

func TestHelpListsEveryBuiltin(t *testing.T) {
	t.Parallel()
	term, view := newTestTerminal(t)

	out := run(t, term, view, "help")
	if len(out) != 1 {
		t.Fatalf("help lines = %d, want 1", len(out))
	}
	text := out[0].Text
	if !strings.HasPrefix(text, "Available commands:\n") {
		t.Errorf("help output starts with %q", strings.SplitN(text, "\n", 2)[0])
	}
	for _, name := range term.Registry().Names() {
		if !strings.Contains(text, "  "+name+" ") {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode     string
		wantExec bool
		wantOK   bool
	}{
		{"+x", true, true},
		{"u+x", true, true},
		{"a+rwx", true, true},
		{"755", true, true},
		{"0755", true, true},
		{"644", false, true},
		{"+r", false, false},
		{"z+x", false, false},
		{"75", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		exec, ok := parseMode(tt.mode)
		if exec != tt.wantExec || ok != tt.wantOK {
			t.Errorf("parseMode(%q) = (%v, %v), want (%v, %v)", tt.mode, exec, ok, tt.wantExec, tt.wantOK)
		}
	}
}
