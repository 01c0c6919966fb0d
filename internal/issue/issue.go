// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	PersistenceUnavailableId
	SnapshotCorruptId
	SSHServerStartFailedId
	TerminalRequiredId
	CommandNotFoundId
	ScriptNotExecutableId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	topic    string      // name accepted by "termemu guide"
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Topic() string {
	return i.topic
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		topic: "config",
		mdMsg: `
# Configuration could not be loaded

termemu reads ` + "`config.cue`" + ` from its configuration directory, or the
file passed with ` + "`--config`" + `.

## Things you can try
- Show where termemu looks for the file:
~~~
$ termemu config path
~~~
- Print the defaults as a starting point:
~~~
$ termemu config dump > config.cue
~~~
- Check the value types. For example:
~~~cue
history: {
	limit:      50
	ignore_dups: false
}
persistence: backend: "file"
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	persistenceUnavailableIssue = &Issue{
		id:    PersistenceUnavailableId,
		topic: "persistence",
		mdMsg: `
# Saved state is unavailable

The file system and working directory are saved after every command. The
configured backend could not be opened, so nothing would be kept.

## Backends
- ` + "`none`" + `: nothing is saved
- ` + "`memory`" + `: kept for the lifetime of the process
- ` + "`file`" + `: a TOML document
- ` + "`sqlite`" + `: a SQLite database

## Things you can try
- Make sure the parent directory of ` + "`persistence.path`" + ` is writable
- Start without saved state:
~~~
$ TERMEMU_PERSISTENCE_BACKEND=none termemu
~~~`,
	}

	snapshotCorruptIssue = &Issue{
		id:    SnapshotCorruptId,
		topic: "snapshot",
		mdMsg: `
# Saved file system is damaged

The stored tree could not be decoded or failed validation. termemu started
from the default tree instead; the damaged state is overwritten on the next
save.

## Things you can try
- Reset the saved state explicitly:
~~~
$ termemu reset --yes
~~~
- Inspect the file backend document by hand; every directory needs
  ` + "`kind = 'directory'`" + ` and names may not contain ` + "`/`" + `.`,
	}

	sshServerStartFailedIssue = &Issue{
		id:    SSHServerStartFailedId,
		topic: "ssh",
		mdMsg: `
# SSH front end failed to start

## Things you can try
- Pick another port:
~~~
$ TERMEMU_SSH_PORT=2323 termemu serve
~~~
- Check that ` + "`ssh.host_key_path`" + ` points to a writable location; a key is
  generated there on first start.`,
	}

	terminalRequiredIssue = &Issue{
		id:    TerminalRequiredId,
		topic: "terminal",
		mdMsg: `
# An interactive terminal is required

The full-screen session needs a TTY on standard input.

## Things you can try
- Run single commands instead:
~~~
$ termemu exec "ls -l" "cat welcome.txt"
~~~
- Pipe a script:
~~~
$ printf 'mkdir demo\ncd demo\npwd\n' | termemu exec
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id:    CommandNotFoundId,
		topic: "commands",
		mdMsg: `
# Available commands

The shell only knows its built-in commands. Type ` + "`help`" + ` in a session for
the full list, or ` + "`help <command>`" + ` for its flags.

| Command | Purpose |
|---------|---------|
| ls, cd, pwd | navigate |
| mkdir, touch, rm | create and remove |
| cat, echo, edit | read and write files |
| chmod +x, ./script | run scripts |
| history, clear, resetfs | session state |`,
	}

	scriptNotExecutableIssue = &Issue{
		id:    ScriptNotExecutableId,
		topic: "scripts",
		mdMsg: `
# Running scripts

A file runs with ` + "`./name`" + ` only when it is marked executable.

~~~
$ echo 'echo "hi $USER"' > hi.sh
$ chmod +x hi.sh
$ ./hi.sh
hi user
~~~

Only the first ` + "`echo`" + ` in a script produces output.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		persistenceUnavailableIssue.Id(): persistenceUnavailableIssue,
		snapshotCorruptIssue.Id():        snapshotCorruptIssue,
		sshServerStartFailedIssue.Id():   sshServerStartFailedIssue,
		terminalRequiredIssue.Id():       terminalRequiredIssue,
		commandNotFoundIssue.Id():        commandNotFoundIssue,
		scriptNotExecutableIssue.Id():    scriptNotExecutableIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its guide topic.
func Lookup(topic string) (*Issue, bool) {
	for _, i := range issues {
		if i.topic == topic {
			return i, true
		}
	}
	return nil, false
}

// Topics returns the guide topics in Id order.
func Topics() []string {
	values := Values()
	out := make([]string, len(values))
	for n, i := range values {
		out[n] = i.topic
	}
	return out
}
