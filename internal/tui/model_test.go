// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termemu/termemu/internal/shell"
	"github.com/termemu/termemu/internal/vfs"
)

func newTestModel(t *testing.T) (*Model, *shell.Terminal) {
	t.Helper()
	term := shell.New(vfs.New(vfs.DefaultTree("user")), shell.Options{})
	m := New(Options{
		Terminal: term,
		Renderer: lipgloss.NewRenderer(io.Discard),
		Width:    100,
		Height:   30,
	})
	return m, term
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func runLine(m *Model, line string) {
	typeText(m, line)
	press(m, tea.KeyEnter)
}

func scrollback(m *Model) string {
	return strings.Join(m.lines, "\n")
}

func TestModelExecutesCommands(t *testing.T) {
	t.Parallel()

	m, term := newTestModel(t)
	runLine(m, "mkdir projects")
	runLine(m, "cd projects")
	runLine(m, "pwd")

	out := scrollback(m)
	if !strings.Contains(out, "user@linux:~$ mkdir projects") {
		t.Errorf("scrollback missing command echo:\n%s", out)
	}
	if !strings.Contains(out, "/home/user/projects") {
		t.Errorf("scrollback missing pwd output:\n%s", out)
	}
	if got := term.Session().Cwd(); got != "/home/user/projects" {
		t.Errorf("Cwd() = %q, want /home/user/projects", got)
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty after Enter", m.input.Value())
	}
	if !strings.Contains(m.View(), "user@linux:~/projects$") {
		t.Errorf("View() should show the updated prompt:\n%s", m.View())
	}
}

func TestModelBlankLineEchoesPrompt(t *testing.T) {
	t.Parallel()

	m, term := newTestModel(t)
	press(m, tea.KeyEnter)
	if len(m.lines) != 1 || !strings.HasPrefix(m.lines[0], "user@linux:~$") {
		t.Errorf("lines = %q, want one bare prompt", m.lines)
	}
	if term.Session().History().Len() != 0 {
		t.Error("blank line should not be recorded in history")
	}
}

func TestModelHistoryNavigation(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	runLine(m, "ls")
	runLine(m, "pwd")

	press(m, tea.KeyUp)
	if got := m.input.Value(); got != "pwd" {
		t.Errorf("after Up input = %q, want pwd", got)
	}
	press(m, tea.KeyUp)
	press(m, tea.KeyUp)
	if got := m.input.Value(); got != "ls" {
		t.Errorf("after Up x3 input = %q, want ls", got)
	}
	press(m, tea.KeyDown)
	if got := m.input.Value(); got != "pwd" {
		t.Errorf("after Down input = %q, want pwd", got)
	}
	press(m, tea.KeyDown)
	if got := m.input.Value(); got != "" {
		t.Errorf("after Down past newest input = %q, want empty", got)
	}
}

func TestModelTabCompletion(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	typeText(m, "cat wel")
	press(m, tea.KeyTab)
	if got := m.input.Value(); got != "cat welcome.txt" {
		t.Errorf("completed input = %q, want %q", got, "cat welcome.txt")
	}

	m.input.Reset()
	typeText(m, "c")
	press(m, tea.KeyTab)
	last := m.lines[len(m.lines)-1]
	for _, want := range []string{"cat", "cd", "chmod", "clear", "cls"} {
		if !strings.Contains(last, want) {
			t.Errorf("match list %q should contain %q", last, want)
		}
	}
}

func TestModelClear(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	runLine(m, "echo one")
	press(m, tea.KeyCtrlL)
	if len(m.lines) != 0 {
		t.Errorf("lines after Ctrl+L = %q", m.lines)
	}
	runLine(m, "echo two")
	runLine(m, "clear")
	if len(m.lines) != 0 {
		t.Errorf("lines after clear = %q", m.lines)
	}
}

func TestModelEditor(t *testing.T) {
	t.Parallel()

	m, term := newTestModel(t)
	runLine(m, "edit draft.txt")
	if !m.Editing() {
		t.Fatal("edit should open the editor overlay")
	}
	if !strings.Contains(m.View(), "Editing draft.txt") {
		t.Errorf("View() should show the editor header:\n%s", m.View())
	}

	typeText(m, "first draft")
	press(m, tea.KeyCtrlS)
	if m.Editing() {
		t.Fatal("Ctrl+S should close the editor")
	}
	content, err := term.FS().Read("/home/user/draft.txt")
	if err != nil || content != "first draft" {
		t.Errorf("Read() = %q, %v; want %q", content, err, "first draft")
	}
	if !strings.Contains(scrollback(m), "File saved: draft.txt") {
		t.Errorf("scrollback missing save confirmation:\n%s", scrollback(m))
	}

	runLine(m, "edit draft.txt")
	typeText(m, " discarded")
	press(m, tea.KeyEsc)
	if content, _ := term.FS().Read("/home/user/draft.txt"); content != "first draft" {
		t.Errorf("Esc should discard edits, content = %q", content)
	}
	if !strings.Contains(scrollback(m), "Closed draft.txt without saving.") {
		t.Errorf("scrollback missing cancel notice:\n%s", scrollback(m))
	}
}

func TestModelQuit(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	typeText(m, "x")
	press(m, tea.KeyCtrlD)
	if m.quitting {
		t.Error("Ctrl+D with pending input should not quit")
	}
	cmd := press(m, tea.KeyCtrlC)
	if cmd == nil {
		t.Fatal("Ctrl+C should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C should quit")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestModelWelcomeAndErrors(t *testing.T) {
	t.Parallel()

	term := shell.New(vfs.New(vfs.DefaultTree("user")), shell.Options{})
	m := New(Options{Terminal: term, Renderer: lipgloss.NewRenderer(io.Discard), Welcome: true})
	if len(m.lines) != len(WelcomeLines) || m.lines[0] != WelcomeLines[0] {
		t.Errorf("lines = %q, want welcome banner", m.lines)
	}

	m.Update(PersistErrorMsg{Err: errors.New("disk full")})
	if last := m.lines[len(m.lines)-1]; last != "Failed to save state: disk full" {
		t.Errorf("last line = %q", last)
	}

	runLine(m, "bogus")
	if last := m.lines[len(m.lines)-1]; last != "bogus: command not found" {
		t.Errorf("last line = %q, want command not found", last)
	}
}

func TestModelResize(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.viewport.Width != 120 || m.viewport.Height != 40-chromeHeight {
		t.Errorf("viewport = %dx%d, want 120x%d", m.viewport.Width, m.viewport.Height, 40-chromeHeight)
	}
	m.Update(tea.WindowSizeMsg{Width: 1, Height: 1})
	if m.viewport.Height < 1 {
		t.Errorf("viewport height = %d, want at least 1", m.viewport.Height)
	}
}

func TestModelInputWidthFollowsPrompt(t *testing.T) {
	t.Parallel()

	m, term := newTestModel(t)
	for _, line := range []string{"cd documents", "mkdir -p a/very/long/nested/path", "cd a/very/long/nested/path", "cd /"} {
		runLine(m, line)
		want := max(1, 100-lipgloss.Width(term.Prompt())-2)
		if m.input.Width != want {
			t.Errorf("after %q input width = %d, want %d", line, m.input.Width, want)
		}
	}
}
