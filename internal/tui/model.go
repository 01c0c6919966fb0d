// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/termemu/termemu/internal/shell"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// title line + prompt line
	chromeHeight = 2
	// editor header + border
	editorChrome = 3
)

// WelcomeLines are written when a session starts with Options.Welcome set.
var WelcomeLines = []string{
	"Welcome to the Linux Terminal Emulator!",
	`Type "help" to see available commands.`,
}

type (
	// Options configures New.
	Options struct {
		// Terminal is the session driven by the model. Required.
		Terminal *shell.Terminal
		// Context is passed to Terminal.Execute. Defaults to context.Background.
		Context context.Context
		// Renderer styles the output. Nil uses the default renderer.
		Renderer *lipgloss.Renderer
		// Welcome writes WelcomeLines before the first prompt.
		Welcome bool
		// Width and Height are the initial size until a WindowSizeMsg arrives.
		Width  int
		Height int
	}

	// Model is the interactive shell. It implements tea.Model, shell.View
	// and shell.Editor.
	Model struct {
		term   *shell.Terminal
		ctx    context.Context
		styles Styles

		viewport viewport.Model
		input    textinput.Model
		editor   textarea.Model
		editing  *shell.EditRequest

		lines    []string
		width    int
		height   int
		quitting bool
	}

	// PersistErrorMsg reports a failed background save to the model.
	PersistErrorMsg struct {
		Err error
	}

	// ErrorRelay forwards background errors to a running program. Errors
	// reported before Attach are dropped.
	ErrorRelay struct {
		mu sync.Mutex
		p  *tea.Program
	}
)

// New returns a model bound to opts.Terminal and installs it as the
// terminal's view.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	in := textinput.New()
	in.Prompt = ""
	in.Focus()

	ed := textarea.New()
	ed.CharLimit = 0
	ed.MaxHeight = 0
	ed.ShowLineNumbers = true

	m := &Model{
		term:     opts.Terminal,
		ctx:      ctx,
		styles:   NewStyles(opts.Renderer),
		viewport: viewport.New(width, height-chromeHeight),
		input:    in,
		editor:   ed,
	}
	m.resize(width, height)
	m.term.SetView(m)

	if opts.Welcome {
		for _, text := range WelcomeLines {
			m.Write(shell.Line{Kind: shell.LineInfo, Text: text})
		}
	}
	return m
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case PersistErrorMsg:
		m.Write(shell.Line{Kind: shell.LineError, Text: "Failed to save state: " + msg.Err.Error()})
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing != nil {
			return m.updateEditor(msg)
		}
		return m.updatePrompt(msg)
	}

	var cmd tea.Cmd
	if m.editing != nil {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	history := m.term.Session().History()

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.KeyEnter:
		m.submit()
		return m, nil

	case tea.KeyUp:
		if line, ok := history.Previous(); ok {
			m.setInput(line)
		}
		return m, nil

	case tea.KeyDown:
		m.setInput(history.Next())
		return m, nil

	case tea.KeyTab:
		m.complete()
		return m, nil

	case tea.KeyCtrlL:
		m.Clear()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlS:
		req, content := *m.editing, m.editor.Value()
		m.closeEditor()
		// The failure, if any, is already on the scrollback.
		_ = m.term.SaveEdit(req, content)
		return m, nil

	case tea.KeyEsc:
		display := m.editing.Display
		m.closeEditor()
		m.Write(shell.Line{Kind: shell.LineInfo, Text: "Closed " + display + " without saving."})
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// submit runs the prompt contents. A blank line only echoes the prompt.
func (m *Model) submit() {
	line := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(line) == "" {
		m.Write(shell.Line{Kind: shell.LineCommand, Prompt: m.term.Prompt()})
		return
	}
	_ = m.term.Execute(m.ctx, line)
	m.fitInput()
}

func (m *Model) complete() {
	c := m.term.Complete(m.input.Value())
	if !c.OK {
		return
	}
	m.setInput(c.Completed)
	if len(c.Matches) > 1 {
		names := make([]string, len(c.Matches))
		for i, match := range c.Matches {
			names[i] = match.Display()
		}
		m.Write(shell.Line{Kind: shell.LineInfo, Text: strings.Join(names, "  ")})
	}
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// Write appends l to the scrollback and scrolls to the bottom.
func (m *Model) Write(l shell.Line) {
	m.lines = append(m.lines, m.styles.Render(l))
	m.refresh()
}

// Clear empties the scrollback.
func (m *Model) Clear() {
	m.lines = nil
	m.refresh()
}

// OpenEditor shows req in the editor overlay until it is saved or closed.
func (m *Model) OpenEditor(req shell.EditRequest) error {
	m.editing = &req
	m.editor.SetValue(req.Content)
	m.editor.Focus()
	m.input.Blur()
	return nil
}

func (m *Model) closeEditor() {
	m.editing = nil
	m.editor.Blur()
	m.editor.Reset()
	m.input.Focus()
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)
	m.fitInput()
	m.editor.SetWidth(max(1, width-2))
	m.editor.SetHeight(max(1, height-editorChrome))
	m.refresh()
}

// fitInput sizes the input to the space left after the prompt, which
// changes with the working directory.
func (m *Model) fitInput() {
	m.input.Width = max(1, m.width-lipgloss.Width(m.term.Prompt())-2)
}

// Editing reports whether the editor overlay is open.
func (m *Model) Editing() bool { return m.editing != nil }

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.editing != nil {
		header := m.styles.Title.Render("Editing "+m.editing.Display) + "  " +
			m.styles.Hint.Render("ctrl+s save • esc cancel")
		return lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Editor.Render(m.editor.View()))
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.term.Session().Title()))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Prompt.Render(m.term.Prompt()))
	sb.WriteString(" ")
	sb.WriteString(m.input.View())
	return sb.String()
}

// NewProgram returns a full-screen program running m.
func NewProgram(m *Model, opts ...tea.ProgramOption) *tea.Program {
	base := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	return tea.NewProgram(m, append(base, opts...)...)
}

// Attach routes later reports to p.
func (r *ErrorRelay) Attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

// Report sends err to the attached program as a PersistErrorMsg.
func (r *ErrorRelay) Report(err error) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(PersistErrorMsg{Err: err})
	}
}
