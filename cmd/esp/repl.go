package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/edwingeng/deque"
	"github.com/mgomes/espscript/esp"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

var replWords = []string{"echo", "let", "var", "const", "int", "float", "string", "boolean", "true", "false"}

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// replSink collects what the engine prints for a single input.
type replSink struct {
	out   bytes.Buffer
	diags []string
}

func (s *replSink) reset() {
	s.out.Reset()
	s.diags = s.diags[:0]
}

type replModel struct {
	textInput   textinput.Model
	engine      *esp.Engine
	sink        *replSink
	pending     deque.Deque
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

// runPendingMsg asks the model to execute the next queued line.
type runPendingMsg struct{}

func runPending() tea.Msg { return runPendingMsg{} }

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlV key.Binding
	CtrlH key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlV: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "toggle vars"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "echo text, a declaration, or an expression..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "esp> "

	sink := &replSink{}
	engine := esp.MustNewEngine(esp.Config{
		Stdout: &sink.out,
		Stderr: &sink.out,
		Diagnostics: func(d esp.Diagnostic) {
			sink.diags = append(sink.diags, d.String())
		},
	})

	return replModel{
		textInput:  ti,
		engine:     engine,
		sink:       sink,
		pending:    deque.NewDeque(),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case runPendingMsg:
		return m.runNextPending()

	case tea.KeyMsg:
		if msg.Paste && strings.ContainsAny(string(msg.Runes), "\r\n") {
			return m.queuePaste(string(msg.Runes))
		}
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlV):
			m.showVars = !m.showVars
			return m, nil

		case key.Matches(msg, keys.CtrlH):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := esp.TrimLine(m.textInput.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			m, _ = m.record(input)
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// replResult is what one input line produced.
type replResult struct {
	output string
	isErr  bool
	fatal  bool
}

func (m replModel) record(input string) (replModel, replResult) {
	res := m.run(input)
	m.history = append(m.history, historyEntry{
		input:  input,
		output: res.output,
		isErr:  res.isErr,
	})
	return m, res
}

func (m replModel) runNextPending() (replModel, tea.Cmd) {
	if m.pending.Empty() {
		return m, nil
	}
	line := m.pending.PopFront().(string)
	m, res := m.record(line)
	if res.fatal {
		dropped := m.pending.Len()
		m.clearPending()
		if dropped > 0 {
			m.history = append(m.history, historyEntry{
				output: fmt.Sprintf("Stopped; %d queued line(s) dropped", dropped),
				isErr:  true,
			})
		}
		return m, nil
	}
	if m.pending.Empty() {
		return m, nil
	}
	return m, runPending
}

func (m replModel) clearPending() {
	for !m.pending.Empty() {
		m.pending.PopFront()
	}
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":reset", ":r":
		m.engine.Reset()
		m.clearPending()
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Environment reset",
			isErr:  false,
		})
	case ":load", ":l":
		if len(parts) != 2 {
			m.history = append(m.history, historyEntry{
				input:  input,
				output: "Usage: :load <script>",
				isErr:  true,
			})
			return m, nil
		}
		count, err := m.queueFile(parts[1])
		if err != nil {
			m.history = append(m.history, historyEntry{input: input, output: err.Error(), isErr: true})
			return m, nil
		}
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Queued %d line(s)", count),
		})
		if count == 0 {
			return m, nil
		}
		return m, runPending
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

func (m replModel) queueFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read script: %w", err)
	}
	return len(m.queueLines(string(data))), nil
}

// queuePaste runs a multi-line paste one statement at a time. Whatever was
// already typed is the start of the first line.
func (m replModel) queuePaste(text string) (replModel, tea.Cmd) {
	queued := m.queueLines(m.textInput.Value() + text)
	m.cmdHistory = append(m.cmdHistory, queued...)
	m.textInput.SetValue("")
	m.historyIdx = -1
	if len(queued) == 0 {
		return m, nil
	}
	return m, runPending
}

func (m replModel) queueLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var queued []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r", "\n"), "\n") {
		line := esp.TrimLine(raw)
		if line == "" {
			continue
		}
		m.pending.PushBack(line)
		queued = append(queued, line)
	}
	return queued
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	if input == "" {
		return m
	}

	words := strings.Fields(input)
	if len(words) == 0 {
		return m
	}
	lastWord := words[len(words)-1]
	if strings.HasSuffix(input, " ") {
		return m
	}

	var completions []string
	for _, w := range replWords {
		if strings.HasPrefix(w, lastWord) {
			completions = append(completions, w)
		}
	}
	for _, name := range m.engine.Store().Names() {
		if strings.HasPrefix(name, lastWord) {
			completions = append(completions, name)
		}
	}

	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			input:  "",
			output: "Completions: " + strings.Join(completions, ", "),
			isErr:  false,
		})
	}

	return m
}

// run executes statements through the engine and shows any other input as
// the value it evaluates to.
func (m replModel) run(input string) replResult {
	switch esp.Classify(input) {
	case esp.StatementEcho, esp.StatementDeclaration:
		return m.execStatement(input)
	default:
		val, err := m.engine.Evaluate(input)
		if err != nil {
			return replResult{output: err.Error(), isErr: true}
		}
		return replResult{output: formatValue(val, esp.ResolveRule(m.engine.Store(), input))}
	}
}

func (m replModel) execStatement(input string) replResult {
	m.sink.reset()
	err := m.engine.Exec(input)
	output := strings.TrimSuffix(m.sink.out.String(), "\n")
	if err != nil {
		var runtimeErr *esp.RuntimeError
		if errors.As(err, &runtimeErr) {
			return replResult{output: runtimeErr.Message, isErr: true, fatal: true}
		}
		return replResult{output: err.Error(), isErr: true, fatal: true}
	}
	if len(m.sink.diags) > 0 {
		lines := append([]string{output}, m.sink.diags...)
		return replResult{output: strings.Join(lines, "\n"), isErr: true}
	}
	if esp.Classify(input) == esp.StatementEcho {
		return replResult{output: output}
	}

	decl := esp.ParseDeclaration(input)
	if decl.Identifier == "" || !esp.KnownType(decl.Type) {
		return replResult{output: "ignored"}
	}
	val, ok := m.engine.Store().Get(decl.Identifier)
	if !ok {
		return replResult{output: "ignored"}
	}
	return replResult{output: fmt.Sprintf("%s = %s", decl.Identifier, formatValue(val, esp.RuleVariable))}
}

func formatValue(v esp.Value, rule esp.Rule) string {
	var shown string
	switch v.Kind() {
	case esp.KindEmpty:
		shown = "<empty>"
	case esp.KindString:
		shown = fmt.Sprintf("%q", v.String())
	case esp.KindInt, esp.KindFloat, esp.KindBool:
		shown = v.String()
	}
	return fmt.Sprintf("%s (%s, %s)", shown, v.Kind(), rule)
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("ESP REPL")
	version := mutedStyle.Render("v0.1.0")
	b.WriteString(header + " " + version + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8 // header, input, help hint, etc.
	if m.showHelp {
		reservedLines += 11
	}
	if m.showVars {
		reservedLines += m.engine.Store().Len() + 3
	}
	availableHeight := m.height - reservedLines

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}
	if historyStart < 0 {
		historyStart = 0
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showVars {
		b.WriteString(renderVarsPanel(m.engine.Store()))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+v") + helpDescStyle.Render(" vars  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func renderVarsPanel(store *esp.Store) string {
	if store.Len() == 0 {
		return borderStyle.Render(mutedStyle.Render("No variables defined"))
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Variables"))
	varNameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	for _, name := range store.Names() {
		val, _ := store.Get(name)
		line := fmt.Sprintf("  %s = %s", varNameStyle.Render(name), formatValue(val, esp.RuleVariable))
		lines = append(lines, line)
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate command history"},
		{"Tab", "Autocomplete"},
		{"Enter", "Run a statement or evaluate an expression"},
		{":help", "Toggle this help"},
		{":vars", "Toggle variables panel"},
		{":load", "Run a script file line by line"},
		{":clear", "Clear history"},
		{":reset", "Reset variables"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-8s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
