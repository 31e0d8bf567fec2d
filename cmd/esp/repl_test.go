package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mgomes/espscript/esp"
)

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":help")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if rm.quitting {
		t.Fatalf("quitting should remain false")
	}
	if !rm.showHelp {
		t.Fatalf("help toggle should be enabled")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestRunDeclarationStoresVariable(t *testing.T) {
	m := newREPLModel()

	res := m.run("let int score = 42")
	if res.isErr {
		t.Fatalf("unexpected eval error: %s", res.output)
	}
	if res.output != "score = 42 (int, variable)" {
		t.Fatalf("unexpected output %q", res.output)
	}

	score, ok := m.engine.Store().Get("score")
	if !ok {
		t.Fatalf("expected score to be stored")
	}
	if score.Kind() != esp.KindInt || score.Int() != 42 {
		t.Fatalf("unexpected score value: %#v", score)
	}
}

func TestRunEchoAndExpressions(t *testing.T) {
	m := newREPLModel()
	if res := m.run("let float half = 0.5"); res.isErr {
		t.Fatalf("declaration failed")
	}

	cases := []struct {
		input string
		want  string
		isErr bool
	}{
		{"echo half is {half}", " half is 0.5", false},
		{"0.5 * 4", "2 (float, arithmetic)", false},
		{"half * 4", "0 (float, arithmetic)", false},
		{"17", "17 (int, integer literal)", false},
		{"word", `"word" (string, string literal)`, false},
		{"1 / 0", `division by zero in "1 / 0"`, true},
		{"let int broken = x", `malformed literal in "x": expected digits`, true},
		{"let list l = 1", "ignored", false},
	}
	for _, tc := range cases {
		res := m.run(tc.input)
		if res.isErr != tc.isErr || res.output != tc.want {
			t.Fatalf("run(%q) = (%q, %t), want (%q, %t)", tc.input, res.output, res.isErr, tc.want, tc.isErr)
		}
	}
}

func TestRunUnterminatedSpanShowsDiagnostic(t *testing.T) {
	m := newREPLModel()

	res := m.run("echo Hi {name")
	if !res.isErr {
		t.Fatalf("expected diagnostic to be flagged")
	}
	if !strings.HasPrefix(res.output, " Hi \n") || !strings.Contains(res.output, "malformed interpolation") {
		t.Fatalf("unexpected output %q", res.output)
	}
}

func TestResetCommandClearsVariables(t *testing.T) {
	m := newREPLModel()
	m.run("let int x = 1")
	m.textInput.SetValue(":reset")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	if rm.engine.Store().Len() != 0 {
		t.Fatalf("expected empty store after reset, got %v", rm.engine.Store().Names())
	}
}

func TestLoadCommandQueuesAndRunsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queued.esp")
	script := "let int a = 2\n\necho a={a}\nlet int bad = zz\necho unreachable\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	m := newREPLModel()
	m.textInput.SetValue(":load " + path)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	if cmd == nil {
		t.Fatalf("expected a command to drain the queue")
	}
	if rm.pending.Len() != 4 {
		t.Fatalf("expected 4 queued lines, got %d", rm.pending.Len())
	}

	for cmd != nil {
		model, cmd = rm.Update(cmd())
		rm = model.(replModel)
	}

	if !rm.pending.Empty() {
		t.Fatalf("queue should be drained, %d left", rm.pending.Len())
	}
	var outputs []string
	for _, entry := range rm.history {
		outputs = append(outputs, entry.output)
	}
	joined := strings.Join(outputs, "|")
	if !strings.Contains(joined, " a=2") {
		t.Fatalf("queued echo did not run: %q", joined)
	}
	if strings.Contains(joined, "unreachable") {
		t.Fatalf("lines after a fatal error must not run: %q", joined)
	}
	if !strings.Contains(joined, "Stopped; 1 queued line(s) dropped") {
		t.Fatalf("expected drop notice, got %q", joined)
	}
}

func TestPasteRunsEachLine(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue("let int a")
	paste := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" = 1\necho got {a}\r\n\nlet int b = 2"), Paste: true}

	model, cmd := m.Update(paste)
	rm := model.(replModel)
	if cmd == nil {
		t.Fatalf("expected a command to drain the pasted lines")
	}
	if rm.pending.Len() != 3 {
		t.Fatalf("expected 3 queued lines, got %d", rm.pending.Len())
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input should be cleared after a paste, got %q", rm.textInput.Value())
	}

	for cmd != nil {
		model, cmd = rm.Update(cmd())
		rm = model.(replModel)
	}

	want := []string{"a = 1 (int, variable)", " got 1", "b = 2 (int, variable)"}
	if len(rm.history) != len(want) {
		t.Fatalf("expected %d history entries, got %+v", len(want), rm.history)
	}
	for i, entry := range rm.history {
		if entry.output != want[i] || entry.isErr {
			t.Fatalf("history[%d] = %+v, want output %q", i, entry, want[i])
		}
	}
	if len(rm.cmdHistory) != 3 || rm.cmdHistory[0] != "let int a = 1" {
		t.Fatalf("pasted lines should be recallable, got %q", rm.cmdHistory)
	}
}

func TestSingleLinePasteIsTyped(t *testing.T) {
	m := newREPLModel()
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("echo hi"), Paste: true})
	rm := model.(replModel)
	if rm.pending.Len() != 0 {
		t.Fatalf("single-line paste should not be queued")
	}
	if rm.textInput.Value() != "echo hi" {
		t.Fatalf("expected pasted text in the input, got %q (cmd %v)", rm.textInput.Value(), cmd)
	}
}

func TestAutocompleteUsesKeywordsAndVariables(t *testing.T) {
	m := newREPLModel()
	m.run("let string greeting = hi")

	m.textInput.SetValue("echo {gree")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "echo {gree" {
		t.Fatalf("brace-prefixed word should not complete, got %q", got)
	}

	m.textInput.SetValue("gree")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "greeting" {
		t.Fatalf("expected variable completion, got %q", got)
	}

	m.textInput.SetValue("con")
	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "const" {
		t.Fatalf("expected keyword completion, got %q", got)
	}
}
