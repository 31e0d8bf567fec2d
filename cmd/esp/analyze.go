package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mgomes/espscript/esp"
)

type lintWarning struct {
	Line    int
	Column  int
	Message string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "path to an esp.yaml configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("esp analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	cfg, err := loadConfig(*configPath, scriptPath)
	if err != nil {
		return err
	}
	globals, err := cfg.globalValues()
	if err != nil {
		return err
	}
	return analyzeFile(scriptPath, globals)
}

func analyzeFile(scriptPath string, globals map[string]esp.Value) error {
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	warnings := analyzeSource(string(input), globals)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		fmt.Printf("%s:%d:%d: %s\n", scriptPath, warning.Line, warning.Column, warning.Message)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

// analyzeSource replays the script against a scratch store seeded with the
// configured globals. Scripts have no control flow, so every declaration seen
// so far is exactly what the interpreter would have bound at that line.
func analyzeSource(source string, globals map[string]esp.Value) []lintWarning {
	linter := &scriptLinter{store: esp.NewStore()}
	for name, val := range globals {
		linter.store.Set(name, val)
	}
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		linter.line(i+1, raw)
	}
	return linter.warnings
}

type scriptLinter struct {
	store    *esp.Store
	warnings []lintWarning
}

func (l *scriptLinter) warn(lineNo int, raw string, offset int, format string, args ...any) {
	if offset > len(raw) {
		offset = len(raw)
	}
	l.warnings = append(l.warnings, lintWarning{
		Line:    lineNo,
		Column:  utf8.RuneCountInString(raw[:offset]) + 1,
		Message: fmt.Sprintf(format, args...),
	})
}

func (l *scriptLinter) line(lineNo int, raw string) {
	line := esp.TrimLine(raw)
	if line == "" {
		return
	}
	indent := strings.Index(raw, line)

	switch esp.Classify(line) {
	case esp.StatementEcho:
		l.echo(lineNo, raw, indent+len("echo"), esp.EchoText(line))
	case esp.StatementDeclaration:
		l.declaration(lineNo, raw, indent, line)
	case esp.StatementIgnored:
		l.warn(lineNo, raw, indent, "line is not a statement and is ignored")
	}
}

func (l *scriptLinter) echo(lineNo int, raw string, base int, text string) {
	segments, scanErr := esp.Segments(text)
	for _, seg := range segments {
		if !seg.Expr {
			continue
		}
		expr := strings.TrimSpace(seg.Text)
		offset := base + seg.Offset + 1
		if _, err := esp.Evaluate(l.store, expr); err != nil {
			l.warn(lineNo, raw, offset, "%v (aborts the script)", err)
			continue
		}
		switch esp.ResolveRule(l.store, expr) {
		case esp.RuleString:
			if isIdentifier(expr) {
				l.warn(lineNo, raw, offset, "%q is not declared and prints as literal text", expr)
			}
		case esp.RuleArithmetic:
			if name, ok := l.variableOperand(expr); ok {
				l.warn(lineNo, raw, offset, "%q is not an arithmetic operand; evaluation stops before it", name)
			}
		}
	}
	if scanErr != nil {
		var evalErr *esp.EvaluationError
		offset := base
		if errors.As(scanErr, &evalErr) && evalErr.Offset >= 0 {
			offset += evalErr.Offset
		}
		l.warn(lineNo, raw, offset, "unterminated interpolation span; the rest of the line is dropped")
	}
}

func (l *scriptLinter) declaration(lineNo int, raw string, indent int, line string) {
	decl := esp.ParseDeclaration(line)
	switch decl.Keyword {
	case "let", "var", "const":
	default:
		l.warn(lineNo, raw, indent, "unknown declaration keyword %q; line is ignored", decl.Keyword)
		return
	}
	if !esp.KnownType(decl.Type) {
		l.warn(lineNo, raw, indent, "unknown type %q; declaration is ignored", decl.Type)
		return
	}
	if decl.Identifier == "" {
		l.warn(lineNo, raw, indent, "declaration has no identifier; line is ignored")
		return
	}
	if rule := esp.ResolveRule(esp.NewStore(), decl.Identifier); rule != esp.RuleString {
		l.warn(lineNo, raw, indent, "identifier %q shadows the %s with the same spelling", decl.Identifier, rule)
	}
	if decl.Equals != "=" {
		l.warn(lineNo, raw, indent, "expected \"=\" after %s, found %q", decl.Identifier, decl.Equals)
	}
	if fields := esp.Fields(line); len(fields) > 5 {
		l.warn(lineNo, raw, indent, "values are a single word; %d trailing field(s) ignored", len(fields)-5)
	}
	if decl.Type == esp.TypeBoolean && decl.Value != "true" && decl.Value != "false" {
		l.warn(lineNo, raw, indent+decl.ValueOffset, "boolean value %q is stored as false", decl.Value)
	}

	if err := esp.Assign(l.store, line); err != nil {
		l.warn(lineNo, raw, indent+decl.ValueOffset, "%v (aborts the script)", err)
	}
}

// variableOperand finds the first declared name used as an operand. The
// fold only reads numbers, so such a name silently ends the chain.
func (l *scriptLinter) variableOperand(expr string) (string, bool) {
	tokens := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ' ' || r == '\t' || strings.ContainsRune("+-*/", r)
	})
	for _, tok := range tokens {
		if _, ok := l.store.Get(tok); ok && isIdentifier(tok) {
			return tok, true
		}
	}
	return "", false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_') {
				return false
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
				return false
			}
		}
	}
	return true
}
