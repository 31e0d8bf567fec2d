package esp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, *bytes.Buffer, *[]Diagnostic) {
	t.Helper()
	var out bytes.Buffer
	diags := make([]Diagnostic, 0)
	cfg.Stdout = &out
	cfg.Diagnostics = func(d Diagnostic) {
		diags = append(diags, d)
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, &out, &diags
}

func TestRunScript(t *testing.T) {
	engine, out, diags := newTestEngine(t, Config{})
	script := strings.Join([]string{
		"let int x = 5",
		"  var float ratio = 2.5",
		"const string name = Ada",
		"let boolean ok = true",
		"# not a statement",
		"echo Value: {x}",
		"\techo {name} has ratio {ratio} and ok={ok}\t",
		"echo sum {x + 1}",
		"let list ignored = 1",
		"echo",
	}, "\n")

	if err := engine.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := " Value: 5\n Ada has ratio 2.5 and ok=true\n sum 0\n\n"
	if got := out.String(); got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
	if len(*diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", *diags)
	}

	stats := engine.Stats()
	if stats.Lines != 10 || stats.Echoes != 4 || stats.Declarations != 5 || stats.Ignored != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, ok := engine.Store().Get("ignored"); ok {
		t.Fatalf("unknown type should not bind a variable")
	}
}

func TestRunReportsUnterminatedSpanAndContinues(t *testing.T) {
	engine, out, diags := newTestEngine(t, Config{})
	script := "echo Hi {name\necho next\n"

	if err := engine.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := out.String(); got != " Hi \n next\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if len(*diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(*diags))
	}
	d := (*diags)[0]
	if !errors.Is(d.Err, ErrMalformedInterpolation) {
		t.Fatalf("unexpected diagnostic error: %v", d.Err)
	}
	if d.Line != 1 || d.Column != 9 {
		t.Fatalf("unexpected diagnostic position %d:%d", d.Line, d.Column)
	}
	if !strings.Contains(d.CodeFrame, "^") {
		t.Fatalf("expected caret in code frame, got %q", d.CodeFrame)
	}
	if engine.Stats().Diagnostics != 1 {
		t.Fatalf("diagnostic not counted")
	}
}

func TestRunMalformedDeclarationIsFatal(t *testing.T) {
	engine, out, _ := newTestEngine(t, Config{})
	script := "echo before\nlet int x = abc\necho after\n"

	err := engine.Run(context.Background(), strings.NewReader(script))
	if !errors.Is(err, ErrMalformedLiteral) {
		t.Fatalf("expected malformed literal, got %v", err)
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected runtime error, got %T", err)
	}
	if runtimeErr.Line != 2 || runtimeErr.Column != 13 {
		t.Fatalf("unexpected position %d:%d", runtimeErr.Line, runtimeErr.Column)
	}
	if !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), "let int x = abc") {
		t.Fatalf("error should carry line and code frame: %v", err)
	}
	if got := out.String(); got != " before\n" {
		t.Fatalf("lines after the failure must not run, got %q", got)
	}
}

func TestRunDivisionByZeroInEchoIsFatal(t *testing.T) {
	engine, out, _ := newTestEngine(t, Config{})

	err := engine.Run(context.Background(), strings.NewReader("echo x {1 / 0}\necho never\n"))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) || runtimeErr.Column != 9 {
		t.Fatalf("unexpected runtime error %+v", runtimeErr)
	}
	if got := out.String(); got != " x \n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRunHandlesCRLF(t *testing.T) {
	engine, out, _ := newTestEngine(t, Config{})
	if err := engine.Run(context.Background(), strings.NewReader("let int n = 2\r\necho n={n}\r\n")); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := out.String(); got != " n=2\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	engine, out, _ := newTestEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Run(ctx, strings.NewReader("echo hi\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should run after cancellation, got %q", out.String())
	}
}

func TestGlobalsAndReset(t *testing.T) {
	engine, out, _ := newTestEngine(t, Config{Globals: map[string]Value{"who": NewString("world")}})

	if err := engine.Exec("echo hello {who}"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if err := engine.Exec("let string who = there"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if err := engine.Exec("echo hello {who}"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if got := out.String(); got != " hello world\n hello there\n" {
		t.Fatalf("unexpected output %q", got)
	}

	engine.Reset()
	val, ok := engine.Store().Get("who")
	if !ok || val.String() != "world" {
		t.Fatalf("reset should restore globals, got %#v", val)
	}
	if engine.Stats() != (Stats{}) {
		t.Fatalf("reset should clear stats, got %+v", engine.Stats())
	}
}

func TestNewEngineRejectsBadGlobals(t *testing.T) {
	for _, name := range []string{"", "two words"} {
		if _, err := NewEngine(Config{Globals: map[string]Value{name: NewInt(1)}}); err == nil {
			t.Fatalf("expected error for global %q", name)
		}
	}
}

func TestDefaultDiagnosticsWriteToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	engine := MustNewEngine(Config{Stdout: &out, Stderr: &errOut})
	if err := engine.Exec("echo {oops"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "line 1:6: malformed interpolation") {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.esp")
	if err := os.WriteFile(path, []byte("let int n = 3\necho n is {n}\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	engine, out, _ := newTestEngine(t, Config{})
	if err := engine.RunFile(context.Background(), path); err != nil {
		t.Fatalf("run file failed: %v", err)
	}
	if got := out.String(); got != " n is 3\n" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := engine.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.esp")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
