package esp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Config controls where an Engine writes and what it starts with.
type Config struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Globals      map[string]Value
	Diagnostics  DiagnosticHandler
	MaxLineBytes int
}

// Stats counts what an Engine has executed since it was created or reset.
type Stats struct {
	Lines        int
	Echoes       int
	Declarations int
	Ignored      int
	Diagnostics  int
}

// Engine executes ESP scripts one line at a time. It is not safe for
// concurrent use.
type Engine struct {
	config Config
	store  *Store
	stats  Stats
	lineNo int
}

// NewEngine constructs an Engine with defaults filled in and the configured
// globals bound.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 1 << 20
	}
	if cfg.Diagnostics == nil {
		stderr := cfg.Stderr
		cfg.Diagnostics = func(d Diagnostic) {
			fmt.Fprintln(stderr, d.String())
		}
	}
	for name := range cfg.Globals {
		if err := validateIdentifier(name); err != nil {
			return nil, fmt.Errorf("esp: global %q: %w", name, err)
		}
	}

	engine := &Engine{config: cfg, store: NewStore()}
	engine.bindGlobals()
	return engine, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

func validateIdentifier(name string) error {
	if name == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(splitFields(name)) != 1 {
		return errors.New("identifier cannot contain whitespace")
	}
	return nil
}

func (e *Engine) bindGlobals() {
	for name, val := range e.config.Globals {
		e.store.Set(name, val)
	}
}

func (e *Engine) Store() *Store { return e.store }

func (e *Engine) Stats() Stats { return e.stats }

// Reset drops every variable, rebinds the globals and zeroes the counters.
func (e *Engine) Reset() {
	e.store.Clear()
	e.bindGlobals()
	e.stats = Stats{}
	e.lineNo = 0
}

// Evaluate resolves a single expression against the engine's variables.
func (e *Engine) Evaluate(expr string) (Value, error) {
	return Evaluate(e.store, expr)
}

// Interpolate expands {expr} spans in text and writes the line to w.
func (e *Engine) Interpolate(w io.Writer, text string) error {
	return Interpolate(w, e.store, text)
}

// Assign executes a declaration line.
func (e *Engine) Assign(line string) error {
	return Assign(e.store, line)
}

// Exec runs one script line. Fatal failures are returned as *RuntimeError;
// an unterminated interpolation span is reported to the diagnostics handler
// and Exec returns nil.
func (e *Engine) Exec(raw string) error {
	e.lineNo++
	e.stats.Lines++
	line, indent := trimLine(raw)

	switch Classify(line) {
	case StatementEcho:
		e.stats.Echoes++
		err := Interpolate(e.config.Stdout, e.store, EchoText(line))
		if err == nil {
			return nil
		}
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			return fmt.Errorf("line %d: write output: %w", e.lineNo, err)
		}
		column := indent + len(echoKeyword)
		if evalErr.Offset >= 0 {
			column += evalErr.Offset
		}
		if errors.Is(err, ErrMalformedInterpolation) {
			e.report(raw, column, err)
			return nil
		}
		return e.runtimeError(raw, column, err)
	case StatementDeclaration:
		e.stats.Declarations++
		if err := Assign(e.store, line); err != nil {
			return e.runtimeError(raw, indent+ParseDeclaration(line).ValueOffset, err)
		}
		return nil
	case StatementIgnored:
		e.stats.Ignored++
		return nil
	default:
		return nil
	}
}

func (e *Engine) report(raw string, offset int, err error) {
	e.stats.Diagnostics++
	column := runeColumn(raw, offset)
	e.config.Diagnostics(Diagnostic{
		Line:      e.lineNo,
		Column:    column,
		Source:    raw,
		Err:       err,
		CodeFrame: formatCodeFrame(e.lineNo, raw, column),
	})
}

func (e *Engine) runtimeError(raw string, offset int, err error) error {
	column := runeColumn(raw, offset)
	return &RuntimeError{
		Line:      e.lineNo,
		Column:    column,
		Message:   err.Error(),
		CodeFrame: formatCodeFrame(e.lineNo, raw, column),
		Err:       err,
	}
}

// Run executes every line read from r in order. Line numbers restart at 1.
// The context is checked before each line.
func (e *Engine) Run(ctx context.Context, r io.Reader) error {
	e.lineNo = 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), e.config.MaxLineBytes)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.Exec(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return nil
}

// RunFile opens path and runs it.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return e.Run(ctx, f)
}
