package esp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedLiteral       = errors.New("malformed literal")
	ErrDivisionByZero         = errors.New("division by zero")
	ErrMalformedInterpolation = errors.New("malformed interpolation")
)

// EvaluationError describes a failure to turn text into a Value. Kind is one
// of the Err* sentinels and is what errors.Is matches against.
type EvaluationError struct {
	Kind   error
	Expr   string
	Detail string
	// Offset is the byte offset of the failure inside interpolated text,
	// or -1 when the error did not come from an interpolation span.
	Offset int
}

func (e *EvaluationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Expr != "" {
		fmt.Fprintf(&b, " in %q", e.Expr)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	return e.Kind
}

func newEvaluationError(kind error, expr, detail string) *EvaluationError {
	return &EvaluationError{Kind: kind, Expr: expr, Detail: detail, Offset: -1}
}

func malformedLiteral(expr, detail string) error {
	return newEvaluationError(ErrMalformedLiteral, expr, detail)
}

// RuntimeError is returned by Engine.Run when a line aborts the script.
type RuntimeError struct {
	Line      int
	Column    int
	Message   string
	CodeFrame string
	Err       error
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	if re.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", re.Line)
	}
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.Err
}

// Diagnostic is a non-fatal problem reported while a script keeps running.
type Diagnostic struct {
	Line      int
	Column    int
	Source    string
	Err       error
	CodeFrame string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d:%d: %v", d.Line, d.Column, d.Err)
	}
	return d.Err.Error()
}

// DiagnosticHandler receives diagnostics in the order they occur.
type DiagnosticHandler func(Diagnostic)
