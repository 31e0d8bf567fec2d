package esp

import (
	"io"
	"strings"
)

// Segment is one piece of echo text: either literal output or the source of
// an interpolation span.
type Segment struct {
	Text string
	Expr bool
	// Offset is the byte offset of the segment in the scanned text. For a
	// span it points at the opening brace.
	Offset int
}

// Segments splits text into literal runs and {expr} spans. `\{` yields a
// literal brace and the first '}' after an opening brace closes the span.
// When a span is never closed the segments before it are returned together
// with an error wrapping ErrMalformedInterpolation.
func Segments(text string) ([]Segment, error) {
	var segments []Segment
	var lit strings.Builder
	litStart := 0
	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, Segment{Text: lit.String(), Offset: litStart})
			lit.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]
		if c == '\\' && i+1 < len(text) && text[i+1] == '{' {
			if lit.Len() == 0 {
				litStart = i
			}
			lit.WriteByte('{')
			i += 2
			continue
		}
		if c != '{' {
			if lit.Len() == 0 {
				litStart = i
			}
			lit.WriteByte(c)
			i++
			continue
		}

		flush()
		rel := strings.IndexByte(text[i+1:], '}')
		if rel < 0 {
			err := newEvaluationError(ErrMalformedInterpolation, text[i:], `unterminated "{"`)
			err.Offset = i
			return segments, err
		}
		segments = append(segments, Segment{Text: text[i+1 : i+1+rel], Expr: true, Offset: i})
		i += rel + 2
	}
	flush()
	return segments, nil
}

// Interpolate writes text to w with every {expr} span replaced by its
// evaluated value, followed by a newline. Output produced before a failure
// is still written.
func Interpolate(w io.Writer, store *Store, text string) error {
	var b strings.Builder
	err := expandSegments(&b, store, text)
	b.WriteByte('\n')
	if _, writeErr := io.WriteString(w, b.String()); writeErr != nil && err == nil {
		err = writeErr
	}
	return err
}

func expandSegments(b *strings.Builder, store *Store, text string) error {
	segments, scanErr := Segments(text)
	for _, seg := range segments {
		if !seg.Expr {
			b.WriteString(seg.Text)
			continue
		}
		val, err := Evaluate(store, seg.Text)
		if err != nil {
			if evalErr, ok := err.(*EvaluationError); ok {
				evalErr.Offset = seg.Offset + 1
			}
			return err
		}
		b.WriteString(val.String())
	}
	return scanErr
}
