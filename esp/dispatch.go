package esp

import "strings"

// Statement is the kind of a script line.
type Statement int

const (
	StatementIgnored Statement = iota
	StatementEcho
	StatementDeclaration
)

const echoKeyword = "echo"

var declarationKeywords = []string{"let", "var", "const"}

func (s Statement) String() string {
	switch s {
	case StatementIgnored:
		return "ignored"
	case StatementEcho:
		return "echo"
	case StatementDeclaration:
		return "declaration"
	default:
		return "unknown"
	}
}

// Classify decides how a trimmed line is executed. Only the prefix is
// inspected, so "echoes" is an echo statement and "letter" is routed to the
// declaration handler, which then ignores it.
func Classify(line string) Statement {
	if strings.HasPrefix(line, echoKeyword) {
		return StatementEcho
	}
	for _, kw := range declarationKeywords {
		if strings.HasPrefix(line, kw) {
			return StatementDeclaration
		}
	}
	return StatementIgnored
}

// EchoText returns the text an echo statement prints, including any space
// that follows the keyword.
func EchoText(line string) string {
	return strings.TrimPrefix(line, echoKeyword)
}

// TrimLine strips leading and trailing spaces and tabs.
func TrimLine(line string) string {
	trimmed, _ := trimLine(line)
	return trimmed
}

func trimLine(line string) (string, int) {
	start := 0
	for start < len(line) && isHorizontalSpace(line[start]) {
		start++
	}
	end := len(line)
	for end > start && isHorizontalSpace(line[end-1]) {
		end--
	}
	return line[start:end], start
}

func isDeclarationKeyword(word string) bool {
	for _, kw := range declarationKeywords {
		if word == kw {
			return true
		}
	}
	return false
}

type fieldSpan struct {
	start int
	end   int
}

func splitFields(s string) []fieldSpan {
	var spans []fieldSpan
	i := 0
	for i < len(s) {
		for i < len(s) && isFieldSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && !isFieldSpace(s[i]) {
			i++
		}
		spans = append(spans, fieldSpan{start: start, end: i})
	}
	return spans
}

func isFieldSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
