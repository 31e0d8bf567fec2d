// Package esp implements a small line-oriented script interpreter. Each line
// is one statement:
//   - `echo <text>` prints text, replacing every `{expr}` span with the value
//     of expr. `\{` prints a literal brace.
//   - `let|var|const <type> <name> = <value>` binds name to a value of type
//     int, float, string or boolean. The three keywords are equivalent.
//
// Expressions are re-read from text every time they are evaluated. A bare
// expression resolves, in order, to a variable, a left-to-right arithmetic
// chain over + - * / (no precedence), an integer, a float, a boolean, or
// finally the literal string itself. Lines that match neither statement are
// ignored.
package esp
