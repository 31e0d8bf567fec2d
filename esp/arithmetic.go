package esp

// evalArithmetic folds expr strictly left to right with no precedence.
// The accumulator starts at 0 under an implicit '+', so "2 + 3 * 4" is 20.
// Operands are numbers only: scanning ends quietly at the first token that
// does not start with one, so "x + 1" is 0 even when x is bound.
func evalArithmetic(expr string) (Value, error) {
	acc := 0.0
	op := byte('+')
	pos := 0
	for {
		operand, next, ok := scanOperand(expr, pos)
		if !ok {
			break
		}
		switch op {
		case '+':
			acc += operand
		case '-':
			acc -= operand
		case '*':
			acc *= operand
		case '/':
			if operand == 0 {
				return Value{}, newEvaluationError(ErrDivisionByZero, expr, "")
			}
			acc /= operand
		}

		pos = skipHorizontalSpace(expr, next)
		if pos >= len(expr) {
			break
		}
		op = expr[pos]
		pos++
	}
	return NewFloat(acc), nil
}

func scanOperand(expr string, pos int) (float64, int, bool) {
	pos = skipHorizontalSpace(expr, pos)
	if pos >= len(expr) {
		return 0, pos, false
	}
	f, n, err := parseFloatPrefix(expr[pos:])
	if err != nil {
		return 0, pos, false
	}
	return f, pos + n, true
}

func skipHorizontalSpace(s string, pos int) int {
	for pos < len(s) && isHorizontalSpace(s[pos]) {
		pos++
	}
	return pos
}
