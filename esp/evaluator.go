package esp

import "strings"

// Rule identifies which resolution step produced a Value. The steps are
// tried in declaration order and the first match wins.
type Rule int

const (
	RuleEmpty Rule = iota
	RuleVariable
	RuleArithmetic
	RuleInteger
	RuleFloat
	RuleBoolean
	RuleString
)

const arithmeticOperators = "+-*/"

func (r Rule) String() string {
	switch r {
	case RuleEmpty:
		return "empty"
	case RuleVariable:
		return "variable"
	case RuleArithmetic:
		return "arithmetic"
	case RuleInteger:
		return "integer literal"
	case RuleFloat:
		return "float literal"
	case RuleBoolean:
		return "boolean literal"
	case RuleString:
		return "string literal"
	default:
		return "unknown"
	}
}

// ResolveRule reports which rule Evaluate would apply to expr.
func ResolveRule(store *Store, expr string) Rule {
	expr = strings.Trim(expr, " \t")
	if _, ok := store.Get(expr); ok {
		return RuleVariable
	}
	switch {
	case expr == "":
		return RuleEmpty
	case strings.ContainsAny(expr, arithmeticOperators):
		return RuleArithmetic
	case isDigit(expr[0]) || expr[0] == '-':
		return RuleInteger
	case strings.Contains(expr, "."):
		return RuleFloat
	case expr == "true" || expr == "false":
		return RuleBoolean
	default:
		return RuleString
	}
}

// Evaluate resolves expr against store. It never modifies the store, and
// nothing is cached between calls.
func Evaluate(store *Store, expr string) (Value, error) {
	expr = strings.Trim(expr, " \t")
	switch rule := ResolveRule(store, expr); rule {
	case RuleVariable:
		val, _ := store.Get(expr)
		return val, nil
	case RuleEmpty:
		return NewEmpty(), nil
	case RuleArithmetic:
		return evalArithmetic(expr)
	case RuleInteger:
		n, _, err := parseIntPrefix(expr)
		if err != nil {
			return Value{}, malformedLiteral(expr, err.Error())
		}
		return NewInt(n), nil
	case RuleFloat:
		f, _, err := parseFloatPrefix(expr)
		if err != nil {
			return Value{}, malformedLiteral(expr, err.Error())
		}
		return NewFloat(f), nil
	case RuleBoolean:
		return NewBool(expr == "true"), nil
	case RuleString:
		return NewString(expr), nil
	default:
		panic("esp: unhandled resolution rule " + rule.String())
	}
}
