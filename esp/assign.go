package esp

// Declaration is a declaration line split into its positional fields.
// Missing trailing fields are empty.
type Declaration struct {
	Keyword    string
	Type       string
	Identifier string
	Equals     string
	Value      string

	// ValueOffset is the byte offset of Value in the parsed line, or the
	// line length when the value is missing.
	ValueOffset int
}

const (
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeBoolean = "boolean"
)

// ParseDeclaration splits line into keyword, type, identifier, equality
// token and value. Fields beyond the fifth are dropped.
func ParseDeclaration(line string) Declaration {
	spans := splitFields(line)
	field := func(i int) string {
		if i < len(spans) {
			return line[spans[i].start:spans[i].end]
		}
		return ""
	}
	decl := Declaration{
		Keyword:     field(0),
		Type:        field(1),
		Identifier:  field(2),
		Equals:      field(3),
		Value:       field(4),
		ValueOffset: len(line),
	}
	if len(spans) > 4 {
		decl.ValueOffset = spans[4].start
	}
	return decl
}

// KnownType reports whether the declared type name has a handler.
func KnownType(name string) bool {
	switch name {
	case TypeInt, TypeFloat, TypeString, TypeBoolean:
		return true
	default:
		return false
	}
}

// Assign executes a declaration line against store. Unknown keywords, types
// and missing identifiers are ignored; malformed numeric literals are
// returned as errors.
func Assign(store *Store, line string) error {
	decl := ParseDeclaration(line)
	if !isDeclarationKeyword(decl.Keyword) || decl.Identifier == "" {
		return nil
	}
	val, ok, err := declaredValue(decl)
	if err != nil || !ok {
		return err
	}
	store.Set(decl.Identifier, val)
	return nil
}

func declaredValue(decl Declaration) (Value, bool, error) {
	switch decl.Type {
	case TypeInt:
		n, _, err := parseIntPrefix(decl.Value)
		if err != nil {
			return Value{}, false, malformedLiteral(decl.Value, err.Error())
		}
		return NewInt(n), true, nil
	case TypeFloat:
		f, _, err := parseFloatPrefix(decl.Value)
		if err != nil {
			return Value{}, false, malformedLiteral(decl.Value, err.Error())
		}
		return NewFloat(f), true, nil
	case TypeString:
		return NewString(decl.Value), true, nil
	case TypeBoolean:
		return NewBool(decl.Value == "true"), true, nil
	default:
		return Value{}, false, nil
	}
}

// Fields splits a line on whitespace the same way declarations are parsed.
func Fields(line string) []string {
	spans := splitFields(line)
	fields := make([]string, len(spans))
	for i, span := range spans {
		fields[i] = line[span.start:span.end]
	}
	return fields
}
