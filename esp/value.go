package esp

import (
	"fmt"
	"strconv"
)

type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// Value is the runtime representation shared by the store, the evaluator
// and echo output. The zero Value is Empty.
type Value struct {
	kind ValueKind
	data any
}

func NewEmpty() Value          { return Value{kind: KindEmpty} }
func NewInt(i int64) Value     { return Value{kind: KindInt, data: i} }
func NewFloat(f float64) Value { return Value{kind: KindFloat, data: f} }
func NewBool(b bool) Value     { return Value{kind: KindBool, data: b} }
func NewString(s string) Value { return Value{kind: KindString, data: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsEmpty() bool   { return v.kind == KindEmpty }

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindFloat:
		return int64(v.data.(float64))
	case KindEmpty, KindBool, KindString:
		return 0
	default:
		panic(fmt.Sprintf("esp: unhandled value kind %v", v.kind))
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	case KindEmpty, KindBool, KindString:
		return 0
	default:
		panic(fmt.Sprintf("esp: unhandled value kind %v", v.kind))
	}
}

func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

// String renders the value the way echo prints it.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return fmt.Sprintf("%g", v.data.(float64))
	case KindBool:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case KindString:
		return v.data.(string)
	default:
		panic(fmt.Sprintf("esp: unhandled value kind %v", v.kind))
	}
}

// GoString is used by %#v in test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindEmpty:
		return "esp.Empty"
	case KindString:
		return fmt.Sprintf("esp.String(%q)", v.data.(string))
	case KindInt, KindFloat, KindBool:
		return fmt.Sprintf("esp.%s(%s)", v.kind, v.String())
	default:
		panic(fmt.Sprintf("esp: unhandled value kind %v", v.kind))
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindInt:
		return v.data.(int64) == other.data.(int64)
	case KindFloat:
		return v.data.(float64) == other.data.(float64)
	case KindBool:
		return v.data.(bool) == other.data.(bool)
	case KindString:
		return v.data.(string) == other.data.(string)
	default:
		panic(fmt.Sprintf("esp: unhandled value kind %v", v.kind))
	}
}

// ValueFromAny converts a decoded configuration scalar into a Value.
func ValueFromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return NewEmpty(), nil
	case int:
		return NewInt(int64(typed)), nil
	case int64:
		return NewInt(typed), nil
	case uint64:
		if typed > 1<<63-1 {
			return Value{}, fmt.Errorf("integer %d out of range", typed)
		}
		return NewInt(int64(typed)), nil
	case float64:
		return NewFloat(typed), nil
	case bool:
		return NewBool(typed), nil
	case string:
		return NewString(typed), nil
	case Value:
		return typed, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}
