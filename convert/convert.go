// Package convert provides the string-to-value conversion service used
// by meta-command invocation and event payload parsing. Conversions are
// reflection-free: targets are described by a small Kind enum and
// results carried in a tagged Value.
package convert

import "strconv"

// Kind identifies a conversion target type.
type Kind uint8

const (
	Invalid Kind = iota
	String
	Int
	Float
	Bool
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	}
	return "invalid"
}

// Value is a converted argument. Exactly the field matching Kind is
// meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func StringValue(s string) Value  { return Value{Kind: String, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: Int, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func BoolValue(b bool) Value     { return Value{Kind: Bool, Bool: b} }

// Service converts raw tag payloads into typed values. The context is
// caller-supplied and passed through untouched.
type Service interface {
	CanConvert(k Kind) bool
	Convert(raw string, k Kind, ctx any) (Value, bool)
}

// Default is the strconv-backed conversion service.
var Default Service = basicService{}

type basicService struct{}

func (basicService) CanConvert(k Kind) bool {
	return k == String || k == Int || k == Float || k == Bool
}

func (basicService) Convert(raw string, k Kind, _ any) (Value, bool) {
	switch k {
	case String:
		return StringValue(raw), true
	case Int:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, false
		}
		return IntValue(i), true
	case Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, false
		}
		return FloatValue(f), true
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, false
		}
		return BoolValue(b), true
	}
	return Value{}, false
}
