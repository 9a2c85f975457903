// Package usage defines the structured records produced by the extractor for
// every peripheral construction and related statement found in a source.
package usage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/rboardcheck/internal/peripheral"
)

// ValueType is the type of a parsed argument value.
type ValueType uint8

// Supported value types.
const (
	Raw ValueType = iota
	String
	Int
	Float
	Pair
	List
	Ident
)

// Value is a parsed argument value.
type Value struct {
	Type  ValueType
	Str   string  // String, Ident and Raw values
	Int   int     // Int values
	Float float64 // Float values
	Items []Value // Pair and List values
	Text  string  // original source text
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{Type: String, Str: s, Text: strconv.Quote(s)}
}

// IntValue returns an integer value.
func IntValue(i int) Value {
	return Value{Type: Int, Int: i, Text: strconv.Itoa(i)}
}

// PairValue returns a pair of 2 integers.
func PairValue(a, b int) Value {
	return Value{Type: Pair, Items: []Value{IntValue(a), IntValue(b)}, Text: fmt.Sprintf("[%d, %d]", a, b)}
}

// Native returns the Go representation of the value that the pin model
// understands: a string, int, float64, [2]int or []any.
func (v Value) Native() any {
	switch v.Type {
	case String, Ident, Raw:
		return v.Str
	case Int:
		return v.Int
	case Float:
		return v.Float
	case Pair:
		return [2]int{v.Items[0].Int, v.Items[1].Int}
	case List:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Native()
		}
		return items
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.Text != "" {
		return v.Text
	}
	switch v.Type {
	case String:
		return strconv.Quote(v.Str)
	case Int:
		return strconv.Itoa(v.Int)
	case Float:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case Pair, List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.Str
	}
}

// Event records a single peripheral construction statement.
type Event struct {
	Kind       peripheral.Kind
	Var        string // bound variable name, empty for anonymous constructions
	Positional []Value
	Named      map[string]Value
	Source     string
	Line       int
}

// Arg returns the argument at a positional index or with the given name.
// Positional arguments take precedence. An index below 0 only checks the name.
func (e Event) Arg(pos int, name string) (Value, bool) {
	if pos >= 0 && pos < len(e.Positional) {
		return e.Positional[pos], true
	}
	if name == "" {
		return Value{}, false
	}
	v, ok := e.Named[name]
	return v, ok
}

// NamedArg returns a keyword argument.
func (e Event) NamedArg(name string) (Value, bool) {
	v, ok := e.Named[name]
	return v, ok
}

// MethodCall records a method invoked on a variable bound to a peripheral.
type MethodCall struct {
	Var    string
	Kind   peripheral.Kind
	Method string
	Source string
	Line   int
}

// Blocking reports whether the call waits on the peripheral hardware.
func (m MethodCall) Blocking() bool {
	switch m.Kind {
	case peripheral.ADC:
		return m.Method == "read" || m.Method == "read_v" || m.Method == "read_raw"
	case peripheral.UART:
		return m.Method == "read" || m.Method == "gets"
	case peripheral.I2C:
		return m.Method == "read"
	case peripheral.SPI:
		return m.Method == "transfer" || m.Method == "read"
	default:
		return false
	}
}

// TimerUse records a hardware timer construction.
type TimerUse struct {
	Unit     int // 0 if not specified
	Priority int // interrupt priority level, 0 if not specified
	Source   string
	Line     int
}
