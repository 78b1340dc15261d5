// Package sqlarg defines the tagged argument values the driver binds to
// SQL placeholders.
//
// SQLite has no native boolean type, so Bool values are normalized to the
// integers 0/1 at the binding boundary. Normalization happens when a Value
// is converted for binding, never by mutating anything the caller handed in.
package sqlarg

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a sealed interface over the argument types a query may bind.
// Only Null, Int, Float, Text, and Bool implement it.
type Value interface {
	sqlValue() // Sealed - only these types implement it
}

// Null represents a SQL NULL argument.
type Null struct{}

func (Null) sqlValue() {}

// Int represents an integer argument. Always int64.
type Int int64

func (Int) sqlValue() {}

// Float represents a floating-point argument.
type Float float64

func (Float) sqlValue() {}

// Text represents a string argument.
type Text string

func (Text) sqlValue() {}

// Bool represents a boolean argument. Bound as 0 or 1.
type Bool bool

func (Bool) sqlValue() {}

// Bind converts tagged values into the []any form database/sql expects.
// Bool becomes int64 0/1 and Null becomes nil; everything else passes
// through as its underlying Go type. Bind is total over its input.
func Bind(args []Value) []any {
	if len(args) == 0 {
		return nil
	}
	bound := make([]any, len(args))
	for i, v := range args {
		bound[i] = bindOne(v)
	}
	return bound
}

func bindOne(v Value) any {
	switch val := v.(type) {
	case Null:
		return nil
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Text:
		return string(val)
	case Bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		// Unreachable for values constructed through this package.
		return nil
	}
}

// FromAny converts a dynamically-typed Go value into a tagged Value.
// Supported inputs are nil, bool, string, the common integer and float
// widths, and json.Number. Anything else is rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return Text(val), nil
	case int:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		// Prefer the integer reading; fall back to float.
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number out of range: %s", val)
		}
		return Float(f), nil
	default:
		return nil, fmt.Errorf("unsupported argument type: %T", v)
	}
}

// FromAnySlice converts a slice of dynamically-typed values.
func FromAnySlice(vs []any) ([]Value, error) {
	args := make([]Value, len(vs))
	for i, v := range vs {
		arg, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = arg
	}
	return args, nil
}

// Decode parses a JSON array into tagged values. Integers are preserved
// as Int rather than collapsing to Float, via json.Number.
func Decode(data []byte) ([]Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return FromAnySlice(raw)
}
