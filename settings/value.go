package settings

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindEnum
)

// Value is a typed setting value. The zero Value is a false bool.
type Value struct {
	kind Kind
	b    bool
	i    int
	s    string
}

func Bool(v bool) Value     { return Value{kind: KindBool, b: v} }
func Int(v int) Value       { return Value{kind: KindInt, i: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }
func Enum(v string) Value   { return Value{kind: KindEnum, s: v} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int       { return v.i }
func (v Value) String() string { return v.s }

func (v Value) Equal(o Value) bool { return v == o }

func (v Value) encode() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.Itoa(v.i)
	default:
		return v.s
	}
}

// Rule validates writes to one key.
type Rule struct {
	Kind    Kind
	Choices []string // KindEnum only
	Min     int      // KindInt only
	Max     int      // KindInt only
	Default Value
}

func (r Rule) validate(key string, v Value) error {
	if v.kind != r.Kind {
		return fmt.Errorf("%w: %s: wrong value type", ErrInvalidValue, key)
	}
	switch r.Kind {
	case KindEnum:
		for _, c := range r.Choices {
			if v.s == c {
				return nil
			}
		}
		return fmt.Errorf("%w: %s: %q not in %v", ErrInvalidValue, key, v.s, r.Choices)
	case KindInt:
		if v.i < r.Min || v.i > r.Max {
			return fmt.Errorf("%w: %s: %d outside [%d,%d]", ErrInvalidValue, key, v.i, r.Min, r.Max)
		}
	}
	return nil
}

func (r Rule) decode(s string) (Value, error) {
	switch r.Kind {
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case KindInt:
		i, err := strconv.Atoi(s)
		if err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case KindEnum:
		return Enum(s), nil
	default:
		return String(s), nil
	}
}
