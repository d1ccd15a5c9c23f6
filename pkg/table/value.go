package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	Missing Kind = iota
	Bool
	Int
	Float
	String
)

var kindNames = [...]string{
	Missing: "missing",
	Bool:    "bool",
	Int:     "int",
	Float:   "float",
	String:  "string",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return Missing, fmt.Errorf("unknown value kind %q", name)
}

// Value is a single table cell. Values are comparable and can be used as map
// keys: two values are equal only if they have the same kind and payload.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func MissingValue() Value { return Value{} }

func BoolValue(b bool) Value {
	if b {
		return Value{kind: Bool, i: 1}
	}
	return Value{kind: Bool}
}

func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// FloatValue wraps f. NaN becomes a missing value and negative zero becomes zero
// so that grouping never splits on either.
func FloatValue(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	if f == 0 {
		f = 0
	}
	return Value{kind: Float, f: f}
}

func StringValue(s string) Value { return Value{kind: String, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsMissing() bool { return v.kind == Missing }

// Bool reports the boolean payload; ok is false for non-bool values.
func (v Value) Bool() (b bool, ok bool) {
	return v.i == 1, v.kind == Bool
}

// Int reports the integer payload; ok is false for non-int values.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == Int
}

// Float converts numeric values (bool, int, float) to float64.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Bool, Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Str reports the string payload; ok is false for non-string values.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == String
}

// Text is the canonical textual form of the value, as written to CSV.
// Missing values render as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case Bool:
		if v.i == 1 {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	}
	return ""
}

func (v Value) String() string {
	if v.kind == Missing {
		return "<missing>"
	}
	return v.Text()
}

// Less orders values by kind first and then by payload.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	switch v.kind {
	case Bool, Int:
		return v.i < o.i
	case Float:
		return v.f < o.f
	case String:
		return v.s < o.s
	}
	return false
}

var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// Parse reads raw CSV text. Missing markers become a missing value and any
// other text is kept verbatim as a string, so "007" and "7" stay distinct and
// are written back exactly as read.
func Parse(raw string) Value {
	if _, ok := missingMarkers[raw]; ok {
		return MissingValue()
	}
	return StringValue(raw)
}

// ParseAs rebuilds a value of a known kind from its Text form.
func ParseAs(kind Kind, text string) (Value, error) {
	switch kind {
	case Missing:
		return MissingValue(), nil
	case Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, fmt.Errorf("error parsing bool %q: %w", text, err)
		}
		return BoolValue(b), nil
	case Int:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("error parsing int %q: %w", text, err)
		}
		return IntValue(i), nil
	case Float:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("error parsing float %q: %w", text, err)
		}
		return FloatValue(f), nil
	case String:
		return StringValue(text), nil
	}
	return Value{}, fmt.Errorf("unknown value kind %d", kind)
}
