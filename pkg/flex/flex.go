// Package flex decodes JSON scalars whose wire type is not stable.
//
// ADS-B aggregators have shipped the same logical field as an integer, a float,
// a numeric string and occasionally a boolean flag across API revisions. A Value
// captures whichever variant was present on the wire and exposes it through
// total accessors, so consumers never have to care which one arrived.
//
// Decoding tries the variants in a fixed order: a JSON number literal is parsed
// as a 64-bit integer first and as a double second; a JSON string is kept as a
// string; true/false become a boolean. Anything else (null, objects, arrays,
// out-of-range literals) yields an empty Value that every accessor reports as
// missing.
package flex

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of a Value is populated.
type Kind uint8

const (
	// Null means no variant decoded successfully.
	Null Kind = iota
	Int
	Float
	String
	Bool
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a tagged union of the scalar variants. At most one is populated.
// The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// OfInt returns an Int value.
func OfInt(i int64) Value { return Value{kind: Int, i: i} }

// OfFloat returns a Float value.
func OfFloat(f float64) Value { return Value{kind: Float, f: f} }

// OfString returns a String value.
func OfString(s string) Value { return Value{kind: String, s: s} }

// OfBool returns a Bool value.
func OfBool(b bool) Value { return Value{kind: Bool, b: b} }

// Decode classifies a raw JSON value. It never fails; values that match no
// variant come back as Null.
func Decode(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}
		}
		return Value{kind: String, s: s}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}
		}
		return Value{kind: Bool, b: b}
	case 'n', '{', '[':
		return Value{}
	}

	if !json.Valid(raw) {
		return Value{}
	}

	lit := string(raw)
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return Value{kind: Int, i: i}
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return Value{kind: Float, f: f}
	}

	return Value{}
}

// UnmarshalJSON implements json.Unmarshaler. Type mismatches are not errors.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Decode(data)
	return nil
}

// MarshalJSON re-encodes the populated variant, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Int:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case Float:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.f, 'f', -1, 64)), nil
	case String:
		return json.Marshal(v.s)
	case Bool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// Kind reports the populated variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether no variant is populated.
func (v Value) IsNull() bool { return v.kind == Null }

// AsInt coerces the value to an integer. Floats truncate toward zero, strings
// are parsed as base-10 integers, booleans map to 1 and 0.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		if math.IsNaN(v.f) || v.f >= math.MaxInt64 || v.f < math.MinInt64 {
			return 0, false
		}
		return int64(v.f), true
	case String:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case Bool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat coerces the value to a double.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case Float:
		return v.f, true
	case Int:
		return float64(v.i), true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case Bool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsString coerces the value to its canonical decimal or literal text form.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case String:
		return v.s, true
	case Int:
		return strconv.FormatInt(v.i, 10), true
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case Bool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// AsBool coerces the value to a boolean. Numbers are true when nonzero; strings
// are true when they equal "true", "yes" or "1" ignoring case.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case Bool:
		return v.b, true
	case Int:
		return v.i != 0, true
	case Float:
		return v.f != 0, true
	case String:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true", "yes", "1":
			return true, true
		}
		return false, true
	default:
		return false, false
	}
}

// IntPtr returns the AsInt coercion as a pointer, nil when missing.
func (v Value) IntPtr() *int64 {
	if i, ok := v.AsInt(); ok {
		return &i
	}
	return nil
}

// FloatPtr returns the AsFloat coercion as a pointer, nil when missing.
func (v Value) FloatPtr() *float64 {
	if f, ok := v.AsFloat(); ok {
		return &f
	}
	return nil
}

// Str returns the AsString coercion, or "" when missing.
func (v Value) Str() string {
	s, _ := v.AsString()
	return s
}

// integerLiteral reports whether raw is a JSON number without fraction or exponent.
func integerLiteral(raw []byte) bool {
	if len(raw) > 0 && raw[0] == '-' {
		raw = raw[1:]
	}
	if len(raw) == 0 {
		return false
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsUnsafeInteger reports whether raw is an integer literal whose magnitude
// exceeds limit. Literals beyond the int64 range are always unsafe.
func IsUnsafeInteger(raw json.RawMessage, limit int64) bool {
	raw = bytes.TrimSpace(raw)
	if !integerLiteral(raw) {
		return false
	}
	i, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return true
	}
	return i > limit || i < -limit
}

// Quote rewrites a raw literal into a JSON string holding the same text.
func Quote(raw json.RawMessage) json.RawMessage {
	return json.RawMessage(strconv.Quote(string(bytes.TrimSpace(raw))))
}
