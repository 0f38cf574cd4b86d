package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// String returns the lower-case name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single spreadsheet cell. Columns may mix kinds freely; equality
// never coerces between kinds, so Number 100 and String "100" differ.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// NullValue returns the empty cell.
func NullValue() Value { return Value{} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps n. Negative zero is folded into zero.
func NumberValue(n float64) Value {
	if n == 0 {
		n = 0
	}
	return Value{kind: KindNumber, num: n}
}

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue wraps t.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the empty cell.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the raw string of a String value and "" for other kinds.
func (v Value) Text() string { return v.str }

// Number returns the float of a Number value and 0 for other kinds.
func (v Value) Number() float64 { return v.num }

// Bool returns the payload of a Bool value and false for other kinds.
func (v Value) Bool() bool { return v.b }

// Equal reports whether v and o hold the same kind and the same payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// String is the canonical rendition used for fuzzy scoring and reports.
// Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Lower returns a copy with string payloads lower-cased. Other kinds pass
// through unchanged.
func (v Value) Lower() Value {
	if v.kind != KindString {
		return v
	}
	return StringValue(strings.ToLower(v.str))
}

// hashKey is an encoding that is equal for two values exactly when Equal
// reports true. The payload is length-prefixed so that concatenated keys
// stay unambiguous.
func (v Value) hashKey() string {
	var tag, payload string
	switch v.kind {
	case KindTime:
		tag, payload = "t", v.t.UTC().Format(time.RFC3339Nano)
	case KindString:
		tag, payload = "s", v.str
	case KindNumber:
		tag, payload = "n", strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		tag, payload = "b", strconv.FormatBool(v.b)
	default:
		return "0:"
	}
	return tag + strconv.Itoa(len(payload)) + ":" + payload
}

// MarshalJSON encodes the payload as its natural JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindTime:
		return json.Marshal(v.t)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, strings, numbers and booleans. RFC 3339
// strings stay strings; time values only come from extractors.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		return ErrUnsupportedValue
	}
	return nil
}
