package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the JSON type of a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a JSON value received from the webhook. The kind must be checked
// before fields are read.
type Value struct {
	kind Kind
	raw  json.RawMessage
}

// ParseValue validates raw JSON and records its kind
func ParseValue(raw []byte) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return Value{}, fmt.Errorf("invalid JSON")
	}

	v := Value{raw: json.RawMessage(trimmed)}
	switch trimmed[0] {
	case '{':
		v.kind = KindObject
	case '[':
		v.kind = KindArray
	case '"':
		v.kind = KindString
	case 't', 'f':
		v.kind = KindBool
	case 'n':
		v.kind = KindNull
	default:
		v.kind = KindNumber
	}
	return v, nil
}

// StringValue wraps a Go string as a Value
func StringValue(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{kind: KindString, raw: raw}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the JSON encoding of the value
func (v Value) Raw() json.RawMessage {
	if v.raw == nil {
		return json.RawMessage("null")
	}
	return v.raw
}

// Field returns a member of an object value
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(v.raw, &fields); err != nil {
		return Value{}, false
	}

	raw, ok := fields[name]
	if !ok {
		return Value{}, false
	}
	field, err := ParseValue(raw)
	if err != nil {
		return Value{}, false
	}
	return field, true
}

// IsEmpty reports null, "", [] and {}
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.Text() == ""
	case KindArray:
		var items []json.RawMessage
		return json.Unmarshal(v.raw, &items) == nil && len(items) == 0
	case KindObject:
		var fields map[string]json.RawMessage
		return json.Unmarshal(v.raw, &fields) == nil && len(fields) == 0
	}
	return false
}

// Text returns strings unquoted and every other value as compact JSON
func (v Value) Text() string {
	if v.kind == KindString {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, v.Raw()); err != nil {
		return string(v.Raw())
	}
	return buf.String()
}
