package models

import (
	"encoding/json"
	"sort"
)

// ValueKind discriminates the concrete representation behind a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the kind name as used in logs and error messages.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is the canonical in-memory form of an extracted payload. The set of
// implementations is closed: Null, Bool, Number, String, Sequence and
// Mapping. Numbers are always float64 internally, so 1 and 1.0 compare
// equal; strings are never coerced into numbers or booleans.
type Value interface {
	Kind() ValueKind

	// appendJSON writes the canonical JSON encoding to dst. Unexported so
	// the variant set stays closed to this package.
	appendJSON(dst []byte) []byte
}

// Null represents JSON null.
type Null struct{}

// Bool represents a JSON boolean.
type Bool bool

// Number represents any JSON number as a float64.
type Number float64

// String represents a JSON string.
type String string

// Sequence represents a JSON array. Element order is significant.
type Sequence []Value

// Field is a single key/value entry of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Mapping represents a JSON object as an ordered field list. Construction
// through FromJSON and normalization both keep fields sorted by key, which
// makes encoding deterministic and lets the diff engine merge-walk two
// mappings in a single pass.
type Mapping []Field

func (Null) Kind() ValueKind     { return KindNull }
func (Bool) Kind() ValueKind     { return KindBool }
func (Number) Kind() ValueKind   { return KindNumber }
func (String) Kind() ValueKind   { return KindString }
func (Sequence) Kind() ValueKind { return KindSequence }
func (Mapping) Kind() ValueKind  { return KindMapping }

// Get returns the value stored under key, if any.
func (m Mapping) Get(key string) (Value, bool) {
	for _, field := range m {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// FromJSON decodes raw JSON into the canonical Value form.
func FromJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return FromAny(raw), nil
}

// FromAny converts a value decoded by encoding/json (nil, bool, float64,
// string, []any, map[string]any) into the canonical Value form. Mapping
// fields come out sorted by key.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	case []any:
		seq := make(Sequence, 0, len(v))
		for _, elem := range v {
			seq = append(seq, FromAny(elem))
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		mapping := make(Mapping, 0, len(v))
		for _, key := range keys {
			mapping = append(mapping, Field{Key: key, Value: FromAny(v[key])})
		}
		return mapping
	default:
		return Null{}
	}
}

// EncodeJSON renders a Value as compact JSON. The encoding is deterministic
// because mapping fields carry their own order. A nil Value encodes as null.
func EncodeJSON(v Value) []byte {
	if v == nil {
		return []byte("null")
	}
	return v.appendJSON(nil)
}

func (Null) appendJSON(dst []byte) []byte {
	return append(dst, "null"...)
}

func (b Bool) appendJSON(dst []byte) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

func (n Number) appendJSON(dst []byte) []byte {
	// Delegate to encoding/json so integral floats render without a
	// decimal point, matching the input text for typical payloads.
	encoded, _ := json.Marshal(float64(n))
	return append(dst, encoded...)
}

func (s String) appendJSON(dst []byte) []byte {
	encoded, _ := json.Marshal(string(s))
	return append(dst, encoded...)
}

func (seq Sequence) appendJSON(dst []byte) []byte {
	dst = append(dst, '[')
	for i, elem := range seq {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = elem.appendJSON(dst)
	}
	return append(dst, ']')
}

func (m Mapping) appendJSON(dst []byte) []byte {
	dst = append(dst, '{')
	for i, field := range m {
		if i > 0 {
			dst = append(dst, ',')
		}
		key, _ := json.Marshal(field.Key)
		dst = append(dst, key...)
		dst = append(dst, ':')
		dst = field.Value.appendJSON(dst)
	}
	return append(dst, '}')
}

// ValuesEqual reports deep equality of two Values. Mappings compare field by
// field in order, so both sides are expected to be in canonical (key-sorted)
// form. Two nil Values are equal.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Sequence:
		bv := b.(Sequence)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Mapping:
		bv := b.(Mapping)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Key != bv[i].Key || !ValuesEqual(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
