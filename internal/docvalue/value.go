// Package docvalue provides an immutable, order-preserving representation of
// JSON documents and the deep-merge used for partial updates.
//
// A Value is a tagged variant: exactly one of null, bool, number, string,
// array or object. Objects keep their members in document order so that a
// file read, patched and written back stays diff-friendly. Values are never
// modified in place; every "setter" returns a new Value and unchanged
// subtrees are shared.
package docvalue

import (
	"encoding/json"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents, or the number literal
	items   []Value
	members []Member
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// IntValue wraps an integer.
func IntValue(n int64) Value { return Value{kind: Number, text: strconv.FormatInt(n, 10)} }

// FloatValue wraps a float. The literal uses the shortest representation.
func FloatValue(f float64) Value {
	return Value{kind: Number, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// numberLiteral wraps an already validated JSON number literal.
func numberLiteral(lit string) Value { return Value{kind: Number, text: lit} }

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, items: cp}
}

// ObjectValue builds an object from members. Later duplicates of a key
// replace the earlier value but keep the earlier position.
func ObjectValue(members ...Member) Value {
	out := Value{kind: Object, members: make([]Member, 0, len(members))}
	for _, m := range members {
		out = out.Set(m.Key, m.Value)
	}
	return out
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsArray() bool  { return v.kind == Array }

// Str returns the string contents if v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.text, true
}

// BoolVal returns the boolean if v is a bool.
func (v Value) BoolVal() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.boolean, true
}

// Float64 returns the numeric value if v is a number.
func (v Value) Float64() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberLiteral returns the number exactly as it appeared in the source.
func (v Value) NumberLiteral() (string, bool) {
	if v.kind != Number {
		return "", false
	}
	return v.text, true
}

// Len returns the number of items of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Items returns a copy of the array items, or nil for non-arrays.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp
}

// Members returns a copy of the object members, or nil for non-objects.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	cp := make([]Member, len(v.members))
	copy(cp, v.members)
	return cp
}

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member value for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// GetString is a shorthand for Get followed by Str.
func (v Value) GetString(key string) (string, bool) {
	m, ok := v.Get(key)
	if !ok {
		return "", false
	}
	return m.Str()
}

// Set returns a copy of the object with key bound to val. An existing key
// keeps its position; a new key is appended. Setting on a non-object starts
// from an empty object.
func (v Value) Set(key string, val Value) Value {
	var members []Member
	if v.kind == Object {
		members = make([]Member, len(v.members), len(v.members)+1)
		copy(members, v.members)
	}
	for i := range members {
		if members[i].Key == key {
			members[i].Value = val
			return Value{kind: Object, members: members}
		}
	}
	members = append(members, Member{Key: key, Value: val})
	return Value{kind: Object, members: members}
}

// Delete returns a copy of the object without key.
func (v Value) Delete(key string) Value {
	if v.kind != Object {
		return v
	}
	members := make([]Member, 0, len(v.members))
	for _, m := range v.members {
		if m.Key != key {
			members = append(members, m)
		}
	}
	return Value{kind: Object, members: members}
}

// Append returns a copy of the array with items added at the end.
func (v Value) Append(items ...Value) Value {
	var cur []Value
	if v.kind == Array {
		cur = v.items
	}
	out := make([]Value, 0, len(cur)+len(items))
	out = append(out, cur...)
	out = append(out, items...)
	return Value{kind: Array, items: out}
}

// Equal reports structural equality. Object member order is ignored and
// numbers compare by value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.boolean == o.boolean
	case String:
		return v.text == o.text
	case Number:
		if v.text == o.text {
			return true
		}
		a, okA := v.Float64()
		b, okB := o.Float64()
		return okA && okB && a == b
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for _, m := range v.members {
			other, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// ToAny converts v into the generic representation produced by
// encoding/json with UseNumber: map[string]any, []any, json.Number,
// string, bool and nil.
func (v Value) ToAny() any {
	switch v.kind {
	case Bool:
		return v.boolean
	case Number:
		return json.Number(v.text)
	case String:
		return v.text
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.ToAny()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.ToAny()
		}
		return out
	}
	return nil
}
