package tokens

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Object is a JSON object that keeps its keys in document order. Token files
// are written back with their original key order, so every object decoded by
// this package is an *Object rather than a map.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Len reports the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. Existing keys keep their position. The zero
// Object is ready to use; a nil *Object has nowhere to store the value and
// panics.
func (o *Object) Set(key string, value any) {
	if o == nil {
		panic("tokens: Set on nil *Object")
	}
	if o.values == nil {
		o.values = map[string]any{}
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	if _, ok := o.values[key]; !ok {
		return false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, value any) bool) {
	if o == nil {
		return
	}
	for _, key := range o.keys {
		if !fn(key, o.values[key]) {
			return
		}
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	clone := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(clone.keys, o.keys)
	for key, value := range o.values {
		clone.values[key] = cloneValue(value)
	}
	return clone
}

// MarshalJSON encodes the object compactly, preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, o, "", 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	value, err := decodeJSON(data)
	if err != nil {
		return err
	}
	obj, ok := value.(*Object)
	if !ok {
		return fmt.Errorf("tokens: expected JSON object, got %s", describeValue(value))
	}
	*o = *obj
	return nil
}

// Normalize converts an arbitrary Go value into the raw value types used by
// token documents: string, json.Number, bool, nil, []any and *Object.
func Normalize(value any) (any, error) {
	switch typed := value.(type) {
	case nil, string, bool, json.Number:
		return typed, nil
	case *Object:
		return typed.Clone(), nil
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			normalized, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = normalized
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, key := range keys {
			normalized, err := Normalize(typed[key])
			if err != nil {
				return nil, err
			}
			obj.Set(key, normalized)
		}
		return obj, nil
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return nil, fmt.Errorf("tokens: normalize %T: %w", value, err)
		}
		return decodeJSON(data)
	}
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case *Object:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}

// isScalarValue reports whether value is a JSON string, number or boolean.
func isScalarValue(value any) bool {
	switch value.(type) {
	case string, json.Number, bool:
		return true
	default:
		return false
	}
}

func describeValue(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level value")
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		items := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// encodeIndented renders value with two-space indentation, matching the
// format token files are stored in.
func encodeIndented(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, value, "  ", 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCompact(value any) string {
	var buf bytes.Buffer
	if err := writeValue(&buf, value, "", 0); err != nil {
		return fmt.Sprint(value)
	}
	return buf.String()
}

func writeValue(buf *bytes.Buffer, value any, indent string, depth int) error {
	switch typed := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if typed {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		return writeString(buf, typed)
	case json.Number:
		buf.WriteString(typed.String())
	case []any:
		if len(typed) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range typed {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeNewline(buf, indent, depth+1)
			if err := writeValue(buf, item, indent, depth+1); err != nil {
				return err
			}
		}
		writeNewline(buf, indent, depth)
		buf.WriteByte(']')
	case *Object:
		if typed.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, key := range typed.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeNewline(buf, indent, depth+1)
			if err := writeString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := writeValue(buf, typed.values[key], indent, depth+1); err != nil {
				return err
			}
		}
		writeNewline(buf, indent, depth)
		buf.WriteByte('}')
	case Node:
		return writeValue(buf, typed.raw(), indent, depth)
	default:
		normalized, err := Normalize(typed)
		if err != nil {
			return err
		}
		return writeValue(buf, normalized, indent, depth)
	}
	return nil
}

func writeNewline(buf *bytes.Buffer, indent string, depth int) {
	if indent == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(indent, depth))
}

func writeString(buf *bytes.Buffer, s string) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte("\n")))
	return nil
}
