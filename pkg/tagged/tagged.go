// Package tagged encodes byte slices inside JSON documents as tagged wrapper
// objects, {"__class__":"bytes","__value__":"<base64>"}, and restores them on
// the way back. Plain encoding/json would turn them into bare base64 strings
// that cannot be told apart from ordinary text after a round trip.
package tagged

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	classKey   = "__class__"
	valueKey   = "__value__"
	bytesClass = "bytes"
)

// Bytes marshals as a tagged wrapper object.
type Bytes []byte

type wrapper struct {
	Class string `json:"__class__"`
	Value string `json:"__value__"`
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(wrapper{Class: bytesClass, Value: base64.StdEncoding.EncodeToString(b)})
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Class != bytesClass {
		return fmt.Errorf("tagged: unexpected class %q", w.Class)
	}
	raw, err := base64.StdEncoding.DecodeString(w.Value)
	if err != nil {
		return fmt.Errorf("tagged: %w", err)
	}
	*b = raw
	return nil
}

// Marshal encodes v as compact JSON with []byte values (at any depth of
// maps and slices) replaced by tagged wrappers. HTML characters are left
// unescaped so the output matches what the server hashes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Wrap(v)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes data into a generic value and turns every tagged wrapper
// back into []byte.
func Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return Restore(v), nil
}

// Wrap returns a copy of v in which every []byte is replaced by Bytes, so
// a later json.Marshal emits tagged wrappers.
func Wrap(v any) any {
	switch t := v.(type) {
	case []byte:
		return Bytes(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Wrap(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Wrap(val)
		}
		return out
	default:
		return v
	}
}

// Restore walks a decoded JSON value and replaces tagged wrappers with []byte.
// Values that are not wrappers are returned unchanged.
func Restore(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if b, ok := unwrap(t); ok {
			return b
		}
		for k, val := range t {
			t[k] = Restore(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = Restore(val)
		}
		return t
	default:
		return v
	}
}

func unwrap(m map[string]any) ([]byte, bool) {
	if len(m) != 2 || m[classKey] != bytesClass {
		return nil, false
	}
	s, ok := m[valueKey].(string)
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}
