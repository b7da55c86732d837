package journey

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an opaque client payload: the "data" and "style" attributes of
// nodes, edges and reports. The client owns its shape; the store only needs
// to round-trip it faithfully. Value is a tagged union over the JSON data
// model — null, bool, number, string, list, object — that preserves object
// member order and exact number text, neither of which a plain
// map[string]any survives.
type Value struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	list   []Value
	keys   []string
	fields map[string]Value
}

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// ParseValue decodes b strictly. Use DecodeOpaque for stored blobs where
// corruption must degrade to an empty map instead of failing.
func ParseValue(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("parsing opaque value: %w", err)
	}
	if dec.More() {
		return Value{}, fmt.Errorf("parsing opaque value: trailing data")
	}
	return v, nil
}

// DecodeOpaque decodes a stored payload blob. A corrupt blob, or one whose
// top level is not a container, yields an empty map — opaque payload damage
// must never block loading the rest of a document.
func DecodeOpaque(b []byte) Value {
	if len(b) == 0 {
		return EmptyMap()
	}
	v, err := ParseValue(b)
	if err != nil || (v.kind != KindMap && v.kind != KindList) {
		return EmptyMap()
	}
	return v
}

// EmptyMap returns a Value holding an empty object.
func EmptyMap() Value {
	return Value{kind: KindMap, fields: map[string]Value{}}
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is null or an empty container.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindList:
		return len(v.list) == 0
	case KindMap:
		return len(v.keys) == 0
	}
	return false
}

// Field returns the named object member. The second result is false when v
// is not an object or the key is absent.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns object member names in their original order.
func (v Value) Keys() []string { return v.keys }

// Len returns the number of list items or object members.
func (v Value) Len() int {
	if v.kind == KindList {
		return len(v.list)
	}
	return len(v.keys)
}

// Index returns the i-th list item.
func (v Value) Index(i int) Value { return v.list[i] }

// Equal reports structural equality, including object member order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for i, k := range v.keys {
			if o.keys[i] != k || !v.fields[k].Equal(o.fields[k]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	parsed, err := ParseValue(b)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) write(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(string(v.num))
	case KindString:
		enc, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(enc)
			buf.WriteByte(':')
			if err := v.fields[k].write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// readValue consumes one complete JSON value from the decoder.
func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case bool:
		return Value{kind: KindBool, b: t}, nil
	case json.Number:
		return Value{kind: KindNumber, num: t}, nil
	case string:
		return Value{kind: KindString, str: t}, nil
	case json.Delim:
		switch t {
		case '[':
			v := Value{kind: KindList}
			for dec.More() {
				item, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				v.list = append(v.list, item)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return v, nil
		case '{':
			v := Value{kind: KindMap, fields: map[string]Value{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				member, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				if _, seen := v.fields[key]; !seen {
					v.keys = append(v.keys, key)
				}
				v.fields[key] = member
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
