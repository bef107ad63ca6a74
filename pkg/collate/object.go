package collate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value interface{}
}

// Object is a JSON object with its member order preserved.
// Objects collate and encode pair by pair in the order the
// emitting map produced them, so plain Go maps cannot carry
// emitted keys; the evaluators hand objects over as JSON and
// DecodeOrdered keeps the member order intact.
type Object []Member

// Map flattens the object for order insensitive field access.
func (o Object) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(o))
	for _, member := range o {
		m[member.Key] = member.Value
	}
	return m
}

// MarshalJSON renders the members in their stored order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(member.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(member.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeOrdered parses JSON like encoding/json but decodes
// objects into Object instead of a map, preserving member order.
// Numbers decode as float64.
func DecodeOrdered(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeOrderedValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeOrderedValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, float64, bool or nil
		return tok, nil
	}

	switch delim {
	case '[':
		arr := []interface{}{}
		for dec.More() {
			v, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		_, err := dec.Token() // closing ]
		return arr, err
	case '{':
		obj := Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			v, err := decodeOrderedValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, Member{Key: key, Value: v})
		}
		_, err := dec.Token() // closing }
		return obj, err
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}
