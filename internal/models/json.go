package models

import (
	"bytes"
	"encoding/json"
	"math"
)

// ClassKey is the member carrying an object's class name in its JSON form.
const ClassKey = "_class"

// MarshalJSON renders an Object as a JSON object of its fields, plus
// ClassKey when the class name is set. Keys are emitted in sorted order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeMember := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}
	if o.ClassName != "" {
		if err := writeMember(ClassKey, o.ClassName); err != nil {
			return nil, err
		}
	}
	for _, k := range o.Keys() {
		if err := writeMember(k, o.Fields[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders non-finite values as strings since JSON has no literal for them.
func (d Double) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(d))
}

func (v Vector) MarshalJSON() ([]byte, error) {
	return marshalFloats(v)
}

func (q Quaternion) MarshalJSON() ([]byte, error) {
	return marshalFloats(q)
}

// MarshalJSON keeps empty arrays as [] rather than null.
func (a Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(a))
}

func marshalFloat(f float64) ([]byte, error) {
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func marshalFloats(fs []float64) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalFloat(f)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
