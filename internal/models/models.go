package models

import "sort"

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt
	KindDouble
	KindVector
	KindQuaternion
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindVector:
		return "vector"
	case KindQuaternion:
		return "quaternion"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a KV2 value. The set of implementations is closed: Bool, Int,
// Double, Vector, Quaternion, String, Array and Object.
type Value interface {
	Kind() Kind
	value()
}

// Bool is a "bool" scalar.
type Bool bool

// Int is an "int", "int32" or "int64" scalar.
type Int int64

// Double is a "float" scalar.
type Double float64

// Vector is a "vector3" scalar split into its components.
type Vector []float64

// Quaternion is a "quaternion" scalar split into its components.
type Quaternion []float64

// String is a "string" or "elementid" scalar, or any scalar of an unknown type.
type String string

// Array is the value of a "*_array" entry.
type Array []Value

// Object is a record declared with a class name and a body of fields.
// ClassName is empty for objects synthesized from bare key/value pairs
// inside an element array.
type Object struct {
	ClassName string
	Fields    map[string]Value
}

func (Bool) Kind() Kind       { return KindBool }
func (Int) Kind() Kind        { return KindInt }
func (Double) Kind() Kind     { return KindDouble }
func (Vector) Kind() Kind     { return KindVector }
func (Quaternion) Kind() Kind { return KindQuaternion }
func (String) Kind() Kind     { return KindString }
func (Array) Kind() Kind      { return KindArray }
func (Object) Kind() Kind     { return KindObject }

func (Bool) value()       {}
func (Int) value()        {}
func (Double) value()     {}
func (Vector) value()     {}
func (Quaternion) value() {}
func (String) value()     {}
func (Array) value()      {}
func (Object) value()     {}

// NewObject returns an Object with an initialized field map.
func NewObject(className string) Object {
	return Object{ClassName: className, Fields: make(map[string]Value)}
}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Len returns the number of fields.
func (o Object) Len() int {
	return len(o.Fields)
}

// Keys returns the field names in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o.Fields))
	for k := range o.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
