// Package decoder projects parsed KV2 values onto Go types.
//
// Targets either implement Unmarshaler and pull the views they need from a
// Node, or are filled by reflection. Both report shape problems as
// *MismatchError.
package decoder

import (
	"strconv"

	"github.com/dxshie/kv2/internal/models"
)

// Unmarshaler is implemented by types that decode themselves from a Node.
type Unmarshaler interface {
	UnmarshalKV2(Node) error
}

// Node is one value of the tree together with its path from the root.
type Node struct {
	val  models.Value
	path string
	dec  *Decoder
}

// NewNode returns a root node for v.
func NewNode(v models.Value) Node {
	return Node{val: v, dec: defaultDecoder}
}

func (n Node) child(v models.Value, path string) Node {
	return Node{val: v, path: path, dec: n.dec}
}

func (n Node) key(k string) string {
	if n.path == "" {
		return k
	}
	return n.path + "." + k
}

func (n Node) index(i int) string {
	return n.path + "[" + strconv.Itoa(i) + "]"
}

// Value returns the wrapped value.
func (n Node) Value() models.Value { return n.val }

// Path returns the location of the node, e.g. presets[0].name. The root has
// an empty path.
func (n Node) Path() string { return n.path }

// Kind returns the kind of the wrapped value.
func (n Node) Kind() models.Kind { return n.val.Kind() }

func (n Node) got() string {
	if n.val == nil {
		return "nothing"
	}
	return n.val.Kind().String()
}

// Bool returns the value of a Bool node.
func (n Node) Bool() (bool, error) {
	if b, ok := n.val.(models.Bool); ok {
		return bool(b), nil
	}
	return false, mismatch(n.path, models.KindBool.String(), n.got())
}

// Int returns the value of an Int node.
func (n Node) Int() (int64, error) {
	if i, ok := n.val.(models.Int); ok {
		return int64(i), nil
	}
	return 0, mismatch(n.path, models.KindInt.String(), n.got())
}

// Float returns the value of a Double node. Int nodes are widened.
func (n Node) Float() (float64, error) {
	switch v := n.val.(type) {
	case models.Double:
		return float64(v), nil
	case models.Int:
		return float64(v), nil
	}
	return 0, mismatch(n.path, models.KindDouble.String(), n.got())
}

// String returns the value of a String node.
func (n Node) String() (string, error) {
	if s, ok := n.val.(models.String); ok {
		return string(s), nil
	}
	return "", mismatch(n.path, models.KindString.String(), n.got())
}

// Map returns a reader over the fields of an Object node.
func (n Node) Map() (*MapReader, error) {
	obj, ok := n.val.(models.Object)
	if !ok {
		return nil, mismatch(n.path, models.KindObject.String(), n.got())
	}
	return &MapReader{node: n, obj: obj, keys: obj.Keys()}, nil
}

// Seq returns a reader over the elements of an Array node. Vector and
// Quaternion nodes read as sequences of Double.
func (n Node) Seq() (*SeqReader, error) {
	switch v := n.val.(type) {
	case models.Array:
		return &SeqReader{node: n, elems: v}, nil
	case models.Vector:
		return &SeqReader{node: n, elems: floatValues(v)}, nil
	case models.Quaternion:
		return &SeqReader{node: n, elems: floatValues(v)}, nil
	}
	return nil, mismatch(n.path, models.KindArray.String(), n.got())
}

// Decode fills dst from the node with the options of the decoder that
// produced it.
func (n Node) Decode(dst any) error {
	if n.dec == nil {
		return defaultDecoder.Decode(n, dst)
	}
	return n.dec.Decode(n, dst)
}

func floatValues(fs []float64) []models.Value {
	vals := make([]models.Value, len(fs))
	for i, f := range fs {
		vals[i] = models.Double(f)
	}
	return vals
}

// MapReader reads the fields of an object.
type MapReader struct {
	node Node
	obj  models.Object
	keys []string
	pos  int
}

// ClassName returns the class of the object.
func (m *MapReader) ClassName() string { return m.obj.ClassName }

// Len returns the number of fields.
func (m *MapReader) Len() int { return len(m.keys) }

// Next returns the next field in key order.
func (m *MapReader) Next() (string, Node, bool) {
	if m.pos >= len(m.keys) {
		return "", Node{}, false
	}
	k := m.keys[m.pos]
	m.pos++
	return k, m.node.child(m.obj.Fields[k], m.node.key(k)), true
}

// Lookup returns the field stored under key.
func (m *MapReader) Lookup(key string) (Node, bool) {
	v, ok := m.obj.Fields[key]
	if !ok {
		return Node{}, false
	}
	return m.node.child(v, m.node.key(key)), true
}

// Require is Lookup for fields that must be present.
func (m *MapReader) Require(key string) (Node, error) {
	n, ok := m.Lookup(key)
	if !ok {
		return Node{}, &MismatchError{Path: m.node.key(key), Missing: true}
	}
	return n, nil
}

// SeqReader reads the elements of an array.
type SeqReader struct {
	node  Node
	elems []models.Value
	pos   int
}

// Len returns the number of elements.
func (s *SeqReader) Len() int { return len(s.elems) }

// Next returns the next element.
func (s *SeqReader) Next() (Node, bool) {
	if s.pos >= len(s.elems) {
		return Node{}, false
	}
	i := s.pos
	s.pos++
	return s.node.child(s.elems[i], s.node.index(i)), true
}
