// Package kv2 reads KV2 ("keyvalues2"), the text encoding of Valve DMX
// files, into a generic value tree and decodes that tree into Go values.
//
//	type Model struct {
//		Name    string `kv2:"name"`
//		Visible bool   `kv2:"visible"`
//	}
//
//	m, err := kv2.Decode[Model](text)
//
// Parse failures are reported as *ParseError with a line and column, and
// decode failures as *MismatchError with the path of the offending value.
// Both arrive wrapped in the package's application error type.
package kv2

import (
	"fmt"
	"io"

	"github.com/dxshie/kv2/internal/decoder"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/models"
	"github.com/dxshie/kv2/internal/parser"
)

// Value tree.
type (
	Value      = models.Value
	Kind       = models.Kind
	Bool       = models.Bool
	Int        = models.Int
	Double     = models.Double
	Vector     = models.Vector
	Quaternion = models.Quaternion
	String     = models.String
	Array      = models.Array
	Object     = models.Object
	Document   = models.Document
)

const (
	KindBool       = models.KindBool
	KindInt        = models.KindInt
	KindDouble     = models.KindDouble
	KindVector     = models.KindVector
	KindQuaternion = models.KindQuaternion
	KindString     = models.KindString
	KindArray      = models.KindArray
	KindObject     = models.KindObject
)

// Decoding protocol.
type (
	Node          = decoder.Node
	MapReader     = decoder.MapReader
	SeqReader     = decoder.SeqReader
	Unmarshaler   = decoder.Unmarshaler
	MismatchError = decoder.MismatchError
	ParseError    = parser.ParseError
)

var (
	ErrNoRootObject       = errors.ErrNoRootObject
	ErrObjectIndex        = errors.ErrObjectIndex
	ErrTooDeeplyNested    = errors.ErrTooDeeplyNested
	ErrStructuralMismatch = errors.ErrStructuralMismatch
)

// DefaultMaxDepth is the nesting ceiling applied unless Options says otherwise.
const DefaultMaxDepth = parser.DefaultMaxDepth

// Options configure a Codec.
type Options struct {
	MaxDepth            int
	DisallowUnknownKeys bool
}

// Codec parses and decodes with fixed options. It is safe for concurrent use.
type Codec struct {
	parser  *parser.Parser
	decoder *decoder.Decoder
}

// New creates a Codec.
func New(opts Options) *Codec {
	return &Codec{
		parser:  parser.New(parser.Options{MaxDepth: opts.MaxDepth}),
		decoder: decoder.New(decoder.Options{DisallowUnknownKeys: opts.DisallowUnknownKeys}),
	}
}

var defaultCodec = New(Options{})

// Parse parses a complete KV2 document.
func (c *Codec) Parse(text string) (Document, error) {
	return c.parser.ParseString(text)
}

// ParseReader reads r to the end and parses it.
func (c *Codec) ParseReader(r io.Reader) (Document, error) {
	return c.parser.Parse(r)
}

// ParseFile parses the KV2 file at path.
func (c *Codec) ParseFile(path string) (Document, error) {
	return c.parser.ParseFile(path)
}

// ParsePrefix parses leading root objects and returns the unparsed rest.
func (c *Codec) ParsePrefix(text string) (Document, string, error) {
	return c.parser.ParsePrefix(text)
}

// Unmarshal parses text and decodes its first root object into dst.
func (c *Codec) Unmarshal(text string, dst any) error {
	return c.unmarshalAt(text, 0, dst)
}

// UnmarshalObject decodes an already parsed object into dst.
func (c *Codec) UnmarshalObject(obj Object, dst any) error {
	if err := c.decoder.DecodeValue(obj, dst); err != nil {
		return errors.NewDecodeError(fmt.Sprintf("failed to decode %q object into %T", obj.ClassName, dst), err)
	}
	return nil
}

func (c *Codec) unmarshalAt(text string, index int, dst any) error {
	doc, err := c.Parse(text)
	if err != nil {
		return err
	}
	obj, err := doc.At(index)
	if err != nil {
		return errors.NewDecodeError("cannot select root object", err)
	}
	return c.UnmarshalObject(obj, dst)
}

// DecodeWith is Decode using the options of c.
func DecodeWith[T any](c *Codec, text string) (T, error) {
	return DecodeAtWith[T](c, text, 0)
}

// DecodeAtWith is DecodeAt using the options of c.
func DecodeAtWith[T any](c *Codec, text string, index int) (T, error) {
	var out T
	if err := c.unmarshalAt(text, index, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Parse parses a complete KV2 document.
func Parse(text string) (Document, error) {
	return defaultCodec.Parse(text)
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader) (Document, error) {
	return defaultCodec.ParseReader(r)
}

// ParseFile parses the KV2 file at path.
func ParseFile(path string) (Document, error) {
	return defaultCodec.ParseFile(path)
}

// ParsePrefix parses leading root objects and returns the unparsed rest.
func ParsePrefix(text string) (Document, string, error) {
	return defaultCodec.ParsePrefix(text)
}

// Decode parses text and decodes its first root object into a T.
func Decode[T any](text string) (T, error) {
	return DecodeWith[T](defaultCodec, text)
}

// DecodeAt parses text and decodes root object index into a T.
func DecodeAt[T any](text string, index int) (T, error) {
	return DecodeAtWith[T](defaultCodec, text, index)
}

// Unmarshal parses text and decodes its first root object into dst.
func Unmarshal(text string, dst any) error {
	return defaultCodec.Unmarshal(text, dst)
}

// UnmarshalObject decodes an already parsed object into dst.
func UnmarshalObject(obj Object, dst any) error {
	return defaultCodec.UnmarshalObject(obj, dst)
}
