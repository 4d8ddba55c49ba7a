package decoder

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/dxshie/kv2/internal/logging"
	"github.com/dxshie/kv2/internal/models"
)

var log = logging.Logger(logging.ModuleDecoder)

var (
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Options tune a Decoder.
type Options struct {
	// DisallowUnknownKeys makes struct decoding fail on object fields that
	// no struct field receives.
	DisallowUnknownKeys bool
}

// Decoder fills Go values from nodes. It is safe for concurrent use.
type Decoder struct {
	opts Options
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

var defaultDecoder = New(Options{})

// Decode fills the value dst points to from n.
//
// Types implementing Unmarshaler decode themselves. Otherwise structs read
// objects field by field, maps read object fields, slices and arrays read
// arrays and vectors, scalars read the matching scalar kind and
// encoding.TextUnmarshaler types read strings. models.Value and empty
// interface targets receive the value unchanged.
func (d *Decoder) Decode(n Node, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrInvalidTarget, dst)
	}
	n.dec = d
	log.Debugf("decoding %s at %q into %s", n.got(), n.path, rv.Type().Elem())
	return d.decode(n, rv.Elem())
}

// DecodeValue is Decode for a root value.
func (d *Decoder) DecodeValue(v models.Value, dst any) error {
	return d.Decode(Node{val: v, dec: d}, dst)
}

// Decode fills dst from n with default options.
func Decode(n Node, dst any) error {
	return defaultDecoder.Decode(n, dst)
}

// DecodeValue fills dst from v with default options.
func DecodeValue(v models.Value, dst any) error {
	return defaultDecoder.DecodeValue(v, dst)
}

func (d *Decoder) decode(n Node, v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return d.decode(n, v.Elem())
	}

	if v.CanAddr() {
		addr := v.Addr()
		if addr.Type().Implements(unmarshalerType) {
			return addr.Interface().(Unmarshaler).UnmarshalKV2(n)
		}
		if addr.Type().Implements(textUnmarshalerType) {
			return decodeText(n, addr)
		}
	}

	// Targets of a model type take the value as is.
	if n.val != nil && reflect.TypeOf(n.val) == v.Type() {
		v.Set(reflect.ValueOf(n.val))
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if n.val != nil && reflect.TypeOf(n.val).Implements(v.Type()) {
			v.Set(reflect.ValueOf(n.val))
			return nil
		}
		return mismatch(n.path, v.Type().String(), n.got())

	case reflect.Bool:
		b, err := n.Bool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := n.Int()
		if err != nil {
			return err
		}
		if v.OverflowInt(i) {
			return mismatch(n.path, v.Type().String(), fmt.Sprintf("int %d", i))
		}
		v.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, err := n.Int()
		if err != nil {
			return err
		}
		if i < 0 || v.OverflowUint(uint64(i)) {
			return mismatch(n.path, v.Type().String(), fmt.Sprintf("int %d", i))
		}
		v.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := n.Float()
		if err != nil {
			return err
		}
		if v.OverflowFloat(f) {
			return mismatch(n.path, v.Type().String(), fmt.Sprintf("double %g", f))
		}
		v.SetFloat(f)
		return nil

	case reflect.String:
		s, err := n.String()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil

	case reflect.Struct:
		return d.decodeStruct(n, v)

	case reflect.Map:
		return d.decodeMap(n, v)

	case reflect.Slice:
		seq, err := n.Seq()
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(v.Type(), seq.Len(), seq.Len())
		for i := 0; ; i++ {
			elem, ok := seq.Next()
			if !ok {
				break
			}
			if err := d.decode(elem, out.Index(i)); err != nil {
				return err
			}
		}
		v.Set(out)
		return nil

	case reflect.Array:
		seq, err := n.Seq()
		if err != nil {
			return err
		}
		if seq.Len() != v.Len() {
			return mismatch(n.path, fmt.Sprintf("array of %d", v.Len()), fmt.Sprintf("array of %d", seq.Len()))
		}
		for i := 0; ; i++ {
			elem, ok := seq.Next()
			if !ok {
				break
			}
			if err := d.decode(elem, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("%s: cannot decode into %s", pathOrRoot(n.path), v.Type())
}

func decodeText(n Node, addr reflect.Value) error {
	s, err := n.String()
	if err != nil {
		return err
	}
	if err := addr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		log.Debugf("%s: %v", pathOrRoot(n.path), err)
		return mismatch(n.path, addr.Type().Elem().String(), fmt.Sprintf("string %q", s))
	}
	return nil
}

func (d *Decoder) decodeStruct(n Node, v reflect.Value) error {
	m, err := n.Map()
	if err != nil {
		return err
	}
	plan := planFor(v.Type())
	used := make(map[string]bool, m.Len())

	for i := range plan.fields {
		f := &plan.fields[i]
		fv := v.FieldByIndex(f.index)
		if f.class {
			fv.SetString(m.ClassName())
			continue
		}
		key, ok := f.lookup(m)
		if !ok {
			if f.optional {
				continue
			}
			return &MismatchError{Path: n.key(f.pathKey()), Want: wantKind(f.typ), Missing: true}
		}
		used[key] = true
		child, _ := m.Lookup(key)
		if err := d.decode(child, fv); err != nil {
			return err
		}
	}

	if d.opts.DisallowUnknownKeys {
		for _, k := range m.keys {
			if !used[k] {
				return &MismatchError{Path: n.key(k), Got: m.obj.Fields[k].Kind().String(), Unknown: true}
			}
		}
	}
	return nil
}

func (d *Decoder) decodeMap(n Node, v reflect.Value) error {
	t := v.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("%s: cannot decode into %s: map key must be a string", pathOrRoot(n.path), t)
	}
	m, err := n.Map()
	if err != nil {
		return err
	}
	if v.IsNil() {
		v.Set(reflect.MakeMapWithSize(t, m.Len()))
	}
	for {
		k, child, ok := m.Next()
		if !ok {
			return nil
		}
		elem := reflect.New(t.Elem()).Elem()
		if err := d.decode(child, elem); err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
	}
}

// lookup finds the object key that feeds f.
func (f *fieldPlan) lookup(m *MapReader) (string, bool) {
	if f.key != "" {
		_, ok := m.obj.Fields[f.key]
		return f.key, ok
	}
	for _, k := range m.keys {
		if f.matches(k) {
			return k, true
		}
	}
	return "", false
}

func (f *fieldPlan) pathKey() string {
	if f.key != "" {
		return f.key
	}
	return f.name
}

// wantKind names the value kind a Go type decodes from.
func wantKind(t reflect.Type) string {
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return t.String()
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return models.KindString.String()
	}
	switch t.Kind() {
	case reflect.Ptr:
		return wantKind(t.Elem())
	case reflect.Bool:
		return models.KindBool.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return models.KindInt.String()
	case reflect.Float32, reflect.Float64:
		return models.KindDouble.String()
	case reflect.String:
		return models.KindString.String()
	case reflect.Struct, reflect.Map:
		return models.KindObject.String()
	case reflect.Slice, reflect.Array:
		return models.KindArray.String()
	default:
		return t.String()
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
