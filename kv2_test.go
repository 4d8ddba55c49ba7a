package kv2_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/dxshie/kv2"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dmx = `<!-- dmx encoding keyvalues2 1 format model 1 -->
"DmElement"
{
	"id" "elementid" "df939bf4-8dd6-435c-9eef-a6e25434ecca"
	"name" "string" "root"
	"skeleton" "element" "90e0ae34-0671-478d-95f5-12fa5c905c7a"
}

"DmeModel"
{
	"id" "elementid" "90e0ae34-0671-478d-95f5-12fa5c905c7a"
	"name" "string" "body"
	"visible" "bool" "1"
	"transform" "DmeTransform"
	{
		"id" "elementid" "0a8b47e1-2ecd-4a49-a2d4-7f2a6d2ec1a7"
		"position" "vector3" "0 0 0"
		"orientation" "quaternion" "0 0 0 1"
	}
	"children" "element_array"
	[
		"DmeDag" { "name" "string" "left" },
		"DmeDag" { "name" "string" "right" }
	]
}
`

type DmElement struct {
	ID       uuid.UUID `kv2:"id"`
	Name     string    `kv2:"name"`
	Skeleton string    `kv2:"skeleton"`
}

type DmeTransform struct {
	Position    [3]float64 `kv2:"position"`
	Orientation [4]float64 `kv2:"orientation"`
}

type DmeDag struct {
	Name string `kv2:"name"`
}

type DmeModel struct {
	Class     string        `kv2:",class"`
	Name      string        `kv2:"name"`
	Visible   bool          `kv2:"visible"`
	Transform *DmeTransform `kv2:"transform"`
	Children  []DmeDag      `kv2:"children"`
}

func TestParse(t *testing.T) {
	doc, err := kv2.Parse(dmx)
	require.NoError(t, err)
	require.Len(t, doc, 2)

	assert.Equal(t, "DmElement", doc[0].ClassName)
	assert.Equal(t, kv2.String("root"), doc[0].Fields["name"])
	assert.Equal(t, kv2.KindObject, doc[1].Fields["transform"].Kind())

	// An "element" typed scalar is a reference to another element by id.
	ref := uuid.MustParse(string(doc[0].Fields["skeleton"].(kv2.String)))
	target, ok := doc.Lookup(ref)
	require.True(t, ok)
	assert.Equal(t, "DmeModel", target.ClassName)
}

func TestDecode(t *testing.T) {
	root, err := kv2.Decode[DmElement](dmx)
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("df939bf4-8dd6-435c-9eef-a6e25434ecca"), root.ID)
	assert.Equal(t, "root", root.Name)

	model, err := kv2.DecodeAt[DmeModel](dmx, 1)
	require.NoError(t, err)
	assert.Equal(t, "DmeModel", model.Class)
	assert.Equal(t, "body", model.Name)
	assert.True(t, model.Visible)
	require.NotNil(t, model.Transform)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, model.Transform.Orientation)
	assert.Equal(t, []DmeDag{{"left"}, {"right"}}, model.Children)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("parse failure", func(t *testing.T) {
		_, err := kv2.Decode[DmElement](`"DmElement" { "name" "string" `)
		require.Error(t, err)

		var perr *kv2.ParseError
		require.True(t, stderrors.As(err, &perr))
		assert.Equal(t, 1, perr.Line)
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeParsing}))
	})

	t.Run("missing field", func(t *testing.T) {
		type needsMass struct {
			Mass float64 `kv2:"mass"`
		}
		v, err := kv2.Decode[needsMass](dmx)
		require.Error(t, err)
		assert.Zero(t, v)
		assert.True(t, stderrors.Is(err, kv2.ErrStructuralMismatch))
		assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeDecode}))

		var merr *kv2.MismatchError
		require.True(t, stderrors.As(err, &merr))
		assert.True(t, merr.Missing)
		assert.Equal(t, "mass", merr.Path)
	})

	t.Run("no root object", func(t *testing.T) {
		_, err := kv2.Decode[DmElement]("<!-- nothing here -->")
		assert.True(t, stderrors.Is(err, kv2.ErrNoRootObject))
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := kv2.DecodeAt[DmElement](dmx, 5)
		assert.True(t, stderrors.Is(err, kv2.ErrObjectIndex))
	})
}

// A failed decode leaves the parsed document usable.
func TestUnmarshalObject_AfterFailedDecode(t *testing.T) {
	doc, err := kv2.Parse(dmx)
	require.NoError(t, err)

	var wrong struct {
		Name int `kv2:"name"`
	}
	require.Error(t, kv2.UnmarshalObject(doc[1], &wrong))

	var model DmeModel
	require.NoError(t, kv2.UnmarshalObject(doc[1], &model))
	assert.Equal(t, "body", model.Name)
}

func TestUnmarshal(t *testing.T) {
	var fields map[string]kv2.Value
	require.NoError(t, kv2.Unmarshal(dmx, &fields))
	assert.Equal(t, kv2.String("root"), fields["name"])
}

func TestCodec(t *testing.T) {
	strict := kv2.New(kv2.Options{DisallowUnknownKeys: true})
	shallow := kv2.New(kv2.Options{MaxDepth: 2})

	_, err := kv2.DecodeWith[DmElement](strict, dmx)
	require.NoError(t, err)

	_, err = kv2.DecodeWith[DmeDag](strict, dmx)
	var merr *kv2.MismatchError
	require.True(t, stderrors.As(err, &merr))
	assert.True(t, merr.Unknown)

	// DmeModel holds an array of objects, three levels deep.
	_, err = shallow.Parse(dmx)
	assert.True(t, stderrors.Is(err, kv2.ErrTooDeeplyNested))

	doc, err := shallow.ParseReader(strings.NewReader(`"A" { }`))
	require.NoError(t, err)
	assert.Len(t, doc, 1)
}

func TestParsePrefix(t *testing.T) {
	doc, rest, err := kv2.ParsePrefix(`"A" { } -- end`)
	require.NoError(t, err)
	assert.Len(t, doc, 1)
	assert.Equal(t, "-- end", rest)
}

type vec struct {
	X, Y, Z float64
}

func (v *vec) UnmarshalKV2(n kv2.Node) error {
	seq, err := n.Seq()
	if err != nil {
		return err
	}
	if seq.Len() != 3 {
		return &kv2.MismatchError{Path: n.Path(), Want: "vector of 3", Got: "vector"}
	}
	for _, dst := range []*float64{&v.X, &v.Y, &v.Z} {
		elem, _ := seq.Next()
		if *dst, err = elem.Float(); err != nil {
			return err
		}
	}
	return nil
}

func TestDecode_Unmarshaler(t *testing.T) {
	type transform struct {
		Position vec `kv2:"position"`
	}
	tr, err := kv2.Decode[transform](`"DmeTransform" { "position" "vector3" "1 2 3" }`)
	require.NoError(t, err)
	assert.Equal(t, vec{1, 2, 3}, tr.Position)
}
