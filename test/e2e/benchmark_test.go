package e2e_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dxshie/kv2"
	"github.com/dxshie/kv2/internal/query"
	"github.com/stretchr/testify/require"
)

// generateNestedKV2 builds one root object whose bodies nest depth levels
// deep with width entries per level.
func generateNestedKV2(depth int, width int) string {
	var b strings.Builder
	var body func(level int)
	body = func(level int) {
		b.WriteString("{\n")
		for i := 0; i < width; i++ {
			fmt.Fprintf(&b, "\"value_%d\" \"int\" \"%d\"\n", i, level*width+i)
			if level < depth {
				fmt.Fprintf(&b, "\"child_%d\" \"Level%d\"\n", i, level+1)
				body(level + 1)
			}
		}
		b.WriteString("}\n")
	}
	b.WriteString("\"Level0\"\n")
	body(0)
	return b.String()
}

// generateWideKV2 builds one root object with fieldCount scalar fields.
func generateWideKV2(fieldCount int) string {
	var b strings.Builder
	b.WriteString("\"DmeWide\"\n{\n")
	for i := 0; i < fieldCount; i++ {
		switch i % 4 {
		case 0:
			fmt.Fprintf(&b, "\"field_%d\" \"int\" \"%d\"\n", i, i)
		case 1:
			fmt.Fprintf(&b, "\"field_%d\" \"float\" \"%d.5\"\n", i, i)
		case 2:
			fmt.Fprintf(&b, "\"field_%d\" \"bool\" \"%d\"\n", i, i%2)
		default:
			fmt.Fprintf(&b, "\"field_%d\" \"vector3\" \"%d 0 1\"\n", i, i)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// generateArrayKV2 builds one root object holding an element array of count objects.
func generateArrayKV2(count int) string {
	var b strings.Builder
	b.WriteString("\"DmeModel\"\n{\n\"children\" \"element_array\"\n[\n")
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "\"DmeDag\" { \"name\" \"string\" \"dag %d\" \"weights\" \"float_array\" [ \"1\", \"0.5\" ] }", i)
	}
	b.WriteString("\n]\n}\n")
	return b.String()
}

// BenchmarkDeepNesting benchmarks parsing of deeply nested documents
func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			input := generateNestedKV2(depth.depth, depth.width)
			b.SetBytes(int64(len(input)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := kv2.Parse(input)
				require.NoError(b, err)
			}
		})
	}
}

type wide struct {
	Field0 int64      `kv2:"field_0"`
	Field1 float64    `kv2:"field_1"`
	Field2 bool       `kv2:"field_2"`
	Field3 [3]float64 `kv2:"field_3"`
}

// BenchmarkWideStructures benchmarks parsing and decoding of objects with many fields
func BenchmarkWideStructures(b *testing.B) {
	for _, count := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Fields%d", count), func(b *testing.B) {
			input := generateWideKV2(count)
			b.SetBytes(int64(len(input)))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := kv2.Decode[wide](input)
				require.NoError(b, err)
			}
		})
	}
}

type model struct {
	Children []struct {
		Name    string    `kv2:"name"`
		Weights []float64 `kv2:"weights"`
	} `kv2:"children"`
}

// BenchmarkArrayProcessing benchmarks decoding and querying large element arrays
func BenchmarkArrayProcessing(b *testing.B) {
	for _, count := range []int{10, 100, 1000} {
		input := generateArrayKV2(count)

		b.Run(fmt.Sprintf("Decode%d", count), func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			for i := 0; i < b.N; i++ {
				m, err := kv2.Decode[model](input)
				require.NoError(b, err)
				require.Len(b, m.Children, count)
			}
		})

		b.Run(fmt.Sprintf("Query%d", count), func(b *testing.B) {
			doc, err := kv2.Parse(input)
			require.NoError(b, err)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, err := query.Project(doc)
				require.NoError(b, err)
				_, err = p.Get("0.children.#.name")
				require.NoError(b, err)
			}
		})
	}
}

func TestGenerators(t *testing.T) {
	_, err := kv2.Parse(generateNestedKV2(5, 2))
	require.NoError(t, err)

	m, err := kv2.Decode[model](generateArrayKV2(3))
	require.NoError(t, err)
	require.Len(t, m.Children, 3)

	w, err := kv2.Decode[wide](generateWideKV2(8))
	require.NoError(t, err)
	require.Equal(t, wide{Field0: 0, Field1: 1.5, Field2: false, Field3: [3]float64{3, 0, 1}}, w)
}
