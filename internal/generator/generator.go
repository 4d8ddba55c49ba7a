package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dxshie/kv2/internal/config"
	"github.com/dxshie/kv2/internal/decoder"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/models"
)

// Generator renders struct definitions from analysis results as Go source
// that the kv2 decoder can fill.
type Generator struct {
	config *config.Config
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a Generator that honours cfg's output settings.
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{config: cfg}
}

// GenerateStructs generates Go struct definitions from the analysis result
func (g *Generator) GenerateStructs(result models.AnalysisResult, packageName string) (string, error) {
	if packageName == "" {
		return "", errors.NewGenerateError("package name must not be empty", nil)
	}

	var buf bytes.Buffer

	if header := g.config.Output.FileHeader; header != "" {
		for _, line := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			buf.WriteString("// " + line + "\n")
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "package %s\n", packageName)
	writeImports(&buf, result.Imports)

	sortedStructs := sortStructs(result.Structs)
	for i, structDef := range sortedStructs {
		if i == 0 {
			buf.WriteString("\n")
		}
		writeStruct(&buf, structDef)
		if i < len(sortedStructs)-1 {
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

func writeImports(buf *bytes.Buffer, imports map[string]struct{}) {
	if len(imports) == 0 {
		return
	}

	sorted := make([]string, 0, len(imports))
	for imp := range imports {
		sorted = append(sorted, imp)
	}
	sort.Strings(sorted)

	// Standard library paths have no dot in their first element.
	var stdLib, thirdParty []string
	for _, imp := range sorted {
		first, _, _ := strings.Cut(imp, "/")
		if strings.Contains(first, ".") {
			thirdParty = append(thirdParty, imp)
		} else {
			stdLib = append(stdLib, imp)
		}
	}

	buf.WriteString("\nimport (\n")
	for _, imp := range stdLib {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	if len(stdLib) > 0 && len(thirdParty) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdParty {
		fmt.Fprintf(buf, "\t%q\n", imp)
	}
	buf.WriteString(")\n")
}

func writeStruct(buf *bytes.Buffer, structDef models.StructDef) {
	if structDef.ClassName != "" {
		fmt.Fprintf(buf, "// %s holds %q elements.\n", structDef.Name, structDef.ClassName)
	} else {
		fmt.Fprintf(buf, "// %s holds bare key/value elements.\n", structDef.Name)
	}
	fmt.Fprintf(buf, "type %s struct {\n", structDef.Name)

	fields := make([]models.FieldInfo, len(structDef.Fields))
	copy(fields, structDef.Fields)
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].GoName < fields[j].GoName
	})

	// Align names and types the way gofmt would.
	maxNameWidth, maxTypeWidth := 0, 0
	for _, field := range fields {
		maxNameWidth = max(maxNameWidth, len(field.GoName))
		maxTypeWidth = max(maxTypeWidth, len(getTypeString(field.GoType)))
	}

	for _, field := range fields {
		line := fmt.Sprintf("\t%-*s %-*s %s",
			maxNameWidth, field.GoName,
			maxTypeWidth, getTypeString(field.GoType),
			fieldTag(field))
		if field.Comment != "" {
			line += " // " + field.Comment
		}
		buf.WriteString(line + "\n")
	}
	buf.WriteString("}\n")
}

// fieldTag renders the kv2 struct tag of a field.
func fieldTag(field models.FieldInfo) string {
	value := field.Key
	if field.Optional {
		value += ",optional"
	}
	tag := decoder.TagName + ":" + strconv.Quote(value)
	if strings.Contains(tag, "`") {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// sortStructs sorts structs to ensure root structs come first, followed by nested structs
func sortStructs(structs []models.StructDef) []models.StructDef {
	sorted := make([]models.StructDef, len(structs))
	copy(sorted, structs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsRoot != sorted[j].IsRoot {
			return sorted[i].IsRoot
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

// getTypeString converts a TypeInfo to a string representation of the Go type
func getTypeString(typeInfo models.TypeInfo) string {
	var typeStr string

	switch typeInfo.Kind {
	case models.GoStruct:
		typeStr = typeInfo.StructName
	case models.GoSlice:
		typeStr = "[]" + elementTypeString(typeInfo.ElementType)
	case models.GoArray:
		typeStr = fmt.Sprintf("[%d]%s", typeInfo.Len, elementTypeString(typeInfo.ElementType))
	case models.GoInterface:
		typeStr = "any"
	default:
		typeStr = typeInfo.Name
	}

	if typeInfo.IsPointer {
		return "*" + typeStr
	}

	return typeStr
}

func elementTypeString(elem *models.TypeInfo) string {
	if elem == nil {
		return "any"
	}
	return getTypeString(*elem)
}
