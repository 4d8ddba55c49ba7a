// Package schema describes the JSON projection of KV2 documents as JSON
// Schema, derived from the structs the analyzer infers.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dxshie/kv2/internal/models"
)

// Draft is the JSON Schema dialect of generated schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// AdditionalProperties is the additionalProperties keyword, which is either
// a boolean or a schema for the extra members.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema // takes precedence over Allowed
}

// MarshalJSON writes the schema form when one is set and the boolean form otherwise.
func (ap AdditionalProperties) MarshalJSON() ([]byte, error) {
	if ap.Schema != nil {
		return json.Marshal(ap.Schema)
	}
	return json.Marshal(ap.Allowed)
}

// Schema is the subset of JSON Schema that FromAnalysis emits.
type Schema struct {
	// Meta
	Schema      string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	Const  any    `json:"const,omitempty"`

	// Object properties
	Properties           map[string]*Schema    `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	// Array items
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	AnyOf []*Schema `json:"anyOf,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// Options tune the generated schema.
type Options struct {
	Title string
	// Closed forbids members that were not seen in the analyzed document.
	Closed bool
}

// FromAnalysis returns a schema for the JSON projection of the analyzed
// document: an array whose items are the root structs.
func FromAnalysis(result models.AnalysisResult, opts Options) *Schema {
	root := &Schema{
		Schema: Draft,
		Title:  opts.Title,
		Type:   "array",
		Defs:   make(map[string]*Schema, len(result.Structs)),
	}

	var roots []*Schema
	for _, def := range result.Structs {
		root.Defs[def.Name] = objectSchema(def, opts.Closed)
		if def.IsRoot {
			roots = append(roots, refTo(def.Name))
		}
	}

	switch len(roots) {
	case 0:
	case 1:
		root.Items = roots[0]
	default:
		root.Items = &Schema{AnyOf: roots}
	}
	return root
}

func objectSchema(def models.StructDef, closed bool) *Schema {
	s := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema, len(def.Fields)+1),
	}
	if def.ClassName != "" {
		s.Description = fmt.Sprintf("%q element", def.ClassName)
		s.Properties[models.ClassKey] = &Schema{Type: "string", Const: def.ClassName}
		s.Required = append(s.Required, models.ClassKey)
	}
	for _, field := range def.Fields {
		s.Properties[field.Key] = typeSchema(field.GoType)
		if field.Comment != "" {
			s.Properties[field.Key].Description = field.Comment
		}
		if !field.Optional {
			s.Required = append(s.Required, field.Key)
		}
	}
	sort.Strings(s.Required)
	if closed {
		s.AdditionalProperties = &AdditionalProperties{Allowed: false}
	}
	return s
}

// typeSchema maps an inferred Go type to the JSON its values project to.
func typeSchema(t models.TypeInfo) *Schema {
	switch t.Kind {
	case models.GoBool:
		return &Schema{Type: "boolean"}
	case models.GoInt:
		return &Schema{Type: "integer"}
	case models.GoFloat:
		return &Schema{Type: "number"}
	case models.GoString:
		return &Schema{Type: "string"}
	case models.GoUUID:
		return &Schema{Type: "string", Format: "uuid"}
	case models.GoStruct:
		return refTo(t.StructName)
	case models.GoArray:
		s := &Schema{Type: "array", Items: elementSchema(t.ElementType)}
		s.MinItems, s.MaxItems = intPtr(t.Len), intPtr(t.Len)
		return s
	case models.GoSlice:
		return &Schema{Type: "array", Items: elementSchema(t.ElementType)}
	}
	// Mapped types and any accept every value.
	return &Schema{}
}

func elementSchema(elem *models.TypeInfo) *Schema {
	if elem == nil || elem.Kind == models.GoInterface || elem.Kind == models.GoNamed {
		return nil
	}
	return typeSchema(*elem)
}

func refTo(name string) *Schema {
	return &Schema{Ref: "#/$defs/" + name}
}

func intPtr(n int) *int {
	return &n
}
