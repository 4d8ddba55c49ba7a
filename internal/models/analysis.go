package models

// GoKind is the category of a Go type chosen for a generated field.
type GoKind int

const (
	GoInterface GoKind = iota
	GoBool
	GoInt
	GoFloat
	GoString
	GoUUID
	GoStruct
	GoSlice
	GoArray
	GoNamed // named by a configured type mapping
)

// TypeInfo describes the Go type of a generated field.
type TypeInfo struct {
	Kind        GoKind
	Name        string    // Go spelling for scalars, e.g. "int64" or "uuid.UUID"
	StructName  string    // set when Kind is GoStruct
	ElementType *TypeInfo // set when Kind is GoSlice or GoArray; nil for a slice of unknown elements
	Len         int       // fixed length when Kind is GoArray
	IsPointer   bool
	Import      string // package the type needs, if any
}

// FieldInfo is one field of a generated struct.
type FieldInfo struct {
	Key      string // KV2 key
	GoName   string
	GoType   TypeInfo
	Optional bool   // absent from at least one instance of the class
	Comment  string // trailing comment from a type mapping
}

// StructDef is a generated struct, one per KV2 class.
type StructDef struct {
	Name      string
	ClassName string // empty for structs inferred from bare key/value array elements
	Fields    []FieldInfo
	IsRoot    bool // the class appears as a root object
	Instances int  // number of objects of the class in the document
}

// AnalysisResult holds the structs discovered in a document and the imports they need.
type AnalysisResult struct {
	Structs []StructDef
	Imports map[string]struct{}
}
