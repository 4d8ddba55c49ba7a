package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dxshie/kv2/internal/config"
	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/logging"
	"github.com/dxshie/kv2/internal/models"
)

var log = logging.Logger(logging.ModuleGen)

// UUIDImport is the package of the type used for element ids.
const UUIDImport = "github.com/google/uuid"

// uuidRegex matches the canonical element id spelling.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var (
	boolType    = models.TypeInfo{Kind: models.GoBool, Name: "bool"}
	intType     = models.TypeInfo{Kind: models.GoInt, Name: "int64"}
	floatType   = models.TypeInfo{Kind: models.GoFloat, Name: "float64"}
	stringType  = models.TypeInfo{Kind: models.GoString, Name: "string"}
	uuidType    = models.TypeInfo{Kind: models.GoUUID, Name: "uuid.UUID", Import: UUIDImport}
	anyType     = models.TypeInfo{Kind: models.GoInterface, Name: "any"}
	floatsSlice = models.TypeInfo{Kind: models.GoSlice, ElementType: &floatType}
)

// classInfo accumulates what is seen of one struct across all its instances.
type classInfo struct {
	name      string
	className string
	isRoot    bool
	instances int
	fields    map[string]*fieldObservation
}

type fieldObservation struct {
	count int
	typ   models.TypeInfo
	// comment from a type mapping
	comment string
}

// Analyzer infers Go struct definitions from a parsed KV2 document: one
// struct per class, with the fields of every instance merged.
type Analyzer struct {
	// structNames tracks generated struct names to avoid collisions
	structNames map[string]int
	// classes maps a class key to what has been observed of it
	classes map[string]*classInfo
	// order lists classes in the order they were first seen
	order []*classInfo
	// config holds configuration settings for analysis
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{
		structNames: make(map[string]int),
		classes:     make(map[string]*classInfo),
		config:      cfg,
	}
}

// Analyze walks every object of doc and returns the struct definitions and
// imports needed to decode it.
func (a *Analyzer) Analyze(doc models.Document) (models.AnalysisResult, error) {
	if len(doc) == 0 {
		return models.AnalysisResult{}, errors.ErrNoRootObject
	}

	for _, root := range doc {
		ci := a.observeObject(root, "")
		ci.isRoot = true
	}

	result := models.AnalysisResult{
		Structs: make([]models.StructDef, 0, len(a.order)),
		Imports: make(map[string]struct{}),
	}
	for _, ci := range a.order {
		result.Structs = append(result.Structs, a.buildStruct(ci, result.Imports))
	}
	log.Debugf("inferred %d structs from %d root objects", len(result.Structs), len(doc))
	return result, nil
}

// classKey identifies the struct an object belongs to. Objects without a
// class name come from bare key/value array elements and are grouped by the
// field holding the array.
func classKey(obj models.Object, field string) string {
	if obj.ClassName != "" {
		return "class:" + obj.ClassName
	}
	return "field:" + field
}

func (a *Analyzer) classFor(obj models.Object, field string) *classInfo {
	key := classKey(obj, field)
	if ci, ok := a.classes[key]; ok {
		return ci
	}

	var base string
	if obj.ClassName != "" {
		base = a.config.GetStructName(obj.ClassName)
	} else {
		base = a.getFieldName(field)
		if a.config.Arrays.SingularizeNames {
			base = singularize(base)
		}
	}
	ci := &classInfo{
		name:      a.generateUniqueStructName(sanitizeIdentifier(base, "Element")),
		className: obj.ClassName,
		fields:    make(map[string]*fieldObservation),
	}
	a.classes[key] = ci
	a.order = append(a.order, ci)
	return ci
}

func (a *Analyzer) observeObject(obj models.Object, field string) *classInfo {
	ci := a.classFor(obj, field)
	ci.instances++

	for _, key := range obj.Keys() {
		if a.config.ShouldSkipField(key) {
			continue
		}
		typ, comment := a.typeOf(obj.Fields[key], key)
		fo, seen := ci.fields[key]
		if !seen {
			ci.fields[key] = &fieldObservation{count: 1, typ: typ, comment: comment}
			continue
		}
		fo.count++
		fo.typ = unify(fo.typ, typ)
	}
	return ci
}

// typeOf picks the Go type for one value stored under key.
func (a *Analyzer) typeOf(v models.Value, key string) (models.TypeInfo, string) {
	if mapping, found := a.config.FindTypeMapping(key); found {
		return models.TypeInfo{Kind: models.GoNamed, Name: mapping.Type, Import: mapping.Import}, mapping.Comment
	}

	switch t := v.(type) {
	case models.Bool:
		return boolType, ""
	case models.Int:
		return intType, ""
	case models.Double:
		return floatType, ""
	case models.String:
		if a.config.Types.UUIDElementIDs && uuidRegex.MatchString(string(t)) {
			return uuidType, ""
		}
		return stringType, ""
	case models.Vector:
		return a.floatsType(len(t), 3), ""
	case models.Quaternion:
		return a.floatsType(len(t), 4), ""
	case models.Object:
		ci := a.observeObject(t, key)
		return models.TypeInfo{Kind: models.GoStruct, StructName: ci.name, IsPointer: true}, ""
	case models.Array:
		return a.arrayType(t, key), ""
	default:
		return anyType, ""
	}
}

// floatsType is [n]float64 for vectors of their natural size, []float64 otherwise.
func (a *Analyzer) floatsType(n, natural int) models.TypeInfo {
	if a.config.Types.FixedVectors && n == natural {
		return models.TypeInfo{Kind: models.GoArray, ElementType: &floatType, Len: n}
	}
	return floatsSlice
}

func (a *Analyzer) arrayType(arr models.Array, key string) models.TypeInfo {
	slice := models.TypeInfo{Kind: models.GoSlice}
	for i, elem := range arr {
		var typ models.TypeInfo
		if obj, ok := elem.(models.Object); ok {
			ci := a.observeObject(obj, key)
			typ = models.TypeInfo{Kind: models.GoStruct, StructName: ci.name, IsPointer: true}
		} else {
			typ, _ = a.typeOf(elem, key)
		}
		if i == 0 {
			slice.ElementType = &typ
			continue
		}
		merged := unify(*slice.ElementType, typ)
		slice.ElementType = &merged
	}
	return slice
}

func (a *Analyzer) buildStruct(ci *classInfo, imports map[string]struct{}) models.StructDef {
	keys := make([]string, 0, len(ci.fields))
	for k := range ci.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	def := models.StructDef{
		Name:      ci.name,
		ClassName: ci.className,
		IsRoot:    ci.isRoot,
		Instances: ci.instances,
		Fields:    make([]models.FieldInfo, 0, len(keys)),
	}
	goNames := make(map[string]int)
	for _, key := range keys {
		fo := ci.fields[key]
		typ := finalize(fo.typ)
		collectImports(typ, imports)

		name := sanitizeIdentifier(a.getFieldName(key), "Field")
		if n := goNames[name]; n > 0 {
			goNames[name] = n + 1
			name = fmt.Sprintf("%s%d", name, n)
		} else {
			goNames[name] = 1
		}

		def.Fields = append(def.Fields, models.FieldInfo{
			Key:      key,
			GoName:   name,
			GoType:   typ,
			Optional: fo.count < ci.instances,
			Comment:  fo.comment,
		})
	}
	return def
}

// unify returns a type that can hold values of both a and b.
func unify(a, b models.TypeInfo) models.TypeInfo {
	switch {
	case areTypeInfosEqual(&a, &b):
		return a
	case isNumber(a) && isNumber(b):
		return floatType
	case isText(a) && isText(b):
		return stringType
	case a.Kind == models.GoSlice && a.ElementType == nil && b.Kind == models.GoSlice:
		return b
	case b.Kind == models.GoSlice && b.ElementType == nil && a.Kind == models.GoSlice:
		return a
	case isFloats(a) && isFloats(b):
		return floatsSlice
	case a.Kind == models.GoSlice && b.Kind == models.GoSlice:
		elem := unify(*a.ElementType, *b.ElementType)
		return models.TypeInfo{Kind: models.GoSlice, ElementType: &elem}
	}
	return anyType
}

func isNumber(t models.TypeInfo) bool {
	return t.Kind == models.GoInt || t.Kind == models.GoFloat
}

func isText(t models.TypeInfo) bool {
	return t.Kind == models.GoString || t.Kind == models.GoUUID
}

func isFloats(t models.TypeInfo) bool {
	return (t.Kind == models.GoArray || t.Kind == models.GoSlice) &&
		t.ElementType != nil && t.ElementType.Kind == models.GoFloat
}

// finalize resolves slices whose element type was never observed.
func finalize(t models.TypeInfo) models.TypeInfo {
	if t.Kind != models.GoSlice && t.Kind != models.GoArray {
		return t
	}
	if t.ElementType == nil {
		t.ElementType = &anyType
		return t
	}
	elem := finalize(*t.ElementType)
	t.ElementType = &elem
	return t
}

func collectImports(t models.TypeInfo, imports map[string]struct{}) {
	if t.Import != "" {
		imports[t.Import] = struct{}{}
	}
	if t.ElementType != nil {
		collectImports(*t.ElementType, imports)
	}
}

// areTypeInfosEqual checks if two TypeInfo objects represent the same type.
func areTypeInfosEqual(t1, t2 *models.TypeInfo) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}
	if t1.Kind != t2.Kind || t1.Name != t2.Name || t1.IsPointer != t2.IsPointer ||
		t1.StructName != t2.StructName || t1.Len != t2.Len {
		return false
	}
	return areTypeInfosEqual(t1.ElementType, t2.ElementType)
}

// generateUniqueStructName ensures that the struct name is unique by appending a number if needed.
func (a *Analyzer) generateUniqueStructName(baseName string) string {
	name := baseName
	count := a.structNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.structNames[baseName] = count + 1
	return name
}

// getFieldName returns the Go field name for a KV2 key using configuration
func (a *Analyzer) getFieldName(key string) string {
	return a.config.GetFieldName(key)
}

// sanitizeIdentifier makes name a valid exported Go identifier.
func sanitizeIdentifier(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return fallback
	}
	first := []rune(out)[0]
	if !unicode.IsLetter(first) {
		return fallback + out
	}
	if !unicode.IsUpper(first) {
		out = string(unicode.ToUpper(first)) + out[len(string(first)):]
	}
	return out
}

// knownSingulars covers irregular plurals common in DMX field names.
var knownSingulars = map[string]string{
	"series":   "series",
	"status":   "status",
	"analysis": "analysis",
	"children": "child",
	"vertices": "vertex",
	"indices":  "index",
	"matrices": "matrix",
	"data":     "data",
	"media":    "media",
}

// singularize attempts to convert a plural name to a singular one.
func singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		// Preserve original casing if the first letter was capitalized
		if len(plural) > 0 && strings.ToUpper(string(plural[0])) == string(plural[0]) {
			if len(singular) > 0 {
				return strings.ToUpper(string(singular[0])) + singular[1:]
			}
		}
		return singular
	}

	lowerPlural := strings.ToLower(plural)

	if strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3 {
		return plural[:len(plural)-3] + "y"
	}

	// Avoid removing 's' from words like 'class', 'status', 'basis'
	if strings.HasSuffix(lowerPlural, "ss") ||
		strings.HasSuffix(lowerPlural, "us") ||
		strings.HasSuffix(lowerPlural, "is") {
		return plural
	}

	if strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1 {
		return plural[:len(plural)-1]
	}

	return plural
}
