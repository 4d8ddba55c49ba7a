package decoder

import (
	"reflect"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

// TagName is the struct tag read by the reflection decoder.
//
//	Name  string `kv2:"name"`
//	Notes string `kv2:"notes,optional"`
//	Class string `kv2:",class"`
//	Cache []byte `kv2:"-"`
const TagName = "kv2"

const (
	optOptional = "optional"
	optClass    = "class"
)

// fieldPlan says where one KV2 field lands in a struct.
type fieldPlan struct {
	index    []int
	name     string // Go field name
	key      string // explicit key from the tag, empty to match by name
	optional bool
	class    bool
	typ      reflect.Type
}

// matches reports whether an untagged field accepts key.
func (f *fieldPlan) matches(key string) bool {
	return strings.EqualFold(strcase.ToCamel(key), f.name) || strings.EqualFold(key, f.name)
}

type structPlan struct {
	fields []fieldPlan
}

var plans sync.Map // map[reflect.Type]*structPlan

// planFor returns the cached field plan of struct type t.
func planFor(t reflect.Type) *structPlan {
	if p, ok := plans.Load(t); ok {
		return p.(*structPlan)
	}
	p := &structPlan{fields: buildFields(t, nil)}
	log.Debugf("built field plan for %s: %d fields", t, len(p.fields))
	actual, _ := plans.LoadOrStore(t, p)
	return actual.(*structPlan)
}

func buildFields(t reflect.Type, prefix []int) []fieldPlan {
	var fields []fieldPlan
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, tagged := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)

		// Untagged embedded structs contribute their fields.
		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, buildFields(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		f := fieldPlan{
			index:    index,
			name:     sf.Name,
			key:      name,
			typ:      sf.Type,
			optional: sf.Type.Kind() == reflect.Ptr,
		}
		for _, opt := range strings.Split(opts, ",") {
			switch strings.TrimSpace(opt) {
			case optOptional:
				f.optional = true
			case optClass:
				f.class = sf.Type.Kind() == reflect.String
			}
		}
		fields = append(fields, f)
	}
	return fields
}
