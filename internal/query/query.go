// Package query renders parsed KV2 documents as JSON and evaluates gjson
// paths against that rendering.
//
// A document renders as an array of its root objects. Every object carries
// its class name under "_class", so for example
//
//	0.name
//	#(_class=="DmeModel").children.#.name
//	1.transform.position.2
//
// select the name of the first root object, the child names of the first
// DmeModel and the z component of a position.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/dxshie/kv2/internal/errors"
	"github.com/dxshie/kv2/internal/logging"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var log = logging.Logger(logging.ModuleQuery)

// Projection is the JSON rendering of a value, ready to be queried.
type Projection struct {
	data []byte
}

// Project renders v, usually a models.Document or models.Object, as JSON.
func Project(v any) (*Projection, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewOutputError("failed to render JSON", err)
	}
	return &Projection{data: data}, nil
}

// Bytes returns the rendering, indented when pretty is set.
func (p *Projection) Bytes(pretty bool) []byte {
	if pretty {
		return indent(p.data)
	}
	return p.data
}

// Get evaluates a gjson path. A path that selects nothing is an error
// wrapping errors.ErrNoMatch.
func (p *Projection) Get(path string) (gjson.Result, error) {
	res := gjson.GetBytes(p.data, path)
	if !res.Exists() {
		log.Debugf("path %q matched nothing", path)
		return res, errors.NewQueryError(fmt.Sprintf("path '%s' matched nothing", path), errors.ErrNoMatch)
	}
	return res, nil
}

// GetMany evaluates several paths in one pass. Paths that select nothing
// yield results whose Exists reports false.
func (p *Projection) GetMany(paths ...string) []gjson.Result {
	return gjson.GetManyBytes(p.data, paths...)
}

// Format renders a result for display. Strings are printed without quotes;
// objects and arrays are indented when pretty is set.
func Format(res gjson.Result, pretty bool) []byte {
	if res.Type == gjson.String {
		return []byte(res.Str)
	}
	raw := []byte(res.Raw)
	if pretty && (res.IsObject() || res.IsArray()) {
		return indent(raw)
	}
	return raw
}

func indent(data []byte) []byte {
	out := pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  ", SortKeys: false})
	// Pretty always ends with a newline; callers add their own.
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out
}
