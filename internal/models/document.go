package models

import (
	"fmt"

	"github.com/dxshie/kv2/internal/errors"
	"github.com/google/uuid"
)

// IDField is the conventional field holding an element's identifier.
const IDField = "id"

// Document is the result of parsing KV2 text: its root objects in source order.
type Document []Object

// First returns the first root object.
func (d Document) First() (Object, error) {
	if len(d) == 0 {
		return Object{}, errors.ErrNoRootObject
	}
	return d[0], nil
}

// At returns the root object at index i.
func (d Document) At(i int) (Object, error) {
	if len(d) == 0 {
		return Object{}, errors.ErrNoRootObject
	}
	if i < 0 || i >= len(d) {
		return Object{}, fmt.Errorf("%w: %d (document has %d)", errors.ErrObjectIndex, i, len(d))
	}
	return d[i], nil
}

// ElementID returns the parsed "id" field of o, if it holds a UUID string.
func (o Object) ElementID() (uuid.UUID, bool) {
	v, ok := o.Fields[IDField]
	if !ok {
		return uuid.UUID{}, false
	}
	s, ok := v.(String)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(string(s))
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// Lookup finds the object anywhere in the document whose element id equals id.
func (d Document) Lookup(id uuid.UUID) (Object, bool) {
	var found Object
	var ok bool
	d.Walk(func(o Object) bool {
		if oid, has := o.ElementID(); has && oid == id {
			found, ok = o, true
			return false
		}
		return true
	})
	return found, ok
}

// Index maps every element id in the document to its object. When the same
// id appears more than once the first occurrence in source order wins.
func (d Document) Index() map[uuid.UUID]Object {
	index := make(map[uuid.UUID]Object)
	d.Walk(func(o Object) bool {
		if id, has := o.ElementID(); has {
			if _, seen := index[id]; !seen {
				index[id] = o
			}
		}
		return true
	})
	return index
}

// Walk calls fn for every object in the document, depth first, stopping
// as soon as fn returns false. Fields of an object are visited in key order.
func (d Document) Walk(fn func(Object) bool) {
	for _, root := range d {
		if !walkValue(root, fn) {
			return
		}
	}
}

func walkValue(v Value, fn func(Object) bool) bool {
	switch t := v.(type) {
	case Object:
		if !fn(t) {
			return false
		}
		for _, k := range t.Keys() {
			if !walkValue(t.Fields[k], fn) {
				return false
			}
		}
	case Array:
		for _, elem := range t {
			if !walkValue(elem, fn) {
				return false
			}
		}
	}
	return true
}
