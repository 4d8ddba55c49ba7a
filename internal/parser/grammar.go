package parser

import (
	"strconv"
	"strings"

	"github.com/dxshie/kv2/internal/models"
)

// entryRule parses one member of an object body.
type entryRule func(*state) (string, models.Value, *ParseError)

// document parses root objects until none matches.
func (s *state) document() (models.Document, *ParseError) {
	doc := models.Document{}
	if err := s.skip(); err != nil {
		return nil, err
	}
	for !s.eof() {
		start := s.pos
		obj, err := s.rootObject()
		if err != nil {
			if err.fatal() {
				return nil, err
			}
			s.pos = start
			break
		}
		doc = append(doc, obj)
	}
	return doc, nil
}

// trailing reports input left over after the last root object. The failed
// attempt to read another root object normally explains it best.
func (s *state) trailing() *ParseError {
	if s.furthest != nil && s.furthest.Offset >= s.pos {
		return s.furthest
	}
	return s.fail(GrammarError, ruleDocument, "root object")
}

// rootObject parses a top level class name and body.
func (s *state) rootObject() (models.Object, *ParseError) {
	className, err := s.token(ruleRootObject)
	if err != nil {
		return models.Object{}, err
	}
	log.Debugf("parsing root object %q at offset %d", className, s.pos)
	fields, err := s.objectBody()
	if err != nil {
		return models.Object{}, err
	}
	return models.Object{ClassName: className, Fields: fields}, nil
}

// objectBody parses '{' entry* '}'. A key written twice keeps its last value.
func (s *state) objectBody() (map[string]models.Value, *ParseError) {
	if err := s.symbol('{', ruleObjectBody); err != nil {
		return nil, err
	}
	if err := s.enter(ruleObjectBody); err != nil {
		return nil, err
	}
	defer s.leave()

	fields := make(map[string]models.Value)
	for {
		start := s.pos
		key, val, err := s.entry()
		if err != nil {
			if err.fatal() {
				return nil, err
			}
			s.pos = start
			break
		}
		fields[key] = val
	}
	if err := s.symbol('}', ruleObjectBody); err != nil {
		return nil, err
	}
	return fields, nil
}

// entry tries each entry form and keeps the first that matches. All three
// forms start with two quoted strings and differ only in what follows: a
// third string, a '[' or a '{'. The failure returned is the last form's;
// the furthest failure already holds every token that was expected.
func (s *state) entry() (string, models.Value, *ParseError) {
	start := s.pos
	var last *ParseError
	for _, rule := range [...]entryRule{
		(*state).keyValue,
		(*state).arrayEntry,
		(*state).nestedObjectEntry,
	} {
		s.pos = start
		key, val, err := rule(s)
		if err == nil {
			return key, val, nil
		}
		if err.fatal() {
			return "", nil, err
		}
		last = err
	}
	s.pos = start
	return "", nil, last
}

// keyValue parses "key" "type" "value".
func (s *state) keyValue() (string, models.Value, *ParseError) {
	key, err := s.token(ruleKeyValue)
	if err != nil {
		return "", nil, err
	}
	tag, err := s.token(ruleKeyValue)
	if err != nil {
		return "", nil, err
	}
	raw, err := s.token(ruleKeyValue)
	if err != nil {
		return "", nil, err
	}
	return key, Coerce(tag, raw), nil
}

// arrayEntry parses "key" "<base>_array" [ element, ... ].
func (s *state) arrayEntry() (string, models.Value, *ParseError) {
	key, err := s.token(ruleArray)
	if err != nil {
		return "", nil, err
	}
	tagStart := s.pos
	tag, err := s.token(ruleArray)
	if err != nil {
		return "", nil, err
	}
	base, ok := strings.CutSuffix(tag, arraySuffix)
	if !ok {
		return "", nil, s.failAt(tagStart, GrammarError, ruleArray, "type ending in \""+arraySuffix+"\"")
	}
	log.Debugf("parsing %s array %q at offset %d", base, key, s.pos)

	if err := s.symbol('[', ruleArray); err != nil {
		return "", nil, err
	}
	if err := s.enter(ruleArray); err != nil {
		return "", nil, err
	}
	defer s.leave()

	elems := models.Array{}
	start := s.pos
	first, err := s.element(base)
	switch {
	case err == nil:
		elems = append(elems, first)
		for {
			beforeComma := s.pos
			if err := s.symbol(',', ruleArray); err != nil {
				s.pos = beforeComma
				break
			}
			elem, err := s.element(base)
			if err != nil {
				if err.fatal() {
					return "", nil, err
				}
				s.pos = beforeComma
				break
			}
			elems = append(elems, elem)
		}
	case err.fatal():
		return "", nil, err
	default:
		s.pos = start
	}

	if err := s.symbol(']', ruleArray); err != nil {
		return "", nil, err
	}
	return key, elems, nil
}

// element parses one array element of the given base type.
func (s *state) element(base string) (models.Value, *ParseError) {
	if base != TypeElement {
		raw, err := s.token(ruleElement)
		if err != nil {
			return nil, err
		}
		return Coerce(base, raw), nil
	}

	start := s.pos
	obj, err := s.nestedObject()
	if err == nil {
		return obj, nil
	}
	if err.fatal() {
		return nil, err
	}
	s.pos = start
	return s.pairElement()
}

// nestedObject parses "ClassName" { ... } inside an element array.
func (s *state) nestedObject() (models.Object, *ParseError) {
	className, err := s.token(ruleElement)
	if err != nil {
		return models.Object{}, err
	}
	fields, err := s.objectBody()
	if err != nil {
		return models.Object{}, err
	}
	return models.Object{ClassName: className, Fields: fields}, nil
}

// pairElement parses a bare "key" "value" element into a single field
// object without a class name.
func (s *state) pairElement() (models.Object, *ParseError) {
	key, err := s.token(ruleElement)
	if err != nil {
		return models.Object{}, err
	}
	val, err := s.token(ruleElement)
	if err != nil {
		return models.Object{}, err
	}
	obj := models.NewObject("")
	obj.Fields[key] = models.String(val)
	return obj, nil
}

// nestedObjectEntry parses "key" "ClassName" { ... }.
func (s *state) nestedObjectEntry() (string, models.Value, *ParseError) {
	key, err := s.token(ruleNestedEntry)
	if err != nil {
		return "", nil, err
	}
	className, err := s.token(ruleNestedEntry)
	if err != nil {
		return "", nil, err
	}
	log.Debugf("parsing nested %q object %q at offset %d", className, key, s.pos)
	fields, err := s.objectBody()
	if err != nil {
		return "", nil, err
	}
	return key, models.Object{ClassName: className, Fields: fields}, nil
}

// enter descends one nesting level.
func (s *state) enter(rule string) *ParseError {
	s.depth++
	if s.depth > s.maxDepth {
		s.depth--
		return s.fail(TooDeeplyNested, rule, "at most "+strconv.Itoa(s.maxDepth)+" nesting levels")
	}
	return nil
}

func (s *state) leave() {
	s.depth--
}
