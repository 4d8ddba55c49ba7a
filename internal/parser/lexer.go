package parser

import (
	"slices"
	"strings"
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	quote        = '"'
)

// Rule names reported in ParseError.Rule.
const (
	ruleDocument    = "document"
	ruleRootObject  = "root object"
	ruleObjectBody  = "object body"
	ruleKeyValue    = "key/value"
	ruleArray       = "array"
	ruleElement     = "array element"
	ruleNestedEntry = "nested object"
	ruleComment     = "comment"
)

// state is the cursor of a single parse call.
type state struct {
	input    string
	pos      int
	depth    int
	maxDepth int

	// furthest is the failure recorded at the highest offset so far.
	furthest *ParseError
}

func newState(input string, maxDepth int) *state {
	return &state{input: input, maxDepth: maxDepth}
}

func (s *state) eof() bool {
	return s.pos >= len(s.input)
}

// fail records a failure at the cursor.
func (s *state) fail(kind ErrorKind, rule, expected string) *ParseError {
	return s.failAt(s.pos, kind, rule, expected)
}

// failAt records a failure at offset. Failures at the furthest offset seen
// so far accumulate their expectations, since each one names a token that
// would have let the parse continue.
func (s *state) failAt(offset int, kind ErrorKind, rule, expected string) *ParseError {
	err := &ParseError{
		Kind:     kind,
		Rule:     rule,
		Offset:   offset,
		Expected: []string{expected},
		input:    s.input,
	}
	switch {
	case s.furthest == nil || offset > s.furthest.Offset:
		s.furthest = &ParseError{
			Kind:     kind,
			Rule:     rule,
			Offset:   offset,
			Expected: []string{expected},
			input:    s.input,
		}
	case offset == s.furthest.Offset:
		if !slices.Contains(s.furthest.Expected, expected) {
			s.furthest.Expected = append(s.furthest.Expected, expected)
		}
	}
	return err
}

// report turns err into the error returned to the caller.
func (s *state) report(err *ParseError) *ParseError {
	if !err.fatal() && s.furthest != nil && s.furthest.Offset >= err.Offset {
		err = s.furthest
	}
	err.locate()
	return err
}

// skip consumes any run of whitespace and comments.
func (s *state) skip() *ParseError {
	for !s.eof() {
		switch c := s.input[s.pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case strings.HasPrefix(s.input[s.pos:], commentOpen):
			if err := s.comment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// comment consumes one <!-- ... --> block.
func (s *state) comment() *ParseError {
	body := s.pos + len(commentOpen)
	end := strings.Index(s.input[body:], commentClose)
	if end < 0 {
		s.pos = len(s.input)
		err := s.fail(LexicalError, ruleComment, "'"+commentClose+"'")
		err.terminal = true
		return err
	}
	s.pos = body + end + len(commentClose)
	return nil
}

// quotedString reads a double-quoted token verbatim; there are no escapes.
func (s *state) quotedString(rule string) (string, *ParseError) {
	if s.eof() || s.input[s.pos] != quote {
		return "", s.fail(LexicalError, rule, `'"'`)
	}
	start := s.pos + 1
	end := strings.IndexByte(s.input[start:], quote)
	if end < 0 {
		return "", s.failAt(len(s.input), LexicalError, rule, `closing '"'`)
	}
	s.pos = start + end + 1
	return s.input[start : start+end], nil
}

// token reads a quoted string surrounded by filler.
func (s *state) token(rule string) (string, *ParseError) {
	if err := s.skip(); err != nil {
		return "", err
	}
	str, err := s.quotedString(rule)
	if err != nil {
		return "", err
	}
	if err := s.skip(); err != nil {
		return "", err
	}
	return str, nil
}

// symbol consumes one structural character surrounded by filler.
func (s *state) symbol(c byte, rule string) *ParseError {
	if err := s.skip(); err != nil {
		return err
	}
	if s.eof() || s.input[s.pos] != c {
		return s.fail(LexicalError, rule, "'"+string(c)+"'")
	}
	s.pos++
	return s.skip()
}
