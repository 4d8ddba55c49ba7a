package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dxshie/kv2/internal/errors"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// LexicalError means an expected quoted string, symbol or comment
	// terminator was not found.
	LexicalError ErrorKind = iota
	// GrammarError means the tokens were well formed but no rule accepted
	// them, e.g. an array whose type lacks the "_array" suffix.
	GrammarError
	// TooDeeplyNested means the nesting ceiling was exceeded.
	TooDeeplyNested
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case GrammarError:
		return "grammar error"
	case TooDeeplyNested:
		return "too deeply nested"
	default:
		return "unknown error"
	}
}

// ParseError reports where and why parsing stopped.
type ParseError struct {
	Kind     ErrorKind
	Rule     string   // grammar rule that failed
	Offset   int      // byte offset into the input
	Line     int      // 1-based
	Column   int      // 1-based, in bytes
	Expected []string // what would have been accepted at Offset
	Found    string   // excerpt of the input at Offset

	input    string
	terminal bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: expected %s, found %s",
		e.Line, e.Column, e.Rule, strings.Join(e.Expected, " or "), e.Found)
}

// Unwrap exposes errors.ErrTooDeeplyNested for depth failures.
func (e *ParseError) Unwrap() error {
	if e.Kind == TooDeeplyNested {
		return errors.ErrTooDeeplyNested
	}
	return nil
}

// Residual returns the input that was left unparsed.
func (e *ParseError) Residual() string {
	if e.Offset >= len(e.input) {
		return ""
	}
	return e.input[e.Offset:]
}

// fatal errors abort the parse instead of letting an alternative be tried.
func (e *ParseError) fatal() bool {
	return e.Kind == TooDeeplyNested || e.terminal
}

// locate fills in Line, Column and Found.
func (e *ParseError) locate() {
	line, col := 1, 1
	for i := 0; i < e.Offset && i < len(e.input); i++ {
		if e.input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	e.Line, e.Column = line, col
	e.Found = excerpt(e.input, e.Offset)
}

const excerptLen = 24

func excerpt(input string, offset int) string {
	if offset >= len(input) {
		return "EOF"
	}
	rest := input[offset:]
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "end of line"
	}
	if len(rest) > excerptLen {
		cut := excerptLen
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		rest = rest[:cut] + "..."
	}
	return strconv.Quote(rest)
}
