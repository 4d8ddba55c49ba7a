package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/dxshie/kv2/internal/errors" // Custom errors package
	"github.com/dxshie/kv2/internal/logging"
	"github.com/dxshie/kv2/internal/models"
)

var log = logging.Logger(logging.ModuleParser)

// DefaultMaxDepth is the nesting ceiling used when Options.MaxDepth is not set.
const DefaultMaxDepth = 256

// Options tune a Parser.
type Options struct {
	// MaxDepth bounds how deeply object bodies and arrays may nest.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int
}

// Parser parses KV2 documents. It holds no per-call state and is safe for
// concurrent use.
type Parser struct {
	maxDepth int
}

// New creates a Parser.
func New(opts Options) *Parser {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{maxDepth: maxDepth}
}

var defaultParser = New(Options{})

// ParseString parses a complete KV2 document. The whole input must be
// consumed; on failure no partial document is returned and the error wraps
// a *ParseError.
func (p *Parser) ParseString(input string) (models.Document, error) {
	s := newState(input, p.maxDepth)
	doc, perr := s.document()
	if perr == nil {
		if perr = s.skip(); perr == nil && !s.eof() {
			perr = s.trailing()
		}
	}
	if perr != nil {
		perr = s.report(perr)
		log.Debugf("parse failed: %v", perr)
		return nil, errors.NewParsingError("failed to parse KV2 document", perr)
	}
	log.Debugf("parsed %d root objects", len(doc))
	return doc, nil
}

// ParsePrefix parses root objects for as long as they match and returns
// the input that follows them. It fails only on unterminated comments and
// on exceeding the nesting ceiling.
func (p *Parser) ParsePrefix(input string) (models.Document, string, error) {
	s := newState(input, p.maxDepth)
	doc, perr := s.document()
	if perr != nil {
		perr = s.report(perr)
		return nil, perr.Residual(), errors.NewParsingError("failed to parse KV2 document", perr)
	}
	return doc, input[s.pos:], nil
}

// Parse reads all of reader and parses it as a KV2 document.
func (p *Parser) Parse(reader io.Reader) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return p.ParseString(string(data))
}

// ParseFile parses the KV2 document stored at filePath.
func (p *Parser) ParseFile(filePath string) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	log.Infof("parsing %s (%d bytes)", filePath, len(data))
	return p.ParseString(string(data))
}

// ParseString parses a complete KV2 document with default options.
func ParseString(input string) (models.Document, error) {
	return defaultParser.ParseString(input)
}

// ParsePrefix parses the leading root objects of input with default options.
func ParsePrefix(input string) (models.Document, string, error) {
	return defaultParser.ParsePrefix(input)
}

// Parse parses a KV2 document from reader with default options.
func Parse(reader io.Reader) (models.Document, error) {
	return defaultParser.Parse(reader)
}

// ParseFile parses a KV2 file with default options.
func ParseFile(filePath string) (models.Document, error) {
	return defaultParser.ParseFile(filePath)
}
