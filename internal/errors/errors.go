package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput         = errors.New("input is empty or contains only whitespace")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileEmpty          = errors.New("file is empty")
	ErrNoInput            = errors.New("no input provided: please specify a file or pipe KV2 data to stdin")
	ErrInvalidFilePath    = errors.New("invalid file path")
	ErrNoRootObject       = errors.New("document contains no root object")
	ErrObjectIndex        = errors.New("root object index out of range")
	ErrTooDeeplyNested    = errors.New("document is too deeply nested")
	ErrStructuralMismatch = errors.New("structural mismatch")
	ErrNoMatch            = errors.New("query path matched nothing")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeDecode   ErrorType = "decode"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeQuery    ErrorType = "query"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newAppError(typ ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    typ,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return newAppError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to KV2 parsing
func NewParsingError(message string, err error) *AppError {
	return newAppError(ErrorTypeParsing, message, err)
}

// NewDecodeError creates a new error related to decoding a parsed tree into a Go value
func NewDecodeError(message string, err error) *AppError {
	return newAppError(ErrorTypeDecode, message, err)
}

// NewAnalysisError creates a new error related to type analysis
func NewAnalysisError(message string, err error) *AppError {
	return newAppError(ErrorTypeAnalysis, message, err)
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return newAppError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return newAppError(ErrorTypeFormat, message, err)
}

// NewQueryError creates a new error related to path queries
func NewQueryError(message string, err error) *AppError {
	return newAppError(ErrorTypeQuery, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newAppError(ErrorTypeOutput, message, err)
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Err != nil {
			detail = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", detail)
		case ErrorTypeParsing:
			return fmt.Sprintf("KV2 parsing error: %s", detail)
		case ErrorTypeDecode:
			return fmt.Sprintf("Decode error: %s", detail)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Type analysis error: %s", detail)
		case ErrorTypeGenerate:
			return fmt.Sprintf("Code generation error: %s", detail)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", detail)
		case ErrorTypeQuery:
			return fmt.Sprintf("Query error: %s", detail)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", detail)
		default:
			return fmt.Sprintf("Error: %s", detail)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide KV2 data."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with KV2 content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file or pipe KV2 data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrNoRootObject) {
		return "Error: The document does not contain any root object."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
