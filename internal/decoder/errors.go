package decoder

import (
	stderrors "errors"
	"fmt"

	"github.com/dxshie/kv2/internal/errors"
)

// ErrInvalidTarget is returned when Decode is given something other than a
// non-nil pointer.
var ErrInvalidTarget = stderrors.New("decode target must be a non-nil pointer")

// MismatchError reports a parsed value whose shape does not fit the Go type
// it is decoded into.
type MismatchError struct {
	Path    string // location in the value tree, e.g. presets[0].name
	Want    string // expected kind or Go type
	Got     string // kind that was found
	Missing bool   // a required field is absent
	Unknown bool   // a field has no destination and unknown keys are disallowed
}

func (e *MismatchError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	switch {
	case e.Missing && e.Want != "":
		return fmt.Sprintf("%s: missing required field (want %s)", path, e.Want)
	case e.Missing:
		return fmt.Sprintf("%s: missing required field", path)
	case e.Unknown:
		return fmt.Sprintf("%s: unknown field", path)
	default:
		return fmt.Sprintf("%s: expected %s, found %s", path, e.Want, e.Got)
	}
}

// Unwrap allows errors.Is(err, errors.ErrStructuralMismatch).
func (e *MismatchError) Unwrap() error {
	return errors.ErrStructuralMismatch
}

func mismatch(path, want, got string) *MismatchError {
	return &MismatchError{Path: path, Want: want, Got: got}
}
