package parser

import (
	"strconv"
	"strings"

	"github.com/dxshie/kv2/internal/models"
)

// Scalar type tags understood by Coerce. Any other tag yields a String.
const (
	TypeBool       = "bool"
	TypeInt        = "int"
	TypeInt32      = "int32"
	TypeInt64      = "int64"
	TypeFloat      = "float"
	TypeString     = "string"
	TypeElementID  = "elementid"
	TypeVector3    = "vector3"
	TypeQuaternion = "quaternion"
	TypeElement    = "element"

	arraySuffix = "_array"
)

// Coerce converts the raw text of a scalar into a Value according to its
// type tag. It never fails: malformed numbers become 0, and malformed
// vectors or quaternions keep their raw text as a String.
func Coerce(tag, raw string) models.Value {
	switch tag {
	case TypeBool:
		return models.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case TypeInt, TypeInt32, TypeInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Debugf("%s value %q is not an integer, using 0", tag, raw)
			return models.Int(0)
		}
		return models.Int(n)
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Debugf("float value %q is not a number, using 0", raw)
			return models.Double(0)
		}
		return models.Double(f)
	case TypeString, TypeElementID:
		return models.String(raw)
	case TypeVector3:
		if fs, ok := parseFloats(raw); ok {
			return models.Vector(fs)
		}
		log.Debugf("vector3 value %q is not numeric, keeping it as a string", raw)
		return models.String(raw)
	case TypeQuaternion:
		if fs, ok := parseFloats(raw); ok {
			return models.Quaternion(fs)
		}
		log.Debugf("quaternion value %q is not numeric, keeping it as a string", raw)
		return models.String(raw)
	default:
		return models.String(raw)
	}
}

// parseFloats parses every whitespace separated field of raw.
func parseFloats(raw string) ([]float64, bool) {
	fields := strings.Fields(raw)
	fs := make([]float64, 0, len(fields))
	for _, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}
		fs = append(fs, f)
	}
	return fs, true
}
