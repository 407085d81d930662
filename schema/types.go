package schema

import (
	"strconv"
	"strings"
)

// TypeTag is the expected type declared for a schema item or attribute.
type TypeTag string

// All type tags supported by the schema document.
const (
	StringTag  TypeTag = "string" // default for unrecognized names
	Int32Tag   TypeTag = "int32"
	Float32Tag TypeTag = "float32"
	Float64Tag TypeTag = "float64"
	Uint8Tag   TypeTag = "uint8"
)

// typeTagNames maps every accepted spelling to its tag.
var typeTagNames = map[string]TypeTag{
	"string":  StringTag,
	"str":     StringTag,
	"char":    StringTag,
	"int":     Int32Tag,
	"int32":   Int32Tag,
	"float":   Float32Tag,
	"float32": Float32Tag,
	"double":  Float64Tag,
	"float64": Float64Tag,
	"uint8":   Uint8Tag,
	"ubyte":   Uint8Tag,
}

// ParseTypeTag resolves a schema type name. Unknown names resolve to
// StringTag and report false.
func ParseTypeTag(name string) (TypeTag, bool) {
	if tag, ok := typeTagNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return tag, true
	}
	return StringTag, false
}

// DataType is the runtime type reported by a data source.
type DataType string

// Runtime data types.
const (
	StringType  DataType = "string"
	CharType    DataType = "char"
	Int8Type    DataType = "int8"
	Uint8Type   DataType = "uint8"
	Int16Type   DataType = "int16"
	Uint16Type  DataType = "uint16"
	Int32Type   DataType = "int32"
	Uint32Type  DataType = "uint32"
	Int64Type   DataType = "int64"
	Uint64Type  DataType = "uint64"
	Float32Type DataType = "float32"
	Float64Type DataType = "float64"
	UnknownType DataType = "unknown"
)

// Matches reports whether a runtime type satisfies the tag. Numeric tags
// require the exact width.
func (t TypeTag) Matches(dt DataType) bool {
	switch t {
	case StringTag:
		return dt == StringType || dt == CharType
	case Int32Tag:
		return dt == Int32Type
	case Float32Tag:
		return dt == Float32Type
	case Float64Tag:
		return dt == Float64Type
	case Uint8Tag:
		return dt == Uint8Type
	default:
		return false
	}
}

// IsNumeric reports whether values of this type are numbers.
func (dt DataType) IsNumeric() bool {
	switch dt {
	case "", StringType, CharType, UnknownType:
		return false
	default:
		return true
	}
}

// Value is a scalar or short list read from a data source.
// Raw holds a string, int64, uint64, float64 or a []any of those.
type Value struct {
	Type DataType
	Raw  any
}

// None is the absent value.
var None = Value{}

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool {
	return v.Type == "" && v.Raw == nil
}

// String renders the value the way reports display it.
func (v Value) String() string {
	if v.IsNone() {
		return "None"
	}
	return formatRaw(v.Raw, v.Type)
}

// Float returns the value as a float64 when it is a single number.
func (v Value) Float() (float64, bool) {
	switch raw := v.Raw.(type) {
	case int64:
		return float64(raw), true
	case uint64:
		return float64(raw), true
	case float64:
		return raw, true
	default:
		return 0, false
	}
}

func formatRaw(raw any, dt DataType) string {
	switch r := raw.(type) {
	case nil:
		return "None"
	case string:
		return r
	case int64:
		return strconv.FormatInt(r, 10)
	case uint64:
		return strconv.FormatUint(r, 10)
	case float64:
		bits := 64
		if dt == Float32Type {
			bits = 32
		}
		return strconv.FormatFloat(r, 'g', -1, bits)
	case []any:
		parts := make([]string, len(r))
		for i, item := range r {
			parts[i] = formatRaw(item, dt)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "None"
	}
}
