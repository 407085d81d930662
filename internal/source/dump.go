package source

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
	"gopkg.in/yaml.v3"
)

// OpenDump reads a JSON or YAML metadata dump into a Tree. The layout is
//
//	attributes: {name: value}
//	variables:  {name: {type, shape, value, attributes}}
//	groups:     {name: <same layout>}
//
// An attribute value is either a bare scalar or list, or {type, value} when
// the type must be explicit.
func OpenDump(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrDataSourceOpen, err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.UseNumber()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrDataSourceOpen, path, err)
	}

	obj, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("%w: %s: dump root must be an object", contract.ErrDataSourceOpen, path)
	}
	tree := NewTree(path, DumpFormat)
	if err := fillGroup(tree.RootGroup(), obj); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrDataSourceOpen, path, err)
	}
	return tree, nil
}

func fillGroup(g *TreeGroup, obj map[string]any) error {
	if attrs, ok := asMap(obj["attributes"]); ok {
		for name, raw := range attrs {
			g.SetAttribute(name, attributeValue(raw))
		}
	}

	if vars, ok := asMap(obj["variables"]); ok {
		for name, raw := range vars {
			spec, ok := asMap(raw)
			if !ok {
				return fmt.Errorf("variable %s must be an object", name)
			}
			dt := parseDataType(spec["type"])
			shape, err := parseShape(spec["shape"])
			if err != nil {
				return fmt.Errorf("variable %s: %w", name, err)
			}
			var first []schema.Value
			if raw, ok := spec["value"]; ok && raw != nil {
				val := convertValue(raw, dt)
				dt = val.Type
				if list, ok := val.Raw.([]any); ok {
					if len(list) > 0 {
						first = append(first, schema.Value{Type: dt, Raw: list[0]})
					}
				} else {
					first = append(first, val)
				}
			}
			if dt == "" {
				dt = schema.UnknownType
			}
			v := g.AddVariable(name, dt, shape, first...)
			if attrs, ok := asMap(spec["attributes"]); ok {
				for aname, raw := range attrs {
					v.SetAttribute(aname, attributeValue(raw))
				}
			}
		}
	}

	if groups, ok := asMap(obj["groups"]); ok {
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, ok := asMap(groups[name])
			if !ok {
				return fmt.Errorf("group %s must be an object", name)
			}
			if err := fillGroup(g.AddGroup(name), child); err != nil {
				return err
			}
		}
	}
	return nil
}

// attributeValue infers the type of a bare attribute value unless it is
// given in the explicit {type, value} form.
func attributeValue(raw any) schema.Value {
	if obj, ok := asMap(raw); ok {
		if _, typed := obj["type"]; typed {
			return convertValue(obj["value"], parseDataType(obj["type"]))
		}
	}
	return convertValue(raw, "")
}

func parseDataType(raw any) schema.DataType {
	s, _ := raw.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str":
		return schema.StringType
	case "char", "s1":
		return schema.CharType
	case "int8", "byte", "i1":
		return schema.Int8Type
	case "uint8", "ubyte", "u1":
		return schema.Uint8Type
	case "int16", "short", "i2":
		return schema.Int16Type
	case "uint16", "ushort", "u2":
		return schema.Uint16Type
	case "int32", "int", "i4":
		return schema.Int32Type
	case "uint32", "uint", "u4":
		return schema.Uint32Type
	case "int64", "i8":
		return schema.Int64Type
	case "uint64", "u8":
		return schema.Uint64Type
	case "float32", "float", "f4":
		return schema.Float32Type
	case "float64", "double", "f8":
		return schema.Float64Type
	case "":
		return ""
	default:
		return schema.UnknownType
	}
}

func parseShape(raw any) ([]int, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("shape must be a list")
	}
	shape := make([]int, len(list))
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok || f < 0 {
			return nil, fmt.Errorf("invalid shape entry %v", item)
		}
		shape[i] = int(f)
	}
	return shape, nil
}

// convertValue turns a decoded value into a schema.Value of type dt.
// An empty dt is inferred: strings, int32 for integers, float64 otherwise.
func convertValue(raw any, dt schema.DataType) schema.Value {
	switch r := raw.(type) {
	case nil:
		return schema.None
	case []any:
		if dt == "" && len(r) > 0 {
			dt = inferType(r[0])
		}
		list := make([]any, 0, len(r))
		for _, item := range r {
			list = append(list, convertValue(item, dt).Raw)
		}
		return schema.Value{Type: dt, Raw: list}
	}

	if dt == "" {
		dt = inferType(raw)
	}
	if !dt.IsNumeric() {
		return schema.Value{Type: dt, Raw: scalarText(raw)}
	}
	f, ok := toFloat(raw)
	if !ok {
		return schema.Value{Type: dt, Raw: scalarText(raw)}
	}
	switch dt {
	case schema.Float32Type, schema.Float64Type:
	case schema.Uint8Type, schema.Uint16Type, schema.Uint32Type, schema.Uint64Type:
		if u, ok := toUint(raw); ok {
			return schema.Value{Type: dt, Raw: u}
		}
	default:
		if i, ok := toInt(raw); ok {
			return schema.Value{Type: dt, Raw: i}
		}
	}
	// Non-integral or out-of-range integers keep their float value.
	return schema.Value{Type: dt, Raw: f}
}

// toInt converts an integral value exactly. Decoded integers are parsed from
// their text before any float conversion.
func toInt(raw any) (int64, bool) {
	switch r := raw.(type) {
	case int:
		return int64(r), true
	case int64:
		return r, true
	case uint64:
		return int64(r), r <= math.MaxInt64
	case json.Number:
		if i, err := r.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// toUint is toInt for unsigned types. Negative values do not convert.
func toUint(raw any) (uint64, bool) {
	switch r := raw.(type) {
	case int:
		return uint64(r), r >= 0
	case int64:
		return uint64(r), r >= 0
	case uint64:
		return r, true
	case json.Number:
		if u, err := strconv.ParseUint(r.String(), 10, 64); err == nil {
			return u, true
		}
	case string:
		if u, err := strconv.ParseUint(strings.TrimSpace(r), 10, 64); err == nil {
			return u, true
		}
	}
	f, ok := toFloat(raw)
	if !ok || f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

func inferType(raw any) schema.DataType {
	switch r := raw.(type) {
	case string:
		return schema.StringType
	case bool:
		return schema.Int8Type
	case int, int64, uint64:
		return schema.Int32Type
	case json.Number:
		if _, err := r.Int64(); err == nil {
			return schema.Int32Type
		}
		return schema.Float64Type
	case float64:
		return schema.Float64Type
	default:
		return schema.StringType
	}
}

func toFloat(raw any) (float64, bool) {
	switch r := raw.(type) {
	case json.Number:
		f, err := r.Float64()
		return f, err == nil
	case float64:
		return r, true
	case int:
		return float64(r), true
	case int64:
		return float64(r), true
	case uint64:
		return float64(r), true
	case bool:
		if r {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func scalarText(raw any) string {
	switch r := raw.(type) {
	case string:
		return r
	case json.Number:
		return r.String()
	default:
		return fmt.Sprint(r)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
