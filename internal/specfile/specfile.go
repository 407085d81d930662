// Package specfile loads compliance schema documents.
package specfile

import (
	"encoding/json"
	"fmt"
	"io"
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

// Format is the serialization of a schema document.
type Format string

// Supported document formats.
const (
	JSONFormat Format = "json"
	YAMLFormat Format = "yaml"
)

// FormatFromPath picks the document format from a file extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLFormat
	default:
		return JSONFormat
	}
}

// Load reads and parses the schema document at path.
func Load(path string) (*schema.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrSchemaFormat, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, FormatFromPath(path))
}

// Parse decodes a schema document from r.
func Parse(r io.Reader, format Format) (*schema.Spec, error) {
	doc, err := decode(r, format)
	if err != nil {
		return nil, err
	}

	spec := &schema.Spec{
		Sections: make(map[schema.SectionName][]schema.Item),
		Allowed:  make(map[string]schema.AllowedValues),
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := doc[key]
		if key == schema.AllowedValuesKey {
			if err := parseAllowed(spec, raw); err != nil {
				return nil, err
			}
			continue
		}
		section := schema.SectionName(key)
		if _, ok := schema.ValidSections[section]; !ok {
			spec.Warnings = append(spec.Warnings, fmt.Sprintf("ignoring unknown section %q", key))
			continue
		}
		items, err := parseSection(spec, section, raw)
		if err != nil {
			return nil, err
		}
		spec.Sections[section] = items
	}
	return spec, nil
}

// decode reads the whole document into generic maps and slices.
func decode(r io.Reader, format Format) (map[string]any, error) {
	var doc any
	switch format {
	case YAMLFormat:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrSchemaFormat, err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrSchemaFormat, err)
		}
	}
	obj, ok := asObject(doc)
	if !ok {
		return nil, fmt.Errorf("%w: document root must be an object", contract.ErrSchemaFormat)
	}
	return obj, nil
}

func parseSection(spec *schema.Spec, section schema.SectionName, raw any) ([]schema.Item, error) {
	if raw == nil {
		return []schema.Item{}, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: section %s must be a list", contract.ErrSchemaFormat, section)
	}

	items := make([]schema.Item, 0, len(entries))
	for i, entry := range entries {
		obj, ok := asObject(entry)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", contract.ErrSchemaFormat, section, i)
		}
		name := stringField(obj, "name")
		if name == "" {
			return nil, fmt.Errorf("%w: %s[%d] has no name", contract.ErrSchemaFormat, section, i)
		}
		item := schema.Item{
			Name:          name,
			TypeName:      stringField(obj, "type"),
			Applicability: parseApplicability(spec, stringField(obj, "applicability"), name),
		}
		item.Type = parseType(spec, item.TypeName, name)

		if rawAttrs, ok := obj["attributes"]; ok && rawAttrs != nil {
			attrs, err := parseAttributes(spec, section, name, rawAttrs)
			if err != nil {
				return nil, err
			}
			item.Attributes = attrs
		}
		items = append(items, item)
	}
	return items, nil
}

func parseAttributes(spec *schema.Spec, section schema.SectionName, owner string, raw any) ([]schema.Attribute, error) {
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: attributes of %s/%s must be a list", contract.ErrSchemaFormat, section, owner)
	}

	attrs := make([]schema.Attribute, 0, len(entries))
	for i, entry := range entries {
		obj, ok := asObject(entry)
		if !ok {
			return nil, fmt.Errorf("%w: attribute %d of %s must be an object", contract.ErrSchemaFormat, i, owner)
		}
		name := firstString(obj, "attribute_name", "name")
		if name == "" {
			return nil, fmt.Errorf("%w: attribute %d of %s has no attribute_name", contract.ErrSchemaFormat, i, owner)
		}
		attr := schema.Attribute{
			Name:     name,
			TypeName: firstString(obj, "attribute_datatype", "type"),
		}
		attr.Type = parseType(spec, attr.TypeName, owner+":"+name)
		if app := firstString(obj, "attribute_applicability", "applicability"); app != "" {
			attr.Applicability = parseApplicability(spec, app, owner+":"+name)
		}
		if v, ok := obj["attribute_value"]; ok && v != nil {
			attr.Expected = toAllowed(v)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseAllowed(spec *schema.Spec, raw any) error {
	if raw == nil {
		return nil
	}
	obj, ok := asObject(raw)
	if !ok {
		return fmt.Errorf("%w: %s must be an object", contract.ErrSchemaFormat, schema.AllowedValuesKey)
	}
	for name, v := range obj {
		if v == nil {
			continue
		}
		spec.Allowed[name] = toAllowed(v)
	}
	return nil
}

func parseType(spec *schema.Spec, typeName, owner string) schema.TypeTag {
	if typeName == "" {
		return schema.StringTag
	}
	tag, ok := schema.ParseTypeTag(typeName)
	if !ok {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("unknown type %q for %s, using string", typeName, owner))
	}
	return tag
}

func parseApplicability(spec *schema.Spec, s, owner string) schema.Applicability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mandatory":
		return schema.Mandatory
	case "optional", "":
		return schema.Optional
	default:
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("unknown applicability %q for %s, using Optional", s, owner))
		return schema.Optional
	}
}

// toAllowed turns a scalar or list into an allowed-values set.
func toAllowed(v any) schema.AllowedValues {
	if list, ok := v.([]any); ok {
		out := make(schema.AllowedValues, 0, len(list))
		for _, item := range list {
			out = append(out, scalarString(item))
		}
		return out
	}
	return schema.AllowedValues{scalarString(v)}
}

// scalarString renders decoded scalars as the text they were written as.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// asObject accepts both JSON objects and YAML mappings.
func asObject(v any) (map[string]any, bool) {
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

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(scalarString(v))
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(obj, key); s != "" {
			return s
		}
	}
	return ""
}
