package chart

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/palewire/datawrapper-mcp/schema"
)

// Flatten reads the kind's canonical fields out of a Datawrapper chart
// document. Missing or null paths are left out, as are values whose JSON type
// differs from the field's; Datawrapper stores some settings in several
// representations. chart_type is set to the kind's name.
//
// Elements of nullable arrays such as axis ranges come back as "" when unset
// and sometimes as numeric strings; they are read as null and numbers.
func (k *Kind) Flatten(remote map[string]any) map[string]any {
	fields := map[string]any{FieldType: k.Name}
	for _, f := range k.Describe().Fields {
		if f.Wire == "" {
			continue
		}
		value, ok := lookup(remote, f.Wire)
		if !ok || value == nil || !compatible(f.Type, value) {
			continue
		}
		if items, isArray := value.([]any); isArray {
			if value, ok = flattenItems(f, items); !ok {
				continue
			}
		}
		fields[f.Name] = value
	}
	return fields
}

func flattenItems(f schema.Field, items []any) ([]any, bool) {
	out := make([]any, len(items))
	for i, item := range items {
		if s, isString := item.(string); isString && f.NullableItems && f.ItemType != "string" {
			if strings.TrimSpace(s) == "" {
				item = nil
			} else if n, err := cast.ToFloat64E(strings.TrimSpace(s)); err == nil && (f.ItemType == "number" || f.ItemType == "integer") {
				item = n
			}
		}
		switch {
		case item == nil && f.NullableItems:
		case item == nil, f.ItemType != "" && !compatible(f.ItemType, item):
			return nil, false
		}
		out[i] = item
	}
	return out, true
}

// Expand nests canonical fields under their wire paths, producing a partial
// chart document for a create or update request. Fields without a wire path
// are skipped. Null elements of nullable arrays are written as "", the way
// Datawrapper stores an unset bound.
func (k *Kind) Expand(fields map[string]any) map[string]any {
	doc := map[string]any{}
	for _, f := range k.Describe().Fields {
		value, ok := fields[f.Name]
		if !ok || f.Wire == "" {
			continue
		}
		if items, isArray := value.([]any); isArray && f.NullableItems {
			wire := make([]any, len(items))
			for i, item := range items {
				if item == nil {
					item = ""
				}
				wire[i] = item
			}
			value = wire
		}
		assign(doc, f.Wire, value)
	}
	return doc
}

func lookup(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := doc[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[part] = next
		}
		doc = next
	}
	doc[parts[len(parts)-1]] = value
}

func compatible(jsonType string, value any) bool {
	switch jsonType {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == float64(int64(f))
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
