package schema

import (
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// Field describes one canonical configuration field.
type Field struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Wire    string   `json:"wire,omitempty"`
	Type    string   `json:"type,omitempty"`
	// ItemType is the JSON type of array elements.
	ItemType string `json:"item_type,omitempty"`
	// NullableItems marks arrays of pointers, whose elements may be null.
	NullableItems bool   `json:"nullable_items,omitempty"`
	Required      bool   `json:"required,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Description is the introspected shape of a configuration kind.
type Description struct {
	Kind   string             `json:"kind"`
	Fields []Field            `json:"fields"`
	JSON   *jsonschema.Schema `json:"schema"`
}

// Field looks up a field by canonical name.
func (d *Description) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the canonical field names in declaration order.
func (d *Description) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// describeFields walks the struct tags of rt, flattening embedded structs.
// Recognized tags: json (canonical name), alias (comma separated external
// names) and wire (dotted path in the remote document).
func describeFields(rt reflect.Type, js *jsonschema.Schema) []Field {
	required := map[string]bool{}
	for _, name := range js.Required {
		required[name] = true
	}
	var fields []Field
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if sf.Anonymous && name == "" {
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				fields = append(fields, describeFields(et, js)...)
				continue
			}
		}
		if !sf.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		f := Field{
			Name:     name,
			Wire:     sf.Tag.Get("wire"),
			Required: required[name],
		}
		if t := sf.Type; t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Pointer {
			f.NullableItems = true
		}
		if aliases := sf.Tag.Get("alias"); aliases != "" {
			for _, a := range strings.Split(aliases, ",") {
				if a = strings.TrimSpace(a); a != "" {
					f.Aliases = append(f.Aliases, a)
				}
			}
		}
		if prop, ok := js.Properties.Get(name); ok && prop != nil {
			f.Type = prop.Type
			f.Description = prop.Description
			if prop.Items != nil {
				f.ItemType = prop.Items.Type
			}
		}
		fields = append(fields, f)
	}
	return fields
}
