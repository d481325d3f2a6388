// Package schema validates loosely typed field maps into typed configuration
// values. A Validator reflects a JSON schema from a struct once, checks every
// candidate map against it and decodes the accepted map into the struct.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Validator constructs values of T from field maps. T must be a pointer to a
// struct; newFn returns a fresh zero value for every construction.
type Validator[T any] struct {
	newFn    func() T
	desc     *Description
	compiled *gojsonschema.Schema
}

// Option customizes the reflected schema before it is compiled.
type Option func(s *jsonschema.Schema)

// WithConst pins a property to a single allowed value.
func WithConst(property string, value any) Option {
	return func(s *jsonschema.Schema) {
		if prop, ok := s.Properties.Get(property); ok {
			prop.Const = value
			prop.Enum = nil
		}
	}
}

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(s *jsonschema.Schema) { s.Title = title }
}

// NewValidator reflects T's schema and field table. kind names the
// configuration kind in descriptions and errors.
func NewValidator[T any](kind string, newFn func() T, opts ...Option) (*Validator[T], error) {
	sample := newFn()
	rt := reflect.TypeOf(sample)
	if rt == nil || rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s: expected pointer to struct, got %T", kind, sample)
	}

	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
	js := reflector.Reflect(sample)
	for _, opt := range opts {
		opt(js)
	}

	fields := describeFields(rt.Elem(), js)
	for _, f := range fields {
		prop, ok := js.Properties.Get(f.Name)
		if !ok || prop == nil {
			continue
		}
		if f.NullableItems && prop.Items != nil {
			prop.Items = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{prop.Items, {Type: "null"}}}
		}
		if len(f.Aliases) > 0 {
			if prop.Extras == nil {
				prop.Extras = map[string]any{}
			}
			prop.Extras["x-aliases"] = f.Aliases
		}
	}

	compiled, err := compile(js)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", kind, err)
	}
	return &Validator[T]{
		newFn:    newFn,
		desc:     &Description{Kind: kind, Fields: fields, JSON: js},
		compiled: compiled,
	}, nil
}

// MustValidator is NewValidator for package-level kind tables.
func MustValidator[T any](kind string, newFn func() T, opts ...Option) *Validator[T] {
	v, err := NewValidator(kind, newFn, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// gojsonschema understands draft-07 and older; the reflected draft 2020-12
// header is dropped for compilation only.
func compile(js *jsonschema.Schema) (*gojsonschema.Schema, error) {
	stripped := *js
	stripped.Version = ""
	stripped.ID = ""
	raw, err := json.Marshal(&stripped)
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
}

// Describe returns the field table and JSON schema of T.
func (v *Validator[T]) Describe() *Description { return v.desc }

// Construct validates fields and decodes them into a new T. Validation
// failures are returned as FieldErrors.
func (v *Validator[T]) Construct(fields map[string]any) (T, error) {
	var zero T
	if fields == nil {
		fields = map[string]any{}
	}
	result, err := v.compiled.Validate(gojsonschema.NewGoLoader(fields))
	if err != nil {
		return zero, FieldErrors{{Field: rootField, Message: err.Error()}}
	}
	if !result.Valid() {
		return zero, collect(result.Errors())
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return zero, FieldErrors{{Field: rootField, Message: err.Error()}}
	}
	out := v.newFn()
	if err := json.Unmarshal(raw, out); err != nil {
		return zero, FieldErrors{{Field: rootField, Message: err.Error()}}
	}
	return out, nil
}

// Dump returns the canonical field map of value without the excluded fields.
// Unset optional fields are omitted.
func (v *Validator[T]) Dump(value T, exclude ...string) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("schema: dump %s: %w", v.desc.Kind, err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("schema: dump %s: %w", v.desc.Kind, err)
	}
	for _, name := range exclude {
		delete(fields, name)
	}
	return fields, nil
}

const rootField = "(root)"

func collect(errs []gojsonschema.ResultError) FieldErrors {
	out := make(FieldErrors, 0, len(errs))
	for _, re := range errs {
		out = append(out, FieldError{Field: fieldName(re), Message: re.Description()})
	}
	slices.SortStableFunc(out, func(a, b FieldError) int { return strings.Compare(a.Field, b.Field) })
	return out
}

// fieldName reports the offending property. Errors raised on an object, such
// as a missing required or an unknown property, name the property in their
// details rather than in the context.
func fieldName(re gojsonschema.ResultError) string {
	field := re.Field()
	property, _ := re.Details()["property"].(string)
	switch {
	case property == "":
		return field
	case field == rootField:
		return property
	case field == property || strings.HasSuffix(field, "."+property):
		return field
	}
	return field + "." + property
}
