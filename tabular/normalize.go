// Package tabular turns loosely shaped chart data into one canonical table.
//
// Accepted inputs are a list of records, a mapping of column name to values,
// JSON text holding either of those, or the path of a .csv or .json file.
// Anything else fails with a *NormalizationError whose Reason says what went
// wrong and whose Remediation shows a corrected example.
package tabular

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path"
	"reflect"
	"slices"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/spf13/cast"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const memScheme = "mem"

// Normalizer converts raw chart data into a Table. It holds no per-call
// state and is safe for concurrent use.
type Normalizer struct {
	fs afs.Service
}

// New returns a normalizer resolving file references through fs. A nil fs
// uses afs.New().
func New(fs afs.Service) *Normalizer {
	if fs == nil {
		fs = afs.New()
	}
	return &Normalizer{fs: fs}
}

var defaultNormalizer = New(nil)

// Normalize converts input using the default local-filesystem normalizer.
func Normalize(ctx context.Context, input any) (*Table, error) {
	return defaultNormalizer.Normalize(ctx, input)
}

// Normalize converts input into a Table or returns a *NormalizationError.
func (n *Normalizer) Normalize(ctx context.Context, input any) (*Table, error) {
	switch v := input.(type) {
	case string:
		return n.fromText(ctx, v)
	case []byte:
		return n.fromText(ctx, string(v))
	case json.RawMessage:
		return decodeText([]byte(v))
	}
	return fromValue(input)
}

func (n *Normalizer) fromText(ctx context.Context, text string) (*Table, error) {
	trimmed := strings.TrimSpace(text)
	if !looksLikeContainer(trimmed) {
		if table, handled, err := n.fromFile(ctx, trimmed); handled {
			return table, err
		}
		if strings.Contains(text, "\n") && strings.Contains(text, ",") {
			return nil, rawDelimited()
		}
	}
	return decodeText([]byte(text))
}

func looksLikeContainer(s string) bool {
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// fromFile reports handled=false when location is not an existing regular
// file, letting the caller fall through to JSON decoding.
func (n *Normalizer) fromFile(ctx context.Context, location string) (*Table, bool, error) {
	if location == "" || strings.ContainsAny(location, "\r\n") {
		return nil, false, nil
	}
	switch url.Scheme(location, file.Scheme) {
	case file.Scheme, memScheme:
	default:
		return nil, false, nil
	}
	object, err := n.fs.Object(ctx, location)
	if err != nil || object == nil || object.IsDir() {
		return nil, false, nil
	}
	ext := strings.ToLower(path.Ext(object.Name()))
	if ext != ".csv" && ext != ".json" {
		return nil, true, unsupportedFileType(location, ext)
	}
	data, err := n.fs.Download(ctx, object)
	if err != nil {
		return nil, true, malformed(err, "file "+location)
	}
	if ext == ".csv" {
		table, err := fromCSV(data, location)
		return table, true, err
	}
	value, err := parseJSON(data)
	if err != nil {
		return nil, true, malformed(err, "JSON file "+location)
	}
	table, err := fromValue(value)
	return table, true, err
}

func decodeText(data []byte) (*Table, error) {
	value, err := parseJSON(data)
	if err != nil {
		return nil, malformed(err, "JSON string")
	}
	return fromValue(value)
}

// parseJSON decodes data keeping object key order. Objects become ordered
// maps, arrays []any, numbers float64.
func parseJSON(data []byte) (any, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}
	return convertJSON(value, dataType)
}

func convertJSON(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		object := orderedmap.New[string, any]()
		err := jsonparser.ObjectEach(value, func(key, item []byte, itemType jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			converted, err := convertJSON(item, itemType)
			if err != nil {
				return err
			}
			object.Set(name, converted)
			return nil
		})
		return object, err
	case jsonparser.Array:
		items := []any{}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
			if itemErr != nil {
				return
			}
			if err != nil {
				itemErr = err
				return
			}
			converted, err := convertJSON(item, itemType)
			if err != nil {
				itemErr = err
				return
			}
			items = append(items, converted)
		})
		if err == nil {
			err = itemErr
		}
		return items, err
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected JSON value type %s", dataType)
}

type entry struct {
	key   string
	value any
}

func fromValue(value any) (*Table, error) {
	switch v := value.(type) {
	case []any:
		return fromRecords(v)
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return fromRecords(items)
	case []*orderedmap.OrderedMap[string, any]:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return fromRecords(items)
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		entries, _ := objectEntries(v)
		return fromColumns(entries)
	case map[string][]any:
		entries := make([]entry, 0, len(v))
		for _, key := range slices.Sorted(maps.Keys(v)) {
			entries = append(entries, entry{key: key, value: v[key]})
		}
		return fromColumns(entries)
	}
	return nil, unsupportedShape(typeName(value))
}

func fromRecords(items []any) (*Table, error) {
	if len(items) == 0 {
		return nil, emptyList()
	}
	var names []string
	seen := map[string]bool{}
	rows := make([][]entry, len(items))
	for i, item := range items {
		entries, ok := objectEntries(item)
		if !ok {
			return nil, nonRecordElement(i, typeName(item))
		}
		for _, e := range entries {
			if !seen[e.key] {
				seen[e.key] = true
				names = append(names, e.key)
			}
		}
		rows[i] = entries
	}
	if len(names) == 0 {
		return nil, emptyColumns("records contain no fields")
	}
	table := newTable(names, len(items))
	for i, entries := range rows {
		for _, e := range entries {
			table.columns[table.index[e.key]].Values[i] = canonical(e.value)
		}
	}
	return table, nil
}

func fromColumns(entries []entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, emptyColumns("data object is empty")
	}
	columns := make([][]any, len(entries))
	for i, e := range entries {
		values, ok := asSlice(e.value)
		if !ok {
			return nil, nonArrayColumn(e.key, typeName(e.value))
		}
		columns[i] = values
	}
	lengths := make(map[string]int, len(entries))
	names := make([]string, len(entries))
	mismatch := false
	for i, e := range entries {
		names[i] = e.key
		lengths[e.key] = len(columns[i])
		if len(columns[i]) != len(columns[0]) {
			mismatch = true
		}
	}
	if mismatch {
		return nil, lengthMismatch(lengths, names)
	}
	if len(columns[0]) == 0 {
		return nil, emptyColumns("columns contain no values")
	}
	table := newTable(names, len(columns[0]))
	for i, values := range columns {
		for j, v := range values {
			table.columns[i].Values[j] = canonical(v)
		}
	}
	return table, nil
}

// objectEntries lists the fields of a mapping. Plain Go maps have no order,
// so their keys are sorted.
func objectEntries(v any) ([]entry, bool) {
	switch m := v.(type) {
	case map[string]any:
		entries := make([]entry, 0, len(m))
		for _, key := range slices.Sorted(maps.Keys(m)) {
			entries = append(entries, entry{key: key, value: m[key]})
		}
		return entries, true
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, false
		}
		entries := make([]entry, 0, m.Len())
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			entries = append(entries, entry{key: pair.Key, value: pair.Value})
		}
		return entries, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// canonical maps cell values onto the JSON value model so that tables built
// from Go values and from text compare equal.
func canonical(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, json.Number:
		if f, err := cast.ToFloat64E(x); err == nil {
			return f
		}
		return v
	case *orderedmap.OrderedMap[string, any]:
		if x == nil {
			return nil
		}
		out := make(map[string]any, x.Len())
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = canonical(pair.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for key, item := range x {
			out[key] = canonical(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = canonical(item)
		}
		return out
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return "number"
	case map[string]any, *orderedmap.OrderedMap[string, any]:
		return "object"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}
