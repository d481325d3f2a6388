package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{
		"bar", "line", "area", "arrow", "column", "multiple_column", "scatter", "stacked_bar",
	}, Names())

	for _, k := range Kinds() {
		t.Run(k.Name, func(t *testing.T) {
			byType, ok := ByTypeID(k.TypeID)
			require.True(t, ok)
			assert.Same(t, k, byType)

			byName, ok := ByName(k.Name)
			require.True(t, ok)
			assert.Same(t, k, byName)

			raw, err := json.Marshal(k.Describe().JSON)
			require.NoError(t, err)
			var doc map[string]any
			require.NoError(t, json.Unmarshal(raw, &doc))
			props := doc["properties"].(map[string]any)
			assert.Equal(t, k.Name, props[FieldType].(map[string]any)["const"])
			assert.Equal(t, k.ClassName, doc["title"])
			assert.ElementsMatch(t, []any{FieldType, "title"}, doc["required"])
		})
	}

	_, ok := ByName("pie")
	assert.False(t, ok)
	_, ok = ByTypeID("d3-pies")
	assert.False(t, ok)
	assert.Contains(t, (&UnknownKindError{Value: "pie"}).Error(), "stacked_bar")
}

func TestKind_ConstructForcesDiscriminator(t *testing.T) {
	k, _ := ByName("line")

	cfg, err := k.Merger().Construct(map[string]any{
		"title":         "Rates",
		"chart_type":    "bar",
		"interpolation": "monotone-x",
		"y_range":       []any{0, 10},
	})
	require.NoError(t, err)

	line, ok := cfg.(*Line)
	require.True(t, ok)
	assert.Equal(t, "line", line.ChartType)
	assert.Equal(t, "monotone-x", line.Interpolation)
	require.Len(t, line.CustomRangeY, 2)
	assert.Equal(t, 10.0, *line.CustomRangeY[1])
}

func TestKind_ConstructRejectsOtherKindsFields(t *testing.T) {
	k, _ := ByName("scatter")

	_, err := k.Merger().Construct(map[string]any{"title": "T", "stack_areas": true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack_areas")
	assert.Contains(t, err.Error(), `get_chart_schema with chart_type "scatter"`)
}

func remoteBar() map[string]any {
	var doc map[string]any
	raw := `{
		"id": "Ab3xY",
		"type": "d3-bars",
		"title": "Population",
		"theme": "datawrapper",
		"language": "en-US",
		"folderId": 12,
		"publicUrl": "https://datawrapper.dwcdn.net/Ab3xY/1/",
		"metadata": {
			"describe": {"intro": "By state", "source-name": "Census", "byline": ""},
			"annotate": {"notes": "2020 figures"},
			"visualize": {"base-color": 3, "sort-bars": true, "thick": false}
		}
	}`
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(err)
	}
	return doc
}

func TestKind_Flatten(t *testing.T) {
	k, _ := ByName("bar")

	fields := k.Flatten(remoteBar())
	assert.Equal(t, map[string]any{
		"chart_id":    "Ab3xY",
		"chart_type":  "bar",
		"title":       "Population",
		"theme":       "datawrapper",
		"language":    "en-US",
		"folder_id":   12.0,
		"intro":       "By state",
		"source_name": "Census",
		"byline":      "",
		"notes":       "2020 figures",
		"sort_bars":   true,
		"thick_bars":  false,
	}, fields)

	cfg, err := k.Merger().Load(fields)
	require.NoError(t, err)
	bar := cfg.(*Bar)
	assert.Equal(t, "Ab3xY", bar.ChartID)
	assert.Equal(t, 12, *bar.FolderID)
}

func TestKind_Expand(t *testing.T) {
	k, _ := ByName("bar")

	doc := k.Expand(map[string]any{
		"title":       "New",
		"source_name": "Survey",
		"notes":       "n",
		"sort_bars":   false,
		"data":        []any{},
		"chart_type":  "bar",
	})
	assert.Equal(t, map[string]any{
		"title": "New",
		"metadata": map[string]any{
			"describe":  map[string]any{"source-name": "Survey"},
			"annotate":  map[string]any{"notes": "n"},
			"visualize": map[string]any{"sort-bars": false},
		},
	}, doc)
}

func TestKind_UpdateFlow(t *testing.T) {
	k, _ := ByName("bar")
	current, err := k.Merger().Load(k.Flatten(remoteBar()))
	require.NoError(t, err)

	res, err := k.Merger().MergeAndValidate(current, map[string]any{
		"type":   "line",
		"source": "Survey",
		"color":  "#ff0000",
		"id":     "other",
	})
	require.NoError(t, err)
	bar := res.Validated.(*Bar)
	assert.Equal(t, "bar", bar.ChartType)
	assert.Equal(t, "Ab3xY", bar.ChartID)
	assert.Equal(t, "Survey", bar.SourceName)
	assert.Equal(t, "#ff0000", bar.BaseColor)

	assert.NotContains(t, res.Writable, FieldID)
	assert.NotContains(t, res.Writable, FieldType)
	assert.NotContains(t, res.Writable, FieldData)

	doc := k.Expand(res.Writable)
	assert.Equal(t, "Population", doc["title"])
	assert.Equal(t, 12.0, doc["folderId"])
	visualize := doc["metadata"].(map[string]any)["visualize"].(map[string]any)
	assert.Equal(t, "#ff0000", visualize["base-color"])
}

func TestKind_FlattenAxisRanges(t *testing.T) {
	tests := []struct {
		kind   string
		wire   string
		field  string
		remote any
		want   any
	}{
		{kind: "line", wire: "custom-range-y", field: "custom_range_y", remote: []any{"", ""}, want: []any{nil, nil}},
		{kind: "line", wire: "custom-range-y", field: "custom_range_y", remote: []any{"", 100.0}, want: []any{nil, 100.0}},
		{kind: "area", wire: "custom-range-y", field: "custom_range_y", remote: []any{"0", " 50 "}, want: []any{0.0, 50.0}},
		{kind: "column", wire: "custom-range", field: "custom_range", remote: []any{"", ""}, want: []any{nil, nil}},
		{kind: "multiple_column", wire: "yGridRange", field: "custom_range", remote: []any{nil, 10.0}, want: []any{nil, 10.0}},
		{kind: "line", wire: "custom-range-y", field: "custom_range_y", remote: []any{"low", "high"}},
		{kind: "line", wire: "custom-range-y", field: "custom_range_y", remote: []any{true, 1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.wire, func(t *testing.T) {
			k, _ := ByName(tt.kind)
			remote := map[string]any{
				"id":    "Ab3xY",
				"type":  k.TypeID,
				"title": "Rates",
				"metadata": map[string]any{
					"visualize": map[string]any{tt.wire: tt.remote},
				},
			}

			fields := k.Flatten(remote)
			if tt.want == nil {
				assert.NotContains(t, fields, tt.field)
			} else {
				assert.Equal(t, tt.want, fields[tt.field])
			}

			_, err := k.Merger().Load(fields)
			require.NoError(t, err)
		})
	}
}

func TestKind_UpdateFlowUnsetRange(t *testing.T) {
	k, _ := ByName("line")
	field, ok := k.Describe().Field("custom_range_y")
	require.True(t, ok)
	assert.True(t, field.NullableItems)
	assert.Equal(t, "number", field.ItemType)

	var remote map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "Lm9Qz",
		"type": "d3-lines",
		"title": "Rates",
		"metadata": {
			"describe": {"intro": "", "source-name": "BLS", "source-url": ""},
			"visualize": {"interpolation": "linear", "custom-range-y": ["", ""], "line-width": 2}
		}
	}`), &remote))

	current, err := k.Merger().Load(k.Flatten(remote))
	require.NoError(t, err)
	line := current.(*Line)
	require.Len(t, line.CustomRangeY, 2)
	assert.Nil(t, line.CustomRangeY[0])

	res, err := k.Merger().MergeAndValidate(current, map[string]any{"title": "x"})
	require.NoError(t, err)

	doc := k.Expand(res.Writable)
	assert.Equal(t, "x", doc["title"])
	visualize := doc["metadata"].(map[string]any)["visualize"].(map[string]any)
	assert.Equal(t, []any{"", ""}, visualize["custom-range-y"])

	res, err = k.Merger().MergeAndValidate(current, map[string]any{"y_range": []any{0, nil}})
	require.NoError(t, err)
	visualize = k.Expand(res.Writable)["metadata"].(map[string]any)["visualize"].(map[string]any)
	assert.Equal(t, []any{0.0, ""}, visualize["custom-range-y"])
}
