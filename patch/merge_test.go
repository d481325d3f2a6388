package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palewire/datawrapper-mcp/schema"
)

type sample struct {
	ID         string   `json:"chart_id,omitempty" alias:"id" wire:"id"`
	Type       string   `json:"chart_type" alias:"type" jsonschema:"required,enum=bar"`
	Title      string   `json:"title" jsonschema:"required"`
	SourceName string   `json:"source_name,omitempty" wire:"metadata.describe.source-name"`
	Folder     *int     `json:"folder_id,omitempty" alias:"folderId"`
	Created    string   `json:"created_at,omitempty"`
	Rounded    *bool    `json:"rounded,omitempty" alias:"rounded_bars"`
	Data       any      `json:"data,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

func newMerger(t *testing.T) *Merger[*sample] {
	t.Helper()
	v, err := schema.NewValidator("bar", func() *sample { return &sample{} }, schema.WithConst("chart_type", "bar"))
	require.NoError(t, err)
	return NewMerger[*sample](v, Policy{
		Identity:      "chart_id",
		Discriminator: "chart_type",
		Tabular:       "data",
		Immutable:     []string{"created_at"},
		SchemaHint:    "Use get_chart_schema to see the valid schema.",
	})
}

func current() *sample {
	yes := true
	return &sample{
		ID:         "abc12",
		Type:       "bar",
		Title:      "Before",
		SourceName: "Census",
		Created:    "2024-01-01",
		Rounded:    &yes,
		Data:       []any{map[string]any{"a": 1.0}},
	}
}

func TestAliasTable(t *testing.T) {
	m := newMerger(t)
	tests := []struct {
		name      string
		canonical string
		ok        bool
	}{
		{"title", "title", true},
		{"id", "chart_id", true},
		{"type", "chart_type", true},
		{"source-name", "source_name", true},
		{"folderId", "folder_id", true},
		{"rounded_bars", "rounded", true},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Aliases().Resolve(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.canonical, got)
		})
	}
	assert.Equal(t, []string{"source-name"}, m.Aliases().Aliases("source_name"))
}

func TestAliasTable_CanonicalWins(t *testing.T) {
	m := newMerger(t)
	out := m.Aliases().ResolveAll(map[string]any{"folderId": 1, "folder_id": 2, "bogus": 3})
	assert.Equal(t, map[string]any{"folder_id": 2, "bogus": 3}, out)
}

func TestMergeAndValidate_EmptyPatchIsIdentity(t *testing.T) {
	m := newMerger(t)
	cur := current()

	for _, p := range []map[string]any{nil, {}} {
		res, err := m.MergeAndValidate(cur, p)
		require.NoError(t, err)
		assert.Equal(t, cur, res.Validated)
	}
}

func TestMergeAndValidate_AppliesAliasedPatch(t *testing.T) {
	m := newMerger(t)

	res, err := m.MergeAndValidate(current(), map[string]any{
		"title":        "After",
		"source-name":  "Survey",
		"rounded_bars": false,
		"folderId":     42,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", res.Validated.Title)
	assert.Equal(t, "Survey", res.Validated.SourceName)
	require.NotNil(t, res.Validated.Rounded)
	assert.False(t, *res.Validated.Rounded)
	require.NotNil(t, res.Validated.Folder)
	assert.Equal(t, 42, *res.Validated.Folder)

	assert.Equal(t, map[string]any{
		"title":       "After",
		"source_name": "Survey",
		"rounded":     false,
		"folder_id":   42.0,
	}, res.Writable)
}

func TestMergeAndValidate_ProtectedFields(t *testing.T) {
	m := newMerger(t)
	patches := []map[string]any{
		{"chart_type": "line"},
		{"type": "pie"},
		{"chart_id": "other"},
		{"id": "other"},
		{"created_at": "2030-01-01"},
		{"data": []any{map[string]any{"b": 2}}, "title": "New"},
	}
	for _, p := range patches {
		res, err := m.MergeAndValidate(current(), p)
		require.NoError(t, err, "patch %v", p)

		assert.Equal(t, "bar", res.Validated.Type)
		assert.Equal(t, "abc12", res.Validated.ID)
		assert.Equal(t, "2024-01-01", res.Validated.Created)
		assert.NotContains(t, res.Writable, "chart_id")
		assert.NotContains(t, res.Writable, "chart_type")
		assert.NotContains(t, res.Writable, "data")
		assert.NotContains(t, res.Writable, "created_at")
	}
}

func TestMergeAndValidate_Errors(t *testing.T) {
	m := newMerger(t)

	tests := []struct {
		name  string
		cur   *sample
		patch map[string]any
		field string
	}{
		{"unknown field", current(), map[string]any{"colour": "red"}, "colour"},
		{"wrong type", current(), map[string]any{"title": 12}, "title"},
		{"cleared required", current(), map[string]any{"title": nil}, "title"},
		{"broken current", &sample{ID: "x", Type: "line", Title: "T"}, map[string]any{}, "chart_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.MergeAndValidate(tt.cur, tt.patch)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.FieldErrors)
			assert.Equal(t, tt.field, verr.FieldErrors[0].Field)
			assert.Equal(t, "Use get_chart_schema to see the valid schema.", verr.SchemaHint)
			assert.Contains(t, err.Error(), "Invalid chart configuration")

			var fe schema.FieldErrors
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestMerger_Construct(t *testing.T) {
	m := newMerger(t)

	v, err := m.Construct(map[string]any{"title": "Fresh", "id": "ignored", "chart_type": "line", "type": "pie"})
	require.NoError(t, err)
	assert.Equal(t, "bar", v.Type)
	assert.Empty(t, v.ID)

	_, err = m.Construct(map[string]any{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.FieldErrors[0].Field)
}

func TestMerger_Load(t *testing.T) {
	m := newMerger(t)

	v, err := m.Load(map[string]any{"id": "abc12", "type": "bar", "title": "T"})
	require.NoError(t, err)
	assert.Equal(t, "abc12", v.ID)

	w, err := m.Writable(v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "T"}, w)
}
