package chart

import (
	"fmt"
	"slices"

	"github.com/palewire/datawrapper-mcp/patch"
	"github.com/palewire/datawrapper-mcp/schema"
)

// Kind is one supported chart kind.
type Kind struct {
	// Name is the value of chart_type.
	Name string
	// ClassName is the display name of the configuration type.
	ClassName string
	// TypeID is the Datawrapper visualization id.
	TypeID string

	merger *patch.Merger[Config]
}

// Merger returns the kind's merge validator.
func (k *Kind) Merger() *patch.Merger[Config] { return k.merger }

// Describe returns the kind's field table and JSON schema.
func (k *Kind) Describe() *schema.Description { return k.merger.Describe() }

func newKind[T any, P interface {
	*T
	Config
}](name, className, typeID string) *Kind {
	v := schema.MustValidator(name, func() Config { return P(new(T)) },
		schema.WithConst(FieldType, name),
		schema.WithTitle(className),
	)
	return &Kind{
		Name:      name,
		ClassName: className,
		TypeID:    typeID,
		merger: patch.NewMerger[Config](v, patch.Policy{
			Identity:      FieldID,
			Discriminator: FieldType,
			Tabular:       FieldData,
			SchemaHint: fmt.Sprintf("Use get_chart_schema with chart_type %q to see the valid schema. "+
				"Only the listed fields are accepted.", name),
		}),
	}
}

var kinds = []*Kind{
	newKind[Bar]("bar", "BarChart", "d3-bars"),
	newKind[Line]("line", "LineChart", "d3-lines"),
	newKind[Area]("area", "AreaChart", "d3-area"),
	newKind[Arrow]("arrow", "ArrowChart", "d3-arrow-plot"),
	newKind[Column]("column", "ColumnChart", "column-chart"),
	newKind[MultipleColumn]("multiple_column", "MultipleColumnChart", "multiple-columns"),
	newKind[Scatter]("scatter", "ScatterPlot", "d3-scatter-plot"),
	newKind[StackedBar]("stacked_bar", "StackedBarChart", "d3-bars-stacked"),
}

// Kinds returns every supported kind in a stable order.
func Kinds() []*Kind { return slices.Clone(kinds) }

// Names returns the chart_type values of every kind.
func Names() []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.Name
	}
	return names
}

// ByName finds a kind by its chart_type value.
func ByName(name string) (*Kind, bool) {
	for _, k := range kinds {
		if k.Name == name {
			return k, true
		}
	}
	return nil, false
}

// ByTypeID finds a kind by its Datawrapper visualization id.
func ByTypeID(typeID string) (*Kind, bool) {
	for _, k := range kinds {
		if k.TypeID == typeID {
			return k, true
		}
	}
	return nil, false
}

// UnknownKindError is returned for a chart_type or visualization id no kind
// claims.
type UnknownKindError struct {
	Value string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unsupported chart type %q; supported types are %v", e.Value, Names())
}
