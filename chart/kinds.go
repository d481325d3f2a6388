package chart

// Bar is a horizontal bar chart (d3-bars).
type Bar struct {
	Base
	BaseColor        string `json:"base_color,omitempty" alias:"color" wire:"metadata.visualize.base-color" jsonschema:"description=Bar color as hex or palette name"`
	SortBars         *bool  `json:"sort_bars,omitempty" alias:"sort" wire:"metadata.visualize.sort-bars" jsonschema:"description=Sort bars by value"`
	ReverseOrder     *bool  `json:"reverse_order,omitempty" wire:"metadata.visualize.reverse-order" jsonschema:"description=Reverse bar order"`
	ShowValueLabels  *bool  `json:"show_value_labels,omitempty" alias:"value_labels" wire:"metadata.visualize.show-value-labels" jsonschema:"description=Print values next to bars"`
	ValueLabelFormat string `json:"value_label_format,omitempty" wire:"metadata.visualize.value-label-format" jsonschema:"description=Number format such as 0.0%"`
	ThickBars        *bool  `json:"thick_bars,omitempty" wire:"metadata.visualize.thick" jsonschema:"description=Use thicker bars"`
}

// Line is a line chart (d3-lines).
type Line struct {
	Base
	Interpolation string     `json:"interpolation,omitempty" wire:"metadata.visualize.interpolation" jsonschema:"enum=linear,enum=monotone-x,enum=step,enum=step-after,enum=step-before,enum=cardinal,enum=natural"`
	YGridFormat   string     `json:"y_grid_format,omitempty" wire:"metadata.visualize.y-grid-format" jsonschema:"description=Number format of the y axis"`
	CustomRangeY  []*float64 `json:"custom_range_y,omitempty" alias:"y_range" wire:"metadata.visualize.custom-range-y" jsonschema:"minItems=2,maxItems=2,description=Minimum and maximum of the y axis"`
	ShowTooltips  *bool      `json:"show_tooltips,omitempty" alias:"tooltips" wire:"metadata.visualize.show-tooltips"`
	LabelColors   *bool      `json:"label_colors,omitempty" wire:"metadata.visualize.label-colors" jsonschema:"description=Color line labels like their lines"`
	LineWidth     *float64   `json:"line_width,omitempty" wire:"metadata.visualize.line-width" jsonschema:"minimum=0.5,maximum=10"`
}

// Area is a stacked or overlapping area chart (d3-area).
type Area struct {
	Base
	Interpolation string     `json:"interpolation,omitempty" wire:"metadata.visualize.interpolation" jsonschema:"enum=linear,enum=monotone-x,enum=step,enum=step-after,enum=step-before,enum=cardinal,enum=natural"`
	StackAreas    *bool      `json:"stack_areas,omitempty" alias:"stacked" wire:"metadata.visualize.stack-areas" jsonschema:"description=Stack areas on top of each other"`
	AreaOpacity   *float64   `json:"area_opacity,omitempty" alias:"opacity" wire:"metadata.visualize.area-opacity" jsonschema:"minimum=0,maximum=1"`
	YGridFormat   string     `json:"y_grid_format,omitempty" wire:"metadata.visualize.y-grid-format"`
	CustomRangeY  []*float64 `json:"custom_range_y,omitempty" alias:"y_range" wire:"metadata.visualize.custom-range-y" jsonschema:"minItems=2,maxItems=2"`
}

// Arrow is an arrow plot comparing two values per row (d3-arrow-plot).
type Arrow struct {
	Base
	StartColumn    string `json:"start_column,omitempty" alias:"start" wire:"metadata.axes.start" jsonschema:"description=Column holding start values"`
	EndColumn      string `json:"end_column,omitempty" alias:"end" wire:"metadata.axes.end" jsonschema:"description=Column holding end values"`
	SortRanges     *bool  `json:"sort_ranges,omitempty" alias:"sort" wire:"metadata.visualize.sort-ranges"`
	ReverseOrder   *bool  `json:"reverse_order,omitempty" wire:"metadata.visualize.reverse-order"`
	RangeExtent    string `json:"range_extent,omitempty" wire:"metadata.visualize.range-extent" jsonschema:"enum=nice,enum=data,enum=custom"`
	ShowColorKey   *bool  `json:"show_color_key,omitempty" wire:"metadata.visualize.show-color-key"`
	ArrowColor     string `json:"arrow_color,omitempty" alias:"color" wire:"metadata.visualize.base-color"`
	ValueLabelMode string `json:"value_label_mode,omitempty" wire:"metadata.visualize.range-value-labels" jsonschema:"enum=start,enum=end,enum=both,enum=none"`
}

// Column is a vertical column chart (column-chart).
type Column struct {
	Base
	BaseColor        string     `json:"base_color,omitempty" alias:"color" wire:"metadata.visualize.base-color"`
	ValueLabelFormat string     `json:"value_label_format,omitempty" wire:"metadata.visualize.value-label-format"`
	ShowValueLabels  string     `json:"show_value_labels,omitempty" alias:"value_labels" wire:"metadata.visualize.valueLabels" jsonschema:"enum=hover,enum=always,enum=off"`
	GridLines        string     `json:"grid_lines,omitempty" wire:"metadata.visualize.grid-lines" jsonschema:"enum=show,enum=hide,enum=axis"`
	CustomRange      []*float64 `json:"custom_range,omitempty" alias:"y_range" wire:"metadata.visualize.custom-range" jsonschema:"minItems=2,maxItems=2"`
	Negative         string     `json:"negative_color,omitempty" wire:"metadata.visualize.negativeColor" jsonschema:"description=Color of negative columns"`
}

// MultipleColumn is a grid of small column charts (multiple-columns).
type MultipleColumn struct {
	Base
	GridLayout      string     `json:"grid_layout,omitempty" alias:"layout" wire:"metadata.visualize.gridLayout" jsonschema:"enum=fixedCount,enum=minimumWidth"`
	GridColumns     *int       `json:"grid_columns,omitempty" alias:"columns" wire:"metadata.visualize.gridColumnCount" jsonschema:"minimum=1,maximum=12"`
	GridMinWidth    *int       `json:"grid_min_width,omitempty" wire:"metadata.visualize.gridColumnMinWidth" jsonschema:"minimum=50"`
	BaseColor       string     `json:"base_color,omitempty" alias:"color" wire:"metadata.visualize.base-color"`
	Sort            *bool      `json:"sort,omitempty" wire:"metadata.visualize.sort.enabled"`
	CustomRange     []*float64 `json:"custom_range,omitempty" alias:"y_range" wire:"metadata.visualize.yGridRange" jsonschema:"minItems=2,maxItems=2"`
	ShowValueLabels string     `json:"show_value_labels,omitempty" alias:"value_labels" wire:"metadata.visualize.valueLabels.show" jsonschema:"enum=hover,enum=always,enum=off"`
}

// Scatter is a scatter plot (d3-scatter-plot).
type Scatter struct {
	Base
	XColumn    string   `json:"x_column,omitempty" alias:"x" wire:"metadata.axes.x" jsonschema:"description=Column for the x axis"`
	YColumn    string   `json:"y_column,omitempty" alias:"y" wire:"metadata.axes.y" jsonschema:"description=Column for the y axis"`
	SizeColumn string   `json:"size_column,omitempty" alias:"size" wire:"metadata.axes.size"`
	XLog       *bool    `json:"x_log,omitempty" wire:"metadata.visualize.x-log" jsonschema:"description=Logarithmic x axis"`
	YLog       *bool    `json:"y_log,omitempty" wire:"metadata.visualize.y-log" jsonschema:"description=Logarithmic y axis"`
	Opacity    *float64 `json:"opacity,omitempty" wire:"metadata.visualize.opacity" jsonschema:"minimum=0,maximum=1"`
	FixedSize  *float64 `json:"fixed_size,omitempty" wire:"metadata.visualize.fixed-size" jsonschema:"minimum=1,maximum=50"`
	Regression *bool    `json:"regression,omitempty" alias:"trendline" wire:"metadata.visualize.regression"`
}

// StackedBar is a stacked horizontal bar chart (d3-bars-stacked).
type StackedBar struct {
	Base
	SortBars         *bool  `json:"sort_bars,omitempty" alias:"sort" wire:"metadata.visualize.sort-bars"`
	ReverseOrder     *bool  `json:"reverse_order,omitempty" wire:"metadata.visualize.reverse-order"`
	StackPercentages *bool  `json:"stack_percentages,omitempty" alias:"percentages" wire:"metadata.visualize.stack-percentages" jsonschema:"description=Scale every bar to 100 percent"`
	ShowTotals       *bool  `json:"show_totals,omitempty" wire:"metadata.visualize.show-total"`
	ValueLabelFormat string `json:"value_label_format,omitempty" wire:"metadata.visualize.value-label-format"`
	ThickBars        *bool  `json:"thick_bars,omitempty" wire:"metadata.visualize.thick"`
}
