package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/palewire/datawrapper-mcp/chart"
	"github.com/palewire/datawrapper-mcp/datawrapper"
	"github.com/palewire/datawrapper-mcp/tabular"
)

const createChartTool = "create_chart"

const dataDescription = "Chart data as a list of records, e.g. [{\"year\": 2020, \"value\": 100}], " +
	"as columns, e.g. {\"year\": [2020], \"value\": [100]}, as a JSON string of either, " +
	"or as a path to a .csv or .json file. " +
	"The first column is the label column. A JSON string or a file keeps its column order; " +
	"columns of a plain list or object are sorted by name, so pass a JSON string when the " +
	"label column does not sort first."

var createChartDescription = `Create a Datawrapper chart from data and a chart configuration.
Call get_chart_schema first to see the fields accepted for the chart type.
` + dataDescription

var updateChartDescription = `Update an existing chart's data, configuration or both.
chart_config is merged into the current configuration; only the fields given change.
The chart type and id cannot be changed. ` + dataDescription

var getSchemaDescription = "Get the JSON schema of a chart type's configuration, including field aliases. " +
	"Use it to build chart_config for create_chart and update_chart. Supported types: " +
	strings.Join(chart.Names(), ", ") + "."

const exportDescription = "Export a chart as a PNG image. Defaults to zoom 2."

type CreateChartArgs struct {
	Data        any            `json:"data" jsonschema:"description=Chart data: records or columns or a JSON string or a .csv/.json file path. The first column labels the chart; a JSON string keeps column order"`
	ChartType   string         `json:"chart_type" jsonschema:"enum=bar,enum=line,enum=area,enum=arrow,enum=column,enum=multiple_column,enum=scatter,enum=stacked_bar"`
	ChartConfig map[string]any `json:"chart_config" jsonschema:"description=Chart configuration following get_chart_schema"`
}

type ChartTypeArgs struct {
	ChartType string `json:"chart_type" jsonschema:"enum=bar,enum=line,enum=area,enum=arrow,enum=column,enum=multiple_column,enum=scatter,enum=stacked_bar"`
}

type ChartIDArgs struct {
	ChartID string `json:"chart_id" jsonschema:"description=Datawrapper chart id"`
}

type UpdateChartArgs struct {
	ChartID     string         `json:"chart_id" jsonschema:"description=Datawrapper chart id"`
	Data        any            `json:"data,omitempty" jsonschema:"description=Replacement data in any accepted shape"`
	ChartConfig map[string]any `json:"chart_config,omitempty" jsonschema:"description=Fields to change"`
}

type ExportChartArgs struct {
	ChartID     string `json:"chart_id" jsonschema:"description=Datawrapper chart id"`
	Width       *int   `json:"width,omitempty" jsonschema:"minimum=1,description=Width in pixels"`
	Height      *int   `json:"height,omitempty" jsonschema:"minimum=1,description=Height in pixels"`
	Plain       bool   `json:"plain,omitempty" jsonschema:"description=Export only the chart without title and notes"`
	Zoom        *int   `json:"zoom,omitempty" jsonschema:"minimum=1,maximum=10,description=Scale factor (default 2)"`
	Transparent bool   `json:"transparent,omitempty" jsonschema:"description=Transparent background"`
	BorderWidth *int   `json:"border_width,omitempty" jsonschema:"minimum=0,description=Border around the chart in pixels"`
	BorderColor string `json:"border_color,omitempty" jsonschema:"description=Border color"`
}

func kindByName(name string) (*chart.Kind, error) {
	if name == "" {
		return nil, argumentErrorf("chart_type is required; supported types are %v", chart.Names())
	}
	kind, ok := chart.ByName(name)
	if !ok {
		return nil, &chart.UnknownKindError{Value: name}
	}
	return kind, nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return argumentErrorf("chart_id is required")
	}
	return nil
}

func (s *Server) createChart(ctx context.Context, args CreateChartArgs) (*mcp.CallToolResult, error) {
	kind, err := kindByName(args.ChartType)
	if err != nil {
		return nil, err
	}
	if args.Data == nil {
		return nil, argumentErrorf("data is required. %s", dataDescription)
	}
	s.logger.InfoContext(ctx, "creating chart",
		"chart_type", kind.Name,
		"data_type", fmt.Sprintf("%T", args.Data),
		"config_keys", slices.Sorted(maps.Keys(args.ChartConfig)),
	)

	table, err := s.normalizer.Normalize(ctx, args.Data)
	if err != nil {
		return nil, err
	}
	cfg, err := kind.Merger().Construct(args.ChartConfig)
	if err != nil {
		return nil, err
	}
	fields, err := kind.Merger().Writable(cfg)
	if err != nil {
		return nil, err
	}
	csv, err := table.CSV()
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	created, err := s.store.CreateChart(ctx, kind.TypeID, kind.Expand(fields))
	if err != nil {
		return nil, err
	}
	if err := s.store.UploadData(ctx, created.ID, csv); err != nil {
		return nil, fmt.Errorf("chart %s created but data upload failed: %w", created.ID, err)
	}

	editURL := s.store.EditorURL(created.ID)
	s.logger.InfoContext(ctx, "chart created",
		"chart_id", created.ID,
		"chart_type", kind.Name,
		"rows", table.Len(),
		"columns", table.Width(),
	)
	return jsonResult(map[string]any{
		"chart_id":   created.ID,
		"chart_type": kind.Name,
		"title":      cfg.Common().Title,
		"edit_url":   editURL,
		"message": fmt.Sprintf("Chart created successfully! Edit it at: %s\n"+
			"Use publish_chart with chart_id '%s' to make it public.", editURL, created.ID),
	})
}

func (s *Server) getChartSchema(ctx context.Context, args ChartTypeArgs) (*mcp.CallToolResult, error) {
	kind, err := kindByName(args.ChartType)
	if err != nil {
		return nil, err
	}
	desc := kind.Describe()
	aliases := map[string][]string{}
	for _, name := range desc.Names() {
		if a := kind.Merger().Aliases().Aliases(name); len(a) > 0 {
			aliases[name] = a
		}
	}
	return jsonResult(map[string]any{
		"chart_type": kind.Name,
		"class_name": kind.ClassName,
		"schema":     desc.JSON,
		"aliases":    aliases,
		"usage": "Use this schema to construct chart_config for create_chart or update_chart. " +
			"Fields may be given by name or by any listed alias. chart_id and chart_type are set by the server.",
	})
}

func (s *Server) publishChart(ctx context.Context, args ChartIDArgs) (*mcp.CallToolResult, error) {
	if err := requireID(args.ChartID); err != nil {
		return nil, err
	}
	publicURL, err := s.store.PublishChart(ctx, args.ChartID)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"chart_id":   args.ChartID,
		"public_url": publicURL,
		"message":    fmt.Sprintf("Chart published successfully! Public URL: %s", publicURL),
	})
}

func (s *Server) getChart(ctx context.Context, args ChartIDArgs) (*mcp.CallToolResult, error) {
	if err := requireID(args.ChartID); err != nil {
		return nil, err
	}
	remote, err := s.store.FetchChart(ctx, args.ChartID)
	if err != nil {
		return nil, err
	}
	result := map[string]any{
		"chart_id":   remote.ID,
		"title":      remote.Title,
		"type":       remote.Type,
		"public_url": remote.PublicURL,
		"edit_url":   s.store.EditorURL(remote.ID),
	}
	if kind, ok := chart.ByTypeID(remote.Type); ok {
		result["chart_type"] = kind.Name
		result["config"] = kind.Flatten(remote.Document)
	}
	return jsonResult(result)
}

func (s *Server) updateChart(ctx context.Context, args UpdateChartArgs) (*mcp.CallToolResult, error) {
	if err := requireID(args.ChartID); err != nil {
		return nil, err
	}
	if args.Data == nil && args.ChartConfig == nil {
		return nil, argumentErrorf("provide data, chart_config or both")
	}

	var csv []byte
	if args.Data != nil {
		table, err := s.normalizer.Normalize(ctx, args.Data)
		if err != nil {
			return nil, err
		}
		if csv, err = table.CSV(); err != nil {
			return nil, fmt.Errorf("encode data: %w", err)
		}
	}

	remote, err := s.store.FetchChart(ctx, args.ChartID)
	if err != nil {
		return nil, err
	}
	kind, ok := chart.ByTypeID(remote.Type)
	if !ok {
		return nil, &chart.UnknownKindError{Value: remote.Type}
	}

	var updated []string
	if args.ChartConfig != nil {
		merger := kind.Merger()
		current, err := merger.Load(kind.Flatten(remote.Document))
		if err != nil {
			return nil, err
		}
		res, err := merger.MergeAndValidate(current, args.ChartConfig)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.UpdateChart(ctx, args.ChartID, kind.Expand(res.Writable)); err != nil {
			return nil, err
		}
		for name := range merger.Aliases().ResolveAll(args.ChartConfig) {
			if _, ok := res.Writable[name]; ok {
				updated = append(updated, name)
			}
		}
		slices.Sort(updated)
	}
	if csv != nil {
		if err := s.store.UploadData(ctx, args.ChartID, csv); err != nil {
			return nil, err
		}
		updated = append(updated, chart.FieldData)
	}

	s.logger.InfoContext(ctx, "chart updated", "chart_id", args.ChartID, "updated_fields", updated)
	return jsonResult(map[string]any{
		"chart_id":       args.ChartID,
		"message":        "Chart updated successfully!",
		"edit_url":       s.store.EditorURL(args.ChartID),
		"updated_fields": updated,
	})
}

func (s *Server) deleteChart(ctx context.Context, args ChartIDArgs) (*mcp.CallToolResult, error) {
	if err := requireID(args.ChartID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteChart(ctx, args.ChartID); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"chart_id": args.ChartID,
		"message":  "Chart deleted successfully!",
	})
}

func (s *Server) exportChartPNG(ctx context.Context, args ExportChartArgs) (*mcp.CallToolResult, error) {
	if err := requireID(args.ChartID); err != nil {
		return nil, err
	}
	opts := datawrapper.ExportOptions{
		Width:       args.Width,
		Height:      args.Height,
		Plain:       args.Plain,
		Zoom:        2,
		Transparent: args.Transparent,
		BorderWidth: args.BorderWidth,
		BorderColor: args.BorderColor,
	}
	if args.Zoom != nil {
		opts.Zoom = *args.Zoom
	}
	png, err := s.store.ExportPNG(ctx, args.ChartID, opts)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "chart exported", "chart_id", args.ChartID, "bytes", len(png))
	return mcp.NewToolResultImage(
		fmt.Sprintf("PNG export of chart %s", args.ChartID),
		base64.StdEncoding.EncodeToString(png),
		"image/png",
	), nil
}

var _ Normalizer = (*tabular.Normalizer)(nil)
