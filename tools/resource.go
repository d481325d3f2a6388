package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/palewire/datawrapper-mcp/chart"
)

const chartTypesURI = "datawrapper://chart-types"

type chartTypeInfo struct {
	ChartType string             `json:"chart_type"`
	ClassName string             `json:"class_name"`
	TypeID    string             `json:"type_id"`
	Fields    []string           `json:"fields"`
	Schema    *jsonschema.Schema `json:"schema"`
}

func chartTypes() []chartTypeInfo {
	var out []chartTypeInfo
	for _, k := range chart.Kinds() {
		out = append(out, chartTypeInfo{
			ChartType: k.Name,
			ClassName: k.ClassName,
			TypeID:    k.TypeID,
			Fields:    k.Describe().Names(),
			Schema:    k.Describe().JSON,
		})
	}
	return out
}

func (s *Server) registerChartTypes(srv *server.MCPServer) {
	resource := mcp.NewResource(chartTypesURI, "Chart types",
		mcp.WithResourceDescription("Supported chart types with their configuration fields"),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.MarshalIndent(map[string]any{"chart_types": chartTypes()}, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      chartTypesURI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}
