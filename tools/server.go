// Package tools exposes chart operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/palewire/datawrapper-mcp/chart"
	"github.com/palewire/datawrapper-mcp/datawrapper"
	"github.com/palewire/datawrapper-mcp/logging"
	"github.com/palewire/datawrapper-mcp/patch"
	"github.com/palewire/datawrapper-mcp/tabular"
)

// Store is the remote chart service.
type Store interface {
	CreateChart(ctx context.Context, typeID string, doc map[string]any) (*datawrapper.Chart, error)
	FetchChart(ctx context.Context, id string) (*datawrapper.Chart, error)
	UpdateChart(ctx context.Context, id string, doc map[string]any) (*datawrapper.Chart, error)
	UploadData(ctx context.Context, id string, csv []byte) error
	PublishChart(ctx context.Context, id string) (string, error)
	DeleteChart(ctx context.Context, id string) error
	ExportPNG(ctx context.Context, id string, opts datawrapper.ExportOptions) ([]byte, error)
	EditorURL(id string) string
}

// Normalizer turns raw tool data into a table.
type Normalizer interface {
	Normalize(ctx context.Context, input any) (*tabular.Table, error)
}

// Server holds the collaborators of the tool handlers.
type Server struct {
	store      Store
	normalizer Normalizer
	logger     *slog.Logger
}

type Option func(*Server)

// WithNormalizer replaces the local-filesystem normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(s *Server) { s.normalizer = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(store Store, opts ...Option) *Server {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = tabular.New(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// NewMCPServer builds an MCP server with every tool and resource registered.
func NewMCPServer(name, version string, s *Server) *server.MCPServer {
	srv := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	s.Register(srv)
	return srv
}

// Register adds the chart tools and the chart-types resource to srv.
func (s *Server) Register(srv *server.MCPServer) {
	register(srv, s, createChartTool, createChartDescription, s.createChart)
	register(srv, s, "get_chart_schema", getSchemaDescription, s.getChartSchema)
	register(srv, s, "publish_chart", "Publish a chart to make it publicly accessible. Returns the public URL.", s.publishChart)
	register(srv, s, "get_chart", "Get information about an existing chart, including its current configuration and URLs.", s.getChart)
	register(srv, s, "update_chart", updateChartDescription, s.updateChart)
	register(srv, s, "delete_chart", "Delete a chart permanently.", s.deleteChart)
	register(srv, s, "export_chart_png", exportDescription, s.exportChartPNG)
	s.registerChartTypes(srv)
}

// register wires one typed handler. Every call gets a correlation id and
// start, success and failure logs.
func register[T any](
	srv *server.MCPServer,
	s *Server,
	name, description string,
	handle func(ctx context.Context, args T) (*mcp.CallToolResult, error),
) {
	tool := mcp.NewTool(
		name,
		mcp.WithDescription(description),
		mcp.WithInputSchema[T](),
	)

	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, _ = logging.WithCorrelationID(ctx)
		log := s.logger.With("tool", name)
		start := time.Now()

		var args T
		if err := req.BindArguments(&args); err != nil {
			return s.failure(ctx, log, start, &argumentError{msg: fmt.Sprintf("invalid arguments: %v", err)}), nil
		}
		log.InfoContext(ctx, "tool call started")

		res, err := handle(ctx, args)
		if err != nil {
			return s.failure(ctx, log, start, err), nil
		}
		log.InfoContext(ctx, "tool call succeeded", "duration_ms", logging.Since(start))
		return res, nil
	})
}

// argumentError is a missing or malformed tool argument.
type argumentError struct {
	msg string
}

func (e *argumentError) Error() string { return e.msg }

func argumentErrorf(format string, args ...any) error {
	return &argumentError{msg: fmt.Sprintf(format, args...)}
}

// failure turns err into a tool error result. Caller mistakes, including an
// unknown chart id, are logged at warn level, everything else at error level.
func (s *Server) failure(ctx context.Context, log *slog.Logger, start time.Time, err error) *mcp.CallToolResult {
	var (
		nerr   *tabular.NormalizationError
		verr   *patch.ValidationError
		aerr   *argumentError
		kerr   *chart.UnknownKindError
		caller = true
		text   string
	)
	switch {
	case errors.As(err, &nerr):
		text = payload(nerr, err)
	case errors.As(err, &verr):
		text = payload(verr, err)
	case errors.As(err, &aerr), errors.As(err, &kerr):
		text = err.Error()
	case datawrapper.IsNotFound(err):
		text = "Chart not found. Check the chart_id; deleted charts cannot be used again.\n\n" + err.Error()
	default:
		caller = false
		text = "Error: " + err.Error()
	}

	attrs := []any{
		"error_type", fmt.Sprintf("%T", err),
		"error_message", err.Error(),
		"duration_ms", logging.Since(start),
	}
	if caller {
		log.WarnContext(ctx, "tool call rejected", attrs...)
	} else {
		log.ErrorContext(ctx, "tool call failed", attrs...)
	}
	return mcp.NewToolResultError(text)
}

func payload(v any, err error) string {
	b, merr := json.MarshalIndent(v, "", "  ")
	if merr != nil {
		return err.Error()
	}
	return string(b)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
