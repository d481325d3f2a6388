// Package transport serves the MCP server over stdio or streamable HTTP.
package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 10 * time.Second

// Service exposes an MCP server on one transport.
type Service struct {
	MCP    *server.MCPServer
	Logger *slog.Logger
}

// NewService creates a new Service for srv.
func NewService(srv *server.MCPServer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{MCP: srv, Logger: logger}
}

// RunStdio serves newline-delimited JSON-RPC on in and out until ctx is
// done or in is closed.
func (s *Service) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(slog.NewLogLogger(s.Logger.Handler(), slog.LevelError))

	s.Logger.InfoContext(ctx, "serving stdio")
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Echo builds the HTTP router: the MCP endpoint at path and a health check.
func (s *Service) Echo(path string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", float64(v.Latency.Microseconds()) / 1000,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error.Error())
			}
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			s.Logger.Log(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	}))

	// liveness
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	// MCP streamable HTTP: POST for calls, GET for the event stream, DELETE to end a session
	e.Any(path, echo.WrapHandler(server.NewStreamableHTTPServer(s.MCP)))

	return e
}

// RunHTTP serves the Echo router on addr until ctx is done, then shuts
// down gracefully.
func (s *Service) RunHTTP(ctx context.Context, addr, path string) error {
	e := s.Echo(path)

	errCh := make(chan error, 1)
	go func() {
		s.Logger.InfoContext(ctx, "serving http", "addr", addr, "path", path)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down http server")
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
