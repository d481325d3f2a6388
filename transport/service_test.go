package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMCP() *server.MCPServer {
	srv := server.NewMCPServer("test-server", "1.0.0", server.WithToolCapabilities(false))
	srv.AddTool(mcp.NewTool("ping", mcp.WithDescription("Reply with pong")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		})
	return srv
}

func initializeRequest() []byte {
	b, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "test-client", "version": "1.0.0"},
		},
	})
	return b
}

func TestService_Health(t *testing.T) {
	e := NewService(newMCP(), slog.New(slog.NewTextHandler(io.Discard, nil))).Echo("/mcp")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestService_HTTPInitialize(t *testing.T) {
	logs := &bytes.Buffer{}
	e := NewService(newMCP(), slog.New(slog.NewJSONHandler(logs, nil))).Echo("/mcp")

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(initializeRequest()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "test-server")
	assert.Contains(t, logs.String(), `"uri":"/mcp"`)
}

func TestService_UnknownRoute(t *testing.T) {
	e := NewService(newMCP(), nil).Echo("/mcp")

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestService_RunStdio(t *testing.T) {
	in := strings.NewReader(string(initializeRequest()) + "\n")
	out := &syncBuffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- NewService(newMCP(), slog.New(slog.NewTextHandler(io.Discard, nil))).RunStdio(ctx, in, out)
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "\n") }, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)

	line, err := bufio.NewReader(strings.NewReader(out.String())).ReadString('\n')
	require.NoError(t, err)
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	info := resp["result"].(map[string]any)["serverInfo"].(map[string]any)
	assert.Equal(t, "test-server", info["name"])
}

func TestService_RunHTTPShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewService(newMCP(), slog.New(slog.NewTextHandler(io.Discard, nil))).RunHTTP(ctx, "127.0.0.1:0", "/mcp")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
