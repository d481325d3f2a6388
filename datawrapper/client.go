// Package datawrapper is a small client for the Datawrapper API v3 chart
// endpoints.
package datawrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/palewire/datawrapper-mcp/logging"
)

const (
	DefaultBaseURL = "https://api.datawrapper.de/v3"
	DefaultAppURL  = "https://app.datawrapper.de"
	publicBaseURL  = "https://datawrapper.dwcdn.net"
)

// ErrMissingToken is returned when no API token is configured.
var ErrMissingToken = errors.New("DATAWRAPPER_API_TOKEN environment variable is required")

// TokenFunc returns the API token for a request. It is called for every
// request so the token may change while the server runs.
type TokenFunc func(ctx context.Context) (string, error)

// RequestModifier allows modification of outgoing requests
type RequestModifier func(*http.Request) error

type Config struct {
	// API root, e.g. https://api.datawrapper.de/v3
	BaseURL *url.URL

	// editor root used for edit links
	AppURL string

	// timeout for the http client
	Timeout time.Duration

	// custom transport for the http client
	Transport http.RoundTripper

	// supplies the bearer token
	Token TokenFunc

	// modify request before sending it
	ModifyRequest RequestModifier

	Logger *slog.Logger
}

// Client talks to the Datawrapper API.
type Client struct {
	config *Config
	client *http.Client
}

// DefaultConfig returns a Config with sensible defaults
// Only the Token needs to be set after calling this
func DefaultConfig() *Config {
	base, _ := url.Parse(DefaultBaseURL)
	return &Config{
		BaseURL: base,
		AppURL:  DefaultAppURL,
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConnsPerHost:   10,
		},
	}
}

// New creates a client with the given configuration
func New(config *Config) (*Client, error) {
	if config.Token == nil {
		return nil, fmt.Errorf("token source is required")
	}

	// apply defaults for any unset fields
	defaults := DefaultConfig()

	if config.BaseURL == nil {
		config.BaseURL = defaults.BaseURL
	}

	if config.AppURL == "" {
		config.AppURL = defaults.AppURL
	}

	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	if config.Transport == nil {
		config.Transport = defaults.Transport
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: config.Transport,
			Timeout:   config.Timeout,
		},
	}, nil
}

// StaticToken returns a TokenFunc for a fixed token. An empty token yields
// ErrMissingToken.
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}
}

// Chart is a chart document as returned by the API.
type Chart struct {
	ID        string
	Type      string
	Title     string
	PublicURL string
	Document  map[string]any
}

func chartFrom(doc map[string]any) *Chart {
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}
	return &Chart{
		ID:        str("id"),
		Type:      str("type"),
		Title:     str("title"),
		PublicURL: str("publicUrl"),
		Document:  doc,
	}
}

// EditorURL returns the editor link of a chart.
func (c *Client) EditorURL(id string) string {
	return strings.TrimSuffix(c.config.AppURL, "/") + "/chart/" + id + "/visualize"
}

// PublicURL returns the published link of a chart, preferring the one the
// API reported.
func (c *Client) PublicURL(chart *Chart) string {
	if chart.PublicURL != "" {
		return chart.PublicURL
	}
	return publicBaseURL + "/" + chart.ID + "/"
}

// CreateChart creates a chart of the given visualization type.
func (c *Client) CreateChart(ctx context.Context, typeID string, doc map[string]any) (*Chart, error) {
	body := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		body[k] = v
	}
	body["type"] = typeID
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/charts", nil, body, &out); err != nil {
		return nil, err
	}
	return chartFrom(out), nil
}

// FetchChart returns the chart document for id.
func (c *Client) FetchChart(ctx context.Context, id string) (*Chart, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, chartPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return chartFrom(out), nil
}

// UpdateChart patches the chart document. Nested metadata is merged by the
// API.
func (c *Client) UpdateChart(ctx context.Context, id string, doc map[string]any) (*Chart, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodPatch, chartPath(id), nil, doc, &out); err != nil {
		return nil, err
	}
	return chartFrom(out), nil
}

// UploadData replaces the chart's data with CSV text.
func (c *Client) UploadData(ctx context.Context, id string, csv []byte) error {
	return c.do(ctx, http.MethodPut, chartPath(id)+"/data", nil, bytes.NewReader(csv), "text/csv", nil)
}

// PublishChart publishes the chart and returns its public URL.
func (c *Client) PublishChart(ctx context.Context, id string) (string, error) {
	var out struct {
		Data    map[string]any `json:"data"`
		URL     string         `json:"url"`
		Version int            `json:"version"`
	}
	if err := c.doJSON(ctx, http.MethodPost, chartPath(id)+"/publish", nil, nil, &out); err != nil {
		return "", err
	}
	if out.URL != "" {
		return out.URL, nil
	}
	chart := chartFrom(out.Data)
	if chart.ID == "" {
		chart.ID = id
	}
	return c.PublicURL(chart), nil
}

// DeleteChart deletes the chart.
func (c *Client) DeleteChart(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, chartPath(id), nil, nil, "", nil)
}

// ExportOptions tunes a PNG export. Nil fields use the API defaults.
type ExportOptions struct {
	Width       *int
	Height      *int
	Plain       bool
	Zoom        int
	Transparent bool
	BorderWidth *int
	BorderColor string
}

func (o ExportOptions) query() url.Values {
	q := url.Values{}
	q.Set("unit", "px")
	q.Set("mode", "rgb")
	if o.Width != nil {
		q.Set("width", fmt.Sprint(*o.Width))
	}
	if o.Height != nil {
		q.Set("height", fmt.Sprint(*o.Height))
	}
	q.Set("plain", fmt.Sprint(o.Plain))
	zoom := o.Zoom
	if zoom == 0 {
		zoom = 2
	}
	q.Set("zoom", fmt.Sprint(zoom))
	q.Set("transparent", fmt.Sprint(o.Transparent))
	if o.BorderWidth != nil {
		q.Set("borderWidth", fmt.Sprint(*o.BorderWidth))
	}
	if o.BorderColor != "" {
		q.Set("borderColor", o.BorderColor)
	}
	return q
}

// ExportPNG renders the chart as PNG.
func (c *Client) ExportPNG(ctx context.Context, id string, opts ExportOptions) ([]byte, error) {
	var out []byte
	if err := c.do(ctx, http.MethodGet, chartPath(id)+"/export/png", opts.query(), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func chartPath(id string) string {
	return "/charts/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, out)
}

// do sends one request. out may be nil, *[]byte for the raw body, or a
// value to decode JSON into.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	start := time.Now()
	token, err := c.config.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrMissingToken
	}

	target := *c.config.BaseURL
	target.Path = singleJoiningSlash(target.Path, path)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// apply request modifier if configured
	if c.config.ModifyRequest != nil {
		if err := c.config.ModifyRequest(req); err != nil {
			return fmt.Errorf("request modifier failed: %w", err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	c.config.Logger.DebugContext(ctx, "datawrapper request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", logging.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	switch out := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*out = data
		return nil
	default:
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
		return nil
	}
}

// singleJoiningSlash joins two paths with a single slash
func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")

	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}
