// Package config holds the server settings: defaults, an optional YAML file
// and environment overrides.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/scy"
	"gopkg.in/yaml.v3"

	"github.com/palewire/datawrapper-mcp/datawrapper"
)

// Environment variables read by the server.
const (
	EnvAPIToken  = "DATAWRAPPER_API_TOKEN"
	EnvAPIURL    = "DATAWRAPPER_API_URL"
	EnvLogLevel  = "DATAWRAPPER_MCP_LOG_LEVEL"
	EnvLogFormat = "DATAWRAPPER_MCP_LOG_FORMAT"
)

// Transports the server can serve on.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Config struct {
	API    API    `yaml:"api"`
	Log    Log    `yaml:"log"`
	Server Server `yaml:"server"`
}

type API struct {
	BaseURL string `yaml:"baseURL"`
	AppURL  string `yaml:"appURL"`
	// Token is used as is when set. Prefer TokenSecret or the environment.
	Token string `yaml:"token"`
	// TokenSecret is a scy resource URL holding the token.
	TokenSecret string `yaml:"tokenSecret"`
	// TokenKey decrypts TokenSecret, e.g. blowfish://default.
	TokenKey string        `yaml:"tokenKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Server struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
	Path      string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		API: API{
			BaseURL: datawrapper.DefaultBaseURL,
			AppURL:  datawrapper.DefaultAppURL,
			Timeout: 30 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
		Server: Server{
			Transport: TransportStdio,
			Addr:      ":8080",
			Path:      "/mcp",
		},
	}
}

// Load returns the defaults overlaid with the YAML document at location, a
// local path or any afs URL. An empty location yields the defaults.
func Load(ctx context.Context, location string) (*Config, error) {
	cfg := Default()
	if location == "" {
		return cfg, nil
	}
	data, err := afs.New().DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", location, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", location, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. The token itself is
// read per request, see TokenSource.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.API.BaseURL, EnvAPIURL)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q", c.Server.Transport)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}
	if c.Server.Transport == TransportHTTP && c.Server.Addr == "" {
		return fmt.Errorf("server address is required for the http transport")
	}
	return nil
}

// TokenSource resolves the API token lazily: the configured token, else the
// scy secret, else the DATAWRAPPER_API_TOKEN environment variable.
func (c *Config) TokenSource() datawrapper.TokenFunc {
	if c.API.Token != "" {
		return datawrapper.StaticToken(c.API.Token)
	}
	secretURL, secretKey := c.API.TokenSecret, c.API.TokenKey
	secrets := scy.New()
	return func(ctx context.Context) (string, error) {
		if secretURL != "" {
			secret, err := secrets.Load(ctx, scy.NewResource(nil, secretURL, secretKey))
			if err != nil {
				return "", fmt.Errorf("load token secret: %w", err)
			}
			if v := strings.TrimSpace(secret.String()); v != "" {
				return v, nil
			}
			return "", fmt.Errorf("token secret %s is empty", secretURL)
		}
		if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
			return v, nil
		}
		return "", datawrapper.ErrMissingToken
	}
}
