package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/palewire/datawrapper-mcp/config"
	"github.com/palewire/datawrapper-mcp/datawrapper"
	"github.com/palewire/datawrapper-mcp/logging"
	"github.com/palewire/datawrapper-mcp/tabular"
	"github.com/palewire/datawrapper-mcp/tools"
	"github.com/palewire/datawrapper-mcp/transport"
)

const (
	serverName = "datawrapper-mcp"
	version    = "0.1.0"
)

// Options are the command line flags. Unset flags leave the configuration
// file and environment in charge.
type Options struct {
	Config    string `short:"f" long:"config" env:"DATAWRAPPER_MCP_CONFIG" description:"YAML config file path or URL"`
	Transport string `short:"t" long:"transport" choice:"stdio" choice:"http" description:"transport to serve on (default stdio)"`
	Addr      string `short:"a" long:"addr" description:"listen address for the http transport"`
	Path      string `long:"path" description:"MCP endpoint path for the http transport"`
	LogLevel  string `short:"l" long:"log-level" description:"DEBUG, INFO, WARNING, ERROR or CRITICAL"`
	LogFormat string `long:"log-format" choice:"text" choice:"json" description:"log record format"`
	APIURL    string `long:"api-url" description:"Datawrapper API base URL"`
	Version   bool   `short:"v" long:"version" description:"print the version and exit"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if opts.Version {
		fmt.Fprintln(stdout, serverName, version)
		return nil
	}

	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: stderr})
	if logger == nil {
		return err
	}
	if err != nil {
		logger.Warn("falling back to INFO logging", "error", err)
	}
	slog.SetDefault(logger)

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	handlers := tools.New(client,
		tools.WithLogger(logger),
		tools.WithNormalizer(tabular.New(nil)),
	)
	service := transport.NewService(tools.NewMCPServer(serverName, version, handlers), logger)

	logger.InfoContext(ctx, "starting server",
		"version", version,
		"transport", cfg.Server.Transport,
		"api_url", cfg.API.BaseURL,
	)
	switch cfg.Server.Transport {
	case config.TransportHTTP:
		return service.RunHTTP(ctx, cfg.Server.Addr, cfg.Server.Path)
	default:
		return service.RunStdio(ctx, stdin, stdout)
	}
}

func loadConfig(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, err := config.Load(ctx, opts.Config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Server.Transport, opts.Transport)
	override(&cfg.Server.Addr, opts.Addr)
	override(&cfg.Server.Path, opts.Path)
	override(&cfg.Log.Level, opts.LogLevel)
	override(&cfg.Log.Format, opts.LogFormat)
	override(&cfg.API.BaseURL, opts.APIURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds the API client. The token is resolved per request so the
// server starts without one and reports its absence on the first tool call.
func newClient(cfg *config.Config, logger *slog.Logger) (*datawrapper.Client, error) {
	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.API.BaseURL, err)
	}
	dc := datawrapper.DefaultConfig()
	dc.BaseURL = base
	dc.AppURL = cfg.API.AppURL
	dc.Timeout = cfg.API.Timeout
	dc.Token = cfg.TokenSource()
	dc.Logger = logger
	return datawrapper.New(dc)
}
