package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"github.com/sujumayas/dockstream"
	bt "github.com/sujumayas/dockstream/bubbletea"
	"github.com/sujumayas/dockstream/gateway"
	"github.com/sujumayas/dockstream/gemini"
	"github.com/sujumayas/dockstream/wstream"
)

const defaultEnvPath = ".env"

type config struct {
	gatewayURL     string
	configID       int
	model          string
	transport      string
	wsURL          string
	transcriptPath string
	envPath        string
	debugLogPath   string
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("dockchat", flag.ContinueOnError)
	fs.StringVar(&cfg.gatewayURL, "gateway", "http://localhost:8000", "gateway base URL")
	fs.IntVar(&cfg.configID, "config", 1, "LLM configuration ID")
	fs.StringVar(&cfg.model, "model", "", "model ID override")
	fs.StringVar(&cfg.transport, "transport", "sse", "transport: sse, ws, gemini")
	fs.StringVar(&cfg.wsURL, "ws-url", "", "WebSocket endpoint URL")
	fs.StringVar(&cfg.transcriptPath, "transcript", "", "transcript file to resume")
	fs.StringVar(&cfg.envPath, "env", defaultEnvPath, "path to .env file")
	fs.StringVar(&cfg.debugLogPath, "debug-log", "", "diagnostic log file")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// resolveTransport builds the streaming transport and, where one exists,
// the non-streaming fallback for the selected transport mode.
func resolveTransport(ctx context.Context, cfg config, dockToken, geminiKey string) (dockstream.Transport, bt.Fallback, error) {
	switch cfg.transport {
	case "sse":
		if dockToken == "" {
			return nil, nil, fmt.Errorf("DOCK_TOKEN is required for transport %q", cfg.transport)
		}
		client := gateway.New(dockToken, gateway.WithBaseURL(cfg.gatewayURL))
		return client, client.Complete, nil

	case "ws":
		if dockToken == "" {
			return nil, nil, fmt.Errorf("DOCK_TOKEN is required for transport %q", cfg.transport)
		}
		wsURL := cfg.wsURL
		if wsURL == "" {
			derived, err := deriveWSURL(cfg.gatewayURL)
			if err != nil {
				return nil, nil, err
			}
			wsURL = derived
		}
		// Fallback still goes through the HTTP chat endpoint.
		fallback := gateway.New(dockToken, gateway.WithBaseURL(cfg.gatewayURL))
		return wstream.New(wsURL, dockToken), fallback.Complete, nil

	case "gemini":
		if geminiKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY is required for transport %q", cfg.transport)
		}
		var opts []gemini.Option
		if cfg.model != "" {
			opts = append(opts, gemini.WithModel(cfg.model))
		}
		client, err := gemini.New(ctx, geminiKey, opts...)
		if err != nil {
			return nil, nil, err
		}
		// No non-streaming fallback in direct provider mode.
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown transport %q (want sse, ws, or gemini)", cfg.transport)
	}
}

// deriveWSURL maps the gateway's HTTP base URL to its WebSocket endpoint.
func deriveWSURL(gatewayURL string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("gateway URL scheme %q not supported for WebSocket", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/chat/ws"
	return u.String(), nil
}
