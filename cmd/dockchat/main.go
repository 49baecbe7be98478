// Command dockchat is a terminal chat client for the AI Dock gateway.
//
// Usage:
//
//	DOCK_TOKEN=...       dockchat [flags]
//	GEMINI_API_KEY=gk-.. dockchat -transport gemini [flags]
//
// Flags:
//
//	-gateway string     Gateway base URL (default http://localhost:8000)
//	-config int         LLM configuration ID (default 1)
//	-model string       Model ID override (default: configuration default)
//	-transport string   Transport: sse, ws, gemini (default sse)
//	-ws-url string      WebSocket endpoint URL (default derived from -gateway)
//	-transcript string  Path to transcript file to resume
//	-env string         Path to .env file (default .env, tolerated missing)
//	-debug-log string   Path to diagnostic log file (default: diagnostics off)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/sujumayas/dockstream"
	bt "github.com/sujumayas/dockstream/bubbletea"
	"github.com/sujumayas/dockstream/transcript"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dockchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	// Load .env before reading tokens. Tolerate a missing default file;
	// fail when an explicit path does not exist.
	if err := godotenv.Load(cfg.envPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) || cfg.envPath != defaultEnvPath {
			return fmt.Errorf("load env: %w", err)
		}
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := openLogger(cfg.debugLogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	transport, fallback, err := resolveTransport(ctx, cfg,
		os.Getenv("DOCK_TOKEN"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}

	tr, err := loadOrCreateTranscript(cfg.transcriptPath, cfg.configID)
	if err != nil {
		return err
	}

	controller := dockstream.NewController(transport, dockstream.WithLogger(logger))
	model := bt.New(controller, fallback, &tr, dockstream.DefaultTheme(), cfg.model)

	if err := bt.Run(ctx, model); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Save transcript on exit.
	if cfg.transcriptPath != "" {
		if err := transcript.Save(cfg.transcriptPath, tr); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
	} else if len(tr.Messages) > 0 {
		savePath := defaultTranscriptPath(tr.ID)
		if err := transcript.Save(savePath, tr); err != nil {
			return fmt.Errorf("auto-save transcript: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Transcript saved to %s\n", savePath)
	}

	return nil
}

// openLogger returns the diagnostic logger. Diagnostics go to a file so
// they never corrupt the TUI; without -debug-log they are discarded.
func openLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})
	return logger, func() { f.Close() }, nil
}

func loadOrCreateTranscript(path string, configID int) (transcript.Transcript, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			tr, err := transcript.Load(path)
			if err != nil {
				return transcript.Transcript{}, fmt.Errorf("load transcript: %w", err)
			}
			return tr, nil
		}
	}

	now := time.Now()
	return transcript.Transcript{
		ID:        fmt.Sprintf("%d", now.UnixNano()),
		ConfigID:  configID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func defaultTranscriptPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".dockchat", "transcripts", id+".json")
}
