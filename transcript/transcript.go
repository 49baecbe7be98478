// Package transcript persists chat transcripts as versioned JSON files.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sujumayas/dockstream"
)

// Transcript is one saved conversation against a gateway configuration.
type Transcript struct {
	ID        string
	ConfigID  int
	Messages  []dockstream.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version   int                  `json:"version"`
	ID        string               `json:"id"`
	ConfigID  int                  `json:"config_id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Messages  []dockstream.Message `json:"messages"`
}

// Marshal serializes a Transcript to JSON in v1 envelope format.
func Marshal(t Transcript) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        t.ID,
		ConfigID:  t.ConfigID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Messages:  t.Messages,
	}
	return json.MarshalIndent(env, "", "  ")
}

// Unmarshal deserializes a Transcript from JSON in v1 envelope format.
func Unmarshal(data []byte) (Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return Transcript{
		ID:        env.ID,
		ConfigID:  env.ConfigID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  env.Messages,
	}, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed. The write goes through a temp file and rename so a crash never
// leaves a truncated transcript.
func Save(path string, t Transcript) error {
	data, err := Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return Unmarshal(data)
}
