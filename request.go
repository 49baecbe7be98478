package dockstream

import "fmt"

// Request carries one chat exchange to a streaming transport.
// ConfigID selects the gateway-side LLM configuration; Model optionally
// overrides the configuration's default model.
type Request struct {
	ConfigID    int       `json:"config_id"`
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"` // nil = config default
	MaxTokens   int       `json:"max_tokens,omitempty"`  // 0 = config default
}

// Validate checks universal constraints on Request.
// Transport implementations may apply additional validation.
func (r Request) Validate() error {
	if r.ConfigID <= 0 {
		return fmt.Errorf("config_id must be positive, got %d: %w", r.ConfigID, ErrValidation)
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty: %w", ErrValidation)
	}
	for i, m := range r.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant, RoleSystem:
		default:
			return fmt.Errorf("message %d has unknown role %q: %w", i, m.Role, ErrValidation)
		}
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}
