package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const maxHistoryLimit = 10000

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err != nil {
		return nil, fmt.Errorf("logLevel %q is not a valid level", cfg.LogLevel)
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("historyLimit must be > 0")
	}
	if cfg.HistoryLimit > maxHistoryLimit {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("historyLimit %d is large; recent transcripts are pruned to it on every save", cfg.HistoryLimit),
		})
	}
	if !cfg.History && strings.TrimSpace(cfg.HistoryPath) != "" {
		warnings = append(warnings, Warning{Message: "historyPath is set but history is disabled"})
	}

	return warnings, nil
}
