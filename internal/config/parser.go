package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var knownKeys = map[string]bool{
	"socketPath":   true,
	"logDir":       true,
	"logLevel":     true,
	"history":      true,
	"historyPath":  true,
	"historyLimit": true,
	"overlay":      true,
}

// Parse overlays JSON content onto base and validates the result. Keys the
// client does not know are reported as warnings.
func Parse(content []byte, base Config) (Config, []Warning, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return Config{}, nil, fmt.Errorf("decode json: %w", err)
	}

	cfg := base
	if err := json.Unmarshal(content, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("decode json: %w", err)
	}

	var warnings []Warning
	unknown := make([]string, 0)
	for key := range raw {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("unknown config key %q ignored", key)})
	}

	validated, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validated...), nil
}
