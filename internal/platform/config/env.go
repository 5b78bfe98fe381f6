// Package config loads runtime settings from the environment and campaign
// definitions from a YAML file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings sourced from environment variables.
type Env struct {
	// BotToken authenticates against the chat platform API.
	BotToken string `env:"PBPKEEPER_BOT_TOKEN"`
	// StatePath is the BoltDB file holding the snapshot.
	StatePath string `env:"PBPKEEPER_STATE_PATH" envDefault:"pbpkeeper.db"`
	// ConfigPath is the campaign definition file.
	ConfigPath string `env:"PBPKEEPER_CONFIG_PATH" envDefault:"campaigns.yaml"`
	// DryRun skips outbound delivery and the final save.
	DryRun bool `env:"PBPKEEPER_DRY_RUN" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
