// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix namespaces every environment variable the binaries read.
const Prefix = "PARTYBATTLE_"

// ParseEnv loads configuration from environment variables. Field tags name
// the variable without Prefix, so `env:"SEED"` reads PARTYBATTLE_SEED.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
