// Package config reads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is every tunable the server honors.
type Config struct {
	// TCP address the game protocol listens on.
	Addr string `env:"GRIDFALL_ADDR" envDefault:":38281"`
	// HTTP address for the admin surface and the websocket gateway.
	AdminAddr string `env:"GRIDFALL_ADMIN_ADDR" envDefault:":8080"`

	// Sessions are dropped after this long without any packet.
	LivenessTimeout time.Duration `env:"GRIDFALL_TIMEOUT" envDefault:"10s"`

	// Content overrides; empty means embedded defaults only.
	ContentDir string `env:"GRIDFALL_CONTENT_DIR"`
	// Lua decision policy scripts.
	ScriptsDir string `env:"GRIDFALL_SCRIPTS_DIR" envDefault:"scripts"`

	// Floor generation seed.
	Seed string `env:"GRIDFALL_SEED" envDefault:"default seed"`

	// Postgres DSN for the action journal; empty disables it.
	JournalDSN string `env:"JOURNAL_DSN"`

	// Log file path.
	LogFile string `env:"GRIDFALL_LOG" envDefault:"gridfall.log"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
