package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the token relay.
type Config struct {
	// Address the HTTP server binds to.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Public base URL of this server, used to build OAuth redirect URIs.
	// Must not have a trailing slash.
	Domain string `env:"SERVER_DOMAIN"`

	// Twitch application credentials used for the dashboard login flow.
	TwitchClientID     string `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET"`

	// Path to the bbolt database holding applications and users.
	// Defaults to ~/.token-relay/relay.db when empty.
	StatePath string `env:"STATE_DB_PATH"`

	// Optional YAML file of pre-registered applications imported at
	// startup and re-imported when the file changes.
	ApplicationsFile string `env:"APPLICATIONS_FILE"`

	// bcrypt hash guarding the admin API. Generate with the
	// hash-password subcommand. Empty disables the admin API.
	AdminKeyHash string `env:"ADMIN_KEY_HASH"`

	// Browser session lifetime.
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"168h"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Domain = strings.TrimRight(cfg.Domain, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.StatePath == "" {
		path, err := defaultStatePath()
		if err != nil {
			return nil, err
		}

		cfg.StatePath = path
	}

	// Resolve the applications file to an absolute path so the
	// fsnotify watcher can monitor its parent directory reliably.
	if cfg.ApplicationsFile != "" {
		abs, err := filepath.Abs(cfg.ApplicationsFile)
		if err != nil {
			return nil, fmt.Errorf("resolving applications file to absolute path: %w", err)
		}

		cfg.ApplicationsFile = abs
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Domain == "" {
		return fmt.Errorf("SERVER_DOMAIN is required")
	}

	u, err := url.Parse(c.Domain)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SERVER_DOMAIN must be an absolute URL, got %q", c.Domain)
	}

	if c.TwitchClientID == "" {
		return fmt.Errorf("TWITCH_CLIENT_ID is required")
	}

	if c.TwitchClientSecret == "" {
		return fmt.Errorf("TWITCH_CLIENT_SECRET is required")
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}

	return nil
}

// defaultStatePath returns ~/.token-relay/relay.db.
func defaultStatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".token-relay", "relay.db"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
