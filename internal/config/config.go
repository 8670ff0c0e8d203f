// Package config loads settings from the environment and optional .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultOAuthRedirect = "http://127.0.0.1:54321/auth/callback"
	DefaultResetRedirect = "kibanda://reset-password"
)

// Config holds the settings the client needs to reach its backend.
type Config struct {
	// Backend endpoint and its public (anon) key.
	SupabaseURL string
	AnonKey     string

	// OAuthRedirect must be registered with the provider; the loopback
	// receiver listens on its host and port.
	OAuthRedirect string
	// ResetRedirect is linked from password recovery emails.
	ResetRedirect string

	// Home holds the session file and the log.
	Home string

	LogLevel  string
	LogFormat string
}

// SessionPath returns the file the session is persisted in.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}

// LogPath returns the log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Home, "kibanda.log")
}

// Load reads .env from the working directory and from the kibanda home,
// then the environment. Variables already set win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	home, err := homeDir()
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(filepath.Join(home, ".env"))

	cfg := &Config{
		SupabaseURL:   strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		AnonKey:       getEnv("SUPABASE_ANON_KEY", ""),
		OAuthRedirect: getEnv("KIBANDA_OAUTH_REDIRECT", DefaultOAuthRedirect),
		ResetRedirect: getEnv("KIBANDA_RESET_REDIRECT", DefaultResetRedirect),
		Home:          home,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the backend settings are present.
func (c *Config) Validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.AnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s: set them in the environment or a .env file", strings.Join(missing, " and "))
	}
	return nil
}

// homeDir returns KIBANDA_HOME or ~/.kibanda.
func homeDir() (string, error) {
	if h := getEnv("KIBANDA_HOME", ""); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".kibanda"), nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
