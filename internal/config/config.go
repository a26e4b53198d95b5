package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for shufflepod.
type Config struct {
	// Pocket Casts account credentials. Email is required. Password may
	// be left empty, in which case it is prompted for on a terminal.
	Email    string `env:"POCKETCASTS_EMAIL"`
	Password string `env:"POCKETCASTS_PASSWORD"`

	// Directory the episode files are synced into. The directory listing
	// is the only persisted sync state.
	MusicDir string `env:"MUSIC_DIR" envDefault:"music"`

	// Maximum number of episode downloads in flight at once.
	MaxConcurrentDownloads int `env:"MAX_CONCURRENT_DOWNLOADS" envDefault:"4"`

	// WriteTags controls ID3 tagging of downloaded .mp3 files.
	WriteTags bool `env:"WRITE_TAGS" envDefault:"true"`

	// Interactive enables the episode picker before syncing.
	Interactive bool `env:"INTERACTIVE" envDefault:"false"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
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

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Resolve MusicDir to an absolute path at startup so log output and
	// error messages are unambiguous regardless of working directory.
	absDir, err := filepath.Abs(cfg.MusicDir)
	if err != nil {
		return nil, fmt.Errorf("resolving music dir to absolute path: %w", err)
	}
	cfg.MusicDir = absDir

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Email == "" {
		return fmt.Errorf("POCKETCASTS_EMAIL is required")
	}

	if c.MusicDir == "" {
		return fmt.Errorf("MUSIC_DIR must not be empty")
	}

	if c.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("MAX_CONCURRENT_DOWNLOADS must be at least 1, got %d", c.MaxConcurrentDownloads)
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
