// Package config loads HexMem's runtime configuration from environment
// variables, optionally seeded from a .env file (kry4r-nuka-world's
// gateway credential pattern), generalizing the teacher's struct-of-
// structs Config shape from {Server,Database,LLM,Hooks} to
// {Server,Database,Embedder,Extractor,Auth,Decay}.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is HexMem's full runtime configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Embedder  EmbedderConfig
	Extractor ExtractorConfig
	Auth      AuthConfig
	Decay     DecayConfig
}

type ServerConfig struct {
	Bind string
	Port int
}

type DatabaseConfig struct {
	Path string // "" resolves to store.DefaultDBPath() at runtime
}

type EmbedderConfig struct {
	Provider string // "hash" (default, offline) | "http"
	URL      string
	Model    string
	Dims     int
}

type ExtractorConfig struct {
	Provider string // "rule" (default, offline)
}

type AuthConfig struct {
	DevKey string // optional unscoped read/write/admin key for local dev
}

type DecayConfig struct {
	SweepInterval int // minutes; loaded but not read by the decay engine, which always sweeps hourly
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// Default returns a Config with sensible defaults for local/offline use.
func Default() Config {
	return Config{
		Server:    ServerConfig{Bind: "127.0.0.1", Port: 8420},
		Database:  DatabaseConfig{Path: ""},
		Embedder:  EmbedderConfig{Provider: "hash", Dims: 256},
		Extractor: ExtractorConfig{Provider: "rule"},
		Decay:     DecayConfig{SweepInterval: 60},
	}
}

// Load builds a Config from environment variables, first loading a .env
// file (if present) via godotenv the way kry4r's gateway loads provider
// credentials — a missing .env is not an error, since HEXMEM_* env vars
// set directly in the environment are equally valid.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	cfg := Default()

	if v := os.Getenv("HEXMEM_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("HEXMEM_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HEXMEM_PORT: %w", err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("HEXMEM_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HEXMEM_EMBEDDER_PROVIDER"); v != "" {
		cfg.Embedder.Provider = v
	}
	if v := os.Getenv("HEXMEM_EMBEDDER_URL"); v != "" {
		cfg.Embedder.URL = v
	}
	if v := os.Getenv("HEXMEM_EMBEDDER_MODEL"); v != "" {
		cfg.Embedder.Model = v
	}
	if v := os.Getenv("HEXMEM_EMBEDDER_DIMS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HEXMEM_EMBEDDER_DIMS: %w", err)
		}
		cfg.Embedder.Dims = d
	}
	if v := os.Getenv("HEXMEM_DEV_KEY"); v != "" {
		cfg.Auth.DevKey = v
	}
	if v := os.Getenv("HEXMEM_DECAY_SWEEP_MINUTES"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HEXMEM_DECAY_SWEEP_MINUTES: %w", err)
		}
		cfg.Decay.SweepInterval = m
	}

	return cfg, nil
}
