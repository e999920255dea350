package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) if ARENA_CONFIG is set
//  3. env (prefix ARENA_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("ARENA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: ARENA_PORT, ARENA_STORAGE_TYPE, ...
	// Map env keys like ARENA_QUEUE_MAX_DEPTH -> queue_max_depth (flat keys)
	envProvider := env.Provider("ARENA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "arena_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	switch cfg.StorageType {
	case "memory", "redis":
	default:
		return errors.New("storage_type must be memory or redis")
	}
	if cfg.StorageType == "redis" && cfg.RedisURL == "" {
		return errors.New("redis_url must not be empty when storage_type is redis")
	}
	if cfg.QueueMaxDepth < 0 {
		return errors.New("queue_max_depth must not be negative")
	}
	return nil
}
