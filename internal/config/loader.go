package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TEAMFORGE_CONFIG is set
//  3. env (prefix TEAMFORGE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TEAMFORGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TEAMFORGE_ADDR, TEAMFORGE_MAX_TOP_K, ...
	// Map env keys like TEAMFORGE_MAX_TOP_K -> max_top_k (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TEAMFORGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "teamforge_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxTopK <= 0 {
		return fmt.Errorf("%w: max_top_k must be positive", ErrInvalidConfig)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon must be in [0, 1]", ErrInvalidConfig)
	}
	if c.BanditDecay <= 0 || c.BanditDecay > 1 {
		return fmt.Errorf("%w: bandit_decay must be in (0, 1]", ErrInvalidConfig)
	}
	switch strings.ToLower(c.SimilarityMethod) {
	case "", "cosine", "dot", "euclidean":
	default:
		return fmt.Errorf("%w: unknown similarity_method %q", ErrInvalidConfig, c.SimilarityMethod)
	}
	return nil
}
