// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the CSV snapshot files (users.csv, teams.csv, ...).
	DataDir string `koanf:"data_dir"`

	// MaxTopK caps GET /recommend?top_k.
	MaxTopK int `koanf:"max_top_k"`

	// Artifact paths. Empty paths mean the artifact is not loaded and the
	// pipeline degrades to its deterministic fallbacks.
	TeamVectorsPath    string `koanf:"team_vectors_path"`
	UserVectorsPath    string `koanf:"user_vectors_path"`
	GraphVectorsPath   string `koanf:"graph_vectors_path"`
	PrimaryModelPath   string `koanf:"primary_model_path"`
	PrimaryScalerPath  string `koanf:"primary_scaler_path"`
	SecondaryModelPath string `koanf:"secondary_model_path"`
	BanditDBPath       string `koanf:"bandit_db_path"`

	// Ensemble blend weights applied to the two model outputs.
	PrimaryBlendWeight   float64 `koanf:"primary_blend_weight"`
	SecondaryBlendWeight float64 `koanf:"secondary_blend_weight"`

	// Simple-path feature weights used when no model artifacts are loaded.
	SkillWeight    float64 `koanf:"skill_weight"`
	SemanticWeight float64 `koanf:"semantic_weight"`
	GraphWeight    float64 `koanf:"graph_weight"`

	// SimilarityMethod selects the structural similarity: cosine, dot, euclidean.
	SimilarityMethod string `koanf:"similarity_method"`

	// Exploration knobs.
	Epsilon         float64 `koanf:"epsilon"`
	ExplorePoolSize int     `koanf:"explore_pool_size"`
	ExposureCap     int     `koanf:"exposure_cap"`
	PenaltyRate     float64 `koanf:"penalty_rate"`
	BanditDecay     float64 `koanf:"bandit_decay"`

	// FeedbackQueueSize bounds the in-memory feedback queue.
	FeedbackQueueSize int `koanf:"feedback_queue_size"`

	// DedupeSize is the retention window for feedback idempotency IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// WorkerCount sets the number of feedback workers.
	WorkerCount int `koanf:"worker_count"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DataDir:              "data",
		MaxTopK:              100,
		PrimaryBlendWeight:   0.45,
		SecondaryBlendWeight: 0.55,
		SkillWeight:          0.5,
		SemanticWeight:       0.3,
		GraphWeight:          0.2,
		SimilarityMethod:     "cosine",
		Epsilon:              0.05,
		ExplorePoolSize:      100,
		ExposureCap:          50,
		PenaltyRate:          0.0005,
		BanditDecay:          0.98,
		FeedbackQueueSize:    10_000,
		DedupeSize:           50_000,
		WorkerCount:          runtime.NumCPU() * 2,
	}
	return c
}
