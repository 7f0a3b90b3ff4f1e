package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/Ishita-2210/teamforge-recommender/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxTopK, convey.ShouldEqual, 100)
				convey.So(cfg.Epsilon, convey.ShouldEqual, 0.05)
				convey.So(cfg.ExposureCap, convey.ShouldEqual, 50)
				convey.So(cfg.PenaltyRate, convey.ShouldEqual, 0.0005)
				convey.So(cfg.BanditDecay, convey.ShouldEqual, 0.98)
				convey.So(cfg.PrimaryBlendWeight, convey.ShouldEqual, 0.45)
				convey.So(cfg.SecondaryBlendWeight, convey.ShouldEqual, 0.55)
				convey.So(cfg.SimilarityMethod, convey.ShouldEqual, "cosine")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TEAMFORGE_ADDR", ":8080")
			_ = os.Setenv("TEAMFORGE_MAX_TOP_K", "25")
			_ = os.Setenv("TEAMFORGE_EPSILON", "0.1")
			_ = os.Setenv("TEAMFORGE_WORKER_COUNT", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxTopK, convey.ShouldEqual, 25)
				convey.So(cfg.Epsilon, convey.ShouldEqual, 0.1)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
max_top_k: 20
epsilon: 0.02
exposure_cap: 30
team_vectors_path: "artifacts/teams.bin"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAMFORGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxTopK, convey.ShouldEqual, 20)
				convey.So(cfg.Epsilon, convey.ShouldEqual, 0.02)
				convey.So(cfg.ExposureCap, convey.ShouldEqual, 30)
				convey.So(cfg.TeamVectorsPath, convey.ShouldEqual, "artifacts/teams.bin")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_top_k: 20
worker_count: 8
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAMFORGE_CONFIG", tmpFile)
			_ = os.Setenv("TEAMFORGE_ADDR", ":8080") // should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080") // overridden by env
				convey.So(cfg.MaxTopK, convey.ShouldEqual, 20)   // from file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAMFORGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TEAMFORGE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TEAMFORGE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range epsilon", func() {
			_ = os.Setenv("TEAMFORGE_EPSILON", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown similarity method", func() {
			_ = os.Setenv("TEAMFORGE_SIMILARITY_METHOD", "manhattan")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9090"
worker_count: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAMFORGE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090") // from file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.MaxTopK, convey.ShouldEqual, 100) // from defaults
				convey.So(cfg.Epsilon, convey.ShouldEqual, 0.05)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TEAMFORGE_CONFIG",
		"TEAMFORGE_ADDR",
		"TEAMFORGE_MAX_TOP_K",
		"TEAMFORGE_EPSILON",
		"TEAMFORGE_WORKER_COUNT",
		"TEAMFORGE_SIMILARITY_METHOD",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "teamforge-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
