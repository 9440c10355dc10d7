package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/scoutval/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"SCOUTVAL_CONFIG",
	"SCOUTVAL_ADDR",
	"SCOUTVAL_DATABASE_PATH",
	"SCOUTVAL_WEIGHTS_DOCUMENT",
	"SCOUTVAL_QUEUE_SIZE",
	"SCOUTVAL_WORKER_COUNT",
	"SCOUTVAL_DEDUPE_SIZE",
	"SCOUTVAL_SESSION_TTL_MINUTES",
	"SCOUTVAL_SESSION_SECRET",
	"SCOUTVAL_WEIGHT_SAVES_PER_MINUTE",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "scoutval.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCOUTVAL_ADDR", ":8080")
			_ = os.Setenv("SCOUTVAL_DATABASE_PATH", "/var/lib/scoutval/data.db")
			_ = os.Setenv("SCOUTVAL_QUEUE_SIZE", "500")
			_ = os.Setenv("SCOUTVAL_WORKER_COUNT", "3")
			_ = os.Setenv("SCOUTVAL_SESSION_TTL_MINUTES", "30")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "/var/lib/scoutval/data.db")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.SessionTTLMinutes, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
addr: ":9090"
weights_document: "staging"
queue_size: 300
session_secret: "s3cret"
weight_saves_per_minute: 5
`)
			_ = os.Setenv("SCOUTVAL_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WeightsDocument, convey.ShouldEqual, "staging")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.SessionSecret, convey.ShouldEqual, "s3cret")
				convey.So(cfg.WeightSavesPerMinute, convey.ShouldEqual, 5)
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "scoutval.db")
				convey.So(cfg.SessionTTLMinutes, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := writeConfigFile(t, `
addr: ":9090"
worker_count: 24
dedupe_size: 600
`)
			_ = os.Setenv("SCOUTVAL_CONFIG", path)
			_ = os.Setenv("SCOUTVAL_ADDR", ":8080")
			_ = os.Setenv("SCOUTVAL_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 600)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			_ = os.Setenv("SCOUTVAL_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("SCOUTVAL_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("SCOUTVAL_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive session ttl", func() {
			_ = os.Setenv("SCOUTVAL_SESSION_TTL_MINUTES", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCOUTVAL_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
