package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pakafest/dashboard/internal/config"
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
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RefreshIntervalMinutes, convey.ShouldEqual, 30)
				convey.So(cfg.DBPath, convey.ShouldEqual, "snapshots.db")
				convey.So(cfg.TicketingBaseURL, convey.ShouldEqual, "https://api.weezevent.com")
				convey.So(cfg.GeoBaseURL, convey.ShouldEqual, "https://geo.api.gouv.fr")
				convey.So(cfg.GeoBatchSize, convey.ShouldEqual, 10)
				convey.So(cfg.TopDepartments, convey.ShouldEqual, 10)
				convey.So(cfg.AgeRanges.Sentinel(), convey.ShouldEqual, "Tous")
				convey.So(cfg.TicketingConfigured(), convey.ShouldBeFalse)
				convey.So(cfg.AuthConfigured(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FESTI_ADDR", ":9090")
			_ = os.Setenv("FESTI_REFRESH_INTERVAL_MINUTES", "5")
			_ = os.Setenv("FESTI_DB_PATH", "/tmp/festi.db")
			_ = os.Setenv("FESTI_TOP_DEPARTMENTS", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RefreshIntervalMinutes, convey.ShouldEqual, 5)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/festi.db")
				convey.So(cfg.TopDepartments, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":7070"
refresh_interval_minutes: 15
top_departments: 5
birth_date_labels:
  - naissance
  - anniversaire
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FESTI_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RefreshIntervalMinutes, convey.ShouldEqual, 15)
				convey.So(cfg.TopDepartments, convey.ShouldEqual, 5)
				convey.So(cfg.BirthDateLabels, convey.ShouldResemble, []string{"naissance", "anniversaire"})
			})

			convey.Convey("Then unset fields keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "snapshots.db")
				convey.So(cfg.GeoBatchSize, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
refresh_interval_minutes: 15
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FESTI_CONFIG", tmpFile)
			_ = os.Setenv("FESTI_ADDR", ":9090") // env wins over file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RefreshIntervalMinutes, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FESTI_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("FESTI_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty addr", func() {
			_ = os.Setenv("FESTI_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the refresh interval is negative", func() {
			_ = os.Setenv("FESTI_REFRESH_INTERVAL_MINUTES", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When ticketing credentials are incomplete", func() {
			_ = os.Setenv("FESTI_TICKETING_API_KEY", "key-only")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "incomplete ticketing credentials")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When ticketing credentials are complete", func() {
			_ = os.Setenv("FESTI_TICKETING_API_KEY", "key")
			_ = os.Setenv("FESTI_TICKETING_USERNAME", "user")
			_ = os.Setenv("FESTI_TICKETING_PASSWORD", "pass")
			_ = os.Setenv("FESTI_TICKETING_EVENT_ID", "123456")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the provider is reported as configured", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TicketingConfigured(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a JWT secret is set without credentials", func() {
			_ = os.Setenv("FESTI_AUTH_JWT_SECRET", "secret")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "credentials missing")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the full auth trio is set", func() {
			_ = os.Setenv("FESTI_AUTH_JWT_SECRET", "secret")
			_ = os.Setenv("FESTI_AUTH_USERNAME", "festival")
			_ = os.Setenv("FESTI_AUTH_PASSWORD", "backstage")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then authentication is reported as configured", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AuthConfigured(), convey.ShouldBeTrue)
				convey.So(cfg.AuthUsername, convey.ShouldEqual, "festival")
			})
		})

		convey.Convey("When the age-range table in the file is too short", func() {
			yamlContent := `
age_ranges:
  - label: "Tous"
    min: 0
    max: 120
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FESTI_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FESTI_CONFIG",
		"FESTI_ADDR",
		"FESTI_REFRESH_INTERVAL_MINUTES",
		"FESTI_DB_PATH",
		"FESTI_TOP_DEPARTMENTS",
		"FESTI_TICKETING_API_KEY",
		"FESTI_TICKETING_USERNAME",
		"FESTI_TICKETING_PASSWORD",
		"FESTI_TICKETING_EVENT_ID",
		"FESTI_AUTH_JWT_SECRET",
		"FESTI_AUTH_USERNAME",
		"FESTI_AUTH_PASSWORD",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "festi-config-*.yaml")
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
