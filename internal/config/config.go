// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/pakafest/dashboard/internal/domain/derive"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RefreshIntervalMinutes is the scheduler cadence. Zero disables the
	// scheduler; manual refreshes still work.
	RefreshIntervalMinutes int `koanf:"refresh_interval_minutes"`

	// DBPath locates the SQLite snapshot database.
	DBPath string `koanf:"db_path"`

	// Ticketing provider access. When the credentials are left empty the
	// service runs snapshot-only: it serves whatever the store holds.
	TicketingBaseURL  string `koanf:"ticketing_base_url"`
	TicketingAPIKey   string `koanf:"ticketing_api_key"`
	TicketingUsername string `koanf:"ticketing_username"`
	TicketingPassword string `koanf:"ticketing_password"`
	TicketingEventID  string `koanf:"ticketing_event_id"`

	// Dashboard access: one shared credential pair and the JWT session
	// parameters. An empty secret disables authentication (local dev).
	AuthUsername      string `koanf:"auth_username"`
	AuthPassword      string `koanf:"auth_password"`
	AuthJWTSecret     string `koanf:"auth_jwt_secret"`
	AuthTokenTTLHours int    `koanf:"auth_token_ttl_hours"`

	// Commune lookup tuning.
	GeoBaseURL      string `koanf:"geo_base_url"`
	GeoBatchSize    int    `koanf:"geo_batch_size"`
	GeoBatchPauseMS int    `koanf:"geo_batch_pause_ms"`

	// TopDepartments caps the department ranking length.
	TopDepartments int `koanf:"top_departments"`

	// Label substrings matched against survey answer labels.
	BirthDateLabels  []string `koanf:"birth_date_labels"`
	PostalCodeLabels []string `koanf:"postal_code_labels"`

	// AgeRanges is the bucket table, sentinel entry first. Only settable
	// via the config file.
	AgeRanges derive.Ranges `koanf:"age_ranges"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		RefreshIntervalMinutes: 30,
		DBPath:                 "snapshots.db",
		TicketingBaseURL:       "https://api.weezevent.com",
		AuthTokenTTLHours:      24,
		GeoBaseURL:             "https://geo.api.gouv.fr",
		GeoBatchSize:           10,
		GeoBatchPauseMS:        100,
		TopDepartments:         10,
		AgeRanges:              derive.DefaultRanges(),
	}
}

// TicketingConfigured reports whether the provider credentials are complete
// enough to attempt a sync.
func (c *Config) TicketingConfigured() bool {
	return c.TicketingAPIKey != "" && c.TicketingUsername != "" &&
		c.TicketingPassword != "" && c.TicketingEventID != ""
}

// AuthConfigured reports whether the dashboard login is enabled.
func (c *Config) AuthConfigured() bool {
	return c.AuthJWTSecret != ""
}
