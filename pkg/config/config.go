package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultWatchDir is the default directory watched for inbound CSVs.
	DefaultWatchDir = "./data_csv"

	// DefaultQuarantineDir is the default directory for files that failed
	// ingestion or produced errors/duplicates.
	DefaultQuarantineDir = "./duplicate_errors"

	// DefaultArchiveSubdir is the subdirectory under the watch dir that
	// receives successfully processed files.
	DefaultArchiveSubdir = "processed"

	// DefaultSettleDelay is the pause between a filesystem event and the
	// file read, so a file still being written is not read mid-write.
	DefaultSettleDelay = "2s"

	// DefaultCollector is the user name recorded as collector on ingested
	// rows when the CSV does not name one.
	DefaultCollector = "admin"

	// DefaultDatabaseDriver is the default database driver.
	DefaultDatabaseDriver = "sqlite"

	// DefaultSQLitePath is the default SQLite database path.
	DefaultSQLitePath = "./ingestoor.db"
)

// Config is the root configuration for ingestoor.
type Config struct {
	Global   GlobalConfig   `yaml:"global"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Database DatabaseConfig `yaml:"database"`
	Server   *ServerConfig  `yaml:"server,omitempty"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// IngestConfig contains CSV ingestion settings.
type IngestConfig struct {
	WatchDir      string `yaml:"watch_dir"`
	QuarantineDir string `yaml:"quarantine_dir"`
	ArchiveSubdir string `yaml:"archive_subdir"`
	SettleDelay   string `yaml:"settle_delay"`
	Collector     string `yaml:"collector"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty"`
}

// ServerConfig contains HTTP API server settings. The API is optional;
// when the section is absent the watch command runs without it.
type ServerConfig struct {
	Listen      string          `yaml:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// RateLimitConfig configures per-IP rate limiting on the ingest trigger
// endpoint.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Ingest.WatchDir == "" {
		c.Ingest.WatchDir = DefaultWatchDir
	}

	if c.Ingest.QuarantineDir == "" {
		c.Ingest.QuarantineDir = DefaultQuarantineDir
	}

	if c.Ingest.ArchiveSubdir == "" {
		c.Ingest.ArchiveSubdir = DefaultArchiveSubdir
	}

	if c.Ingest.SettleDelay == "" {
		c.Ingest.SettleDelay = DefaultSettleDelay
	}

	if c.Ingest.Collector == "" {
		c.Ingest.Collector = DefaultCollector
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DefaultDatabaseDriver
	}

	if c.Database.Driver == "sqlite" && c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = DefaultSQLitePath
	}

	if c.Server != nil && c.Server.RateLimit.Enabled &&
		c.Server.RateLimit.RequestsPerMinute == 0 {
		c.Server.RateLimit.RequestsPerMinute = 10
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}

		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q (use \"sqlite\" or \"postgres\")", c.Database.Driver)
	}

	// The quarantine dir must live outside the watched tree so quarantined
	// files do not re-trigger the watcher.
	watchAbs, err := filepath.Abs(c.Ingest.WatchDir)
	if err != nil {
		return fmt.Errorf("resolving watch_dir: %w", err)
	}

	quarantineAbs, err := filepath.Abs(c.Ingest.QuarantineDir)
	if err != nil {
		return fmt.Errorf("resolving quarantine_dir: %w", err)
	}

	if quarantineAbs == watchAbs || isSubpath(watchAbs, quarantineAbs) {
		return fmt.Errorf("quarantine_dir %q must be outside watch_dir %q",
			c.Ingest.QuarantineDir, c.Ingest.WatchDir)
	}

	if d, err := time.ParseDuration(c.Ingest.SettleDelay); err != nil {
		return fmt.Errorf("parsing settle_delay: %w", err)
	} else if d < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}

	if c.Server != nil && c.Server.Listen == "" {
		return fmt.Errorf("server listen address is required when the server section is present")
	}

	return nil
}

// SettleDuration returns the parsed settle delay, falling back to the
// default when the configured value does not parse.
func (c *IngestConfig) SettleDuration() time.Duration {
	d, err := time.ParseDuration(c.SettleDelay)
	if err != nil || d < 0 {
		d, _ = time.ParseDuration(DefaultSettleDelay)
	}

	return d
}

// isSubpath reports whether child is inside parent.
func isSubpath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return rel != "." && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
