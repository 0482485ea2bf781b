package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
ingest:
  watch_dir: /data/inbound
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/inbound", cfg.Ingest.WatchDir)
	assert.Equal(t, DefaultQuarantineDir, cfg.Ingest.QuarantineDir)
	assert.Equal(t, DefaultArchiveSubdir, cfg.Ingest.ArchiveSubdir)
	assert.Equal(t, DefaultSettleDelay, cfg.Ingest.SettleDelay)
	assert.Equal(t, DefaultCollector, cfg.Ingest.Collector)
	assert.Equal(t, DefaultLogLevel, cfg.Global.LogLevel)
	assert.Equal(t, DefaultDatabaseDriver, cfg.Database.Driver)
	assert.Equal(t, DefaultSQLitePath, cfg.Database.SQLite.Path)
	assert.Nil(t, cfg.Server)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
global:
  log_level: debug
ingest:
  watch_dir: /data/inbound
  quarantine_dir: /data/quarantine
  settle_delay: 5s
  collector: collector-bot
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5432
    user: ingestoor
    password: secret
    database: eda_runs
server:
  listen: ":8080"
  rate_limit:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.Global.LogLevel)
	assert.Equal(t, "collector-bot", cfg.Ingest.Collector)
	assert.Equal(t, 5*time.Second, cfg.Ingest.SettleDuration())
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)

	require.NotNil(t, cfg.Server)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 10, cfg.Server.RateLimit.RequestsPerMinute)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name: "unknown driver",
			mutate: func(c *Config) {
				c.Database.Driver = "oracle"
			},
			wantErr: "unsupported database driver",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Postgres.Database = "eda_runs"
			},
			wantErr: "postgres host is required",
		},
		{
			name: "quarantine inside watch dir",
			mutate: func(c *Config) {
				c.Ingest.WatchDir = "/data/inbound"
				c.Ingest.QuarantineDir = "/data/inbound/bad"
			},
			wantErr: "must be outside watch_dir",
		},
		{
			name: "quarantine equals watch dir",
			mutate: func(c *Config) {
				c.Ingest.WatchDir = "/data/inbound"
				c.Ingest.QuarantineDir = "/data/inbound"
			},
			wantErr: "must be outside watch_dir",
		},
		{
			name: "sibling quarantine dir is fine",
			mutate: func(c *Config) {
				c.Ingest.WatchDir = "/data/inbound"
				c.Ingest.QuarantineDir = "/data/quarantine"
			},
		},
		{
			name: "bad settle delay",
			mutate: func(c *Config) {
				c.Ingest.SettleDelay = "soon"
			},
			wantErr: "parsing settle_delay",
		},
		{
			name: "negative settle delay",
			mutate: func(c *Config) {
				c.Ingest.SettleDelay = "-1s"
			},
			wantErr: "must not be negative",
		},
		{
			name: "server without listen address",
			mutate: func(c *Config) {
				c.Server = &ServerConfig{}
			},
			wantErr: "listen address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSettleDurationFallback(t *testing.T) {
	cfg := IngestConfig{SettleDelay: "garbage"}
	assert.Equal(t, 2*time.Second, cfg.SettleDuration())

	cfg.SettleDelay = "500ms"
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDuration())
}
