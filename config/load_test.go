package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.DBDriver)
	assert.Equal(t, "rightswatch", cfg.MongoDatabase)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Analytics.Digest.Enabled)
	assert.Equal(t, "@every 5m", cfg.Analytics.Digest.Schedule)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
db_driver: sqlite
db_url: data/rightswatch.db
uploads:
  dir: /tmp/rw-uploads
analytics:
  geodata_limit: 20
  digest:
    schedule: "@hourly"
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("RIGHTSWATCH_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("RIGHTSWATCH_ANALYTICS_DIGEST_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/rightswatch.db", cfg.DBURL)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "/tmp/rw-uploads", cfg.Uploads.Dir)
	assert.False(t, cfg.Analytics.Digest.Enabled)
	assert.Equal(t, "@hourly", cfg.Analytics.Digest.Schedule)
	violations, timeline, geodata := cfg.Analytics.Limits()
	assert.Equal(t, []int{50, 50, 20}, []int{violations, timeline, geodata})
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("RIGHTSWATCH_DB_DRIVER", "oracle")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db_driver")
}

func TestLimitsFallBackToDefaults(t *testing.T) {
	v, tl, g := AnalyticsConfig{}.Limits()
	assert.Equal(t, 50, v)
	assert.Equal(t, 50, tl)
	assert.Equal(t, 100, g)
}
