package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.DistrictTTL)
	assert.Equal(t, "GBP", cfg.Pricing.Currency)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FREIGHT_HTTP_ADDR", ":9090")
	t.Setenv("FREIGHT_REDIS_DISTRICT_TTL", "90s")
	t.Setenv("FREIGHT_MAPS_PARTNER_CORRIDORS", "M62,M6 Toll")
	t.Setenv("FREIGHT_PRICING_COST_PER_KM", "1.4")
	t.Setenv("FREIGHT_METRICS_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 90*time.Second, cfg.Redis.DistrictTTL)
	assert.Equal(t, []string{"M62", "M6 Toll"}, cfg.Maps.PartnerCorridors)
	assert.Equal(t, 1.4, cfg.Pricing.CostPerKm)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "log:\n  level: debug\npricing:\n  currency: EUR\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "freight.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "EUR", cfg.Pricing.Currency)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("FREIGHT_HTTP_REQUEST_TIMEOUT", "0s")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	if _, set := os.LookupEnv("FREIGHT_MAPS_REGION"); set {
		t.Skip("FREIGHT_MAPS_REGION already set")
	}
	t.Cleanup(func() { _ = os.Unsetenv("FREIGHT_MAPS_REGION") })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FREIGHT_MAPS_REGION=ie\n"), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ie", cfg.Maps.Region)
}
