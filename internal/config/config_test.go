package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, defaultQuakesURL, cfg.QuakesURL)
	assert.Equal(t, defaultFaultsURL, cfg.FaultsURL)
	assert.Zero(t, cfg.FeedTimeout)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
	assert.Empty(t, cfg.LayoutFile)
	assert.Equal(t, domain.DefaultLayout(), cfg.Layout)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "quake-map-overlays", cfg.KafkaTopic)
	assert.False(t, cfg.PublishEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("QUAKES_URL", "http://feeds.local/quakes.geojson")
	t.Setenv("FAULTS_URL", "https://feeds.local/faults.json")
	t.Setenv("FEED_TIMEOUT", "20s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "overlays")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://feeds.local/quakes.geojson", cfg.QuakesURL)
	assert.Equal(t, "https://feeds.local/faults.json", cfg.FaultsURL)
	assert.Equal(t, 20*time.Second, cfg.FeedTimeout)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "overlays", cfg.KafkaTopic)
	assert.True(t, cfg.PublishEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidFeedTimeout(t *testing.T) {
	for _, v := range []string{"bad", "-1s"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("FEED_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "FEED_TIMEOUT")
		})
	}
}

func TestLoad_InvalidFeedURL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"relative quakes", "QUAKES_URL", "/quakes.geojson"},
		{"ftp faults", "FAULTS_URL", "ftp://feeds.local/faults.json"},
		{"no host", "QUAKES_URL", "https://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_InvalidMapboxCacheSize(t *testing.T) {
	t.Setenv("MAPBOX_CACHE_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_CACHE_SIZE")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_LayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zoom: 6\n"), 0o600))
	t.Setenv("MAP_LAYOUT_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.LayoutFile)
	assert.Equal(t, 6, cfg.Layout.Zoom)
}

func TestLoad_MissingLayoutFile(t *testing.T) {
	t.Setenv("MAP_LAYOUT_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAP_LAYOUT_FILE")
}
