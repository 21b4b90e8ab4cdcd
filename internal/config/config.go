package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultQuakesURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"
	defaultFaultsURL = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feed sources. A zero FeedTimeout means requests are bounded only by
	// the service lifetime.
	QuakesURL   string
	FaultsURL   string
	FeedTimeout time.Duration

	// Mapbox tile proxy configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Map composition; Layout is read from LayoutFile when set.
	LayoutFile string
	Layout     domain.Layout

	// Optional overlay event publishing.
	KafkaBrokers   []string
	KafkaTopic     string
	PublishEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_TIMEOUT", "0s"))
	if err != nil || feedTimeout < 0 {
		return nil, errors.New("invalid FEED_TIMEOUT")
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxCacheSize, err := parseMapboxCacheSize()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		QuakesURL:   sharedcfg.EnvOrDefault("QUAKES_URL", defaultQuakesURL),
		FaultsURL:   sharedcfg.EnvOrDefault("FAULTS_URL", defaultFaultsURL),
		FeedTimeout: feedTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,

		LayoutFile: os.Getenv("MAP_LAYOUT_FILE"),
		Layout:     domain.DefaultLayout(),

		KafkaBrokers:   brokers,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "quake-map-overlays"),
		PublishEnabled: len(brokers) > 0,
	}

	if err := validateFeedURL("QUAKES_URL", cfg.QuakesURL); err != nil {
		return nil, err
	}
	if err := validateFeedURL("FAULTS_URL", cfg.FaultsURL); err != nil {
		return nil, err
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.PublishEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	if cfg.LayoutFile != "" {
		layout, err := LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("MAP_LAYOUT_FILE: %w", err)
		}
		cfg.Layout = layout
	}

	return cfg, nil
}

func validateFeedURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s: must be an absolute http(s) URL", name)
	}
	return nil
}

func parseMapboxCacheSize() (int, error) {
	s := os.Getenv("MAPBOX_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid MAPBOX_CACHE_SIZE")
	}
	return n, nil
}
