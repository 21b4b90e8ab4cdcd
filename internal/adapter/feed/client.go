// Package feed fetches GeoJSON FeatureCollections over HTTP and classifies
// failures as network or malformed-response errors.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// maxBodyBytes caps a feed document. The weekly USGS feed is a few MB.
const maxBodyBytes = 64 << 20

var errTooLarge = errors.New("response body exceeds limit")

// FetchError is returned for every failed fetch.
type FetchError struct {
	URL        string
	Kind       domain.FailureKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FailureKind reports the classification of the failure.
func (e *FetchError) FailureKind() domain.FailureKind { return e.Kind }

// Client fetches feature collections. It makes a single attempt per call.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a feed client. A zero timeout leaves requests bounded
// only by the caller's context.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "quake-map-service",
		logger:     logger,
	}
}

// FetchFeatureCollection GETs url and decodes the body as a GeoJSON
// FeatureCollection.
func (c *Client) FetchFeatureCollection(ctx context.Context, url string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: domain.FailureNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: domain.FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			URL:        url,
			Kind:       domain.FailureNetwork,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", body),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Kind: domain.FailureNetwork, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) > maxBodyBytes {
		return nil, &FetchError{URL: url, Kind: domain.FailureMalformed, Err: errTooLarge}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: domain.FailureMalformed, Err: fmt.Errorf("decode feature collection: %w", err)}
	}
	if fc.Type != "FeatureCollection" {
		return nil, &FetchError{URL: url, Kind: domain.FailureMalformed, Err: fmt.Errorf("unexpected document type %q", fc.Type)}
	}

	c.logger.Debug("feed fetched",
		"url", url,
		"features", len(fc.Features),
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return fc, nil
}
