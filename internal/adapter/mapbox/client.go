package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// TileSize is the raster tile edge in pixels requested from the styles API.
const TileSize = 256

// maxZoom is the deepest zoom level the styles API serves.
const maxZoom = 22

// ErrInvalidTile is returned for tile coordinates outside the zoom's grid.
var ErrInvalidTile = errors.New("invalid tile coordinates")

// Tile is one raster tile.
type Tile struct {
	Data        []byte
	ContentType string
}

// APIError is a non-200 answer from Mapbox.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mapbox API error: status %d: %s", e.StatusCode, e.Body)
}

// Client fetches raster tiles from the Mapbox Static Tiles API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox tiles client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		metrics: metrics,
		logger:  logger,
	}
}

// FetchTile returns the tile at z/x/y for a style such as "mapbox/satellite-v9".
func (c *Client) FetchTile(ctx context.Context, styleID string, z, x, y int) (Tile, error) {
	if err := validateTile(z, x, y); err != nil {
		return Tile{}, err
	}

	u := fmt.Sprintf("%s/%s/tiles/%d/%d/%d/%d", c.baseURL, styleID, TileSize, z, x, y)
	params := url.Values{"access_token": {c.token}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return Tile{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.TileAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return Tile{}, fmt.Errorf("tile request %s %d/%d/%d: %w", styleID, z, x, y, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Tile{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Tile{}, fmt.Errorf("read tile: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return Tile{Data: data, ContentType: contentType}, nil
}

func validateTile(z, x, y int) error {
	if z < 0 || z > maxZoom {
		return fmt.Errorf("%w: zoom %d", ErrInvalidTile, z)
	}
	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidTile, z, x, y)
	}
	return nil
}
