package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	calls int
	tile  Tile
	err   error
}

func (m *countingSource) FetchTile(_ context.Context, _ string, _, _, _ int) (Tile, error) {
	m.calls++
	return m.tile, m.err
}

func pngTile() Tile {
	return Tile{Data: []byte("\x89PNG fake"), ContentType: "image/png"}
}

// --- CachedTiles tests ---

func TestCachedTiles_CacheHit(t *testing.T) {
	inner := &countingSource{tile: pngTile()}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedTiles(inner, 10, metrics)

	t1, err := cached.FetchTile(context.Background(), "mapbox/satellite-v9", 4, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, "image/png", t1.ContentType)

	t2, err := cached.FetchTile(context.Background(), "mapbox/satellite-v9", 4, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TileCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TileCache.WithLabelValues("miss")))
}

func TestCachedTiles_DifferentStylesMiss(t *testing.T) {
	inner := &countingSource{tile: pngTile()}
	cached := NewCachedTiles(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.FetchTile(context.Background(), "mapbox/satellite-v9", 4, 2, 6)
	_, _ = cached.FetchTile(context.Background(), "mapbox/light-v10", 4, 2, 6)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedTiles_StylesShareCapacity(t *testing.T) {
	inner := &countingSource{tile: pngTile()}
	cached := NewCachedTiles(inner, 2, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.FetchTile(ctx, "mapbox/satellite-v9", 4, 2, 6)
	_, _ = cached.FetchTile(ctx, "mapbox/light-v10", 4, 2, 6)
	_, _ = cached.FetchTile(ctx, "mapbox/outdoors-v11", 4, 2, 6)
	assert.Equal(t, 2, cached.cache.size())

	// The oldest style's tile was evicted by the other styles.
	_, _ = cached.FetchTile(ctx, "mapbox/satellite-v9", 4, 2, 6)
	assert.Equal(t, 4, inner.calls)
}

func TestCachedTiles_ErrorsAndEmptyTilesNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	cached := NewCachedTiles(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.FetchTile(context.Background(), "mapbox/outdoors-v11", 1, 0, 0)
	require.Error(t, err)

	inner.err = nil
	inner.tile = Tile{}
	_, err = cached.FetchTile(context.Background(), "mapbox/outdoors-v11", 1, 0, 0)
	require.NoError(t, err)

	_, _ = cached.FetchTile(context.Background(), "mapbox/outdoors-v11", 1, 0, 0)
	assert.Equal(t, 3, inner.calls)
	assert.Zero(t, cached.cache.size())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[string](3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")

	// Access "a" to promote it
	c.get("a")

	// Insert "c", should evict "b" (LRU), not "a"
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.size())
}
