package domain

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeClock(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })
	return now
}

func testShape() Shape {
	return Shape{ID: "q1", Kind: ShapeCircleMarker, Geometry: orb.Point{1, 2}, Style: QuakeStyle(2)}
}

func TestOverlayGroup_Populate(t *testing.T) {
	now := freezeClock(t)
	g := NewOverlayGroup(OverlayEarthquakes, "Earthquakes", true)
	assert.Equal(t, OverlayPending, g.Status())

	require.NoError(t, g.Populate([]Shape{testShape()}))

	snap := g.Snapshot()
	assert.Equal(t, OverlayPopulated, snap.Status)
	assert.Equal(t, 1, snap.FeatureCount)
	assert.True(t, snap.Active)
	require.NotNil(t, snap.CompletedAt)
	assert.Equal(t, now, *snap.CompletedAt)

	select {
	case <-g.Done():
	default:
		t.Fatal("done channel should be closed after populate")
	}
}

func TestOverlayGroup_PopulateOnce(t *testing.T) {
	g := NewOverlayGroup(OverlayFaultLines, "Fault Lines", false)
	require.NoError(t, g.Populate(nil))

	assert.ErrorIs(t, g.Populate([]Shape{testShape()}), ErrAlreadyPopulated)
	assert.ErrorIs(t, g.MarkDegraded(FailureNetwork, errors.New("late")), ErrAlreadyPopulated)
	assert.Empty(t, g.Shapes())
}

func TestOverlayGroup_MarkDegraded(t *testing.T) {
	g := NewOverlayGroup(OverlayFaultLines, "Fault Lines", false)

	require.NoError(t, g.MarkDegraded(FailureMalformed, errors.New("unexpected EOF")))

	snap := g.Snapshot()
	assert.Equal(t, OverlayDegraded, snap.Status)
	assert.Equal(t, FailureMalformed, snap.FailureKind)
	assert.Equal(t, "unexpected EOF", snap.Error)
	assert.False(t, snap.Active)
	assert.Zero(t, snap.FeatureCount)
	assert.ErrorIs(t, g.Populate([]Shape{testShape()}), ErrAlreadyPopulated)
}

func TestOverlayGroup_Attach(t *testing.T) {
	g := NewOverlayGroup(OverlayFaultLines, "Fault Lines", false)
	g.Attach()
	assert.True(t, g.Snapshot().Active)
}

func TestOverlayGroup_ShapesIsCopy(t *testing.T) {
	g := NewOverlayGroup(OverlayEarthquakes, "Earthquakes", true)
	require.NoError(t, g.Populate([]Shape{testShape()}))

	shapes := g.Shapes()
	shapes[0].ID = "mutated"
	assert.Equal(t, "q1", g.Shapes()[0].ID)
}

func TestOverlayGroup_FeatureCollection(t *testing.T) {
	g := NewOverlayGroup(OverlayEarthquakes, "Earthquakes", true)
	s := testShape()
	s.Popup = "<h3>x</h3>"
	require.NoError(t, g.Populate([]Shape{s}))

	data, err := json.Marshal(g.FeatureCollection())
	require.NoError(t, err)

	var doc struct {
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Features, 1)
	assert.Equal(t, "q1", doc.Features[0].ID)
	assert.Equal(t, "circle_marker", doc.Features[0].Properties["kind"])
	assert.Equal(t, "<h3>x</h3>", doc.Features[0].Properties["popup"])
	style, ok := doc.Features[0].Properties["style"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "lime", style["fillColor"])
	assert.Equal(t, 6.0, style["radius"])
}

func TestOverlayGroup_EmptyFeatureCollection(t *testing.T) {
	g := NewOverlayGroup(OverlayFaultLines, "Fault Lines", false)

	data, err := json.Marshal(g.FeatureCollection())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestOverlayGroup_ConcurrentReaders(t *testing.T) {
	g := NewOverlayGroup(OverlayEarthquakes, "Earthquakes", true)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Snapshot()
			_ = g.Shapes()
		}()
	}
	require.NoError(t, g.Populate([]Shape{testShape()}))
	wg.Wait()
	assert.Len(t, g.Shapes(), 1)
}
