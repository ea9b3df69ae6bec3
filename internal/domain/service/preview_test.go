package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectComposedLayers(t *testing.T) {
	c := newTestComposer(testSettings())
	p := NewPreviewProjector()

	req := testRequest(95)
	req.HighlightHome = true
	_, set, err := c.Compose(req, testFeatureSet())
	require.NoError(t, err)

	resp := p.Project(set)

	assert.Equal(t, 95.0, resp.Metadata.RadiusMeters)
	assert.Equal(t, 2, resp.Metadata.BuildingCount)

	require.Len(t, resp.Previews, 4)
	assert.Equal(t, "water_layer", resp.Previews[0].Name)
	assert.Equal(t, "green_layer", resp.Previews[1].Name)
	assert.Equal(t, "building_layer", resp.Previews[2].Name)
	assert.Equal(t, "highlight_layer", resp.Previews[3].Name)

	assert.Equal(t, "#bfdbfe", resp.Previews[0].BaseColor)
	assert.Equal(t, "#16a34a", resp.Previews[1].FeatureColor)
	assert.Equal(t, "#d1d5db", resp.Previews[2].OverlayColor)
	assert.Equal(t, "#f97316", resp.Previews[3].FeatureColor)

	// The road grooves show up as the street layer overlay.
	assert.NotEmpty(t, resp.Previews[2].OverlayPaths)

	// Every emitted coordinate sits in the unit square.
	for _, layer := range resp.Previews {
		for _, path := range layer.BasePaths {
			for _, coord := range path.Outer {
				assert.GreaterOrEqual(t, coord[0], 0.0)
				assert.LessOrEqual(t, coord[0], 1.0)
				assert.GreaterOrEqual(t, coord[1], 0.0)
				assert.LessOrEqual(t, coord[1], 1.0)
			}
		}
	}
}

func TestNormalizePoint(t *testing.T) {
	radius := 0.1

	center := normalizePoint([2]float64{0, 0}, radius)
	assert.InDelta(t, 0.5, center[0], 1e-12)
	assert.InDelta(t, 0.5, center[1], 1e-12)

	// +y in print space is up, which maps to the top of the screen.
	top := normalizePoint([2]float64{0, radius}, radius)
	assert.InDelta(t, 0.0, top[1], 1e-12)

	left := normalizePoint([2]float64{-radius, 0}, radius)
	assert.InDelta(t, 0.0, left[0], 1e-12)
}
