package usecase

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/service"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/geometry"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/mesh"
)

type fakeSource struct {
	calls int
	set   *model.RawFeatureSet
	err   error
}

func (f *fakeSource) Fetch(ctx context.Context, center model.GeoPoint, radiusM, paddingM float64) (*model.RawFeatureSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		MinRadiusM:           50,
		MaxRadiusM:           750,
		MaxBuildings:         250,
		BaseThicknessM:       0.0075,
		GreenThicknessM:      0.0075,
		BuildingThicknessM:   0.0075,
		RoadGrooveDepthM:     0.0015,
		HighlightPegDepthM:   0.0045,
		TargetPrintDiameterM: 0.2,
		BasePaddingM:         5.0,
		BuildingPaddingM:     2.5,
		RoadWidthM:           4.0,
		ParkShrinkM:          1.0,
		DefaultHeightM:       10,
		LevelHeightM:         3,
		MinHeightM:           3,
		HighlightEnabled:     true,
		AllowedFormats:       []string{"stl"},
	}
}

func closedSquare(cx, cy, size float64) orb.Ring {
	h := size / 2
	return orb.Ring{
		{cx - h, cy - h},
		{cx + h, cy - h},
		{cx + h, cy + h},
		{cx - h, cy + h},
		{cx - h, cy - h},
	}
}

func fixtureSet() *model.RawFeatureSet {
	return &model.RawFeatureSet{
		Buildings: []model.RawFeature{
			{OSMID: 1, Kind: model.KindBuilding, Ring: closedSquare(0, 0, 10),
				Tags: map[string]string{"building": "yes", "height": "12"}},
			{OSMID: 2, Kind: model.KindBuilding, Ring: closedSquare(30, 30, 8),
				Tags: map[string]string{"building": "yes"}},
		},
		Roads: []model.RawFeature{
			{OSMID: 30, Kind: model.KindRoad, Line: orb.LineString{{-40, 15}, {40, 15}},
				Tags: map[string]string{"highway": "residential"}},
		},
	}
}

func newTestUseCase(cfg *config.Settings, source *fakeSource) ModelUseCase {
	log := zap.NewNop()
	return NewModelUseCase(
		cfg,
		source,
		service.NewComposer(cfg, geometry.NewKernel(), log),
		service.NewExtruder(cfg, mesh.NewKernel(), log),
		service.NewPackager(map[string]service.MeshExporter{"stl": mesh.NewSTLExporter()}),
		service.NewPreviewProjector(),
		log,
	)
}

func validRequest(radius float64) *model.ModelRequest {
	return &model.ModelRequest{Latitude: 35.6812, Longitude: 139.7671, RadiusMeters: radius}
}

func TestGenerateRejectsInvalidRequests(t *testing.T) {
	cfg := testSettings()

	tests := []struct {
		name string
		req  *model.ModelRequest
	}{
		{"radius below minimum", &model.ModelRequest{Latitude: 35, Longitude: 139, RadiusMeters: 49}},
		{"radius above maximum", &model.ModelRequest{Latitude: 35, Longitude: 139, RadiusMeters: 751}},
		{"latitude out of range", &model.ModelRequest{Latitude: 91, Longitude: 139, RadiusMeters: 100}},
		{"longitude out of range", &model.ModelRequest{Latitude: 35, Longitude: -181, RadiusMeters: 100}},
		{"unsupported format", &model.ModelRequest{Latitude: 35, Longitude: 139, RadiusMeters: 100, Formats: []string{"obj"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{set: fixtureSet()}
			u := newTestUseCase(cfg, source)

			_, err := u.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, model.ErrInvalidRequest)
			assert.Zero(t, source.calls, "no upstream traffic for invalid input")
		})
	}
}

func TestGenerateAcceptsBoundaryRadii(t *testing.T) {
	cfg := testSettings()

	for _, radius := range []float64{50, 750} {
		source := &fakeSource{set: fixtureSet()}
		u := newTestUseCase(cfg, source)

		artifact, err := u.Generate(context.Background(), validRequest(radius))
		require.NoError(t, err, "radius %v", radius)
		assert.Equal(t, 1, source.calls)
		assert.Equal(t, radius, artifact.Metadata.RadiusMeters)
	}
}

func TestGenerateProducesArtifact(t *testing.T) {
	source := &fakeSource{set: fixtureSet()}
	u := newTestUseCase(testSettings(), source)

	artifact, err := u.Generate(context.Background(), validRequest(100))
	require.NoError(t, err)

	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, model.GeoPoint{Latitude: 35.6812, Longitude: 139.7671}, artifact.Metadata.Origin)
	assert.Equal(t, 2, artifact.Metadata.BuildingCount)
	assert.InDelta(t, 0.2/210.0, artifact.Metadata.ScaleRatio, 1e-12)
	assert.False(t, artifact.Metadata.Highlighted)

	require.Len(t, artifact.Metadata.Buildings, 2)
	assert.Equal(t, int64(1), artifact.Metadata.Buildings[0].OSMID)
	assert.Equal(t, 12.0, artifact.Metadata.Buildings[0].HeightM)
	assert.InDelta(t, 100.0, artifact.Metadata.Buildings[0].FootprintAreaM2, 1e-6)

	require.Len(t, artifact.Metadata.Layers, 3)
	require.Len(t, artifact.Layers, 3)
	names := []string{model.LayerWater, model.LayerGreen, model.LayerBuilding}
	for i, blob := range artifact.Layers {
		assert.Equal(t, names[i], blob.Name)
		assert.Equal(t, "stl", blob.Format)
		assert.Greater(t, len(blob.Data), 84)
	}
}

// reorderedFixture rebuilds the fixture the way a different tile
// completion order would reach the merge: features inserted in
// reverse, deduplicated by id, then sorted the way the acquirer
// guarantees.
func reorderedFixture() *model.RawFeatureSet {
	base := fixtureSet()
	reorder := func(in []model.RawFeature) []model.RawFeature {
		byID := make(map[int64]model.RawFeature, len(in))
		for i := len(in) - 1; i >= 0; i-- {
			byID[in[i].OSMID] = in[i]
		}
		out := make([]model.RawFeature, 0, len(byID))
		for _, f := range byID {
			out = append(out, f)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].OSMID < out[j].OSMID })
		return out
	}
	base.Buildings = reorder(base.Buildings)
	base.Roads = reorder(base.Roads)
	return base
}

func stlTriangleCount(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[80:84])
}

func TestGenerateDeterministicAcrossFeatureOrder(t *testing.T) {
	cfg := testSettings()

	first, err := newTestUseCase(cfg, &fakeSource{set: fixtureSet()}).
		Generate(context.Background(), validRequest(100))
	require.NoError(t, err)

	second, err := newTestUseCase(cfg, &fakeSource{set: reorderedFixture()}).
		Generate(context.Background(), validRequest(100))
	require.NoError(t, err)

	require.Len(t, second.Layers, len(first.Layers))
	for i := range first.Layers {
		assert.Equal(t, first.Layers[i].Name, second.Layers[i].Name)
		assert.Equal(t, stlTriangleCount(first.Layers[i].Data), stlTriangleCount(second.Layers[i].Data),
			"layer %s triangle count differs", first.Layers[i].Name)
		assert.True(t, bytes.Equal(first.Layers[i].Data, second.Layers[i].Data),
			"layer %s bytes differ", first.Layers[i].Name)
	}
}

func TestGenerateWithHighlight(t *testing.T) {
	source := &fakeSource{set: fixtureSet()}
	u := newTestUseCase(testSettings(), source)

	req := validRequest(100)
	req.HighlightHome = true
	artifact, err := u.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, artifact.Metadata.Highlighted)
	require.Len(t, artifact.Layers, 4)
	assert.Equal(t, model.LayerHighlight, artifact.Layers[3].Name)
}

func TestGeneratePropagatesUpstreamFailure(t *testing.T) {
	source := &fakeSource{err: model.ErrUpstreamUnavailable}
	u := newTestUseCase(testSettings(), source)

	_, err := u.Generate(context.Background(), validRequest(100))
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
}

func TestPreview(t *testing.T) {
	source := &fakeSource{set: fixtureSet()}
	u := newTestUseCase(testSettings(), source)

	resp, err := u.Preview(context.Background(), validRequest(100))
	require.NoError(t, err)

	assert.Equal(t, 100.0, resp.Metadata.RadiusMeters)
	assert.Equal(t, 2, resp.Metadata.BuildingCount)
	require.Len(t, resp.Previews, 3)
	assert.Equal(t, model.LayerWater, resp.Previews[0].Name)
}
