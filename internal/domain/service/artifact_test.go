package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/mesh"
)

func emptyLayerSet() *model.LayerSet {
	return &model.LayerSet{
		Water:    &model.Layer{Name: model.LayerWater},
		Green:    &model.Layer{Name: model.LayerGreen},
		Building: &model.Layer{Name: model.LayerBuilding},
	}
}

func emptySolids() []*model.Solid {
	return []*model.Solid{
		model.NewSolid(model.LayerWater),
		model.NewSolid(model.LayerGreen),
		model.NewSolid(model.LayerBuilding),
	}
}

func TestPackage(t *testing.T) {
	cfg := testSettings()
	c := newTestComposer(cfg)
	e := NewExtruder(cfg, mesh.NewKernel(), zap.NewNop())
	p := NewPackager(map[string]MeshExporter{"stl": mesh.NewSTLExporter()})

	req := testRequest(95)
	env, set, err := c.Compose(req, testFeatureSet())
	require.NoError(t, err)
	solids, err := e.ExtrudeAll(set)
	require.NoError(t, err)

	artifact, err := p.Package(req, env, set, solids)
	require.NoError(t, err)

	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, req.Center(), artifact.Metadata.Origin)
	assert.Equal(t, 95.0, artifact.Metadata.RadiusMeters)
	assert.Equal(t, 2, artifact.Metadata.BuildingCount)
	assert.InDelta(t, set.ScaleRatio, artifact.Metadata.ScaleRatio, 1e-15)
	assert.False(t, artifact.Metadata.Highlighted)

	require.Len(t, artifact.Metadata.Layers, 3)
	require.Len(t, artifact.Layers, 3)
	for i, layer := range set.Layers() {
		assert.Equal(t, layer.Name, artifact.Metadata.Layers[i].Name)
		assert.Equal(t, layer.ThicknessM, artifact.Metadata.Layers[i].ThicknessM)
		assert.NotEmpty(t, artifact.Metadata.Layers[i].Description)
		assert.Equal(t, "stl", artifact.Layers[i].Format)
		assert.Greater(t, len(artifact.Layers[i].Data), 84)
	}
}

func TestPackageBuildingSummaries(t *testing.T) {
	cfg := testSettings()
	c := newTestComposer(cfg)
	e := NewExtruder(cfg, mesh.NewKernel(), zap.NewNop())
	p := NewPackager(map[string]MeshExporter{"stl": mesh.NewSTLExporter()})

	req := testRequest(95)
	env, set, err := c.Compose(req, testFeatureSet())
	require.NoError(t, err)
	solids, err := e.ExtrudeAll(set)
	require.NoError(t, err)

	artifact, err := p.Package(req, env, set, solids)
	require.NoError(t, err)

	require.Len(t, artifact.Metadata.Buildings, 2)

	home := artifact.Metadata.Buildings[0]
	assert.Equal(t, int64(1), home.OSMID)
	assert.Equal(t, "home", home.Name)
	assert.Equal(t, 12.0, home.HeightM)
	assert.InDelta(t, 100.0, home.FootprintAreaM2, 1e-6)

	other := artifact.Metadata.Buildings[1]
	assert.Equal(t, int64(2), other.OSMID)
	assert.Empty(t, other.Name)
	assert.Equal(t, 12.0, other.HeightM)
	assert.InDelta(t, 144.0, other.FootprintAreaM2, 1e-6)
}

func TestPackageDefaultsToSTL(t *testing.T) {
	p := NewPackager(map[string]MeshExporter{"stl": mesh.NewSTLExporter()})

	artifact, err := p.Package(&model.ModelRequest{}, &model.Environment{}, emptyLayerSet(), emptySolids())
	require.NoError(t, err)
	require.Len(t, artifact.Layers, 3)
	assert.Equal(t, "stl", artifact.Layers[0].Format)
	assert.Empty(t, artifact.Metadata.Buildings)
}

func TestPackageRejectsMismatchedSolids(t *testing.T) {
	p := NewPackager(map[string]MeshExporter{"stl": mesh.NewSTLExporter()})

	_, err := p.Package(&model.ModelRequest{}, &model.Environment{}, emptyLayerSet(),
		[]*model.Solid{model.NewSolid(model.LayerWater)})
	assert.Error(t, err)
}

func TestPackageUnknownFormat(t *testing.T) {
	p := NewPackager(map[string]MeshExporter{"stl": mesh.NewSTLExporter()})

	_, err := p.Package(&model.ModelRequest{Formats: []string{"obj"}},
		&model.Environment{}, emptyLayerSet(), emptySolids())
	assert.Error(t, err)
}
