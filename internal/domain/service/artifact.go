package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb/planar"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Packager serializes extruded solids into download-ready blobs, one
// per layer per requested format.
type Packager struct {
	exporters map[string]MeshExporter
}

// NewPackager creates a packager with one exporter per format name.
func NewPackager(exporters map[string]MeshExporter) *Packager {
	return &Packager{exporters: exporters}
}

// Package bundles the solids, layer metadata and per-building
// summaries into a ModelArtifact. Solids must be in the layer set's
// output order.
func (p *Packager) Package(req *model.ModelRequest, env *model.Environment, set *model.LayerSet, solids []*model.Solid) (*model.ModelArtifact, error) {
	layers := set.Layers()
	if len(solids) != len(layers) {
		return nil, fmt.Errorf("layer/solid count mismatch: %d layers, %d solids", len(layers), len(solids))
	}

	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{"stl"}
	}

	info := make([]model.LayerInfo, 0, len(layers))
	blobs := make([]model.LayerBlob, 0, len(layers)*len(formats))
	for i, layer := range layers {
		info = append(info, model.LayerInfo{
			Name:        layer.Name,
			ThicknessM:  layer.ThicknessM,
			Description: layer.Description,
		})
		for _, format := range formats {
			exporter, ok := p.exporters[format]
			if !ok {
				return nil, fmt.Errorf("no exporter registered for format %q", format)
			}
			data, err := exporter.Export(solids[i])
			if err != nil {
				return nil, fmt.Errorf("export %s as %s: %w", layer.Name, format, err)
			}
			blobs = append(blobs, model.LayerBlob{
				Name:   layer.Name,
				Format: format,
				Data:   data,
			})
		}
	}

	return &model.ModelArtifact{
		ID: uuid.NewString(),
		Metadata: model.ModelMetadata{
			Origin:        env.Center,
			RadiusMeters:  set.RadiusM,
			BuildingCount: set.BuildingCount,
			ScaleRatio:    set.ScaleRatio,
			Highlighted:   set.Highlight != nil,
			Layers:        info,
			Buildings:     buildingSummaries(env.Buildings),
		},
		Layers: blobs,
	}, nil
}

func buildingSummaries(buildings []model.Building) []model.BuildingSummary {
	summaries := make([]model.BuildingSummary, 0, len(buildings))
	for _, b := range buildings {
		var area float64
		for _, poly := range b.Footprint {
			area += math.Abs(planar.Area(poly))
		}
		summaries = append(summaries, model.BuildingSummary{
			OSMID:           b.OSMID,
			Name:            b.Name,
			HeightM:         b.HeightM,
			FootprintAreaM2: area,
		})
	}
	return summaries
}
