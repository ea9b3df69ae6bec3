package service

import (
	"github.com/paulmach/orb"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Preview palette, one base/feature pair per layer.
const (
	waterBaseColor    = "#bfdbfe"
	waterFeatureColor = "#1d4ed8"
	greenBaseColor    = "#dcfce7"
	greenFeatureColor = "#16a34a"
	slabBaseColor     = "#e5e7eb"
	buildingColor     = "#111827"
	roadOverlayColor  = "#d1d5db"
	homeBaseColor     = "#fed7aa"
	homeFeatureColor  = "#f97316"
)

// PreviewProjector flattens composed layers into normalized 2-D paths
// for lightweight rendering. It never touches the mesh kernel.
type PreviewProjector struct{}

// NewPreviewProjector creates the projector.
func NewPreviewProjector() *PreviewProjector {
	return &PreviewProjector{}
}

// Project returns the preview payload for a layer set, ordered water,
// green, building, highlight.
func (p *PreviewProjector) Project(set *model.LayerSet) *model.PreviewResponse {
	radius := set.PrintRadiusM

	previews := []model.PreviewLayer{
		{
			Name:         set.Water.Name,
			ThicknessM:   set.Water.ThicknessM,
			Description:  set.Water.Description,
			BaseColor:    waterBaseColor,
			FeatureColor: waterFeatureColor,
			BasePaths:    toPaths(set.Water.Base, radius),
			FeaturePaths: toPaths(raisedPolys(set.Water), radius),
		},
		{
			Name:         set.Green.Name,
			ThicknessM:   set.Green.ThicknessM,
			Description:  set.Green.Description,
			BaseColor:    greenBaseColor,
			FeatureColor: greenFeatureColor,
			BasePaths:    toPaths(set.Green.Base, radius),
			FeaturePaths: toPaths(raisedPolys(set.Green), radius),
		},
		{
			Name:         set.Building.Name,
			ThicknessM:   set.Building.ThicknessM,
			Description:  set.Building.Description,
			BaseColor:    slabBaseColor,
			FeatureColor: buildingColor,
			OverlayColor: roadOverlayColor,
			BasePaths:    toPaths(set.Building.Base, radius),
			FeaturePaths: toPaths(raisedPolys(set.Building), radius),
			OverlayPaths: toPaths(set.Building.Grooves, radius),
		},
	}

	if set.Highlight != nil {
		previews = append(previews, model.PreviewLayer{
			Name:         set.Highlight.Name,
			ThicknessM:   set.Highlight.ThicknessM,
			Description:  set.Highlight.Description,
			BaseColor:    homeBaseColor,
			FeatureColor: homeFeatureColor,
			BasePaths:    toPaths(set.Highlight.Base, radius),
		})
	}

	return &model.PreviewResponse{
		Metadata: model.PreviewMetadata{
			RadiusMeters:  set.RadiusM,
			BuildingCount: set.BuildingCount,
		},
		Previews: previews,
	}
}

func raisedPolys(layer *model.Layer) []orb.Polygon {
	var out []orb.Polygon
	for _, region := range layer.Raised {
		out = append(out, region.Polygons...)
	}
	return out
}

// toPaths projects print-space footprints into the normalized
// [0,1]x[0,1] preview square, y flipped for screen coordinates.
func toPaths(polys []orb.Polygon, radius float64) []model.PolygonPath {
	paths := make([]model.PolygonPath, 0, len(polys))
	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}
		path := model.PolygonPath{Outer: toCoords(poly[0], radius), Holes: [][]model.Coord{}}
		for _, hole := range poly[1:] {
			path.Holes = append(path.Holes, toCoords(hole, radius))
		}
		paths = append(paths, path)
	}
	return paths
}

func toCoords(ring orb.Ring, radius float64) []model.Coord {
	coords := make([]model.Coord, len(ring))
	for i, pt := range ring {
		coords[i] = normalizePoint(pt, radius)
	}
	return coords
}

func normalizePoint(pt orb.Point, radius float64) model.Coord {
	if radius == 0 {
		return model.Coord{0, 0}
	}
	return model.Coord{
		(pt[0] + radius) / (2 * radius),
		1 - (pt[1]+radius)/(2*radius),
	}
}
