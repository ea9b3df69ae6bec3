// Package service implements the geometry composer, the layer
// extruder and the artifact/preview projectors on top of two narrow
// capability interfaces, so any concrete geometry or mesh library can
// back them.
package service

import (
	"github.com/paulmach/orb"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// GeometryKernel is the polygon algebra the composer relies on. All
// inputs and outputs are polygons-with-holes (first ring outer, rest
// holes) in one planar frame; every operation treats a slice as a
// multipolygon.
type GeometryKernel interface {
	// Repair makes a possibly invalid polygon usable for boolean ops,
	// closing self-intersections and dropping degenerate rings. An
	// error means the feature cannot be salvaged.
	Repair(p orb.Polygon) ([]orb.Polygon, error)
	Union(polys []orb.Polygon) []orb.Polygon
	Difference(subject, clip []orb.Polygon) []orb.Polygon
	Intersection(subject, clip []orb.Polygon) []orb.Polygon
	// BufferLine thickens a centerline by dist on each side with
	// rounded joins.
	BufferLine(line orb.LineString, dist float64) []orb.Polygon
	// Shrink erodes polygons inward by dist.
	Shrink(polys []orb.Polygon, dist float64) []orb.Polygon
}

// MeshKernel turns 2-D footprints into closed triangulated prisms.
type MeshKernel interface {
	// ExtrudePolygon builds a closed prism from the footprint between
	// baseZ and baseZ+thickness.
	ExtrudePolygon(footprint orb.Polygon, baseZ, thickness float64) (*model.Solid, error)
	// IsWatertight verifies the solid is a closed 2-manifold with
	// consistent winding.
	IsWatertight(s *model.Solid) bool
}

// MeshExporter serializes a solid into one export format.
type MeshExporter interface {
	Export(s *model.Solid) ([]byte, error)
}
