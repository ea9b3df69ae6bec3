package model

import "github.com/paulmach/orb"

// Fixed artifact layer names.
const (
	LayerWater     = "water_layer"
	LayerGreen     = "green_layer"
	LayerBuilding  = "building_layer"
	LayerHighlight = "highlight_layer"
)

// RaisedRegion is a set of footprints extruded on top of a layer's
// slab by HeightM.
type RaisedRegion struct {
	Polygons []orb.Polygon
	HeightM  float64
}

// Layer is one named 2-D composition ready for extrusion. All
// geometry is already in print-space meters; the first ring of each
// orb.Polygon is the outer boundary, the rest are holes.
type Layer struct {
	Name        string
	Description string

	// ThicknessM is the slab thickness reported in metadata.
	ThicknessM float64
	// SlabThicknessM is the actual extruded slab height. For the
	// highlight layer this is the peg depth, not the reported
	// thickness.
	SlabThicknessM float64
	// GrooveDepthM carves the Grooves footprints into the slab top as
	// negative relief (never a through-hole).
	GrooveDepthM float64

	Base []orb.Polygon
	// GroovePlate is Base minus Grooves, extruded as the top plate
	// when GrooveDepthM > 0.
	GroovePlate []orb.Polygon
	// Grooves is the carved (road) footprint, kept for previews.
	Grooves []orb.Polygon

	Raised []RaisedRegion
}

// LayerSet is the composer's output: the four named layers plus the
// shared scaling facts every consumer needs.
type LayerSet struct {
	Water     *Layer
	Green     *Layer
	Building  *Layer
	Highlight *Layer // nil unless highlight mode selected a target

	// ScaleRatio converts world meters to print meters.
	ScaleRatio float64
	// PrintRadiusM is the scaled base-disk radius.
	PrintRadiusM  float64
	RadiusM       float64
	BuildingCount int
}

// Layers returns the produced layers in the fixed output order.
func (ls *LayerSet) Layers() []*Layer {
	out := []*Layer{ls.Water, ls.Green, ls.Building}
	if ls.Highlight != nil {
		out = append(out, ls.Highlight)
	}
	return out
}
