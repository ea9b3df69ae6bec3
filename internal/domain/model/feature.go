package model

import "github.com/paulmach/orb"

// FeatureKind classifies a raw upstream feature.
type FeatureKind string

const (
	KindBuilding FeatureKind = "building"
	KindRoad     FeatureKind = "road"
	KindPark     FeatureKind = "park"
	KindWater    FeatureKind = "water"
)

// RoadClass groups highways by the groove width they are carved with.
type RoadClass string

const (
	RoadMajor    RoadClass = "major"
	RoadStandard RoadClass = "standard"
	RoadMinor    RoadClass = "minor"
)

// RawFeature is one upstream element reprojected into the LocalFrame
// but not yet validated or typed. Area kinds carry Ring, roads carry
// Line. Tags are kept verbatim for the composer's inference pass.
type RawFeature struct {
	OSMID int64
	Kind  FeatureKind
	Ring  orb.Ring
	Line  orb.LineString
	Tags  map[string]string
}

// RawFeatureSet is the merged output of a tiled fetch, grouped by
// kind and deduplicated by OSM id.
type RawFeatureSet struct {
	Frame     LocalFrame
	Buildings []RawFeature
	Roads     []RawFeature
	Parks     []RawFeature
	Waters    []RawFeature

	// TileAttempts records how many upstream attempts each tile took,
	// indexed by tile position.
	TileAttempts []int
}

// Building is a validated building footprint with an inferred height.
type Building struct {
	OSMID     int64
	Name      string
	Footprint []orb.Polygon
	HeightM   float64
}

// Road is a validated road centerline.
type Road struct {
	OSMID int64
	Line  orb.LineString
	Class RoadClass
}

// Park is a validated green-area footprint.
type Park struct {
	OSMID     int64
	Footprint []orb.Polygon
}

// Water is a validated water-body footprint.
type Water struct {
	OSMID     int64
	Footprint []orb.Polygon
}

// Environment owns everything acquired and derived for one request.
// It is created once by the acquirer+composer and read-only afterwards.
type Environment struct {
	Center   GeoPoint
	RadiusM  float64
	PaddingM float64
	Frame    LocalFrame

	Buildings []Building
	Roads     []Road
	Parks     []Park
	Waters    []Water

	// Warnings collects per-feature repair failures; they are never
	// fatal but are surfaced for observability.
	Warnings []string
}
