package model

// Coord is a normalized (x, y) pair in [0,1]².
type Coord [2]float64

// PolygonPath is one footprint projected into preview space.
type PolygonPath struct {
	Outer []Coord   `json:"outer"`
	Holes [][]Coord `json:"holes"`
}

// PreviewLayer is the lightweight 2-D rendering payload for one
// layer; it is derived from the same composition as the solids but is
// never extruded.
type PreviewLayer struct {
	Name         string        `json:"name"`
	ThicknessM   float64       `json:"thickness_m"`
	Description  string        `json:"description"`
	BaseColor    string        `json:"base_color"`
	FeatureColor string        `json:"feature_color"`
	OverlayColor string        `json:"overlay_color,omitempty"`
	BasePaths    []PolygonPath `json:"base_paths"`
	FeaturePaths []PolygonPath `json:"feature_paths"`
	OverlayPaths []PolygonPath `json:"overlay_paths"`
}

// PreviewMetadata accompanies a preview response.
type PreviewMetadata struct {
	RadiusMeters  float64 `json:"radius_meters"`
	BuildingCount int     `json:"building_count"`
}

// PreviewResponse is the full preview payload, layers ordered water,
// green, building, highlight.
type PreviewResponse struct {
	Metadata PreviewMetadata `json:"metadata"`
	Previews []PreviewLayer  `json:"previews"`
}
