package model

// LayerInfo describes one layer in artifact metadata.
type LayerInfo struct {
	Name        string  `json:"name"`
	ThicknessM  float64 `json:"thickness_m"`
	Description string  `json:"description"`
}

// BuildingSummary describes one composed building in artifact
// metadata. FootprintAreaM2 is the clipped footprint area in world
// square meters.
type BuildingSummary struct {
	OSMID           int64   `json:"osm_id"`
	Name            string  `json:"name,omitempty"`
	HeightM         float64 `json:"height_m"`
	FootprintAreaM2 float64 `json:"footprint_area_m2"`
}

// ModelMetadata is the metadata record bundled with every artifact.
type ModelMetadata struct {
	Origin        GeoPoint          `json:"origin"`
	RadiusMeters  float64           `json:"radius_meters"`
	BuildingCount int               `json:"building_count"`
	ScaleRatio    float64           `json:"scale_ratio"`
	Highlighted   bool              `json:"highlighted"`
	Layers        []LayerInfo       `json:"layers"`
	Buildings     []BuildingSummary `json:"buildings"`
}

// LayerBlob is one serialized layer solid. Data marshals to base64 in
// JSON responses.
type LayerBlob struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Data   []byte `json:"data"`
}

// ModelArtifact is the export set for one request. Immutable once
// produced; ownership passes to the caller.
type ModelArtifact struct {
	ID       string        `json:"id"`
	Metadata ModelMetadata `json:"metadata"`
	Layers   []LayerBlob   `json:"layers"`
}
