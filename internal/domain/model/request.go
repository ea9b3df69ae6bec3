package model

// ModelRequest describes one generation or preview request. Formats
// defaults to {"stl"} when empty.
type ModelRequest struct {
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	RadiusMeters  float64  `json:"radius_meters"`
	HighlightHome bool     `json:"highlight_home"`
	Formats       []string `json:"formats"`
}

// Center returns the request's center point.
func (r *ModelRequest) Center() GeoPoint {
	return GeoPoint{Latitude: r.Latitude, Longitude: r.Longitude}
}
