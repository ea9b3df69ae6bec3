package model

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocalFrame is the planar coordinate system tangent at a request's
// center: Web-Mercator meters translated so the center is the origin.
// All downstream geometry for one request is expressed in it.
type LocalFrame struct {
	OriginX float64
	OriginY float64
}

// NewLocalFrame creates the frame anchored at the given center point.
func NewLocalFrame(center GeoPoint) LocalFrame {
	merc := project.WGS84.ToMercator(orb.Point{center.Longitude, center.Latitude})
	return LocalFrame{OriginX: merc[0], OriginY: merc[1]}
}

// ToLocal converts a WGS84 point into frame coordinates.
func (f LocalFrame) ToLocal(lon, lat float64) orb.Point {
	merc := project.WGS84.ToMercator(orb.Point{lon, lat})
	return orb.Point{merc[0] - f.OriginX, merc[1] - f.OriginY}
}

// ToWGS84 converts frame coordinates back to a WGS84 point.
func (f LocalFrame) ToWGS84(p orb.Point) orb.Point {
	return project.Mercator.ToWGS84(orb.Point{p[0] + f.OriginX, p[1] + f.OriginY})
}
