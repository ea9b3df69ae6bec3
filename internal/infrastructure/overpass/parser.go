package overpass

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Simplification tolerances in frame meters. Buildings keep more
// detail than the broad area features.
const (
	buildingToleranceM = 0.05
	areaToleranceM     = 0.25
)

// parseTile classifies the ways of one tile payload into raw
// features, reprojecting node coordinates into the request frame.
func parseTile(payload *Payload, frame model.LocalFrame) []model.RawFeature {
	nodes := make(map[int64]orb.Point, len(payload.Elements))
	for _, el := range payload.Elements {
		if el.Type == "node" {
			nodes[el.ID] = frame.ToLocal(el.Lon, el.Lat)
		}
	}

	var features []model.RawFeature
	for _, el := range payload.Elements {
		if el.Type != "way" || len(el.Tags) == 0 {
			continue
		}
		coords := make([]orb.Point, 0, len(el.Nodes))
		for _, id := range el.Nodes {
			if p, ok := nodes[id]; ok {
				coords = append(coords, p)
			}
		}

		switch {
		case el.Tags["building"] != "":
			if ring := areaRing(coords, buildingToleranceM); ring != nil {
				features = append(features, model.RawFeature{
					OSMID: el.ID, Kind: model.KindBuilding, Ring: ring, Tags: el.Tags,
				})
			}
		case isPark(el.Tags):
			if ring := areaRing(coords, areaToleranceM); ring != nil {
				features = append(features, model.RawFeature{
					OSMID: el.ID, Kind: model.KindPark, Ring: ring, Tags: el.Tags,
				})
			}
		case isWater(el.Tags):
			if ring := areaRing(coords, areaToleranceM); ring != nil {
				features = append(features, model.RawFeature{
					OSMID: el.ID, Kind: model.KindWater, Ring: ring, Tags: el.Tags,
				})
			}
		case el.Tags["highway"] != "":
			if line := centerline(coords, areaToleranceM); line != nil {
				features = append(features, model.RawFeature{
					OSMID: el.ID, Kind: model.KindRoad, Line: line, Tags: el.Tags,
				})
			}
		}
	}
	return features
}

// areaRing closes and simplifies a way outline; nil when degenerate.
func areaRing(coords []orb.Point, tolerance float64) orb.Ring {
	if len(coords) < 3 {
		return nil
	}
	ring := make(orb.Ring, len(coords))
	copy(ring, coords)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ring.Clone()).(orb.Ring)
	if !ok || len(simplified) < 4 {
		return ring
	}
	return simplified
}

// centerline simplifies a road way; nil when it has no length.
func centerline(coords []orb.Point, tolerance float64) orb.LineString {
	if len(coords) < 2 {
		return nil
	}
	line := make(orb.LineString, len(coords))
	copy(line, coords)
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(line.Clone()).(orb.LineString)
	if ok && len(simplified) >= 2 {
		line = simplified
	}
	degenerate := true
	for i := 1; i < len(line); i++ {
		if line[i] != line[0] {
			degenerate = false
			break
		}
	}
	if degenerate {
		return nil
	}
	return line
}

func isPark(tags map[string]string) bool {
	if tags["leisure"] == "park" {
		return true
	}
	switch tags["landuse"] {
	case "grass", "recreation_ground", "meadow":
		return true
	}
	return false
}

func isWater(tags map[string]string) bool {
	if tags["natural"] == "water" || tags["waterway"] == "riverbank" || tags["landuse"] == "reservoir" {
		return true
	}
	switch tags["water"] {
	case "lake", "pond", "reservoir":
		return true
	}
	return false
}
