// Package overpass acquires raw vector features from an Overpass API
// endpoint, tiled, retried and merged into a request-local frame.
package overpass

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Tile is one WGS84 bounding box queried independently upstream.
type Tile struct {
	South float64
	West  float64
	North float64
	East  float64
}

// BuildTiles partitions the square of side 2*halfSizeM around the
// center into tileSizeM cells. The grid is laid out in Web-Mercator
// meters and each cell is projected back to a WGS84 bbox, so cells
// stay under the upstream per-query size limit regardless of
// latitude.
func BuildTiles(center model.GeoPoint, halfSizeM, tileSizeM float64) []Tile {
	c := project.WGS84.ToMercator(orb.Point{center.Longitude, center.Latitude})
	minX, maxX := c[0]-halfSizeM, c[0]+halfSizeM
	minY, maxY := c[1]-halfSizeM, c[1]+halfSizeM

	var tiles []Tile
	for y := minY; y < maxY; {
		nextY := math.Min(y+tileSizeM, maxY)
		for x := minX; x < maxX; {
			nextX := math.Min(x+tileSizeM, maxX)
			sw := project.Mercator.ToWGS84(orb.Point{x, y})
			ne := project.Mercator.ToWGS84(orb.Point{nextX, nextY})
			tiles = append(tiles, Tile{
				South: math.Min(sw[1], ne[1]),
				West:  math.Min(sw[0], ne[0]),
				North: math.Max(sw[1], ne[1]),
				East:  math.Max(sw[0], ne[0]),
			})
			x = nextX
		}
		y = nextY
	}
	return tiles
}

// buildQuery renders the Overpass QL body for one tile, covering
// every feature kind the composer consumes.
func buildQuery(t Tile, timeoutS int) string {
	bbox := fmt.Sprintf("(%f,%f,%f,%f)", t.South, t.West, t.North, t.East)
	return fmt.Sprintf(`[out:json][timeout:%d];
(
  way["building"]%[2]s;
  way["highway"]%[2]s;
  way["leisure"="park"]%[2]s;
  way["landuse"="grass"]%[2]s;
  way["landuse"="recreation_ground"]%[2]s;
  way["landuse"="meadow"]%[2]s;
  way["natural"="water"]%[2]s;
  way["waterway"="riverbank"]%[2]s;
  way["water"="lake"]%[2]s;
  way["landuse"="reservoir"]%[2]s;
);
(._;>;);
out body;`, timeoutS, bbox)
}
