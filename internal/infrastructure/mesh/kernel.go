// Package mesh implements prism extrusion and STL serialization for
// composed layers.
package mesh

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/tchayen/triangolatte"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Kernel implements service.MeshKernel using ear-clipping cap
// triangulation.
type Kernel struct{}

// NewKernel creates the kernel.
func NewKernel() *Kernel {
	return &Kernel{}
}

// ExtrudePolygon builds a closed prism for one polygon-with-holes:
// triangulated bottom and top caps connected by side walls. The
// returned solid is watertight by construction as long as the
// triangulation covers the footprint exactly.
func (k *Kernel) ExtrudePolygon(footprint orb.Polygon, baseZ, thickness float64) (*model.Solid, error) {
	if thickness <= 0 {
		return nil, fmt.Errorf("non-positive extrusion thickness %v", thickness)
	}
	rings := normalizeRings(footprint)
	if len(rings) == 0 {
		return nil, fmt.Errorf("footprint has no usable outer ring")
	}

	capTris, err := triangulate(rings)
	if err != nil {
		return nil, fmt.Errorf("cap triangulation failed: %w", err)
	}
	if len(capTris) == 0 {
		return nil, fmt.Errorf("cap triangulation produced no triangles")
	}

	// Weld 2-D vertices, then derive bottom/top index pairs.
	index := make(map[orb.Point]int)
	var flat []orb.Point
	vertexID := func(p orb.Point) int {
		if id, ok := index[p]; ok {
			return id
		}
		id := len(flat)
		index[p] = id
		flat = append(flat, p)
		return id
	}
	for _, ring := range rings {
		for _, p := range ring {
			vertexID(p)
		}
	}

	type tri [3]int
	var capIdx []tri
	for _, t := range capTris {
		a, b, c := vertexID(t[0]), vertexID(t[1]), vertexID(t[2])
		if a == b || b == c || c == a {
			continue
		}
		// Orient every cap triangle CCW so top faces up and the
		// mirrored bottom faces down.
		if triArea(flat[a], flat[b], flat[c]) < 0 {
			b, c = c, b
		}
		capIdx = append(capIdx, tri{a, b, c})
	}
	if len(capIdx) == 0 {
		return nil, fmt.Errorf("cap triangulation produced only degenerate triangles")
	}

	solid := model.NewSolid("")
	n := len(flat)
	solid.Vertices = make([]model.Vec3, 0, 2*n)
	topZ := baseZ + thickness
	for _, p := range flat {
		solid.Vertices = append(solid.Vertices, model.Vec3{p[0], p[1], baseZ})
	}
	for _, p := range flat {
		solid.Vertices = append(solid.Vertices, model.Vec3{p[0], p[1], topZ})
	}

	for _, t := range capIdx {
		// Bottom cap, normal -z.
		solid.Triangles = append(solid.Triangles, [3]int{t[0], t[2], t[1]})
		// Top cap, normal +z.
		solid.Triangles = append(solid.Triangles, [3]int{t[0] + n, t[1] + n, t[2] + n})
	}

	// Side walls along every ring. Outer rings are CCW and holes CW,
	// so the same quad split faces outward in both cases.
	for _, ring := range rings {
		m := len(ring)
		for i := 0; i < m; i++ {
			a := vertexID(ring[i])
			b := vertexID(ring[(i+1)%m])
			if a == b {
				continue
			}
			solid.Triangles = append(solid.Triangles,
				[3]int{a, b, b + n},
				[3]int{a, b + n, a + n},
			)
		}
	}
	return solid, nil
}

// IsWatertight verifies the closed 2-manifold invariant.
func (k *Kernel) IsWatertight(s *model.Solid) bool {
	return s.IsWatertight()
}

// triangulate runs ear clipping over the outer ring with holes joined
// in, returning triangles as 2-D point triples.
func triangulate(rings []orb.Ring) ([][3]orb.Point, error) {
	points := make([][]triangolatte.Point, len(rings))
	for i, ring := range rings {
		ps := make([]triangolatte.Point, len(ring))
		for j, p := range ring {
			ps[j] = triangolatte.Point{X: p[0], Y: p[1]}
		}
		points[i] = ps
	}

	outline := points[0]
	if len(points) > 1 {
		joined, err := triangolatte.JoinHoles(points)
		if err != nil {
			return nil, err
		}
		outline = joined
	}

	coords, err := triangolatte.Polygon(outline)
	if err != nil {
		return nil, err
	}
	if len(coords)%6 != 0 {
		return nil, fmt.Errorf("triangulation returned %d coordinates", len(coords))
	}
	tris := make([][3]orb.Point, 0, len(coords)/6)
	for i := 0; i+5 < len(coords); i += 6 {
		t := [3]orb.Point{
			{coords[i], coords[i+1]},
			{coords[i+2], coords[i+3]},
			{coords[i+4], coords[i+5]},
		}
		if math.Abs(triArea(t[0], t[1], t[2])) < 1e-14 {
			continue
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// normalizeRings opens rings, drops degenerates and enforces outer
// CCW / holes CW.
func normalizeRings(p orb.Polygon) []orb.Ring {
	var rings []orb.Ring
	for i, ring := range p {
		open := openRing(ring)
		if len(open) < 3 {
			if i == 0 {
				return nil
			}
			continue
		}
		rings = append(rings, forceWinding(open, i == 0))
	}
	return rings
}

func openRing(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, pt := range r {
		if len(out) > 0 && out[len(out)-1] == pt {
			continue
		}
		out = append(out, pt)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func forceWinding(r orb.Ring, ccw bool) orb.Ring {
	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	if (sum > 0) == ccw {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, pt := range r {
		out[len(r)-1-i] = pt
	}
	return out
}

func triArea(a, b, c orb.Point) float64 {
	return ((b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])) / 2
}
