// Package geometry implements the composer's polygon algebra on top
// of github.com/ctessum/geom.
package geometry

import (
	"fmt"
	"math"

	cgeom "github.com/ctessum/geom"
	"github.com/paulmach/orb"
)

// circleSegments is the resolution used for buffer join discs.
const circleSegments = 16

// minRingArea filters out numerically degenerate rings produced by
// boolean ops.
const minRingArea = 1e-10

// Kernel implements service.GeometryKernel.
type Kernel struct{}

// NewKernel creates the kernel.
func NewKernel() *Kernel {
	return &Kernel{}
}

// Repair resolves self-intersections and drops degenerate rings by
// clipping the raw rings against their own padded bounding box; the
// clip output follows the even-odd fill of the input, which is what a
// validity repair needs.
func (k *Kernel) Repair(p orb.Polygon) ([]orb.Polygon, error) {
	cleaned := cleanPolygon(p)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("degenerate polygon: no usable ring")
	}
	g := toGeom([]orb.Polygon{cleaned})
	rect := boundingRect(g, 1.0)
	repaired := fromGeom(g.Intersection(rect).(cgeom.Polygon))
	if len(repaired) == 0 {
		return nil, fmt.Errorf("polygon collapsed during repair")
	}
	return repaired, nil
}

// Union merges a multipolygon into non-overlapping polygons-with-holes.
func (k *Kernel) Union(polys []orb.Polygon) []orb.Polygon {
	if len(polys) == 0 {
		return nil
	}
	if len(polys) == 1 {
		return polys
	}
	parts := make([]cgeom.Polygon, len(polys))
	for i, p := range polys {
		parts[i] = toGeom([]orb.Polygon{p})
	}
	return fromGeom(unionAll(parts))
}

// Difference subtracts clip from subject.
func (k *Kernel) Difference(subject, clip []orb.Polygon) []orb.Polygon {
	if len(subject) == 0 {
		return nil
	}
	if len(clip) == 0 {
		return subject
	}
	return fromGeom(toGeom(subject).Difference(toGeom(clip)).(cgeom.Polygon))
}

// Intersection clips subject to clip.
func (k *Kernel) Intersection(subject, clip []orb.Polygon) []orb.Polygon {
	if len(subject) == 0 || len(clip) == 0 {
		return nil
	}
	return fromGeom(toGeom(subject).Intersection(toGeom(clip)).(cgeom.Polygon))
}

// BufferLine thickens a centerline by dist on each side: one slightly
// overlapping quad per segment plus a disc at every vertex, unioned.
// The lengthwise overlap keeps consecutive quads from meeting edge to
// edge, which boolean kernels dislike.
func (k *Kernel) BufferLine(line orb.LineString, dist float64) []orb.Polygon {
	if len(line) < 2 || dist <= 0 {
		return nil
	}
	var parts []cgeom.Polygon
	eps := dist * 0.01
	for i := 0; i+1 < len(line); i++ {
		p, q := line[i], line[i+1]
		dx, dy := q[0]-p[0], q[1]-p[1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		nx, ny := -uy*dist, ux*dist
		px, py := p[0]-ux*eps, p[1]-uy*eps
		qx, qy := q[0]+ux*eps, q[1]+uy*eps
		quad := orb.Ring{
			{px + nx, py + ny},
			{px - nx, py - ny},
			{qx - nx, qy - ny},
			{qx + nx, qy + ny},
			{px + nx, py + ny},
		}
		parts = append(parts, toGeom([]orb.Polygon{{forceWinding(quad, true)}}))
	}
	for _, v := range line {
		parts = append(parts, toGeom([]orb.Polygon{{circleRing(v, dist, circleSegments)}}))
	}
	if len(parts) == 0 {
		return nil
	}
	return fromGeom(unionAll(parts))
}

// Shrink erodes polygons inward by dist: the boundary rings are
// buffered and subtracted.
func (k *Kernel) Shrink(polys []orb.Polygon, dist float64) []orb.Polygon {
	if dist <= 0 || len(polys) == 0 {
		return polys
	}
	var rim []orb.Polygon
	for _, p := range polys {
		for _, ring := range p {
			rim = append(rim, k.BufferLine(orb.LineString(closedRing(ring)), dist)...)
		}
	}
	return k.Difference(polys, rim)
}

// --- conversions between orb polygons-with-holes and ctessum ring soup ---

// toGeom flattens polygons into one ring soup with outer rings CCW
// and holes CW.
func toGeom(polys []orb.Polygon) cgeom.Polygon {
	var g cgeom.Polygon
	for _, p := range polys {
		for ri, ring := range p {
			r := openRing(ring)
			if len(r) < 3 {
				continue
			}
			r = forceWinding(r, ri == 0)
			path := make([]cgeom.Point, len(r))
			for i, pt := range r {
				path[i] = cgeom.Point{X: pt[0], Y: pt[1]}
			}
			g = append(g, path)
		}
	}
	return g
}

// fromGeom classifies a boolean-op ring soup back into
// polygons-with-holes: CCW rings are outers, CW rings are holes
// assigned to the smallest outer containing them.
func fromGeom(g cgeom.Polygon) []orb.Polygon {
	type outer struct {
		ring orb.Ring
		area float64
	}
	var outers []outer
	var holes []orb.Ring
	for _, path := range g {
		ring := make(orb.Ring, 0, len(path)+1)
		for _, pt := range path {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		ring = orb.Ring(closedRing(openRing(ring)))
		if len(ring) < 4 {
			continue
		}
		a := signedArea(ring)
		if math.Abs(a) < minRingArea {
			continue
		}
		if a > 0 {
			outers = append(outers, outer{ring: ring, area: a})
		} else {
			holes = append(holes, ring)
		}
	}
	polys := make([]orb.Polygon, len(outers))
	for i, o := range outers {
		polys[i] = orb.Polygon{o.ring}
	}
	for _, h := range holes {
		probe := ringProbePoint(h)
		best := -1
		bestArea := math.Inf(1)
		for i, o := range outers {
			if o.area < bestArea && pointInRing(probe, o.ring) {
				best = i
				bestArea = o.area
			}
		}
		if best >= 0 {
			polys[best] = append(polys[best], h)
		}
	}
	return polys
}

// unionAll merges parts pairwise to keep intermediate results small.
func unionAll(parts []cgeom.Polygon) cgeom.Polygon {
	for len(parts) > 1 {
		merged := make([]cgeom.Polygon, 0, (len(parts)+1)/2)
		for i := 0; i < len(parts); i += 2 {
			if i+1 < len(parts) {
				merged = append(merged, parts[i].Union(parts[i+1]).(cgeom.Polygon))
			} else {
				merged = append(merged, parts[i])
			}
		}
		parts = merged
	}
	if len(parts) == 0 {
		return nil
	}
	return parts[0]
}

func boundingRect(g cgeom.Polygon, pad float64) cgeom.Polygon {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, path := range g {
		for _, pt := range path {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	minX, minY, maxX, maxY = minX-pad, minY-pad, maxX+pad, maxY+pad
	return cgeom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}}
}

// --- ring utilities ---

// openRing drops the closing duplicate point and exact consecutive
// duplicates.
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

// closedRing ensures the ring repeats its first point at the end.
func closedRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return r
	}
	if r[0] == r[len(r)-1] {
		return r
	}
	out := make(orb.Ring, len(r)+1)
	copy(out, r)
	out[len(r)] = r[0]
	return out
}

// forceWinding returns the open ring wound CCW (ccw=true) or CW.
func forceWinding(r orb.Ring, ccw bool) orb.Ring {
	if (signedArea(closedRing(r)) > 0) == ccw {
		return r
	}
	out := make(orb.Ring, len(r))
	for i, pt := range r {
		out[len(r)-1-i] = pt
	}
	return out
}

// signedArea of a closed ring; positive for CCW.
func signedArea(r orb.Ring) float64 {
	var sum float64
	for i := 0; i+1 < len(r); i++ {
		sum += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	return sum / 2
}

// ringProbePoint returns a point representative of the ring interior:
// the midpoint of the first edge nudged inward along its normal.
func ringProbePoint(r orb.Ring) orb.Point {
	if len(r) < 2 {
		return r[0]
	}
	p, q := r[0], r[1]
	mx, my := (p[0]+q[0])/2, (p[1]+q[1])/2
	dx, dy := q[0]-p[0], q[1]-p[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p
	}
	// Left of the edge for CCW rings, right for CW; for a hole wound
	// CW this lands inside the hole, which is what containment tests
	// against candidate outers need.
	inward := 1.0
	if signedArea(closedRing(r)) < 0 {
		inward = -1.0
	}
	eps := length * 1e-7
	return orb.Point{mx + inward*(-dy/length)*eps, my + inward*(dx/length)*eps}
}

// pointInRing is an even-odd ray-crossing test.
func pointInRing(p orb.Point, r orb.Ring) bool {
	inside := false
	n := len(r)
	for i := 0; i+1 < n; i++ {
		a, b := r[i], r[i+1]
		if (a[1] > p[1]) != (b[1] > p[1]) {
			x := a[0] + (p[1]-a[1])/(b[1]-a[1])*(b[0]-a[0])
			if p[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

// circleRing approximates a disc boundary as a CCW n-gon.
func circleRing(center orb.Point, radius float64, segments int) orb.Ring {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{
			center[0] + radius*math.Cos(a),
			center[1] + radius*math.Sin(a),
		})
	}
	ring = append(ring, ring[0])
	return ring
}

// cleanPolygon drops rings that collapse below three distinct points.
func cleanPolygon(p orb.Polygon) orb.Polygon {
	var out orb.Polygon
	for i, ring := range p {
		open := openRing(ring)
		if len(open) < 3 {
			if i == 0 {
				return nil
			}
			continue
		}
		out = append(out, orb.Ring(closedRing(open)))
	}
	return out
}
