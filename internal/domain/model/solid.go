package model

// Vec3 is a mesh vertex position.
type Vec3 [3]float64

// Solid is a triangulated 3-D mesh for one layer. It is built as a
// set of closed prisms whose vertex index ranges never overlap, so
// the watertightness of the whole equals the watertightness of every
// prism.
type Solid struct {
	LayerName string
	Vertices  []Vec3
	Triangles [][3]int
}

// NewSolid creates an empty solid for the named layer.
func NewSolid(layerName string) *Solid {
	return &Solid{LayerName: layerName}
}

// Append merges another solid into this one, offsetting its indices
// into a fresh range.
func (s *Solid) Append(other *Solid) {
	offset := len(s.Vertices)
	s.Vertices = append(s.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		s.Triangles = append(s.Triangles, [3]int{t[0] + offset, t[1] + offset, t[2] + offset})
	}
}

// BoundaryEdgeCount returns the number of undirected edges not shared
// by exactly two triangles. Zero means the mesh is closed.
func (s *Solid) BoundaryEdgeCount() int {
	counts := make(map[[2]int]int, len(s.Triangles)*3/2)
	for _, t := range s.Triangles {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			counts[[2]int{a, b}]++
		}
	}
	boundary := 0
	for _, n := range counts {
		if n != 2 {
			boundary++
		}
	}
	return boundary
}

// IsWatertight reports whether the solid is a closed 2-manifold with
// consistent winding: every directed edge appears exactly once and so
// does its reverse.
func (s *Solid) IsWatertight() bool {
	if len(s.Triangles) == 0 {
		return false
	}
	directed := make(map[[2]int]int, len(s.Triangles)*3)
	for _, t := range s.Triangles {
		for i := 0; i < 3; i++ {
			directed[[2]int{t[i], t[(i+1)%3]}]++
		}
	}
	for edge, n := range directed {
		if n != 1 {
			return false
		}
		if directed[[2]int{edge[1], edge[0]}] != 1 {
			return false
		}
	}
	return true
}
