package mesh

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// STLExporter serializes solids as binary STL: an 80-byte header, a
// uint32 triangle count, then 50 bytes per triangle (normal, three
// vertices, attribute word), all little-endian.
type STLExporter struct{}

// NewSTLExporter creates the exporter.
func NewSTLExporter() *STLExporter {
	return &STLExporter{}
}

// Export writes the solid as binary STL bytes.
func (e *STLExporter) Export(s *model.Solid) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 84+50*len(s.Triangles)))

	header := make([]byte, 80)
	copy(header, []byte("print3dhood "+s.LayerName))
	buf.Write(header)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s.Triangles))); err != nil {
		return nil, err
	}
	for _, t := range s.Triangles {
		a, b, c := s.Vertices[t[0]], s.Vertices[t[1]], s.Vertices[t[2]]
		n := normal(a, b, c)
		record := [12]float32{
			n[0], n[1], n[2],
			float32(a[0]), float32(a[1]), float32(a[2]),
			float32(b[0]), float32(b[1]), float32(b[2]),
			float32(c[0]), float32(c[1]), float32(c[2]),
		}
		if err := binary.Write(buf, binary.LittleEndian, record); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(0)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func normal(a, b, c model.Vec3) [3]float32 {
	ux, uy, uz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	vx, vy, vz := c[0]-a[0], c[1]-a[1], c[2]-a[2]
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	return [3]float32{float32(nx / length), float32(ny / length), float32(nz / length)}
}
