package mesh

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

func TestSTLExport(t *testing.T) {
	k := NewKernel()
	solid, err := k.ExtrudePolygon(squareFootprint(0, 0, 2), 0, 1)
	require.NoError(t, err)
	solid.LayerName = model.LayerWater

	data, err := NewSTLExporter().Export(solid)
	require.NoError(t, err)

	assert.Len(t, data, 84+50*len(solid.Triangles))
	assert.True(t, strings.HasPrefix(string(data[:80]), "print3dhood water_layer"))
	assert.Equal(t, uint32(len(solid.Triangles)), binary.LittleEndian.Uint32(data[80:84]))
}

func TestSTLExportEmptySolid(t *testing.T) {
	data, err := NewSTLExporter().Export(model.NewSolid("empty"))
	require.NoError(t, err)
	assert.Len(t, data, 84)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[80:84]))
}

func TestSTLNormalsPointOutward(t *testing.T) {
	k := NewKernel()
	solid, err := k.ExtrudePolygon(squareFootprint(0, 0, 2), 0, 1)
	require.NoError(t, err)

	data, err := NewSTLExporter().Export(solid)
	require.NoError(t, err)

	// Every top-cap record carries a +z normal, every bottom-cap a -z.
	var up, down int
	for i := 0; i < len(solid.Triangles); i++ {
		offset := 84 + 50*i
		nz := math.Float32frombits(binary.LittleEndian.Uint32(data[offset+8 : offset+12]))
		switch {
		case nz == 1:
			up++
		case nz == -1:
			down++
		}
	}
	assert.Equal(t, 2, up)
	assert.Equal(t, 2, down)
}
