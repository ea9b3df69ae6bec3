package service

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// minSlabHeightM keeps the groove split from producing a zero-height
// slab.
const minSlabHeightM = 0.0005

// Extruder turns composed layers into watertight solids through the
// mesh kernel.
type Extruder struct {
	cfg    *config.Settings
	kernel MeshKernel
	log    *zap.Logger
}

// NewExtruder creates an extruder bound to one mesh kernel.
func NewExtruder(cfg *config.Settings, kernel MeshKernel, log *zap.Logger) *Extruder {
	return &Extruder{cfg: cfg, kernel: kernel, log: log}
}

// Extrude builds one solid for the layer: the slab, the groove top
// plate when roads are carved, and every raised region. The result is
// rejected unless it is watertight.
func (e *Extruder) Extrude(layer *model.Layer) (*model.Solid, error) {
	if len(layer.Base) == 0 {
		return nil, fmt.Errorf("%w: no geometry available for %s", model.ErrExtrusion, layer.Name)
	}

	solid := model.NewSolid(layer.Name)

	slabHeight := layer.SlabThicknessM
	if layer.GrooveDepthM > 0 {
		slabHeight = math.Max(layer.SlabThicknessM-layer.GrooveDepthM, minSlabHeightM)
	}
	if err := e.appendPrisms(solid, layer.Base, 0, slabHeight); err != nil {
		return nil, fmt.Errorf("%w: %s slab: %v", model.ErrExtrusion, layer.Name, err)
	}

	// Roads are negative relief: the plate between the grooves is put
	// back on top of the thinned slab, so the carve never penetrates
	// the layer.
	if layer.GrooveDepthM > 0 {
		if err := e.appendPrisms(solid, layer.GroovePlate, slabHeight, layer.GrooveDepthM); err != nil {
			return nil, fmt.Errorf("%w: %s groove plate: %v", model.ErrExtrusion, layer.Name, err)
		}
	}

	raisedBase := layer.SlabThicknessM
	for _, region := range layer.Raised {
		if err := e.appendPrisms(solid, region.Polygons, raisedBase, region.HeightM); err != nil {
			return nil, fmt.Errorf("%w: %s raised region: %v", model.ErrExtrusion, layer.Name, err)
		}
	}

	if !e.kernel.IsWatertight(solid) {
		e.log.Error("layer mesh failed manifold check",
			zap.String("layer", layer.Name),
			zap.Int("boundary_edges", solid.BoundaryEdgeCount()),
		)
		return nil, fmt.Errorf("%w: %s is not watertight", model.ErrExtrusion, layer.Name)
	}
	return solid, nil
}

// ExtrudeAll extrudes every layer of the set in output order.
func (e *Extruder) ExtrudeAll(set *model.LayerSet) ([]*model.Solid, error) {
	layers := set.Layers()
	solids := make([]*model.Solid, 0, len(layers))
	for _, layer := range layers {
		solid, err := e.Extrude(layer)
		if err != nil {
			return nil, err
		}
		e.log.Debug("layer extruded",
			zap.String("layer", layer.Name),
			zap.Int("vertices", len(solid.Vertices)),
			zap.Int("triangles", len(solid.Triangles)),
		)
		solids = append(solids, solid)
	}
	return solids, nil
}

func (e *Extruder) appendPrisms(solid *model.Solid, polys []orb.Polygon, baseZ, height float64) error {
	for _, poly := range polys {
		if math.Abs(planar.Area(poly)) < 1e-12 {
			continue
		}
		prism, err := e.kernel.ExtrudePolygon(poly, baseZ, height)
		if err != nil {
			return err
		}
		solid.Append(prism)
	}
	return nil
}
