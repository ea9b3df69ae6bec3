package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/model"
)

// Disk tessellation resolutions for the base and street outlines.
const (
	baseDiskSegments = 128
	clipDiskSegments = 96
)

// minRaisedHeightM keeps scaled building columns printable.
const minRaisedHeightM = 0.0005

var numberRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)

// Composer validates raw features and combines them into the four
// named layers' footprints.
type Composer struct {
	cfg    *config.Settings
	kernel GeometryKernel
	log    *zap.Logger
}

// NewComposer creates a composer bound to one geometry kernel.
func NewComposer(cfg *config.Settings, kernel GeometryKernel, log *zap.Logger) *Composer {
	return &Composer{cfg: cfg, kernel: kernel, log: log}
}

// Compose runs repair, height inference, clipping, the count guards
// and the layer algebra, then scales everything to print space.
func (c *Composer) Compose(req *model.ModelRequest, raw *model.RawFeatureSet) (*model.Environment, *model.LayerSet, error) {
	clipRadius := req.RadiusMeters + c.cfg.BasePaddingM
	baseDisk := []orb.Polygon{diskPolygon(clipRadius, baseDiskSegments)}

	env := c.buildEnvironment(req, raw, baseDisk)

	if len(env.Buildings) == 0 {
		return nil, nil, model.ErrEmptyResult
	}
	if len(env.Buildings) > c.cfg.MaxBuildings {
		return nil, nil, fmt.Errorf("%w: %d buildings exceed the limit of %d",
			model.ErrTooManyFeatures, len(env.Buildings), c.cfg.MaxBuildings)
	}
	for _, w := range env.Warnings {
		c.log.Warn("feature dropped during repair", zap.String("feature", w))
	}

	// Water and land.
	var waterPolys []orb.Polygon
	for _, w := range env.Waters {
		waterPolys = append(waterPolys, w.Footprint...)
	}
	waterUnion := c.kernel.Intersection(c.kernel.Union(waterPolys), baseDisk)
	land := c.kernel.Difference(baseDisk, waterUnion)
	if len(land) == 0 {
		land = baseDisk
	}

	// Parks, shrunk inward so the raised green reads as an inlay.
	var parkPolys []orb.Polygon
	for _, p := range env.Parks {
		parkPolys = append(parkPolys, c.kernel.Shrink(p.Footprint, c.cfg.ParkShrinkM)...)
	}
	parksUnion := c.kernel.Intersection(c.kernel.Union(parkPolys), land)

	// Roads buffered to their class width, confined to the street disk.
	buildingDisk := []orb.Polygon{diskPolygon(req.RadiusMeters+c.cfg.BuildingPaddingM, clipDiskSegments)}
	var roadPolys []orb.Polygon
	for _, r := range env.Roads {
		roadPolys = append(roadPolys, c.kernel.BufferLine(r.Line, c.roadWidth(r.Class))...)
	}
	roadUnion := c.kernel.Intersection(c.kernel.Union(roadPolys), buildingDisk)

	// Street slab: cavities for the water and green extrusions keep
	// the stacked layers keyed together.
	buildingBase := c.kernel.Difference(c.kernel.Difference(buildingDisk, waterUnion), parksUnion)
	if len(buildingBase) == 0 {
		buildingBase = buildingDisk
	}

	var home *model.Building
	if req.HighlightHome && c.cfg.HighlightEnabled {
		home = selectHomeBuilding(env.Buildings)
	}
	if home != nil {
		buildingBase = c.kernel.Difference(buildingBase, home.Footprint)
	}

	grooveDepth := math.Min(c.cfg.RoadGrooveDepthM, c.cfg.BuildingThicknessM*0.8)
	var groovePlate []orb.Polygon
	if len(roadUnion) > 0 && grooveDepth > 0 {
		groovePlate = c.kernel.Difference(buildingBase, roadUnion)
	} else {
		grooveDepth = 0
	}

	// One scale factor for every layer.
	scale := c.cfg.TargetPrintDiameterM / (2 * clipRadius)
	printRadius := c.cfg.TargetPrintDiameterM / 2

	set := &model.LayerSet{
		ScaleRatio:    scale,
		PrintRadiusM:  printRadius,
		RadiusM:       req.RadiusMeters,
		BuildingCount: len(env.Buildings),
	}

	set.Water = &model.Layer{
		Name:           model.LayerWater,
		Description:    "Water/base disk (thickness x) with water bodies extruded 2x to reach street level.",
		ThicknessM:     c.cfg.BaseThicknessM,
		SlabThicknessM: c.cfg.BaseThicknessM,
		Base:           scalePolys(baseDisk, scale),
	}
	if len(waterUnion) > 0 {
		set.Water.Raised = []model.RaisedRegion{{
			Polygons: scalePolys(waterUnion, scale),
			HeightM:  2 * c.cfg.BaseThicknessM,
		}}
	}

	set.Green = &model.Layer{
		Name:           model.LayerGreen,
		Description:    "Land disk (thickness x) with holes for water extrusions plus parks raised another x.",
		ThicknessM:     c.cfg.GreenThicknessM,
		SlabThicknessM: c.cfg.GreenThicknessM,
		Base:           scalePolys(land, scale),
	}
	if len(parksUnion) > 0 {
		set.Green.Raised = []model.RaisedRegion{{
			Polygons: scalePolys(parksUnion, scale),
			HeightM:  c.cfg.GreenThicknessM,
		}}
	}

	set.Building = &model.Layer{
		Name:           model.LayerBuilding,
		Description:    "Street disk (thickness x) with cavities for water/green extrusions and buildings rising above.",
		ThicknessM:     c.cfg.BuildingThicknessM,
		SlabThicknessM: c.cfg.BuildingThicknessM,
		GrooveDepthM:   grooveDepth,
		Base:           scalePolys(buildingBase, scale),
		GroovePlate:    scalePolys(groovePlate, scale),
		Grooves:        scalePolys(roadUnion, scale),
	}
	for i := range env.Buildings {
		b := &env.Buildings[i]
		if home != nil && b.OSMID == home.OSMID {
			continue
		}
		set.Building.Raised = append(set.Building.Raised, model.RaisedRegion{
			Polygons: scalePolys(b.Footprint, scale),
			HeightM:  scaledHeight(b.HeightM, scale),
		})
	}

	if home != nil {
		pegDepth := math.Min(c.cfg.HighlightPegDepthM, c.cfg.BuildingThicknessM)
		footprint := scalePolys(home.Footprint, scale)
		set.Highlight = &model.Layer{
			Name:           model.LayerHighlight,
			Description:    "Removable home building with a base that keys into the cavity on the buildings layer.",
			ThicknessM:     c.cfg.BuildingThicknessM,
			SlabThicknessM: pegDepth,
			Base:           footprint,
			Raised: []model.RaisedRegion{{
				Polygons: footprint,
				HeightM:  scaledHeight(home.HeightM, scale),
			}},
		}
	}

	return env, set, nil
}

// buildEnvironment repairs and clips every raw feature and applies
// the total inference functions for heights and road classes.
func (c *Composer) buildEnvironment(req *model.ModelRequest, raw *model.RawFeatureSet, clipDisk []orb.Polygon) *model.Environment {
	env := &model.Environment{
		Center:   req.Center(),
		RadiusM:  req.RadiusMeters,
		PaddingM: c.cfg.BasePaddingM,
		Frame:    raw.Frame,
	}

	for _, f := range raw.Buildings {
		polys, err := c.kernel.Repair(orb.Polygon{f.Ring})
		if err != nil {
			env.Warnings = append(env.Warnings, fmt.Sprintf("building %d: %v", f.OSMID, err))
			continue
		}
		clipped := c.kernel.Intersection(polys, clipDisk)
		if len(clipped) == 0 {
			continue
		}
		env.Buildings = append(env.Buildings, model.Building{
			OSMID:     f.OSMID,
			Name:      f.Tags["name"],
			Footprint: clipped,
			HeightM:   c.inferHeight(f.Tags),
		})
	}

	for _, f := range raw.Parks {
		polys, err := c.kernel.Repair(orb.Polygon{f.Ring})
		if err != nil {
			env.Warnings = append(env.Warnings, fmt.Sprintf("park %d: %v", f.OSMID, err))
			continue
		}
		if clipped := c.kernel.Intersection(polys, clipDisk); len(clipped) > 0 {
			env.Parks = append(env.Parks, model.Park{OSMID: f.OSMID, Footprint: clipped})
		}
	}

	for _, f := range raw.Waters {
		polys, err := c.kernel.Repair(orb.Polygon{f.Ring})
		if err != nil {
			env.Warnings = append(env.Warnings, fmt.Sprintf("water %d: %v", f.OSMID, err))
			continue
		}
		if clipped := c.kernel.Intersection(polys, clipDisk); len(clipped) > 0 {
			env.Waters = append(env.Waters, model.Water{OSMID: f.OSMID, Footprint: clipped})
		}
	}

	for _, f := range raw.Roads {
		if len(f.Line) < 2 {
			continue
		}
		env.Roads = append(env.Roads, model.Road{
			OSMID: f.OSMID,
			Line:  f.Line,
			Class: roadClass(f.Tags["highway"]),
		})
	}
	return env
}

// inferHeight resolves a building height: explicit height tag, then
// levels * level height, then the default; clamped to the minimum.
func (c *Composer) inferHeight(tags map[string]string) float64 {
	if h, ok := parseLeadingNumber(tags["height"]); ok {
		return math.Max(c.cfg.MinHeightM, h)
	}
	if levels, ok := parseLeadingNumber(tags["building:levels"]); ok {
		return math.Max(c.cfg.MinHeightM, levels*c.cfg.LevelHeightM)
	}
	return c.cfg.DefaultHeightM
}

func (c *Composer) roadWidth(class model.RoadClass) float64 {
	switch class {
	case model.RoadMajor:
		return c.cfg.RoadWidthM * 1.5
	case model.RoadMinor:
		return c.cfg.RoadWidthM * 0.5
	default:
		return c.cfg.RoadWidthM
	}
}

func roadClass(highway string) model.RoadClass {
	switch highway {
	case "motorway", "trunk", "primary", "secondary",
		"motorway_link", "trunk_link", "primary_link", "secondary_link":
		return model.RoadMajor
	case "footway", "path", "cycleway", "steps", "pedestrian", "track":
		return model.RoadMinor
	default:
		return model.RoadStandard
	}
}

// selectHomeBuilding picks the highlight target: the footprint
// containing the request center (the frame origin), else the
// footprint whose centroid is nearest to it.
func selectHomeBuilding(buildings []model.Building) *model.Building {
	origin := orb.Point{0, 0}
	for i := range buildings {
		for _, poly := range buildings[i].Footprint {
			if planar.PolygonContains(poly, origin) {
				return &buildings[i]
			}
		}
	}
	best := -1
	bestDist := math.Inf(1)
	for i := range buildings {
		if len(buildings[i].Footprint) == 0 {
			continue
		}
		centroid, _ := planar.CentroidArea(buildings[i].Footprint[0])
		d := planar.Distance(centroid, origin)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return nil
	}
	return &buildings[best]
}

func parseLeadingNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// diskPolygon builds a CCW regular polygon approximating the disk of
// the given radius around the frame origin.
func diskPolygon(radius float64, segments int) orb.Polygon {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{radius * math.Cos(a), radius * math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func scalePolys(polys []orb.Polygon, factor float64) []orb.Polygon {
	if len(polys) == 0 {
		return nil
	}
	out := make([]orb.Polygon, len(polys))
	for i, p := range polys {
		sp := make(orb.Polygon, len(p))
		for j, ring := range p {
			sr := make(orb.Ring, len(ring))
			for k, pt := range ring {
				sr[k] = orb.Point{pt[0] * factor, pt[1] * factor}
			}
			sp[j] = sr
		}
		out[i] = sp
	}
	return out
}

func scaledHeight(heightM, factor float64) float64 {
	return math.Max(heightM*factor, minRaisedHeightM)
}
