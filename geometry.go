package relate

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

type geometryKind int

const (
	kindPoint geometryKind = iota
	kindMultiPoint
	kindLineString
	kindMultiLineString
	kindPolygon
	kindMultiPolygon
	kindCollection
)

type lineElement struct {
	id     int
	coords polyline
	bound  orb.Bound
}

// polygonElement is one polygon, its shell oriented clockwise and its holes counter clockwise.
type polygonElement struct {
	id     int
	parent int // index into geometryView.polygonals
	rings  []polyline
	bound  orb.Bound
}

// polygonalElement is a Polygon or MultiPolygon of the input, which has polygonal topology.
type polygonalElement struct {
	polygons []int // indices into geometryView.polygons
	bound    orb.Bound
}

// geometryView wraps an input geometry and answers the queries of the evaluator. It is immutable after construction.
type geometryView struct {
	geom       orb.Geometry
	kind       geometryKind
	numGeoms   int
	isPrepared bool

	bound         orb.Bound
	isEmpty       bool
	dim           Dimension
	hasPoints     bool
	hasLines      bool
	hasAreas      bool
	isLineZeroLen bool
	hasZeroLen    bool

	points     []orb.Point
	lines      []lineElement
	polygons   []polygonElement
	polygonals []polygonalElement
	numIDs     int

	locator         *pointLocator
	effectivePoints []orb.Point
	uniquePoints    map[orb.Point]struct{}
}

func newGeometryView(g orb.Geometry, rule BoundaryNodeRule, prepared bool) (*geometryView, error) {
	if g == nil {
		return nil, errors.Wrap(ErrUnsupportedGeometry, "nil geometry")
	}

	v := &geometryView{
		geom:       g,
		numGeoms:   1,
		isPrepared: prepared,
		bound:      emptyBound,
	}
	switch g := g.(type) {
	case orb.Point:
		v.kind = kindPoint
	case orb.MultiPoint:
		v.kind = kindMultiPoint
		v.numGeoms = len(g)
	case orb.LineString:
		v.kind = kindLineString
	case orb.MultiLineString:
		v.kind = kindMultiLineString
		v.numGeoms = len(g)
	case orb.Polygon, orb.Ring, orb.Bound:
		v.kind = kindPolygon
	case orb.MultiPolygon:
		v.kind = kindMultiPolygon
		v.numGeoms = len(g)
	case orb.Collection:
		v.kind = kindCollection
		v.numGeoms = len(g)
	}
	if err := v.add(g); err != nil {
		return nil, err
	}
	v.dim = Dimension(g.Dimensions())

	v.isEmpty = len(v.points) == 0 && len(v.lines) == 0 && len(v.polygons) == 0
	v.hasPoints = 0 < len(v.points)
	v.hasLines = 0 < len(v.lines)
	v.hasAreas = 0 < len(v.polygons)
	if v.isEmpty {
		v.dim = False
	} else {
		switch v.kind {
		case kindPoint, kindMultiPoint:
			v.dim = P
		case kindLineString, kindMultiLineString:
			v.dim = L
		case kindPolygon, kindMultiPolygon:
			v.dim = A
		}
	}
	v.isLineZeroLen = v.dim == L
	for _, line := range v.lines {
		if line.coords.IsZeroLength() {
			v.hasZeroLen = true
		} else {
			v.isLineZeroLen = false
		}
	}

	v.locator = newPointLocator(v, rule)
	if v.hasPoints && P < v.dimensionReal() {
		// only points not covered by a higher dimensional element
		for _, p := range v.points {
			if v.locateWithDim(p).dim == P {
				v.effectivePoints = append(v.effectivePoints, p)
			}
		}
	} else {
		v.effectivePoints = v.points
	}
	if v.dimensionReal() == P {
		v.uniquePoints = map[orb.Point]struct{}{}
		for _, p := range v.points {
			v.uniquePoints[p] = struct{}{}
		}
		for _, line := range v.lines {
			v.uniquePoints[line.coords[0]] = struct{}{}
		}
	}
	return v, nil
}

func (v *geometryView) nextID() int {
	v.numIDs++
	return v.numIDs
}

func (v *geometryView) add(g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		return v.addPoint(g)
	case orb.MultiPoint:
		for _, p := range g {
			if err := v.addPoint(p); err != nil {
				return err
			}
		}
	case orb.LineString:
		return v.addLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if err := v.addLine(ls); err != nil {
				return err
			}
		}
	case orb.Ring:
		return v.addPolygonal([]orb.Polygon{{g}})
	case orb.Bound:
		if g.IsEmpty() {
			return nil
		}
		return v.addPolygonal([]orb.Polygon{{g.ToRing()}})
	case orb.Polygon:
		return v.addPolygonal([]orb.Polygon{g})
	case orb.MultiPolygon:
		return v.addPolygonal(g)
	case orb.Collection:
		for _, item := range g {
			if item == nil {
				return errors.Wrap(ErrUnsupportedGeometry, "nil geometry in collection")
			} else if err := v.add(item); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrUnsupportedGeometry, "geometry type %T", g)
	}
	return nil
}

func (v *geometryView) addPoint(p orb.Point) error {
	if !isFinite(p) {
		return errors.Wrapf(ErrInvalidInput, "non-finite coordinate %v", p)
	}
	v.points = append(v.points, p)
	v.bound = extendBound(v.bound, p)
	return nil
}

func (v *geometryView) addLine(ls orb.LineString) error {
	if len(ls) == 0 {
		return nil
	} else if len(ls) == 1 {
		return errors.Wrapf(ErrInvalidInput, "line string with a single point %v", ls[0])
	}
	coords := polyline(ls)
	for _, p := range coords {
		if !isFinite(p) {
			return errors.Wrapf(ErrInvalidInput, "non-finite coordinate %v", p)
		}
	}
	bound := coords.Bound()
	v.lines = append(v.lines, lineElement{
		id:     v.nextID(),
		coords: coords,
		bound:  bound,
	})
	v.bound = unionBound(v.bound, bound)
	return nil
}

func (v *geometryView) addPolygonal(polys []orb.Polygon) error {
	parent := len(v.polygonals)
	polygonal := polygonalElement{bound: emptyBound}
	for _, poly := range polys {
		if len(poly) == 0 || len(poly[0]) == 0 {
			if 1 < len(poly) {
				return errors.Wrap(ErrInvalidInput, "polygon with holes has an empty shell")
			}
			continue
		}

		rings := make([]polyline, 0, len(poly))
		for i, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			coords := polyline(ring)
			for _, p := range coords {
				if !isFinite(p) {
					return errors.Wrapf(ErrInvalidInput, "non-finite coordinate %v", p)
				}
			}
			if !coords.Closed() {
				return errors.Wrapf(ErrInvalidInput, "ring is not closed at %v", coords[0])
			}

			// shells run clockwise, holes counter clockwise
			coords, err := coords.RemoveRepeated().Orient(i == 0)
			if err != nil {
				return err
			}
			rings = append(rings, coords)
		}

		bound := rings[0].Bound()
		polygonal.polygons = append(polygonal.polygons, len(v.polygons))
		polygonal.bound = unionBound(polygonal.bound, bound)
		v.polygons = append(v.polygons, polygonElement{
			id:     v.nextID(),
			parent: parent,
			rings:  rings,
			bound:  bound,
		})
	}
	if 0 < len(polygonal.polygons) {
		v.polygonals = append(v.polygonals, polygonal)
		v.bound = unionBound(v.bound, polygonal.bound)
	}
	return nil
}

// dimensionReal returns the dimension of the non-empty elements, where zero-length lines count as points.
func (v *geometryView) dimensionReal() Dimension {
	if v.isEmpty {
		return False
	} else if v.dim == L && v.isLineZeroLen {
		return P
	} else if v.hasAreas {
		return A
	} else if v.hasLines {
		return L
	}
	return P
}

func (v *geometryView) hasEdges() bool {
	return v.hasLines || v.hasAreas
}

func (v *geometryView) hasAreaAndLine() bool {
	return v.hasAreas && v.hasLines
}

func (v *geometryView) hasBoundary() bool {
	return v.locator.boundary.hasBoundary
}

// isPolygonal is true for Polygons and MultiPolygons, whose elements can only touch at points.
func (v *geometryView) isPolygonal() bool {
	return v.kind == kindPolygon || v.kind == kindMultiPolygon
}

// isSelfNodingRequired is true for geometries whose elements may cross themselves or each other, which are lines and overlapping collection elements.
func (v *geometryView) isSelfNodingRequired() bool {
	switch v.kind {
	case kindPoint, kindMultiPoint, kindPolygon, kindMultiPolygon:
		return false
	}
	return !(v.hasAreas && v.numGeoms == 1)
}

func (v *geometryView) locateWithDim(p orb.Point) dimLocation {
	return v.locator.locateWithDim(p, false, -1)
}

func (v *geometryView) locateNode(p orb.Point, parent int) Location {
	return v.locator.locateWithDim(p, true, parent).loc
}

// locateAreaVertex locates a ring vertex, which is detected as a boundary point of its own polygon.
func (v *geometryView) locateAreaVertex(p orb.Point) Location {
	return v.locateNode(p, -1)
}

func (v *geometryView) locateLineEnd(p orb.Point) dimLocation {
	return v.locator.locateLineEnd(p)
}

// isNodeInArea returns true if the node lies in the interior of an area, which may happen for overlapping collection elements.
func (v *geometryView) isNodeInArea(p orb.Point, parent int) bool {
	dimLoc := v.locator.locateWithDim(p, true, parent)
	return dimLoc.loc == Interior && dimLoc.dim == A
}

// segmentStrings returns the lines and rings of the geometry whose bound intersects env, or all when restrict is false.
func (v *geometryView) segmentStrings(isA bool, env orb.Bound, restrict bool) []*segmentString {
	var sss []*segmentString
	for _, line := range v.lines {
		if restrict && !boundsIntersect(env, line.bound) {
			continue
		}
		pts := line.coords.RemoveRepeated()
		if len(pts) < 2 {
			continue
		}
		sss = append(sss, &segmentString{
			pts:       pts,
			isA:       isA,
			dim:       L,
			id:        line.id,
			ringID:    -1,
			polygonal: -1,
		})
	}
	for _, poly := range v.polygons {
		if restrict && !boundsIntersect(env, poly.bound) {
			continue
		}
		for ringID, ring := range poly.rings {
			if restrict && ringID != 0 && !boundsIntersect(env, ring.Bound()) {
				continue
			}
			sss = append(sss, &segmentString{
				pts:       ring,
				isA:       isA,
				dim:       A,
				id:        poly.id,
				ringID:    ringID,
				polygonal: poly.parent,
			})
		}
	}
	return sss
}
