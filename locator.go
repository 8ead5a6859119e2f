package relate

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// areaLocator locates points relative to a polygonal element.
type areaLocator interface {
	Locate(orb.Point) Location
}

// simpleAreaLocator tests each ring of each polygon in turn.
type simpleAreaLocator struct {
	v         *geometryView
	polygonal polygonalElement
}

func (l simpleAreaLocator) Locate(p orb.Point) Location {
	if !l.polygonal.bound.Contains(p) {
		return Exterior
	}
	for _, i := range l.polygonal.polygons {
		if loc := locatePolygon(p, l.v.polygons[i]); loc != Exterior {
			return loc
		}
	}
	return Exterior
}

func locatePolygon(p orb.Point, poly polygonElement) Location {
	if !poly.bound.Contains(p) {
		return Exterior
	}
	loc := poly.rings[0].Locate(p)
	if loc != Interior {
		return loc
	}
	for _, hole := range poly.rings[1:] {
		switch hole.Locate(p) {
		case Interior:
			return Exterior
		case Boundary:
			return Boundary
		}
	}
	return Interior
}

type ringSegment struct {
	p0, p1 orb.Point
}

// indexedAreaLocator counts ray crossings only for the ring segments that straddle the point's Y coordinate, found through an R-tree. It is read-only after construction.
type indexedAreaLocator struct {
	bound orb.Bound
	tree  rtree.RTreeG[ringSegment]
}

func newIndexedAreaLocator(v *geometryView, polygonal polygonalElement) *indexedAreaLocator {
	l := &indexedAreaLocator{
		bound: polygonal.bound,
	}
	for _, i := range polygonal.polygons {
		for _, ring := range v.polygons[i].rings {
			for j := 1; j < len(ring); j++ {
				b := pointBound(ring[j-1], ring[j])
				l.tree.Insert(b.Min, b.Max, ringSegment{ring[j-1], ring[j]})
			}
		}
	}
	return l
}

func (l *indexedAreaLocator) Locate(p orb.Point) Location {
	if !l.bound.Contains(p) {
		return Exterior
	}
	counter := rayCrossingCounter{p: p}
	l.tree.Search([2]float64{p[0], p[1]}, [2]float64{math.MaxFloat64, p[1]}, func(_, _ [2]float64, seg ringSegment) bool {
		counter.countSegment(seg.p0, seg.p1)
		return !counter.onSegment
	})
	return counter.location()
}

////////////////////////////////////////////////////////////////

// pointLocator locates points relative to all elements of a geometry, giving precedence to areas over lines over points.
type pointLocator struct {
	v        *geometryView
	points   map[orb.Point]struct{}
	boundary *linearBoundary
	areas    []areaLocator
	adjacent *adjacentEdgeLocator
}

func newPointLocator(v *geometryView, rule BoundaryNodeRule) *pointLocator {
	l := &pointLocator{
		v:        v,
		points:   map[orb.Point]struct{}{},
		boundary: newLinearBoundary(v.lines, rule),
	}
	for _, p := range v.points {
		l.points[p] = struct{}{}
	}
	for _, polygonal := range v.polygonals {
		if v.isPrepared {
			l.areas = append(l.areas, newIndexedAreaLocator(v, polygonal))
		} else {
			l.areas = append(l.areas, simpleAreaLocator{v, polygonal})
		}
	}
	if 1 < len(v.polygons) {
		l.adjacent = newAdjacentEdgeLocator(v)
	}
	return l
}

// locateWithDim locates p. Nodes are known to lie on the linework of the geometry, and on the boundary of their parent polygonal.
func (l *pointLocator) locateWithDim(p orb.Point, isNode bool, parent int) dimLocation {
	if l.v.isEmpty {
		return exteriorDimLocation
	} else if isNode && l.v.isPolygonal() {
		return dimLocation{Boundary, A}
	}

	if 0 < len(l.areas) {
		if loc := l.locateOnAreas(p, isNode, parent); loc != Exterior {
			return areaDimLocation(loc)
		}
	}
	if 0 < len(l.v.lines) {
		if loc := l.locateOnLines(p, isNode); loc != Exterior {
			return lineDimLocation(loc)
		}
	}
	if _, ok := l.points[p]; ok {
		return pointDimLocation(Interior)
	}
	return exteriorDimLocation
}

// locateLineEnd locates the end point of one of the geometry's own lines.
func (l *pointLocator) locateLineEnd(p orb.Point) dimLocation {
	if 0 < len(l.areas) {
		if loc := l.locateOnAreas(p, false, -1); loc != Exterior {
			return areaDimLocation(loc)
		}
	}
	if l.boundary.isBoundary(p) {
		return dimLocation{Boundary, L}
	}
	return dimLocation{Interior, L}
}

func (l *pointLocator) locateOnLines(p orb.Point, isNode bool) Location {
	if l.boundary.isBoundary(p) {
		return Boundary
	} else if isNode {
		return Interior
	}
	for _, line := range l.v.lines {
		if line.bound.Contains(p) && line.coords.OnLine(p) {
			return Interior
		}
	}
	return Exterior
}

func (l *pointLocator) locateOnAreas(p orb.Point, isNode bool, parent int) Location {
	numBoundaries := 0
	for i, area := range l.areas {
		var loc Location
		if isNode && i == parent {
			loc = Boundary
		} else {
			loc = area.Locate(p)
		}

		if loc == Interior {
			return Interior
		} else if loc == Boundary {
			numBoundaries++
		}
	}
	if numBoundaries == 1 {
		return Boundary
	} else if 1 < numBoundaries {
		// on the boundary of several adjacent or overlapping areas
		return l.adjacent.Locate(p)
	}
	return Exterior
}

////////////////////////////////////////////////////////////////

// adjacentEdgeLocator locates points on the boundaries of more than one polygon. The point is on the boundary of the union if any of the incident edges has the exterior on one side.
type adjacentEdgeLocator struct {
	rings []polyline
}

func newAdjacentEdgeLocator(v *geometryView) *adjacentEdgeLocator {
	l := &adjacentEdgeLocator{}
	for _, poly := range v.polygons {
		l.rings = append(l.rings, poly.rings...)
	}
	return l
}

func (l *adjacentEdgeLocator) Locate(p orb.Point) Location {
	sections := nodeSections{pt: p}
	for _, ring := range l.rings {
		for i := 0; i < len(ring)-1; i++ {
			p0, p1 := ring[i], ring[i+1]
			if p == p1 {
				// handled by the next segment
				continue
			} else if p == p0 {
				prev := ring[len(ring)-2]
				if 0 < i {
					prev = ring[i-1]
				}
				sections.add(newAdjacentSection(p, prev, p1))
			} else if pointBound(p0, p1).Contains(p) && orientationIndex(p0, p1, p) == 0 {
				sections.add(newAdjacentSection(p, p0, p1))
			}
		}
	}

	node := sections.createNode()
	if node.hasExteriorEdge(true) {
		return Boundary
	}
	return Interior
}

func newAdjacentSection(p, prev, next orb.Point) nodeSection {
	return nodeSection{
		isA:       true,
		dim:       A,
		id:        1,
		ringID:    0,
		polygonal: -1,
		pt:        p,
		v0:        &prev,
		v1:        &next,
	}
}
