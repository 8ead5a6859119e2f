package relate

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom/xy/orientation"
)

// compareAngle compares the angles of the vectors origin-p and origin-q, measured CCW from the positive X axis. It returns 0 when they are collinear and point in the same direction.
func compareAngle(origin, p, q orb.Point) int {
	quadP, quadQ := quadrant(origin, p), quadrant(origin, q)
	if quadQ < quadP {
		return 1
	} else if quadP < quadQ {
		return -1
	}

	switch orientationIndex(origin, q, p) {
	case orientation.CounterClockwise:
		return 1
	case orientation.Clockwise:
		return -1
	}
	return 0
}

func isAngleGreater(origin, p, q orb.Point) bool {
	return 0 < compareAngle(origin, p, q)
}

// compareBetween returns 1 if p lies strictly inside the angle from e0 to e1, -1 if strictly outside, and 0 if it is collinear with either.
func compareBetween(origin, p, e0, e1 orb.Point) int {
	comp0 := compareAngle(origin, p, e0)
	if comp0 == 0 {
		return 0
	}
	comp1 := compareAngle(origin, p, e1)
	if comp1 == 0 {
		return 0
	} else if 0 < comp0 && comp1 < 0 {
		return 1
	}
	return -1
}

// isCrossing returns true if the edges to b0 and b1 lie on different sides of the edges to a0 and a1 around the node. Collinear edges do not cross.
func isCrossing(node, a0, a1, b0, b1 orb.Point) bool {
	aLo, aHi := a0, a1
	if isAngleGreater(node, aLo, aHi) {
		aLo, aHi = a1, a0
	}

	between0 := compareBetween(node, b0, aLo, aHi)
	if between0 == 0 {
		return false
	}
	between1 := compareBetween(node, b1, aLo, aHi)
	if between1 == 0 {
		return false
	}
	return between0 != between1
}

////////////////////////////////////////////////////////////////

type position int

const (
	left position = iota
	right
	on
)

func geomIndex(isA bool) int {
	if isA {
		return 0
	}
	return 1
}

// edgeLabel is the topology of one geometry along a node edge.
type edgeLabel struct {
	dim             Dimension // False while unknown
	left, right, on Location
}

func (l *edgeLabel) location(pos position) Location {
	switch pos {
	case left:
		return l.left
	case right:
		return l.right
	}
	return l.on
}

func (l *edgeLabel) setLocation(pos position, loc Location) {
	switch pos {
	case left:
		l.left = loc
	case right:
		l.right = loc
	default:
		l.on = loc
	}
}

var unknownLabel = edgeLabel{False, Unknown, Unknown, Unknown}

// areaLabel returns the label of a ring edge. Rings run clockwise, so the interior lies right of forward edges.
func areaLabel(isForward bool) edgeLabel {
	if isForward {
		return edgeLabel{A, Exterior, Interior, Boundary}
	}
	return edgeLabel{A, Interior, Exterior, Boundary}
}

var lineLabel = edgeLabel{L, Exterior, Exterior, Interior}

// relateEdge is an edge leaving a node towards dir.
type relateEdge struct {
	dir   orb.Point
	label [2]edgeLabel
}

func newRelateEdge(dir orb.Point, isA bool, dim Dimension, isForward bool) *relateEdge {
	e := &relateEdge{
		dir:   dir,
		label: [2]edgeLabel{unknownLabel, unknownLabel},
	}
	if dim == A {
		e.label[geomIndex(isA)] = areaLabel(isForward)
	} else {
		e.label[geomIndex(isA)] = lineLabel
	}
	return e
}

func (e *relateEdge) location(isA bool, pos position) Location {
	return e.label[geomIndex(isA)].location(pos)
}

func (e *relateEdge) isKnown(isA bool) bool {
	return e.label[geomIndex(isA)].dim != False
}

func (e *relateEdge) isInterior(isA bool, pos position) bool {
	return e.location(isA, pos) == Interior
}

// merge adds a coincident edge. Area edges override line edges and interior sides take precedence over exterior sides.
func (e *relateEdge) merge(isA bool, dim Dimension, isForward bool) {
	var l edgeLabel
	if dim == A {
		l = areaLabel(isForward)
	} else {
		l = lineLabel
	}

	label := &e.label[geomIndex(isA)]
	if label.dim == False {
		*label = l
		return
	}
	if dim == A && label.dim == L {
		label.dim = A
		label.on = Boundary
	}
	if label.left != Interior {
		label.left = l.left
	}
	if label.right != Interior {
		label.right = l.right
	}
}

func (e *relateEdge) setAreaInterior(isA bool) {
	label := &e.label[geomIndex(isA)]
	label.left, label.right, label.on = Interior, Interior, Interior
}

func (e *relateEdge) setUnknownLocations(isA bool, loc Location) {
	label := &e.label[geomIndex(isA)]
	for _, pos := range []position{left, right, on} {
		if label.location(pos) == Unknown {
			label.setLocation(pos, loc)
		}
	}
}

func (e *relateEdge) String() string {
	s := fmt.Sprintf("dir=%v", [2]float64(e.dir))
	for i, name := range []string{" A:", " B:"} {
		l := e.label[i]
		s += name + l.dim.String() + l.left.String() + l.on.String() + l.right.String()
	}
	return s
}

////////////////////////////////////////////////////////////////

// relateNode holds the edges incident to a node sorted CCW by angle.
type relateNode struct {
	pt    orb.Point
	edges []*relateEdge
}

func (n *relateNode) addEdges(ns nodeSection) {
	switch ns.dim {
	case L:
		n.addEdge(ns.isA, ns.v0, L, false)
		n.addEdge(ns.isA, ns.v1, L, false)
	case A:
		// the entering edge has the interior on the left, the exiting edge on the right
		e0 := n.addEdge(ns.isA, ns.v0, A, false)
		e1 := n.addEdge(ns.isA, ns.v1, A, true)
		if e0 == nil || e1 == nil {
			return
		}
		i0, i1 := n.indexOf(e0), n.indexOf(e1)
		n.updateEdgesInArea(ns.isA, i0, i1)
		n.updateIfAreaPrev(ns.isA, i0)
		n.updateIfAreaNext(ns.isA, i1)
	}
}

func (n *relateNode) indexOf(e *relateEdge) int {
	for i, edge := range n.edges {
		if edge == e {
			return i
		}
	}
	return -1
}

func (n *relateNode) next(i int) int {
	if len(n.edges)-1 <= i {
		return 0
	}
	return i + 1
}

func (n *relateNode) prev(i int) int {
	if 0 < i {
		return i - 1
	}
	return len(n.edges) - 1
}

// updateEdgesInArea marks the edges strictly between from and to (CCW) as lying in the area interior.
func (n *relateNode) updateEdgesInArea(isA bool, from, to int) {
	for i := n.next(from); i != to; i = n.next(i) {
		n.edges[i].setAreaInterior(isA)
	}
}

func (n *relateNode) updateIfAreaPrev(isA bool, i int) {
	if n.edges[n.prev(i)].isInterior(isA, left) {
		n.edges[i].setAreaInterior(isA)
	}
}

func (n *relateNode) updateIfAreaNext(isA bool, i int) {
	if n.edges[n.next(i)].isInterior(isA, right) {
		n.edges[i].setAreaInterior(isA)
	}
}

// addEdge inserts an edge in CCW order, or merges it into an existing edge with the same direction. Missing and zero-length edges are skipped.
func (n *relateNode) addEdge(isA bool, dir *orb.Point, dim Dimension, isForward bool) *relateEdge {
	if dir == nil || *dir == n.pt {
		return nil
	}

	insert := len(n.edges)
	for i, e := range n.edges {
		comp := compareAngle(n.pt, e.dir, *dir)
		if comp == 0 {
			e.merge(isA, dim, isForward)
			return e
		} else if comp == 1 {
			insert = i
			break
		}
	}

	e := newRelateEdge(*dir, isA, dim, isForward)
	n.edges = append(n.edges, nil)
	copy(n.edges[insert+1:], n.edges[insert:])
	n.edges[insert] = e
	return e
}

// finish completes the edge locations of both geometries. Nodes in the interior of an area have that area on all sides.
func (n *relateNode) finish(isAreaInteriorA, isAreaInteriorB bool) {
	n.finishGeometry(true, isAreaInteriorA)
	n.finishGeometry(false, isAreaInteriorB)
}

func (n *relateNode) finishGeometry(isA, isAreaInterior bool) {
	if isAreaInterior {
		for _, e := range n.edges {
			e.setAreaInterior(isA)
		}
		return
	}

	start := -1
	for i, e := range n.edges {
		if e.isKnown(isA) {
			start = i
			break
		}
	}
	if start < 0 {
		panic(errors.AssertionFailedf("node %v has no edges of geometry %s", n.pt, geometryName(isA)))
	}

	// propagate the side locations CCW
	loc := n.edges[start].location(isA, left)
	for i := n.next(start); i != start; i = n.next(i) {
		n.edges[i].setUnknownLocations(isA, loc)
		loc = n.edges[i].location(isA, left)
	}
}

func (n *relateNode) hasExteriorEdge(isA bool) bool {
	for _, e := range n.edges {
		if e.location(isA, left) == Exterior || e.location(isA, right) == Exterior {
			return true
		}
	}
	return false
}

func geometryName(isA bool) string {
	if isA {
		return "A"
	}
	return "B"
}
