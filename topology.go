package relate

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

// topologyComputer accumulates the topological facts found by the evaluator into the predicate. All updates raise matrix entries, so the order in which they are applied does not change the result.
type topologyComputer struct {
	pred  *Predicate
	a, b  *geometryView
	nodes *nodeMap
	trace func(locA, locB Location, dim Dimension)
}

func newTopologyComputer(pred *Predicate, a, b *geometryView, trace func(Location, Location, Dimension)) *topologyComputer {
	tc := &topologyComputer{
		pred:  pred,
		a:     a,
		b:     b,
		nodes: newNodeMap(),
		trace: trace,
	}
	tc.initExteriorDims()
	return tc
}

// initExteriorDims sets the entries that follow from the dimensions alone.
func (tc *topologyComputer) initExteriorDims() {
	dimA, dimB := tc.a.dimensionReal(), tc.b.dimensionReal()
	switch {
	case dimA == P && dimB == L:
		tc.updateDim(Exterior, Interior, L)
	case dimA == L && dimB == P:
		tc.updateDim(Interior, Exterior, L)
	case dimA == P && dimB == A:
		tc.updateDim(Exterior, Interior, A)
		tc.updateDim(Exterior, Boundary, L)
	case dimA == A && dimB == P:
		tc.updateDim(Interior, Exterior, A)
		tc.updateDim(Boundary, Exterior, L)
	case dimA == L && dimB == A:
		tc.updateDim(Exterior, Interior, A)
	case dimA == A && dimB == L:
		tc.updateDim(Interior, Exterior, A)
	case dimA == False || dimB == False:
		if dimA != False {
			tc.initExteriorEmpty(true)
		}
		if dimB != False {
			tc.initExteriorEmpty(false)
		}
	}
}

func (tc *topologyComputer) initExteriorEmpty(isA bool) {
	v := tc.view(isA)
	switch v.dimensionReal() {
	case P:
		tc.updateDimAB(isA, Interior, Exterior, P)
	case L:
		if v.hasBoundary() {
			tc.updateDimAB(isA, Boundary, Exterior, P)
		}
		tc.updateDimAB(isA, Interior, Exterior, L)
	case A:
		tc.updateDimAB(isA, Interior, Exterior, A)
		tc.updateDimAB(isA, Boundary, Exterior, L)
	}
}

func (tc *topologyComputer) view(isA bool) *geometryView {
	if isA {
		return tc.a
	}
	return tc.b
}

func (tc *topologyComputer) isAreaArea() bool {
	return tc.a.dim == A && tc.b.dim == A
}

// isSelfNodingRequired returns true if intersections within an input must be found as well, which is the case when its elements may cross each other.
func (tc *topologyComputer) isSelfNodingRequired() bool {
	if !tc.pred.requireSelfNoding() {
		return false
	}
	return tc.a.isSelfNodingRequired() || tc.b.isSelfNodingRequired() || tc.b.hasAreaAndLine()
}

func (tc *topologyComputer) isExteriorCheckRequired(isA bool) bool {
	return tc.pred.requireExteriorCheck(isA)
}

func (tc *topologyComputer) isResultKnown() bool {
	return tc.pred.isKnown()
}

func (tc *topologyComputer) finish() {
	tc.pred.finish()
}

func (tc *topologyComputer) updateDim(locA, locB Location, dim Dimension) {
	if locA == Unknown || locB == Unknown {
		return
	}
	if tc.trace != nil {
		tc.trace(locA, locB, dim)
	}
	tc.pred.updateDimension(locA, locB, dim)
}

// updateDimAB updates the entry for locations given in source/target order, where the source is A if isAB is true.
func (tc *topologyComputer) updateDimAB(isAB bool, loc1, loc2 Location, dim Dimension) {
	if isAB {
		tc.updateDim(loc1, loc2, dim)
	} else {
		tc.updateDim(loc2, loc1, dim)
	}
}

////////////////////////////////////////////////////////////////

func (tc *topologyComputer) addPointOnPointInterior() {
	tc.updateDim(Interior, Interior, P)
}

func (tc *topologyComputer) addPointOnPointExterior(isA bool) {
	tc.updateDimAB(isA, Interior, Exterior, P)
}

// addPointOnGeometry adds a point of one input located in the other.
func (tc *topologyComputer) addPointOnGeometry(isA bool, locTarget Location, dimTarget Dimension, pt orb.Point) {
	tc.updateDimAB(isA, Interior, locTarget, P)
	if tc.view(!isA).isEmpty {
		return
	}

	switch dimTarget {
	case P, L:
		// lines have their exterior checked by the line ends
	case A:
		// an area always has interior and boundary outside of a point
		tc.updateDimAB(isA, Exterior, Interior, A)
		tc.updateDimAB(isA, Exterior, Boundary, L)
	default:
		panic(errors.AssertionFailedf("point %v has unknown target dimension %v", pt, dimTarget))
	}
}

// addLineEndOnGeometry adds a line end of one input located in the other.
func (tc *topologyComputer) addLineEndOnGeometry(isA bool, locLineEnd, locTarget Location, dimTarget Dimension, pt orb.Point) {
	tc.updateDimAB(isA, locLineEnd, locTarget, P)
	if tc.view(!isA).isEmpty {
		return
	}

	switch dimTarget {
	case P:
	case L:
		// some of the line leaves the other line at this end
		if locTarget == Exterior {
			tc.updateDimAB(isA, Interior, Exterior, L)
		}
	case A:
		if locTarget != Boundary {
			tc.updateDimAB(isA, Interior, locTarget, L)
			tc.updateDimAB(isA, Exterior, locTarget, A)
		}
	default:
		panic(errors.AssertionFailedf("line end %v has unknown target dimension %v", pt, dimTarget))
	}
}

// addAreaVertex adds a ring vertex of one input located in the other.
func (tc *topologyComputer) addAreaVertex(isA bool, locArea, locTarget Location, dimTarget Dimension, pt orb.Point) {
	if locTarget == Exterior {
		tc.updateDimAB(isA, Interior, Exterior, A)
		if locArea == Boundary {
			tc.updateDimAB(isA, Boundary, Exterior, L)
			tc.updateDimAB(isA, Exterior, Exterior, A)
		}
		return
	}

	switch dimTarget {
	case P:
		tc.addAreaVertexOnPoint(isA, locArea)
	case L:
		tc.addAreaVertexOnLine(isA, locArea, locTarget)
	case A:
		tc.addAreaVertexOnArea(isA, locArea, locTarget)
	default:
		panic(errors.AssertionFailedf("area vertex %v has unknown target dimension %v", pt, dimTarget))
	}
}

func (tc *topologyComputer) addAreaVertexOnPoint(isA bool, locArea Location) {
	tc.updateDimAB(isA, locArea, Interior, P)
	tc.updateDimAB(isA, Interior, Exterior, A)
	if locArea == Boundary {
		tc.updateDimAB(isA, Boundary, Exterior, L)
		tc.updateDimAB(isA, Exterior, Exterior, A)
	}
}

func (tc *topologyComputer) addAreaVertexOnLine(isA bool, locArea, locTarget Location) {
	tc.updateDimAB(isA, locArea, locTarget, P)
	if locArea == Interior {
		tc.updateDimAB(isA, Interior, Exterior, A)
	}
}

func (tc *topologyComputer) addAreaVertexOnArea(isA bool, locArea, locTarget Location) {
	if locTarget == Boundary {
		if locArea == Boundary {
			tc.updateDimAB(isA, Boundary, Boundary, P)
		} else {
			tc.updateDimAB(isA, Interior, Interior, A)
			tc.updateDimAB(isA, Interior, Boundary, L)
			tc.updateDimAB(isA, Interior, Exterior, A)
		}
		return
	}

	tc.updateDimAB(isA, Interior, locTarget, A)
	if locArea == Boundary {
		tc.updateDimAB(isA, Boundary, locTarget, L)
		tc.updateDimAB(isA, Exterior, locTarget, A)
	}
}

////////////////////////////////////////////////////////////////

// addIntersection records an intersection of two sections, where a belongs to A if the sections are from different inputs.
func (tc *topologyComputer) addIntersection(a, b nodeSection) {
	if !a.isSameGeometry(b) {
		tc.updateIntersectionAB(a, b)
	}

	nss := tc.nodes.get(a.pt)
	nss.add(a)
	nss.add(b)
}

func (tc *topologyComputer) updateIntersectionAB(a, b nodeSection) {
	if isAreaArea(a, b) && (isProperIntersection(a, b) || isCrossing(a.pt, *a.v0, *a.v1, *b.v0, *b.v1)) {
		// crossing rings share some interior
		tc.updateDim(Interior, Interior, A)
	}

	locA := tc.a.locateNode(a.pt, a.polygonal)
	locB := tc.b.locateNode(a.pt, b.polygonal)
	tc.updateDim(locA, locB, P)
}

// evaluateNodes evaluates the nodes at which both inputs meet, in coordinate order, until the result is known. It returns the number of nodes evaluated.
func (tc *topologyComputer) evaluateNodes() int {
	n := 0
	tc.nodes.ascend(func(nss *nodeSections) bool {
		if nss.hasInteractionAB() {
			tc.evaluateNode(nss)
			n++
		}
		return !tc.isResultKnown()
	})
	return n
}

func (tc *topologyComputer) evaluateNode(nss *nodeSections) {
	node := nss.createNode()
	isAreaInteriorA := tc.a.isNodeInArea(nss.pt, nss.polygonal(true))
	isAreaInteriorB := tc.b.isNodeInArea(nss.pt, nss.polygonal(false))
	node.finish(isAreaInteriorA, isAreaInteriorB)

	for _, e := range node.edges {
		if tc.isAreaArea() {
			tc.updateDim(e.location(true, left), e.location(false, left), A)
			tc.updateDim(e.location(true, right), e.location(false, right), A)
		}
		tc.updateDim(e.location(true, on), e.location(false, on), L)
	}
}
