package relate

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geom/xy/lineintersection"
	"github.com/twpayne/go-geom/xy/lineintersector"
	"github.com/twpayne/go-geom/xy/orientation"
)

// segmentString is a line or ring of one input together with the identity of its element. Rings are closed and oriented, shells clockwise.
type segmentString struct {
	pts       polyline
	isA       bool
	dim       Dimension
	id        int
	ringID    int
	polygonal int
}

func (ss *segmentString) closed() bool {
	return ss.pts.Closed()
}

// createNodeSection returns the section through pt, which lies on segment i.
func (ss *segmentString) createNodeSection(i int, pt orb.Point) nodeSection {
	return nodeSection{
		isA:       ss.isA,
		dim:       ss.dim,
		id:        ss.id,
		ringID:    ss.ringID,
		polygonal: ss.polygonal,
		atVertex:  pt == ss.pts[i] || pt == ss.pts[i+1],
		pt:        pt,
		v0:        ss.prevVertex(i, pt),
		v1:        ss.nextVertex(i, pt),
	}
}

func (ss *segmentString) prevVertex(i int, pt orb.Point) *orb.Point {
	var p orb.Point
	if start := ss.pts[i]; start != pt {
		p = start
	} else if 0 < i {
		p = ss.pts[i-1]
	} else if ss.closed() {
		p = ss.pts[len(ss.pts)-2]
	} else {
		return nil
	}
	return &p
}

func (ss *segmentString) nextVertex(i int, pt orb.Point) *orb.Point {
	var p orb.Point
	if end := ss.pts[i+1]; end != pt {
		p = end
	} else if i < len(ss.pts)-2 {
		p = ss.pts[i+2]
	} else if ss.closed() {
		p = ss.pts[1]
	} else {
		return nil
	}
	return &p
}

// isContainingSegment returns true if segment i is the one that reports an intersection at pt. Intersections at a vertex are reported only by the segment starting there, except for the last vertex of an open line.
func (ss *segmentString) isContainingSegment(i int, pt orb.Point) bool {
	if pt == ss.pts[i] {
		return true
	} else if pt == ss.pts[i+1] {
		return !ss.closed() && i == len(ss.pts)-2
	}
	return true
}

////////////////////////////////////////////////////////////////

// intersectSegments returns the intersection points of p0-p1 and q0-q1, and whether they intersect in a single point interior to both.
func intersectSegments(p0, p1, q0, q1 orb.Point) ([]orb.Point, bool) {
	if !pointBound(p0, p1).Intersects(pointBound(q0, q1)) {
		return nil, false
	}

	res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{}, toCoord(p0), toCoord(p1), toCoord(q0), toCoord(q1))
	if !res.HasIntersection() {
		return nil, false
	}

	var pts []orb.Point
	for _, c := range res.Intersection() {
		pt := orb.Point{c[0], c[1]}
		if len(pts) == 0 || pts[0] != pt {
			pts = append(pts, pt)
		}
	}
	if res.Type() != lineintersection.PointIntersection || len(pts) != 1 {
		return pts, false
	}

	// endpoints touching the other segment are exact
	for _, end := range []struct{ p, s0, s1 orb.Point }{{p0, q0, q1}, {p1, q0, q1}, {q0, p0, p1}, {q1, p0, p1}} {
		if end.p == pts[0] {
			return pts, false
		} else if pointBound(end.s0, end.s1).Contains(end.p) && orientationIndex(end.s0, end.s1, end.p) == orientation.Collinear {
			pts[0] = end.p
			return pts, false
		}
	}
	return pts, true
}

// edgeSegmentIntersector adds the intersections of segment pairs to the topology.
type edgeSegmentIntersector struct {
	topo *topologyComputer
}

func (si *edgeSegmentIntersector) isDone() bool {
	return si.topo.isResultKnown()
}

func (si *edgeSegmentIntersector) processIntersections(ss0 *segmentString, i0 int, ss1 *segmentString, i1 int) {
	if ss0 == ss1 && i0 == i1 {
		return
	} else if !ss0.isA {
		ss0, i0, ss1, i1 = ss1, i1, ss0, i0
	}

	pts, proper := intersectSegments(ss0.pts[i0], ss0.pts[i0+1], ss1.pts[i1], ss1.pts[i1+1])
	for _, pt := range pts {
		if proper || ss0.isContainingSegment(i0, pt) && ss1.isContainingSegment(i1, pt) {
			a := ss0.createNodeSection(i0, pt)
			b := ss1.createNodeSection(i1, pt)
			si.topo.addIntersection(a, b)
		}
	}
}

////////////////////////////////////////////////////////////////

// monotoneChain is a run of segments whose directions all lie in the same quadrant, so that it cannot intersect itself.
type monotoneChain struct {
	ss         *segmentString
	start, end int
	bound      orb.Bound
	id         int
}

func monotoneChains(ss *segmentString) []*monotoneChain {
	chains := []*monotoneChain{}
	for start := 0; start < len(ss.pts)-1; {
		end := findChainEnd(ss.pts, start)
		chains = append(chains, &monotoneChain{
			ss:    ss,
			start: start,
			end:   end,
			bound: ss.pts[start : end+1].Bound(),
		})
		start = end
	}
	return chains
}

func findChainEnd(pts polyline, start int) int {
	safe := start
	for safe < len(pts)-1 && pts[safe] == pts[safe+1] {
		safe++
	}
	if len(pts)-1 <= safe {
		return len(pts) - 1
	}

	quad := quadrant(pts[safe], pts[safe+1])
	last := start + 1
	for ; last < len(pts); last++ {
		if pts[last-1] != pts[last] && quadrant(pts[last-1], pts[last]) != quad {
			break
		}
	}
	return last - 1
}

// computeOverlaps reports all pairs of overlapping segments of both chains by recursively halving them.
func (mc *monotoneChain) computeOverlaps(mc2 *monotoneChain, si *edgeSegmentIntersector) {
	mc.overlaps(mc.start, mc.end, mc2, mc2.start, mc2.end, si)
}

func (mc *monotoneChain) overlaps(start0, end0 int, mc2 *monotoneChain, start1, end1 int, si *edgeSegmentIntersector) {
	if end0-start0 == 1 && end1-start1 == 1 {
		si.processIntersections(mc.ss, start0, mc2.ss, start1)
		return
	}

	pts0, pts1 := mc.ss.pts, mc2.ss.pts
	if !pointBound(pts0[start0], pts0[end0]).Intersects(pointBound(pts1[start1], pts1[end1])) {
		return
	}

	mid0, mid1 := (start0+end0)/2, (start1+end1)/2
	if start0 < mid0 {
		if start1 < mid1 {
			mc.overlaps(start0, mid0, mc2, start1, mid1, si)
		}
		if mid1 < end1 {
			mc.overlaps(start0, mid0, mc2, mid1, end1, si)
		}
	}
	if si.isDone() {
		return
	}
	if mid0 < end0 {
		if start1 < mid1 {
			mc.overlaps(mid0, end0, mc2, start1, mid1, si)
		}
		if mid1 < end1 {
			mc.overlaps(mid0, end0, mc2, mid1, end1, si)
		}
	}
}

////////////////////////////////////////////////////////////////

// edgeSetIntersector finds all intersections between and within the edges of both inputs.
type edgeSetIntersector struct {
	chains []*monotoneChain
	index  rtree.RTreeG[*monotoneChain]
}

func newEdgeSetIntersector(edgesA, edgesB []*segmentString, env orb.Bound) *edgeSetIntersector {
	esi := &edgeSetIntersector{}
	for _, edges := range [][]*segmentString{edgesA, edgesB} {
		for _, ss := range edges {
			for _, mc := range monotoneChains(ss) {
				if !boundsIntersect(env, mc.bound) {
					continue
				}
				mc.id = len(esi.chains)
				esi.chains = append(esi.chains, mc)
				esi.index.Insert(mc.bound.Min, mc.bound.Max, mc)
			}
		}
	}
	return esi
}

func (esi *edgeSetIntersector) process(si *edgeSegmentIntersector) {
	for _, query := range esi.chains {
		esi.index.Search(query.bound.Min, query.bound.Max, func(_, _ [2]float64, test *monotoneChain) bool {
			// each pair once
			if query.id < test.id {
				test.computeOverlaps(query, si)
			}
			return !si.isDone()
		})
		if si.isDone() {
			return
		}
	}
}

// mutualEdgeIntersector finds the intersections between the edges of A, which are indexed once, and the edges of B.
type mutualEdgeIntersector struct {
	index rtree.RTreeG[*monotoneChain]
}

// newMutualEdgeIntersector indexes the chains of edgesA that intersect env, or all when env is empty.
func newMutualEdgeIntersector(edgesA []*segmentString, env orb.Bound) *mutualEdgeIntersector {
	mei := &mutualEdgeIntersector{}
	for _, ss := range edgesA {
		for _, mc := range monotoneChains(ss) {
			if !env.IsEmpty() && !boundsIntersect(env, mc.bound) {
				continue
			}
			mei.index.Insert(mc.bound.Min, mc.bound.Max, mc)
		}
	}
	return mei
}

// process is read-only on the index and may run concurrently.
func (mei *mutualEdgeIntersector) process(edgesB []*segmentString, si *edgeSegmentIntersector) {
	for _, ss := range edgesB {
		for _, query := range monotoneChains(ss) {
			mei.index.Search(query.bound.Min, query.bound.Max, func(_, _ [2]float64, test *monotoneChain) bool {
				test.computeOverlaps(query, si)
				return !si.isDone()
			})
			if si.isDone() {
				return
			}
		}
	}
}
