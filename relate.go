package relate

import (
	"io"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

type options struct {
	rule  BoundaryNodeRule
	log   logrus.FieldLogger
	trace func(locA, locB Location, dim Dimension)
}

// Option configures an evaluation.
type Option func(*options)

// WithBoundaryNodeRule sets the rule that decides which line end points lie in the boundary. The default is Mod2.
func WithBoundaryNodeRule(rule BoundaryNodeRule) Option {
	return func(o *options) {
		o.rule = rule
	}
}

// WithLogger sets the logger that receives debug messages about the evaluation stages. By default nothing is logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// withTrace sets a function that is called for every matrix update.
func withTrace(trace func(locA, locB Location, dim Dimension)) Option {
	return func(o *options) {
		o.trace = trace
	}
}

func newOptions(opts []Option) options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	discard.SetLevel(logrus.PanicLevel)

	o := options{
		rule: Mod2,
		log:  discard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

////////////////////////////////////////////////////////////////

// evaluator evaluates predicates of geometry A against other geometries. When A is prepared, its view and edge index are shared by all evaluations.
type evaluator struct {
	a      *geometryView
	mutual *mutualEdgeIntersector
	opts   options
}

func newEvaluator(g orb.Geometry, prepared bool, opts []Option) (*evaluator, error) {
	o := newOptions(opts)
	a, err := newGeometryView(g, o.rule, prepared)
	if err != nil {
		return nil, err
	}

	ev := &evaluator{
		a:    a,
		opts: o,
	}
	if prepared && a.hasEdges() {
		ev.mutual = newMutualEdgeIntersector(a.segmentStrings(true, emptyBound, false), emptyBound)
	}
	return ev, nil
}

// evaluate runs the stages of the evaluation of pred for A and B, returning as soon as the value of pred is known.
func (ev *evaluator) evaluate(g orb.Geometry, pred *Predicate) (bool, error) {
	b, err := newGeometryView(g, ev.opts.rule, false)
	if err != nil {
		return false, err
	}
	pred.reset()
	a := ev.a

	if !ev.hasRequiredEnvelopeInteraction(b, pred) {
		pred.setValue(false)
		return ev.result(pred, "envelope"), nil
	}

	dimA, dimB := a.dimensionReal(), b.dimensionReal()
	if a.isEmpty && b.isEmpty {
		pred.initDims(dimA, dimB)
		pred.initEnvelopes(a.bound, b.bound)
		pred.finish()
		return ev.result(pred, "empty"), nil
	}

	pred.initDims(dimA, dimB)
	if pred.isKnown() {
		return ev.result(pred, "dimensions"), nil
	}
	pred.initEnvelopes(a.bound, b.bound)
	if pred.isKnown() {
		return ev.result(pred, "envelope"), nil
	}

	tc := newTopologyComputer(pred, a, b, ev.opts.trace)
	if dimA == P && dimB == P {
		computePP(a, b, tc)
		tc.finish()
		return ev.result(pred, "points"), nil
	}

	// points of B against A first, A may be prepared
	if computeAtPoints(b, false, a, tc) {
		return ev.result(pred, "points"), nil
	}
	if computeAtPoints(a, true, b, tc) {
		return ev.result(pred, "points"), nil
	}
	if a.hasEdges() && b.hasEdges() {
		ev.computeAtEdges(b, tc)
		if tc.isResultKnown() {
			return ev.result(pred, "edges"), nil
		}
	}
	tc.finish()
	return ev.result(pred, "finish"), nil
}

func (ev *evaluator) result(pred *Predicate, stage string) bool {
	ev.opts.log.WithFields(logrus.Fields{
		"predicate": pred.Name(),
		"stage":     stage,
		"value":     pred.value(),
		"matrix":    pred.matrix.String(),
	}).Debug("relate: evaluated")
	return pred.value()
}

func (ev *evaluator) hasRequiredEnvelopeInteraction(b *geometryView, pred *Predicate) bool {
	boundA, boundB := ev.a.bound, b.bound
	isInteracts := false
	if pred.requireCovers(true) {
		if !boundCovers(boundA, boundB) {
			return false
		}
		isInteracts = true
	} else if pred.requireCovers(false) {
		if !boundCovers(boundB, boundA) {
			return false
		}
		isInteracts = true
	}
	if !isInteracts && pred.requireInteraction() && !boundsIntersect(boundA, boundB) {
		return false
	}
	return true
}

// computePP relates two point sets, where zero-length lines count as points.
func computePP(a, b *geometryView, tc *topologyComputer) {
	numBInA := 0
	for pt := range b.uniquePoints {
		if _, ok := a.uniquePoints[pt]; ok {
			numBInA++
			tc.addPointOnPointInterior()
		} else {
			tc.addPointOnPointExterior(false)
		}
		if tc.isResultKnown() {
			return
		}
	}
	if numBInA < len(a.uniquePoints) {
		tc.addPointOnPointExterior(true)
	}
}

// computeAtPoints locates the points, line ends and ring vertices of v in target. It returns true when the result is known.
func computeAtPoints(v *geometryView, isA bool, target *geometryView, tc *topologyComputer) bool {
	if computePoints(v, isA, target, tc) {
		return true
	}

	// line ends and ring vertices are needed to find intersections with the exterior of the target, or when there are no edges to find them
	checkDisjoint := target.hasAreas || tc.isExteriorCheckRequired(isA) || v.hasZeroLen
	if !checkDisjoint {
		return false
	}
	if computeLineEnds(v, isA, target, tc) {
		return true
	}
	return computeAreaVertices(v, isA, target, tc)
}

func computePoints(v *geometryView, isA bool, target *geometryView, tc *topologyComputer) bool {
	for _, pt := range v.effectivePoints {
		dimLoc := target.locateWithDim(pt)
		tc.addPointOnGeometry(isA, dimLoc.loc, dimLoc.dimension(target.dim), pt)
		if tc.isResultKnown() {
			return true
		}
	}
	return false
}

func computeLineEnds(v *geometryView, isA bool, target *geometryView, tc *topologyComputer) bool {
	hasExterior := false
	for _, line := range v.lines {
		if hasExterior && !boundsIntersect(line.bound, target.bound) {
			continue
		}

		hasExterior = computeLineEnd(v, isA, line.coords[0], target, tc) || hasExterior
		if tc.isResultKnown() {
			return true
		}
		if !line.coords.Closed() {
			hasExterior = computeLineEnd(v, isA, line.coords[len(line.coords)-1], target, tc) || hasExterior
			if tc.isResultKnown() {
				return true
			}
		}
	}
	return false
}

// computeLineEnd adds a line end and returns true if it lies in the exterior of the target.
func computeLineEnd(v *geometryView, isA bool, pt orb.Point, target *geometryView, tc *topologyComputer) bool {
	dimLocEnd := v.locateLineEnd(pt)
	if dimLocEnd.dimension(v.dim) != L {
		// covered by an area of the same input
		return false
	}

	dimLoc := target.locateWithDim(pt)
	tc.addLineEndOnGeometry(isA, dimLocEnd.loc, dimLoc.loc, dimLoc.dimension(target.dim), pt)
	return dimLoc.loc == Exterior
}

func computeAreaVertices(v *geometryView, isA bool, target *geometryView, tc *topologyComputer) bool {
	if !v.hasAreas || target.dim < L {
		// point targets are handled from the other side
		return false
	}

	hasExterior := false
	for _, poly := range v.polygons {
		if hasExterior && !boundsIntersect(poly.bound, target.bound) {
			continue
		}
		for _, ring := range poly.rings {
			pt := ring[0]
			locArea := v.locateAreaVertex(pt)
			dimLoc := target.locateWithDim(pt)
			tc.addAreaVertex(isA, locArea, dimLoc.loc, dimLoc.dimension(target.dim), pt)
			hasExterior = hasExterior || dimLoc.loc == Exterior
			if tc.isResultKnown() {
				return true
			}
		}
	}
	return false
}

// computeAtEdges intersects the edges of both inputs within the intersection of their bounds, and evaluates the resulting nodes.
func (ev *evaluator) computeAtEdges(b *geometryView, tc *topologyComputer) {
	env := boundIntersection(ev.a.bound, b.bound)
	if env.IsEmpty() {
		return
	}

	edgesB := b.segmentStrings(false, env, true)
	si := &edgeSegmentIntersector{topo: tc}
	if tc.isSelfNodingRequired() {
		edgesA := ev.a.segmentStrings(true, env, true)
		newEdgeSetIntersector(edgesA, edgesB, env).process(si)
	} else if ev.mutual != nil {
		ev.mutual.process(edgesB, si)
	} else {
		edgesA := ev.a.segmentStrings(true, env, true)
		newMutualEdgeIntersector(edgesA, env).process(edgesB, si)
	}
	if tc.isResultKnown() {
		return
	}
	n := tc.evaluateNodes()
	ev.opts.log.WithFields(logrus.Fields{
		"nodes":  n,
		"total":  tc.nodes.len(),
		"edgesB": len(edgesB),
	}).Debug("relate: evaluated nodes")
}

////////////////////////////////////////////////////////////////

// Evaluate evaluates the predicate for geometries a and b. The state of p is reset first, and after evaluation p.Matrix holds the matrix entries computed.
func Evaluate(a, b orb.Geometry, p *Predicate, opts ...Option) (bool, error) {
	ev, err := newEvaluator(a, false, opts)
	if err != nil {
		return false, err
	}
	return ev.evaluate(b, p)
}

func evaluateKind(a, b orb.Geometry, kind PredicateKind, opts []Option) (bool, error) {
	return Evaluate(a, b, NewPredicate(kind), opts...)
}

// Intersects returns true if a and b have at least one point in common.
func Intersects(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindIntersects, opts)
}

// Disjoint returns true if a and b have no point in common.
func Disjoint(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindDisjoint, opts)
}

// Touches returns true if a and b have boundary points in common but their interiors do not intersect.
func Touches(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindTouches, opts)
}

// Crosses returns true if the interiors of a and b intersect in a lower dimension than the highest of both, and neither covers the other.
func Crosses(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindCrosses, opts)
}

// Overlaps returns true if a and b have the same dimension, their interiors intersect in that dimension, and neither covers the other.
func Overlaps(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindOverlaps, opts)
}

// Contains returns true if b lies in a and their interiors intersect.
func Contains(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindContains, opts)
}

// Within returns true if a lies in b and their interiors intersect.
func Within(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindWithin, opts)
}

// Covers returns true if every point of b is a point of a.
func Covers(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindCovers, opts)
}

// CoveredBy returns true if every point of a is a point of b.
func CoveredBy(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindCoveredBy, opts)
}

// EqualsTopo returns true if a and b are topologically equal, that is they contain the same points.
func EqualsTopo(a, b orb.Geometry, opts ...Option) (bool, error) {
	return evaluateKind(a, b, KindEquals, opts)
}

// RelatePattern returns true if the DE-9IM matrix of a and b matches the pattern.
func RelatePattern(a, b orb.Geometry, pattern string, opts ...Option) (bool, error) {
	p, err := NewPatternPredicate(pattern)
	if err != nil {
		return false, err
	}
	return Evaluate(a, b, p, opts...)
}

// Relate returns the DE-9IM matrix of a and b.
func Relate(a, b orb.Geometry, opts ...Option) (Matrix, error) {
	p := MatrixPredicate()
	if _, err := Evaluate(a, b, p, opts...); err != nil {
		return Matrix{}, err
	}
	return p.Matrix(), nil
}

////////////////////////////////////////////////////////////////

// Prepared is a geometry prepared for repeated evaluation against other geometries. Its point locators and edge index are built once. It is immutable and may be used concurrently.
type Prepared struct {
	ev *evaluator
}

// Prepare prepares geometry a. The options apply to all evaluations.
func Prepare(a orb.Geometry, opts ...Option) (*Prepared, error) {
	ev, err := newEvaluator(a, true, opts)
	if err != nil {
		return nil, err
	}
	return &Prepared{ev}, nil
}

// Geometry returns the prepared geometry.
func (p *Prepared) Geometry() orb.Geometry {
	return p.ev.a.geom
}

// Evaluate evaluates the predicate for the prepared geometry and b, see Evaluate.
func (p *Prepared) Evaluate(b orb.Geometry, pred *Predicate) (bool, error) {
	return p.ev.evaluate(b, pred)
}

func (p *Prepared) evaluateKind(b orb.Geometry, kind PredicateKind) (bool, error) {
	return p.ev.evaluate(b, NewPredicate(kind))
}

// Intersects returns true if the prepared geometry and b have at least one point in common.
func (p *Prepared) Intersects(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindIntersects)
}

// Disjoint returns true if the prepared geometry and b have no point in common.
func (p *Prepared) Disjoint(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindDisjoint)
}

// Touches is like Touches for the prepared geometry.
func (p *Prepared) Touches(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindTouches)
}

// Crosses is like Crosses for the prepared geometry.
func (p *Prepared) Crosses(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindCrosses)
}

// Overlaps is like Overlaps for the prepared geometry.
func (p *Prepared) Overlaps(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindOverlaps)
}

// Contains returns true if b lies in the prepared geometry and their interiors intersect.
func (p *Prepared) Contains(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindContains)
}

// Within is like Within for the prepared geometry.
func (p *Prepared) Within(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindWithin)
}

// Covers returns true if every point of b is a point of the prepared geometry.
func (p *Prepared) Covers(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindCovers)
}

// CoveredBy is like CoveredBy for the prepared geometry.
func (p *Prepared) CoveredBy(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindCoveredBy)
}

// EqualsTopo is like EqualsTopo for the prepared geometry.
func (p *Prepared) EqualsTopo(b orb.Geometry) (bool, error) {
	return p.evaluateKind(b, KindEquals)
}

// RelatePattern returns true if the DE-9IM matrix of the prepared geometry and b matches the pattern.
func (p *Prepared) RelatePattern(b orb.Geometry, pattern string) (bool, error) {
	pred, err := NewPatternPredicate(pattern)
	if err != nil {
		return false, err
	}
	return p.ev.evaluate(b, pred)
}

// Relate returns the DE-9IM matrix of the prepared geometry and b.
func (p *Prepared) Relate(b orb.Geometry) (Matrix, error) {
	pred := MatrixPredicate()
	if _, err := p.ev.evaluate(b, pred); err != nil {
		return Matrix{}, err
	}
	return pred.Matrix(), nil
}
