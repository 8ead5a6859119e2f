package relate

import (
	"fmt"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/tdewolff/test"
)

const square = "POLYGON((0 0,10 0,10 10,0 10,0 0))"

func TestRelate(t *testing.T) {
	var tts = []struct {
		a, b   string
		matrix string
	}{
		{square, square, "2FFF1FFF2"},
		{square, "POINT(5 5)", "0F2FF1FF2"},
		{square, "POINT(0 5)", "FF20F1FF2"},
		{square, "POINT(20 20)", "FF2FF10F2"},
		{square, "POLYGON((10 0,20 0,20 10,10 10,10 0))", "FF2F11212"},
		{square, "POLYGON((5 5,15 5,15 15,5 15,5 5))", "212101212"},
		{square, "POLYGON((10 10,20 10,20 20,10 20,10 10))", "FF2F01212"},
		{square, "POLYGON((2 2,8 2,8 8,2 8,2 2))", "212FF1FF2"},
		{square, "LINESTRING(2 2,8 8)", "102FF1FF2"},
		{square, "LINESTRING(-5 5,15 5)", "1F20F1102"},
		{square, "LINESTRING(10 5,15 5)", "FF2F01102"},
		{square, "LINESTRING(0 0,10 0)", "FF2101FF2"},
		{"POLYGON((0 0,10 0,10 10,0 10,0 0),(2 2,8 2,8 8,2 8,2 2))", "POINT(5 5)", "FF2FF10F2"},
		{"MULTIPOLYGON(((0 0,5 0,5 10,0 10,0 0)),((5 0,10 0,10 10,5 10,5 0)))", "POINT(5 5)", "FF20F1FF2"}, // shared edges of a MultiPolygon stay boundary
		{"LINESTRING(0 0,10 10)", "LINESTRING(0 10,10 0)", "0F1FF0102"},
		{"LINESTRING(0 0,10 10)", "LINESTRING(0 0,10 10)", "1FFF0FFF2"},
		{"LINESTRING(0 0,10 0)", "LINESTRING(5 0,15 0)", "1010F0102"},
		{"LINESTRING(0 0,10 0)", "POINT(5 0)", "0F1FF0FF2"},
		{"LINESTRING(0 0,10 0)", "POINT(0 0)", "FF10F0FF2"},
		{"POINT(0 0)", "POINT(1 1)", "FF0FFF0F2"},
		{"POINT(0 0)", "POINT(0 0)", "0FFFFFFF2"},
		{"MULTIPOINT((0 0),(1 1))", "POINT(0 0)", "0F0FFFFF2"},
	}
	for _, tt := range tts {
		t.Run(fmt.Sprint(tt.a, " ", tt.b), func(t *testing.T) {
			m, err := Relate(mustWKT(tt.a), mustWKT(tt.b))
			test.Error(t, err)
			test.String(t, m.String(), tt.matrix)

			// transposed
			m, err = Relate(mustWKT(tt.b), mustWKT(tt.a))
			test.Error(t, err)
			test.String(t, m.Transpose().String(), tt.matrix)
		})
	}
}

func TestRelateEmpty(t *testing.T) {
	empty := orb.Collection{}
	m, err := Relate(empty, empty)
	test.Error(t, err)
	test.String(t, m.String(), "FFFFFFFF2")

	m, err = Relate(mustWKT(square), empty)
	test.Error(t, err)
	test.String(t, m.String(), "FF2FF1FF2")

	m, err = Relate(mustWKT("LINESTRING(0 0,10 0)"), orb.LineString{})
	test.Error(t, err)
	test.String(t, m.String(), "FF1FF0FF2")

	m, err = Relate(orb.MultiPoint{}, mustWKT("POINT(1 2)"))
	test.Error(t, err)
	test.String(t, m.String(), "FFFFFF0F2")

	// empty elements do not count towards the dimension
	m, err = Relate(orb.Collection{orb.Polygon{}, orb.Point{1, 1}}, empty)
	test.Error(t, err)
	test.String(t, m.String(), "FF0FFFFF2")
	m, err = Relate(empty, orb.Collection{orb.Polygon{}, orb.LineString{}, orb.Point{1, 1}})
	test.Error(t, err)
	test.String(t, m.String(), "FFFFFF0F2")

	equals, err := EqualsTopo(empty, orb.MultiPolygon{})
	test.Error(t, err)
	test.That(t, equals)

	intersects, err := Intersects(empty, empty)
	test.Error(t, err)
	test.That(t, !intersects)

	disjoint, err := Disjoint(empty, mustWKT(square))
	test.Error(t, err)
	test.That(t, disjoint)

	contains, err := Contains(mustWKT(square), empty)
	test.Error(t, err)
	test.That(t, !contains)
}

func TestPredicates(t *testing.T) {
	var tts = []struct {
		a, b  string
		kinds []PredicateKind // predicates that hold
	}{
		{square, square, []PredicateKind{KindIntersects, KindContains, KindWithin, KindCovers, KindCoveredBy, KindEquals}},
		{square, "POINT(5 5)", []PredicateKind{KindIntersects, KindContains, KindCovers}},
		{square, "POINT(0 5)", []PredicateKind{KindIntersects, KindTouches, KindCovers}},
		{square, "POINT(20 20)", []PredicateKind{KindDisjoint}},
		{square, "POLYGON((10 0,20 0,20 10,10 10,10 0))", []PredicateKind{KindIntersects, KindTouches}},
		{square, "POLYGON((5 5,15 5,15 15,5 15,5 5))", []PredicateKind{KindIntersects, KindOverlaps}},
		{square, "POLYGON((2 2,8 2,8 8,2 8,2 2))", []PredicateKind{KindIntersects, KindContains, KindCovers}},
		{square, "LINESTRING(-5 5,15 5)", []PredicateKind{KindIntersects, KindCrosses}},
		{square, "LINESTRING(0 0,10 0)", []PredicateKind{KindIntersects, KindTouches, KindCovers}},
		{"LINESTRING(0 0,10 10)", "LINESTRING(0 10,10 0)", []PredicateKind{KindIntersects, KindCrosses}},
		{"LINESTRING(0 0,10 0)", "LINESTRING(5 0,15 0)", []PredicateKind{KindIntersects, KindOverlaps}},
		{"LINESTRING(0 0,10 0)", "LINESTRING(10 0,0 0)", []PredicateKind{KindIntersects, KindContains, KindWithin, KindCovers, KindCoveredBy, KindEquals}},
		{"POINT(0 0)", "LINESTRING(0 0,10 0)", []PredicateKind{KindIntersects, KindTouches, KindCoveredBy}},
		{"MULTIPOINT((0 0),(20 0))", "LINESTRING(0 0,10 0)", []PredicateKind{KindIntersects, KindTouches}},
		{"MULTIPOINT((5 0),(20 0))", "LINESTRING(0 0,10 0)", []PredicateKind{KindIntersects, KindCrosses}},
		{"MULTIPOINT((0 0),(1 1))", "MULTIPOINT((1 1),(2 2))", []PredicateKind{KindIntersects, KindOverlaps}},
	}
	for _, tt := range tts {
		t.Run(fmt.Sprint(tt.a, " ", tt.b), func(t *testing.T) {
			holds := map[PredicateKind]bool{}
			for _, kind := range tt.kinds {
				holds[kind] = true
			}
			for _, kind := range allKinds {
				val, err := Evaluate(mustWKT(tt.a), mustWKT(tt.b), NewPredicate(kind))
				test.Error(t, err)
				test.T(t, val, holds[kind], kind.String())
			}
		})
	}
}

func TestPredicateFuncs(t *testing.T) {
	a, b := mustWKT(square), mustWKT("POLYGON((2 2,8 2,8 8,2 8,2 2))")
	var tts = []struct {
		f   func(orb.Geometry, orb.Geometry, ...Option) (bool, error)
		val bool
	}{
		{Intersects, true},
		{Disjoint, false},
		{Touches, false},
		{Crosses, false},
		{Overlaps, false},
		{Contains, true},
		{Within, false},
		{Covers, true},
		{CoveredBy, false},
		{EqualsTopo, false},
	}
	for i, tt := range tts {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			val, err := tt.f(a, b)
			test.Error(t, err)
			test.T(t, val, tt.val)
		})
	}
}

func TestRelatePattern(t *testing.T) {
	a, b := mustWKT(square), mustWKT("POINT(5 5)")
	var tts = []struct {
		pattern string
		val     bool
	}{
		{"T*****FF*", true},
		{"t*****ff*", true},
		{"0F2FF1FF2", true},
		{"*********", true},
		{"FF*FF****", false},
		{"T*F**F***", false},
		{"1********", false},
	}
	for _, tt := range tts {
		t.Run(tt.pattern, func(t *testing.T) {
			val, err := RelatePattern(a, b, tt.pattern)
			test.Error(t, err)
			test.T(t, val, tt.val)
		})
	}

	_, err := RelatePattern(a, b, "T*****FF")
	test.That(t, errors.Is(err, ErrInvalidPattern))
	_, err = RelatePattern(a, b, "T*****FFX")
	test.That(t, errors.Is(err, ErrInvalidPattern))
}

func TestBoundaryNodeRuleOption(t *testing.T) {
	ring, pt := mustWKT("LINESTRING(0 0,10 0,10 10,0 0)"), mustWKT("POINT(0 0)")
	var tts = []struct {
		rule   BoundaryNodeRule
		matrix string
	}{
		{Mod2, "0F1FFFFF2"},
		{EndPoint, "FF10FFFF2"},
		{MultivalentEndPoint, "FF10FFFF2"},
		{MonovalentEndPoint, "0F1FFFFF2"},
	}
	for _, tt := range tts {
		t.Run(tt.rule.String(), func(t *testing.T) {
			m, err := Relate(ring, pt, WithBoundaryNodeRule(tt.rule))
			test.Error(t, err)
			test.String(t, m.String(), tt.matrix)
		})
	}

	// two lines meeting at an end point
	lines, end := mustWKT("MULTILINESTRING((0 0,10 0),(10 0,20 0))"), mustWKT("POINT(10 0)")
	touches, err := Touches(lines, end)
	test.Error(t, err)
	test.That(t, !touches)
	touches, err = Touches(lines, end, WithBoundaryNodeRule(EndPoint))
	test.Error(t, err)
	test.That(t, touches)
}

func TestRelateErrors(t *testing.T) {
	var tts = []struct {
		a   orb.Geometry
		err error
	}{
		{nil, ErrUnsupportedGeometry},
		{orb.Collection{orb.Point{1, 2}, nil}, ErrUnsupportedGeometry},
		{orb.LineString{{0, 0}}, ErrInvalidInput},
		{orb.Polygon{{{0, 0}, {10, 0}, {0, 0}}}, ErrInvalidInput},
		{orb.Polygon{{{0, 0}, {10, 0}, {5, 0}, {0, 0}}}, ErrInvalidInput},
		{orb.Polygon{{{0, 0}, {10, 0}, {10, 10}}}, ErrInvalidInput},
		{orb.Polygon{{}, {{2, 2}, {8, 2}, {8, 8}, {2, 2}}}, ErrInvalidInput},
		{orb.Point{0, math.NaN()}, ErrInvalidInput},
	}
	for i, tt := range tts {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := Relate(tt.a, orb.Point{1, 2})
			test.That(t, errors.Is(err, tt.err), err)
			_, err = Intersects(orb.Point{1, 2}, tt.a)
			test.That(t, errors.Is(err, tt.err), err)
			_, err = Prepare(tt.a)
			test.That(t, errors.Is(err, tt.err), err)
		})
	}
}

func TestRelateGeometryTypes(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

	equals, err := EqualsTopo(bound, mustWKT(square))
	test.Error(t, err)
	test.That(t, equals)

	equals, err = EqualsTopo(ring, mustWKT(square))
	test.Error(t, err)
	test.That(t, equals)

	// a collection of two adjacent polygons equals their union
	coll := orb.Collection{mustWKT("POLYGON((0 0,5 0,5 10,0 10,0 0))"), mustWKT("POLYGON((5 0,10 0,10 10,5 10,5 0))")}
	equals, err = EqualsTopo(coll, bound)
	test.Error(t, err)
	test.That(t, equals)

	// a line inside a polygon of the same collection adds nothing
	coll = orb.Collection{mustWKT(square), mustWKT("LINESTRING(2 2,8 8)"), mustWKT("POINT(5 5)")}
	equals, err = EqualsTopo(coll, bound)
	test.Error(t, err)
	test.That(t, equals)

	// zero-length lines behave like points
	within, err := Within(orb.LineString{{5, 5}, {5, 5}}, mustWKT(square))
	test.Error(t, err)
	test.That(t, within)

	intersects, err := Intersects(orb.LineString{{5, 0}, {5, 0}}, mustWKT("LINESTRING(0 0,10 0)"))
	test.Error(t, err)
	test.That(t, intersects)
}

func TestPrepared(t *testing.T) {
	p, err := Prepare(mustWKT(square))
	test.Error(t, err)
	test.T(t, p.Geometry(), mustWKT(square))

	contains, err := p.Contains(mustWKT("POINT(5 5)"))
	test.Error(t, err)
	test.That(t, contains)

	touches, err := p.Touches(mustWKT("POLYGON((10 0,20 0,20 10,10 10,10 0))"))
	test.Error(t, err)
	test.That(t, touches)

	m, err := p.Relate(mustWKT("POLYGON((5 5,15 5,15 15,5 15,5 5))"))
	test.Error(t, err)
	test.String(t, m.String(), "212101212")

	match, err := p.RelatePattern(mustWKT("LINESTRING(-5 5,15 5)"), "1F20F1102")
	test.Error(t, err)
	test.That(t, match)

	_, err = p.RelatePattern(mustWKT("POINT(1 1)"), "")
	test.That(t, errors.Is(err, ErrInvalidPattern))
}

func TestPreparedConcurrent(t *testing.T) {
	pairs := randomGeometries(7, 40)
	p, err := Prepare(mustWKT("POLYGON((-1 -1,1 -1,1 1,-1 1,-1 -1),(-0.5 -0.5,-0.5 0.5,0.5 0.5,0.5 -0.5,-0.5 -0.5))"))
	test.Error(t, err)

	expected := make([]Matrix, len(pairs))
	for i, pair := range pairs {
		expected[i], err = Relate(p.Geometry(), pair[1])
		test.Error(t, err)
	}

	wg := sync.WaitGroup{}
	results := make([]Matrix, len(pairs))
	for i, pair := range pairs {
		wg.Add(1)
		go func(i int, b orb.Geometry) {
			defer wg.Done()
			results[i], _ = p.Relate(b)
		}(i, pair[1])
	}
	wg.Wait()
	for i := range pairs {
		test.String(t, results[i].String(), expected[i].String(), wkt.MarshalString(pairs[i][1]))
	}
}

func TestRelateProperties(t *testing.T) {
	for i, pair := range randomGeometries(1, 200) {
		a, b := pair[0], pair[1]
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			m, err := Relate(a, b)
			test.Error(t, err)

			// symmetric
			mT, err := Relate(b, a)
			test.Error(t, err)
			test.String(t, mT.Transpose().String(), m.String(), wkt.MarshalString(a), wkt.MarshalString(b))

			// idempotent
			m2, err := Relate(a, b)
			test.Error(t, err)
			test.T(t, m2, m)

			// the matrix is the maximum of all updates
			traced := NewMatrix()
			_, err = Relate(a, b, withTrace(func(locA, locB Location, dim Dimension) {
				traced.setAtLeast(locA, locB, dim)
			}))
			test.Error(t, err)
			test.T(t, traced, m)

			intersects, err := Intersects(a, b)
			test.Error(t, err)
			disjoint, err := Disjoint(a, b)
			test.Error(t, err)
			test.T(t, intersects, !disjoint)
			test.T(t, intersects, m.IsIntersects())

			contains, err := Contains(a, b)
			test.Error(t, err)
			match, err := RelatePattern(a, b, "T*****FF*")
			test.Error(t, err)
			test.T(t, contains, match)
		})
	}
}

func TestPredicatesMatchMatrix(t *testing.T) {
	for i, pair := range randomGeometries(2, 200) {
		a, b := pair[0], pair[1]
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			m, err := Relate(a, b)
			test.Error(t, err)

			prep, err := Prepare(a)
			test.Error(t, err)
			mPrep, err := prep.Relate(b)
			test.Error(t, err)
			test.T(t, mPrep, m)

			for _, kind := range allKinds {
				expected := matrixValue(m, kind, Dimension(a.Dimensions()), Dimension(b.Dimensions()))
				val, err := Evaluate(a, b, NewPredicate(kind))
				test.Error(t, err)
				test.T(t, val, expected, kind.String(), m.String())

				valPrep, err := prep.Evaluate(b, NewPredicate(kind))
				test.Error(t, err)
				test.T(t, valPrep, val, kind.String())
			}
		})
	}
}

// matrixValue evaluates the predicate on a complete matrix.
func matrixValue(m Matrix, kind PredicateKind, dimA, dimB Dimension) bool {
	switch kind {
	case KindIntersects:
		return m.IsIntersects()
	case KindDisjoint:
		return m.IsDisjoint()
	}
	p := NewPredicate(kind)
	p.dimA, p.dimB = dimA, dimB
	p.matrix = m
	return p.valueIM()
}

func TestRelateLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	val, err := Intersects(mustWKT(square), mustWKT("LINESTRING(-5 5,15 5)"), WithLogger(log))
	test.Error(t, err)
	test.That(t, val)

	entry := hook.LastEntry()
	test.That(t, entry != nil)
	test.T(t, entry.Level, logrus.DebugLevel)
	test.T(t, entry.Data["predicate"], "intersects")
	test.T(t, entry.Data["stage"], "edges")
	test.T(t, entry.Data["value"], true)

	hook.Reset()
	log.SetLevel(logrus.InfoLevel)
	_, err = Intersects(mustWKT(square), mustWKT("POINT(5 5)"), WithLogger(log))
	test.Error(t, err)
	test.T(t, len(hook.AllEntries()), 0)
}

func TestRelateDefaultLogger(t *testing.T) {
	o := newOptions(nil)
	log, ok := o.log.(*logrus.Logger)
	test.That(t, ok)
	test.T(t, log.Out, io.Discard)
	test.That(t, !log.IsLevelEnabled(logrus.DebugLevel))
	test.That(t, log != logrus.StandardLogger())
}
