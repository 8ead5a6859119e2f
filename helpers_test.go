package relate

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

func mustWKT(s string) orb.Geometry {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		panic(err)
	}
	return g
}

func randomPoint(r *rand.Rand) orb.Point {
	return orb.Point{r.NormFloat64(), r.NormFloat64()}
}

// randomPolygon returns a star-shaped polygon of n vertices around a random center, which is always simple.
func randomPolygon(r *rand.Rand, n int) orb.Polygon {
	center := randomPoint(r)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = 2.0 * math.Pi * r.Float64()
	}
	sort.Float64s(angles)

	ring := orb.Ring{}
	for _, angle := range angles {
		radius := 0.5 + r.Float64()
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(angle), center[1] + radius*math.Sin(angle)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// randomPolygonWithHole returns a polygon whose vertices are spread evenly enough around the center to contain a small triangular hole.
func randomPolygonWithHole(r *rand.Rand, n int) orb.Polygon {
	center := randomPoint(r)
	shell := orb.Ring{}
	for i := 0; i < n; i++ {
		angle := 2.0 * math.Pi * (float64(i) + 0.5*r.Float64()) / float64(n)
		radius := 0.5 + r.Float64()
		shell = append(shell, orb.Point{center[0] + radius*math.Cos(angle), center[1] + radius*math.Sin(angle)})
	}
	shell = append(shell, shell[0])

	hole := orb.Ring{}
	for i := 0; i < 3; i++ {
		angle := 2.0 * math.Pi * float64(i) / 3.0
		hole = append(hole, orb.Point{center[0] + 0.1*math.Cos(angle), center[1] + 0.1*math.Sin(angle)})
	}
	hole = append(hole, hole[0])
	return orb.Polygon{shell, hole}
}

func randomLineString(r *rand.Rand, n int) orb.LineString {
	ls := orb.LineString{}
	for i := 0; i < n; i++ {
		ls = append(ls, randomPoint(r))
	}
	return ls
}

func randomMultiPoint(r *rand.Rand, n int) orb.MultiPoint {
	mp := orb.MultiPoint{}
	for i := 0; i < n; i++ {
		mp = append(mp, randomPoint(r))
	}
	return mp
}

func randomGeometry(r *rand.Rand) orb.Geometry {
	switch r.IntN(8) {
	case 5:
		return randomPolygonWithHole(r, 4+r.IntN(6))
	case 6:
		return orb.MultiLineString{randomLineString(r, 2+r.IntN(4)), randomLineString(r, 2+r.IntN(4))}
	case 7:
		// elements may overlap
		return orb.Collection{randomPolygon(r, 3+r.IntN(6)), randomPolygon(r, 3+r.IntN(6))}
	case 0:
		return randomPoint(r)
	case 1:
		return randomMultiPoint(r, 1+r.IntN(4))
	case 2:
		return randomLineString(r, 2+r.IntN(5))
	case 3:
		return orb.MultiPolygon{randomPolygon(r, 3+r.IntN(6))}
	}
	return randomPolygon(r, 3+r.IntN(8))
}

// randomGeometries returns n random pairs, including pairs that share the same geometry.
func randomGeometries(seed uint64, n int) [][2]orb.Geometry {
	r := rand.New(rand.NewPCG(seed, seed+1))
	pairs := [][2]orb.Geometry{}
	for i := 0; i < n; i++ {
		a := randomGeometry(r)
		if i%5 == 0 {
			pairs = append(pairs, [2]orb.Geometry{a, a})
		} else {
			pairs = append(pairs, [2]orb.Geometry{a, randomGeometry(r)})
		}
	}
	return pairs
}

var allKinds = []PredicateKind{
	KindIntersects,
	KindDisjoint,
	KindTouches,
	KindCrosses,
	KindOverlaps,
	KindContains,
	KindWithin,
	KindCovers,
	KindCoveredBy,
	KindEquals,
}
