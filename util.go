package relate

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/bigxy"
	"github.com/twpayne/go-geom/xy/orientation"
)

// emptyBound is the bound of an empty geometry, see orb.Bound.IsEmpty.
var emptyBound = orb.Bound{Min: orb.Point{1.0, 1.0}, Max: orb.Point{-1.0, -1.0}}

func toCoord(p orb.Point) geom.Coord {
	return geom.Coord{p[0], p[1]}
}

func isFinite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) && !math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// orientationIndex returns the orientation of q relative to the directed line p0-p1, computed exactly.
func orientationIndex(p0, p1, q orb.Point) orientation.Type {
	return bigxy.OrientationIndex(toCoord(p0), toCoord(p1), toCoord(q))
}

// comparePoints orders points by X and then by Y.
func comparePoints(a, b orb.Point) int {
	if a[0] < b[0] {
		return -1
	} else if b[0] < a[0] {
		return 1
	} else if a[1] < b[1] {
		return -1
	} else if b[1] < a[1] {
		return 1
	}
	return 0
}

// quadrant returns the quadrant of the vector origin-p, numbered CCW from 0 for NE to 3 for SE. The vector must not be zero.
func quadrant(origin, p orb.Point) int {
	dx, dy := p[0]-origin[0], p[1]-origin[1]
	if 0.0 <= dx {
		if 0.0 <= dy {
			return 0
		}
		return 3
	} else if 0.0 <= dy {
		return 1
	}
	return 2
}

////////////////////////////////////////////////////////////////

func extendBound(b orb.Bound, p orb.Point) orb.Bound {
	if b.IsEmpty() {
		return orb.Bound{Min: p, Max: p}
	}
	return b.Extend(p)
}

func unionBound(a, b orb.Bound) orb.Bound {
	if a.IsEmpty() {
		return b
	} else if b.IsEmpty() {
		return a
	}
	return a.Union(b)
}

func boundsIntersect(a, b orb.Bound) bool {
	return !a.IsEmpty() && !b.IsEmpty() && a.Intersects(b)
}

// boundCovers returns true if b lies inside or on the edge of a.
func boundCovers(a, b orb.Bound) bool {
	return !a.IsEmpty() && !b.IsEmpty() && a.Contains(b.Min) && a.Contains(b.Max)
}

func boundEqual(a, b orb.Bound) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}
	return a.Equal(b)
}

func boundIntersection(a, b orb.Bound) orb.Bound {
	if !boundsIntersect(a, b) {
		return emptyBound
	}
	return orb.Bound{
		Min: orb.Point{math.Max(a.Min[0], b.Min[0]), math.Max(a.Min[1], b.Min[1])},
		Max: orb.Point{math.Min(a.Max[0], b.Max[0]), math.Min(a.Max[1], b.Max[1])},
	}
}

func pointBound(ps ...orb.Point) orb.Bound {
	b := emptyBound
	for _, p := range ps {
		b = extendBound(b, p)
	}
	return b
}
