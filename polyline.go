package relate

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom/xy/lineintersector"
	"github.com/twpayne/go-geom/xy/orientation"
)

// polyline is a list of coordinates. If the last coordinate equals the first coordinate, the polyline is closed.
type polyline []orb.Point

// Closed returns true if the last point coincides with the first.
func (p polyline) Closed() bool {
	return 0 < len(p) && p[0] == p[len(p)-1]
}

// Bound returns the bounding box of the coordinates.
func (p polyline) Bound() orb.Bound {
	return pointBound(p...)
}

// IsZeroLength returns true if all coordinates coincide.
func (p polyline) IsZeroLength() bool {
	for _, coord := range p[1:] {
		if coord != p[0] {
			return false
		}
	}
	return true
}

// RemoveRepeated returns the polyline without consecutive duplicate coordinates. It returns p itself when there are none.
func (p polyline) RemoveRepeated() polyline {
	i := 1
	for ; i < len(p); i++ {
		if p[i] == p[i-1] {
			break
		}
	}
	if len(p) <= i {
		return p
	}

	q := make(polyline, i, len(p))
	copy(q, p[:i])
	for _, coord := range p[i:] {
		if coord != q[len(q)-1] {
			q = append(q, coord)
		}
	}
	return q
}

// Reverse returns a reversed copy.
func (p polyline) Reverse() polyline {
	q := make(polyline, len(p))
	for i, coord := range p {
		q[len(p)-1-i] = coord
	}
	return q
}

// CCW returns true if the closed ring runs counter clockwise. It returns ErrInvalidInput when the orientation is undefined, which is the case for rings with fewer than three distinct points, flat rings, and rings that fold back onto themselves at their highest point.
func (p polyline) CCW() (bool, error) {
	n := len(p) - 1 // without closing point
	if n < 3 {
		return false, errors.Wrapf(ErrInvalidInput, "ring has %d points, need at least 4", len(p))
	}

	// find the highest point reached by a rising segment
	hi, iHi := p[0], 0
	var lo orb.Point
	prevY := hi[1]
	for i := 1; i <= n; i++ {
		y := p[i][1]
		if prevY < y && hi[1] <= y {
			hi, iHi, lo = p[i], i, p[i-1]
		}
		prevY = y
	}
	if iHi == 0 {
		return false, errors.Wrap(ErrInvalidInput, "ring is flat")
	}

	// find the next point lower than the highest point
	iDown := iHi
	for {
		iDown = (iDown + 1) % n
		if iDown == iHi || p[iDown][1] != hi[1] {
			break
		}
	}
	down := p[iDown]
	iDownHi := n - 1
	if 0 < iDown {
		iDownHi = iDown - 1
	}
	downHi := p[iDownHi]

	if hi == downHi {
		// pointed cap
		if lo == hi || down == hi || lo == down {
			return false, errors.Wrapf(ErrInvalidInput, "ring orientation is undefined at %v", hi)
		}
		orient := orientationIndex(lo, hi, down)
		if orient == orientation.Collinear {
			return false, errors.Wrapf(ErrInvalidInput, "ring folds back onto itself at %v", hi)
		}
		return orient == orientation.CounterClockwise, nil
	}
	// flat cap, its direction determines the orientation
	return downHi[0] < hi[0], nil
}

// Orient returns the ring in clockwise or counter clockwise order.
func (p polyline) Orient(cw bool) (polyline, error) {
	ccw, err := p.CCW()
	if err != nil {
		return nil, err
	} else if ccw == cw {
		return p.Reverse(), nil
	}
	return p, nil
}

// OnLine returns true if the point lies on any of the segments.
func (p polyline) OnLine(pos orb.Point) bool {
	if len(p) == 1 {
		return p[0] == pos
	}
	for i := 1; i < len(p); i++ {
		if p[i-1] == p[i] {
			if p[i] == pos {
				return true
			}
			continue
		} else if !pointBound(p[i-1], p[i]).Contains(pos) {
			continue
		}
		if lineintersector.PointIntersectsLine(lineintersector.RobustLineIntersector{}, toCoord(pos), toCoord(p[i-1]), toCoord(p[i])) {
			return true
		}
	}
	return false
}

// Locate returns the location of the point relative to the area enclosed by the closed ring.
func (p polyline) Locate(pos orb.Point) Location {
	counter := rayCrossingCounter{p: pos}
	for i := 1; i < len(p); i++ {
		counter.countSegment(p[i-1], p[i])
		if counter.onSegment {
			break
		}
	}
	return counter.location()
}

// rayCrossingCounter counts the crossings of a horizontal ray running from p towards positive X with ring segments.
type rayCrossingCounter struct {
	p         orb.Point
	crossings int
	onSegment bool
}

func (c *rayCrossingCounter) countSegment(p1, p2 orb.Point) {
	p := c.p
	if p1[0] < p[0] && p2[0] < p[0] {
		// segment is left of the point
		return
	} else if p == p2 {
		c.onSegment = true
		return
	} else if p1[1] == p[1] && p2[1] == p[1] {
		// horizontal segments only count when the point lies on them
		minX, maxX := p1[0], p2[0]
		if maxX < minX {
			minX, maxX = maxX, minX
		}
		if minX <= p[0] && p[0] <= maxX {
			c.onSegment = true
		}
		return
	}

	// upward segments include their start point, downward segments include their end point
	if p[1] < p1[1] && p2[1] <= p[1] || p[1] < p2[1] && p1[1] <= p[1] {
		orient := orientationIndex(p1, p2, p)
		if orient == orientation.Collinear {
			c.onSegment = true
			return
		}
		if p2[1] < p1[1] {
			orient = -orient
		}
		if orient == orientation.CounterClockwise {
			c.crossings++
		}
	}
}

func (c *rayCrossingCounter) location() Location {
	if c.onSegment {
		return Boundary
	} else if c.crossings%2 == 1 {
		return Interior
	}
	return Exterior
}
