package relate

import (
	"github.com/paulmach/orb"
)

// PredicateKind selects the relationship tested by a Predicate.
type PredicateKind int

// see PredicateKind
const (
	KindIntersects PredicateKind = iota
	KindDisjoint
	KindTouches
	KindCrosses
	KindOverlaps
	KindContains
	KindWithin
	KindCovers
	KindCoveredBy
	KindEquals
	KindPattern
	KindMatrix
)

func (kind PredicateKind) String() string {
	switch kind {
	case KindIntersects:
		return "intersects"
	case KindDisjoint:
		return "disjoint"
	case KindTouches:
		return "touches"
	case KindCrosses:
		return "crosses"
	case KindOverlaps:
		return "overlaps"
	case KindContains:
		return "contains"
	case KindWithin:
		return "within"
	case KindCovers:
		return "covers"
	case KindCoveredBy:
		return "coveredBy"
	case KindEquals:
		return "equals"
	case KindPattern:
		return "pattern"
	case KindMatrix:
		return "matrix"
	}
	return "unknown"
}

// ParsePredicateKind parses the names returned by PredicateKind.String, except for pattern.
func ParsePredicateKind(s string) (PredicateKind, bool) {
	for kind := KindIntersects; kind <= KindMatrix; kind++ {
		if kind != KindPattern && kind.String() == s {
			return kind, true
		}
	}
	return 0, false
}

type tristate int8

const (
	unknown tristate = iota - 1
	no
	yes
)

// Predicate is a relationship tested by the evaluator. It holds the state of one evaluation, which is reset at the start of each, and decides as early as possible whether the relationship holds.
type Predicate struct {
	kind    PredicateKind
	pattern pattern

	val        tristate
	dimA, dimB Dimension
	matrix     Matrix
}

// NewPredicate returns a predicate of the given kind. Use NewPatternPredicate for KindPattern.
func NewPredicate(kind PredicateKind) *Predicate {
	p := &Predicate{kind: kind}
	p.reset()
	return p
}

// NewPatternPredicate returns a predicate that tests whether the DE-9IM matrix matches the pattern.
func NewPatternPredicate(s string) (*Predicate, error) {
	pat, err := parsePattern(s)
	if err != nil {
		return nil, err
	}
	p := NewPredicate(KindPattern)
	p.pattern = pat
	return p, nil
}

// MatrixPredicate returns a predicate that computes the full DE-9IM matrix, available through Matrix after evaluation.
func MatrixPredicate() *Predicate {
	return NewPredicate(KindMatrix)
}

func (p *Predicate) reset() {
	p.val = unknown
	p.dimA, p.dimB = False, False
	p.matrix = NewMatrix()
}

// Kind returns the kind of the predicate.
func (p *Predicate) Kind() PredicateKind {
	return p.kind
}

// Name returns the name of the predicate, including the pattern if any.
func (p *Predicate) Name() string {
	if p.kind == KindPattern {
		return "pattern(" + p.pattern.String() + ")"
	}
	return p.kind.String()
}

// Matrix returns the matrix accumulated by the last evaluation. It is only complete for KindMatrix predicates, others stop as soon as their value is known.
func (p *Predicate) Matrix() Matrix {
	return p.matrix
}

func (p *Predicate) isBasic() bool {
	return p.kind == KindIntersects || p.kind == KindDisjoint
}

func (p *Predicate) requireSelfNoding() bool {
	return !p.isBasic()
}

// requireInteraction is true if the predicate can only hold when the inputs intersect.
func (p *Predicate) requireInteraction() bool {
	switch p.kind {
	case KindDisjoint, KindEquals, KindMatrix:
		return false
	case KindPattern:
		return p.pattern.requiresInteraction()
	}
	return true
}

// requireCovers is true if the predicate can only hold when input A (or B) covers the other.
func (p *Predicate) requireCovers(isA bool) bool {
	switch p.kind {
	case KindContains, KindCovers:
		return isA
	case KindWithin, KindCoveredBy:
		return !isA
	}
	return false
}

// requireExteriorCheck is true if the points of the given input must be checked against the exterior of the other.
func (p *Predicate) requireExteriorCheck(isSourceA bool) bool {
	switch p.kind {
	case KindIntersects, KindDisjoint:
		return false
	case KindContains, KindCovers:
		return !isSourceA
	case KindWithin, KindCoveredBy:
		return isSourceA
	}
	return true
}

func isDimsCompatibleWithCovers(dim0, dim1 Dimension) bool {
	// a point set may be covered by the end points of a line
	if dim0 == P && dim1 == L {
		return true
	}
	return dim1 <= dim0
}

func (p *Predicate) initDims(dimA, dimB Dimension) {
	p.dimA, p.dimB = dimA, dimB
	switch p.kind {
	case KindContains, KindCovers:
		p.require(isDimsCompatibleWithCovers(dimA, dimB))
	case KindWithin, KindCoveredBy:
		p.require(isDimsCompatibleWithCovers(dimB, dimA))
	case KindCrosses:
		p.require(!(dimA == P && dimB == P || dimA == A && dimB == A))
	case KindOverlaps, KindEquals:
		p.require(dimA == dimB)
	case KindTouches:
		p.require(!(dimA == P && dimB == P))
	}
}

func (p *Predicate) initEnvelopes(boundA, boundB orb.Bound) {
	switch p.kind {
	case KindIntersects:
		p.require(boundsIntersect(boundA, boundB))
	case KindDisjoint:
		p.setValueIf(true, !boundsIntersect(boundA, boundB))
	case KindContains, KindCovers:
		p.require(boundCovers(boundA, boundB))
	case KindWithin, KindCoveredBy:
		p.require(boundCovers(boundB, boundA))
	case KindEquals:
		if boundA.IsEmpty() && boundB.IsEmpty() {
			p.setValue(true)
		}
		p.require(boundEqual(boundA, boundB))
	default:
		if p.requireInteraction() {
			p.require(boundsIntersect(boundA, boundB))
		}
	}
}

func (p *Predicate) isKnown() bool {
	return p.val != unknown
}

func (p *Predicate) value() bool {
	return p.val == yes
}

// setValue sets the value unless it is already known.
func (p *Predicate) setValue(val bool) {
	if p.isKnown() {
		return
	} else if val {
		p.val = yes
	} else {
		p.val = no
	}
}

func (p *Predicate) setValueIf(val, cond bool) {
	if cond {
		p.setValue(val)
	}
}

func (p *Predicate) require(cond bool) {
	if !cond {
		p.setValue(false)
	}
}

// updateDimension adds the fact that location locA of A and location locB of B intersect in dimension dim.
func (p *Predicate) updateDimension(locA, locB Location, dim Dimension) {
	switch p.kind {
	case KindIntersects:
		p.setValueIf(true, locA != Exterior && locB != Exterior)
	case KindDisjoint:
		p.setValueIf(false, locA != Exterior && locB != Exterior)
	default:
		if p.matrix.setAtLeast(locA, locB, dim) && p.isDetermined() {
			p.setValue(p.valueIM())
		}
	}
}

func (p *Predicate) finish() {
	switch p.kind {
	case KindIntersects:
		p.setValue(false)
	case KindDisjoint:
		p.setValue(true)
	default:
		p.setValue(p.valueIM())
	}
}

func (p *Predicate) intersects(locA, locB Location) bool {
	return isTrue(p.matrix[locA][locB])
}

// isDetermined returns true if the matrix entries computed so far fix the value.
func (p *Predicate) isDetermined() bool {
	m := p.matrix
	switch p.kind {
	case KindContains, KindCovers:
		return p.intersects(Exterior, Interior) || p.intersects(Exterior, Boundary)
	case KindWithin, KindCoveredBy:
		return p.intersects(Interior, Exterior) || p.intersects(Boundary, Exterior)
	case KindCrosses:
		if p.dimA == L && p.dimB == L {
			return P < m[Interior][Interior]
		} else if p.dimA < p.dimB {
			return p.intersects(Interior, Interior) && p.intersects(Interior, Exterior)
		} else if p.dimB < p.dimA {
			return p.intersects(Interior, Interior) && p.intersects(Exterior, Interior)
		}
		return false
	case KindEquals:
		return p.intersects(Interior, Exterior) || p.intersects(Boundary, Exterior) ||
			p.intersects(Exterior, Interior) || p.intersects(Exterior, Boundary)
	case KindOverlaps:
		if p.dimA == A || p.dimA == P {
			return p.intersects(Interior, Interior) && p.intersects(Interior, Exterior) && p.intersects(Exterior, Interior)
		} else if p.dimA == L {
			return m[Interior][Interior] == L && p.intersects(Interior, Exterior) && p.intersects(Exterior, Interior)
		}
		return false
	case KindTouches:
		return p.intersects(Interior, Interior)
	case KindPattern:
		for i := 0; i < 9; i++ {
			c, dim := p.pattern[i], m[i/3][i%3]
			if c == patternDontCare {
				continue
			} else if c == patternTrue {
				if !isTrue(dim) {
					return false
				}
			} else if patternDimension(c) < dim {
				return true
			}
		}
		return false
	}
	return false
}

func patternDimension(c byte) Dimension {
	switch c {
	case '0':
		return P
	case '1':
		return L
	case '2':
		return A
	}
	return False
}

func (p *Predicate) valueIM() bool {
	m := p.matrix
	switch p.kind {
	case KindTouches:
		return m.IsTouches(p.dimA, p.dimB)
	case KindCrosses:
		return m.IsCrosses(p.dimA, p.dimB)
	case KindOverlaps:
		return m.IsOverlaps(p.dimA, p.dimB)
	case KindContains:
		return m.IsContains()
	case KindWithin:
		return m.IsWithin()
	case KindCovers:
		return m.IsCovers()
	case KindCoveredBy:
		return m.IsCoveredBy()
	case KindEquals:
		return m.IsEquals(p.dimA, p.dimB)
	case KindPattern:
		return p.pattern.matches(m)
	}
	return false
}
