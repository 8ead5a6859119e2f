package relate

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Matrix is a DE-9IM intersection matrix indexed by the location in geometry A and the location in geometry B.
type Matrix [3][3]Dimension

// NewMatrix returns a matrix where only the exteriors intersect. The exteriors of two finite planar geometries always intersect in an area.
func NewMatrix() Matrix {
	m := Matrix{}
	for i := range m {
		for j := range m[i] {
			m[i][j] = False
		}
	}
	m[Exterior][Exterior] = A
	return m
}

// ParseMatrix parses a matrix string of nine characters from "012F".
func ParseMatrix(s string) (Matrix, error) {
	m := Matrix{}
	if len(s) != 9 {
		return m, errors.Wrapf(ErrInvalidPattern, "matrix %q must have 9 entries", s)
	}
	for i := 0; i < 9; i++ {
		var dim Dimension
		switch s[i] {
		case 'F', 'f':
			dim = False
		case '0':
			dim = P
		case '1':
			dim = L
		case '2':
			dim = A
		default:
			return m, errors.Wrapf(ErrInvalidPattern, "matrix %q has bad entry %q", s, s[i])
		}
		m[i/3][i%3] = dim
	}
	return m, nil
}

// Get returns the dimension of the intersection of location locA of A and location locB of B.
func (m Matrix) Get(locA, locB Location) Dimension {
	return m[locA][locB]
}

// setAtLeast raises the entry to dim and reports whether it changed. Entries never decrease.
func (m *Matrix) setAtLeast(locA, locB Location, dim Dimension) bool {
	if m[locA][locB] < dim {
		m[locA][locB] = dim
		return true
	}
	return false
}

// Transpose returns the matrix of B relative to A.
func (m Matrix) Transpose() Matrix {
	t := Matrix{}
	for i := range m {
		for j := range m[i] {
			t[j][i] = m[i][j]
		}
	}
	return t
}

func (m Matrix) String() string {
	sb := strings.Builder{}
	for i := range m {
		for j := range m[i] {
			sb.WriteString(m[i][j].String())
		}
	}
	return sb.String()
}

// Matches returns true if the matrix satisfies the DE-9IM pattern.
func (m Matrix) Matches(pattern string) (bool, error) {
	pat, err := parsePattern(pattern)
	if err != nil {
		return false, err
	}
	return pat.matches(m), nil
}

func isTrue(dim Dimension) bool {
	return P <= dim
}

// IsDisjoint returns true if the interiors and boundaries do not intersect.
func (m Matrix) IsDisjoint() bool {
	return m[Interior][Interior] == False &&
		m[Interior][Boundary] == False &&
		m[Boundary][Interior] == False &&
		m[Boundary][Boundary] == False
}

// IsIntersects returns true if the geometries have at least one point in common.
func (m Matrix) IsIntersects() bool {
	return !m.IsDisjoint()
}

// IsTouches returns true if the geometries only have boundary points in common. Dimensions are those of A and B.
func (m Matrix) IsTouches(dimA, dimB Dimension) bool {
	if dimB < dimA {
		return m.Transpose().IsTouches(dimB, dimA)
	}
	if dimA == A && dimB == A || dimA == L && dimB == L || dimA == L && dimB == A || dimA == P && dimB == A || dimA == P && dimB == L {
		return m[Interior][Interior] == False &&
			(isTrue(m[Interior][Boundary]) || isTrue(m[Boundary][Interior]) || isTrue(m[Boundary][Boundary]))
	}
	return false
}

// IsCrosses returns true if the geometries cross. Dimensions are those of A and B.
func (m Matrix) IsCrosses(dimA, dimB Dimension) bool {
	if dimA == P && dimB == L || dimA == P && dimB == A || dimA == L && dimB == A {
		return isTrue(m[Interior][Interior]) && isTrue(m[Interior][Exterior])
	} else if dimA == L && dimB == P || dimA == A && dimB == P || dimA == A && dimB == L {
		return isTrue(m[Interior][Interior]) && isTrue(m[Exterior][Interior])
	} else if dimA == L && dimB == L {
		return m[Interior][Interior] == P
	}
	return false
}

// IsWithin returns true if A lies within B.
func (m Matrix) IsWithin() bool {
	return isTrue(m[Interior][Interior]) &&
		m[Interior][Exterior] == False &&
		m[Boundary][Exterior] == False
}

// IsContains returns true if A contains B.
func (m Matrix) IsContains() bool {
	return isTrue(m[Interior][Interior]) &&
		m[Exterior][Interior] == False &&
		m[Exterior][Boundary] == False
}

func (m Matrix) hasPointInCommon() bool {
	return isTrue(m[Interior][Interior]) || isTrue(m[Interior][Boundary]) || isTrue(m[Boundary][Interior]) || isTrue(m[Boundary][Boundary])
}

// IsCovers returns true if every point of B is a point of A.
func (m Matrix) IsCovers() bool {
	return m.hasPointInCommon() &&
		m[Exterior][Interior] == False &&
		m[Exterior][Boundary] == False
}

// IsCoveredBy returns true if every point of A is a point of B.
func (m Matrix) IsCoveredBy() bool {
	return m.hasPointInCommon() &&
		m[Interior][Exterior] == False &&
		m[Boundary][Exterior] == False
}

// IsEquals returns true if the geometries are topologically equal. Dimensions are those of A and B.
func (m Matrix) IsEquals(dimA, dimB Dimension) bool {
	if dimA != dimB {
		return false
	}
	return isTrue(m[Interior][Interior]) &&
		m[Interior][Exterior] == False &&
		m[Boundary][Exterior] == False &&
		m[Exterior][Interior] == False &&
		m[Exterior][Boundary] == False
}

// IsOverlaps returns true if the geometries overlap. Dimensions are those of A and B.
func (m Matrix) IsOverlaps(dimA, dimB Dimension) bool {
	if dimA == P && dimB == P || dimA == A && dimB == A {
		return isTrue(m[Interior][Interior]) && isTrue(m[Interior][Exterior]) && isTrue(m[Exterior][Interior])
	} else if dimA == L && dimB == L {
		return m[Interior][Interior] == L && isTrue(m[Interior][Exterior]) && isTrue(m[Exterior][Interior])
	}
	return false
}

////////////////////////////////////////////////////////////////

const (
	patternTrue     = 'T'
	patternDontCare = '*'
)

// pattern is a normalized DE-9IM pattern in row-major order.
type pattern [9]byte

func parsePattern(s string) (pattern, error) {
	pat := pattern{}
	if len(s) != 9 {
		return pat, errors.Wrapf(ErrInvalidPattern, "pattern %q must have 9 characters", s)
	}
	for i := 0; i < 9; i++ {
		c := s[i]
		switch c {
		case 'f', 't':
			c -= 'a' - 'A'
		case 'F', 'T', '*', '0', '1', '2':
		default:
			return pat, errors.Wrapf(ErrInvalidPattern, "pattern %q has bad character %q", s, c)
		}
		pat[i] = c
	}
	return pat, nil
}

func (pat pattern) at(locA, locB Location) byte {
	return pat[3*int(locA)+int(locB)]
}

// requiresInteraction is true if the pattern demands that the interiors or boundaries intersect.
func (pat pattern) requiresInteraction() bool {
	isInteraction := func(c byte) bool {
		return c == patternTrue || '0' <= c && c <= '2'
	}
	return isInteraction(pat.at(Interior, Interior)) ||
		isInteraction(pat.at(Interior, Boundary)) ||
		isInteraction(pat.at(Boundary, Interior)) ||
		isInteraction(pat.at(Boundary, Boundary))
}

func (pat pattern) matches(m Matrix) bool {
	for i := 0; i < 9; i++ {
		if !matchesEntry(m[i/3][i%3], pat[i]) {
			return false
		}
	}
	return true
}

func matchesEntry(dim Dimension, c byte) bool {
	switch c {
	case patternDontCare:
		return true
	case patternTrue:
		return isTrue(dim)
	case 'F':
		return dim == False
	case '0':
		return dim == P
	case '1':
		return dim == L
	case '2':
		return dim == A
	}
	return false
}

func (pat pattern) String() string {
	return string(pat[:])
}
