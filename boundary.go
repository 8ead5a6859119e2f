package relate

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

// BoundaryNodeRule decides whether a line end point shared by degree line ends lies in the boundary.
type BoundaryNodeRule int

// see BoundaryNodeRule
const (
	Mod2                BoundaryNodeRule = iota // odd degree, the OGC SFS rule
	EndPoint                                    // any end point
	MultivalentEndPoint                         // end points shared by more than one line
	MonovalentEndPoint                          // end points of exactly one line
)

// ParseBoundaryNodeRule parses the names returned by BoundaryNodeRule.String.
func ParseBoundaryNodeRule(s string) (BoundaryNodeRule, error) {
	switch strings.ToLower(s) {
	case "mod2", "":
		return Mod2, nil
	case "endpoint":
		return EndPoint, nil
	case "multivalent":
		return MultivalentEndPoint, nil
	case "monovalent":
		return MonovalentEndPoint, nil
	}
	return Mod2, errors.Newf("unknown boundary node rule %q", s)
}

// IsInBoundary returns true if an end point shared by degree line ends is a boundary point.
func (rule BoundaryNodeRule) IsInBoundary(degree int) bool {
	switch rule {
	case EndPoint:
		return 0 < degree
	case MultivalentEndPoint:
		return 1 < degree
	case MonovalentEndPoint:
		return degree == 1
	}
	return degree%2 == 1
}

func (rule BoundaryNodeRule) String() string {
	switch rule {
	case EndPoint:
		return "endpoint"
	case MultivalentEndPoint:
		return "multivalent"
	case MonovalentEndPoint:
		return "monovalent"
	}
	return "mod2"
}

// linearBoundary holds the end point degrees of the lines of a geometry.
type linearBoundary struct {
	degree      map[orb.Point]int
	rule        BoundaryNodeRule
	hasBoundary bool
}

func newLinearBoundary(lines []lineElement, rule BoundaryNodeRule) *linearBoundary {
	b := &linearBoundary{
		degree: map[orb.Point]int{},
		rule:   rule,
	}
	for _, line := range lines {
		b.degree[line.coords[0]]++
		b.degree[line.coords[len(line.coords)-1]]++
	}
	for _, degree := range b.degree {
		if rule.IsInBoundary(degree) {
			b.hasBoundary = true
			break
		}
	}
	return b
}

func (b *linearBoundary) isBoundary(p orb.Point) bool {
	degree, ok := b.degree[p]
	return ok && b.rule.IsInBoundary(degree)
}
