package relate

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/tdewolff/test"
)

func TestBoundaryNodeRule(t *testing.T) {
	var tts = []struct {
		rule     BoundaryNodeRule
		boundary [4]bool // degree 0 to 3
	}{
		{Mod2, [4]bool{false, true, false, true}},
		{EndPoint, [4]bool{false, true, true, true}},
		{MultivalentEndPoint, [4]bool{false, false, true, true}},
		{MonovalentEndPoint, [4]bool{false, true, false, false}},
	}
	for _, tt := range tts {
		t.Run(tt.rule.String(), func(t *testing.T) {
			for degree, boundary := range tt.boundary {
				test.T(t, tt.rule.IsInBoundary(degree), boundary, degree)
			}

			rule, err := ParseBoundaryNodeRule(tt.rule.String())
			test.Error(t, err)
			test.T(t, rule, tt.rule)
		})
	}
}

func TestParseBoundaryNodeRule(t *testing.T) {
	rule, err := ParseBoundaryNodeRule("")
	test.Error(t, err)
	test.T(t, rule, Mod2)

	rule, err = ParseBoundaryNodeRule("EndPoint")
	test.Error(t, err)
	test.T(t, rule, EndPoint)

	_, err = ParseBoundaryNodeRule("odd")
	test.That(t, err != nil)
}

func TestLinearBoundary(t *testing.T) {
	lines := []lineElement{
		{coords: polyline{{0, 0}, {1, 0}}},
		{coords: polyline{{1, 0}, {2, 0}}},
	}
	b := newLinearBoundary(lines, Mod2)
	test.That(t, b.hasBoundary)
	test.That(t, b.isBoundary(orb.Point{0, 0}))
	test.That(t, !b.isBoundary(orb.Point{1, 0}))
	test.That(t, !b.isBoundary(orb.Point{5, 5}))

	b = newLinearBoundary(lines, MultivalentEndPoint)
	test.That(t, !b.isBoundary(orb.Point{0, 0}))
	test.That(t, b.isBoundary(orb.Point{1, 0}))

	ring := []lineElement{{coords: polyline{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}
	test.That(t, !newLinearBoundary(ring, Mod2).hasBoundary)
	test.That(t, newLinearBoundary(ring, EndPoint).hasBoundary)
}
