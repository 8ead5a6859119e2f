package relate

import (
	"sort"

	"github.com/google/btree"
	"github.com/paulmach/orb"
)

// nodeSection is the part of an element's linework passing through a node: the previous vertex v0, the node, and the next vertex v1. Line ends have a nil v0 or v1.
type nodeSection struct {
	isA       bool
	dim       Dimension
	id        int
	ringID    int // 0 for shells, -1 for lines
	polygonal int // index of the parent polygonal, or -1
	atVertex  bool
	pt        orb.Point
	v0, v1    *orb.Point
}

func (ns nodeSection) isShell() bool {
	return ns.ringID == 0
}

func (ns nodeSection) isArea() bool {
	return ns.dim == A
}

func (ns nodeSection) isProper() bool {
	return !ns.atVertex
}

func (ns nodeSection) isSameGeometry(o nodeSection) bool {
	return ns.isA == o.isA
}

func (ns nodeSection) isSamePolygon(o nodeSection) bool {
	return ns.isA == o.isA && ns.id == o.id
}

// compare orders sections of A before B, then by dimension, element, ring, and vertices.
func (ns nodeSection) compare(o nodeSection) int {
	if ns.isA != o.isA {
		if ns.isA {
			return -1
		}
		return 1
	} else if ns.dim != o.dim {
		return compareInts(int(ns.dim), int(o.dim))
	} else if ns.id != o.id {
		return compareInts(ns.id, o.id)
	} else if ns.ringID != o.ringID {
		return compareInts(ns.ringID, o.ringID)
	} else if c := compareVertices(ns.v0, o.v0); c != 0 {
		return c
	}
	return compareVertices(ns.v1, o.v1)
}

func compareInts(a, b int) int {
	if a < b {
		return -1
	} else if b < a {
		return 1
	}
	return 0
}

// compareVertices orders missing vertices first.
func compareVertices(a, b *orb.Point) int {
	if a == nil {
		if b == nil {
			return 0
		}
		return -1
	} else if b == nil {
		return 1
	}
	return comparePoints(*a, *b)
}

func isAreaArea(a, b nodeSection) bool {
	return a.isArea() && b.isArea()
}

func isProperIntersection(a, b nodeSection) bool {
	return a.isProper() && b.isProper()
}

////////////////////////////////////////////////////////////////

// nodeSections holds all sections incident to one node.
type nodeSections struct {
	pt       orb.Point
	sections []nodeSection
}

func (nss *nodeSections) add(ns nodeSection) {
	nss.sections = append(nss.sections, ns)
}

// hasInteractionAB returns true if both geometries pass through the node.
func (nss *nodeSections) hasInteractionAB() bool {
	hasA, hasB := false, false
	for _, ns := range nss.sections {
		if ns.isA {
			hasA = true
		} else {
			hasB = true
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

// polygonal returns the parent polygonal of the first polygon section of the given geometry, or -1.
func (nss *nodeSections) polygonal(isA bool) int {
	for _, ns := range nss.sections {
		if ns.isA == isA && 0 <= ns.polygonal {
			return ns.polygonal
		}
	}
	return -1
}

func (nss *nodeSections) createNode() *relateNode {
	sort.SliceStable(nss.sections, func(i, j int) bool {
		return nss.sections[i].compare(nss.sections[j]) < 0
	})

	node := &relateNode{pt: nss.pt}
	for i := 0; i < len(nss.sections); {
		ns := nss.sections[i]
		if ns.isArea() && i+1 < len(nss.sections) && ns.isSamePolygon(nss.sections[i+1]) {
			// several rings of one polygon pass through the node
			j := i + 1
			for j < len(nss.sections) && ns.isSamePolygon(nss.sections[j]) {
				j++
			}
			for _, converted := range convertPolygonSections(nss.sections[i:j]) {
				node.addEdges(converted)
			}
			i = j
		} else {
			node.addEdges(ns)
			i++
		}
	}
	return node
}

// convertPolygonSections turns the sections of the shell and holes of one polygon at a node into sections that each bound a single wedge of the polygon interior.
func convertPolygonSections(polySections []nodeSection) []nodeSection {
	sections := make([]nodeSection, len(polySections))
	copy(sections, polySections)
	sort.SliceStable(sections, func(i, j int) bool {
		return compareAngle(sections[i].pt, *sections[i].v0, *sections[j].v0) < 0
	})

	// remove duplicates
	unique := sections[:1]
	for _, ns := range sections[1:] {
		if unique[len(unique)-1].compare(ns) != 0 {
			unique = append(unique, ns)
		}
	}
	sections = unique
	if len(sections) == 1 {
		return sections
	}

	shell := -1
	for i, ns := range sections {
		if ns.isShell() {
			shell = i
			break
		}
	}

	converted := []nodeSection{}
	if shell < 0 {
		// holes only, each wedge runs from a hole to the next
		for i, ns := range sections {
			next := sections[(i+1)%len(sections)]
			converted = append(converted, wedgeSection(sections[0], ns.v0, next.v1))
		}
		return converted
	}

	// each shell section is joined with the holes following it in angular order
	i := shell
	for {
		shellSection := sections[i]
		in := shellSection.v0
		i = (i + 1) % len(sections)
		for !sections[i].isShell() {
			converted = append(converted, wedgeSection(shellSection, in, sections[i].v1))
			in = sections[i].v0
			i = (i + 1) % len(sections)
		}
		converted = append(converted, wedgeSection(shellSection, in, shellSection.v1))
		if i == shell {
			break
		}
	}
	return converted
}

func wedgeSection(ns nodeSection, v0, v1 *orb.Point) nodeSection {
	ns.ringID = 0
	ns.dim = A
	ns.v0, ns.v1 = v0, v1
	return ns
}

////////////////////////////////////////////////////////////////

type nodeRef struct {
	pt orb.Point
	i  int
}

// nodeMap is an arena of node sections keyed by coordinate, iterated in coordinate order.
type nodeMap struct {
	nodes []nodeSections
	index *btree.BTreeG[nodeRef]
}

func newNodeMap() *nodeMap {
	return &nodeMap{
		index: btree.NewG(8, func(a, b nodeRef) bool {
			return comparePoints(a.pt, b.pt) < 0
		}),
	}
}

// get returns the sections at pt, adding an empty entry if needed. The pointer is valid until the next call.
func (m *nodeMap) get(pt orb.Point) *nodeSections {
	if ref, ok := m.index.Get(nodeRef{pt: pt}); ok {
		return &m.nodes[ref.i]
	}
	m.nodes = append(m.nodes, nodeSections{pt: pt})
	m.index.ReplaceOrInsert(nodeRef{pt, len(m.nodes) - 1})
	return &m.nodes[len(m.nodes)-1]
}

func (m *nodeMap) len() int {
	return len(m.nodes)
}

// ascend calls fn for each node in coordinate order until it returns false.
func (m *nodeMap) ascend(fn func(*nodeSections) bool) {
	m.index.Ascend(func(ref nodeRef) bool {
		return fn(&m.nodes[ref.i])
	})
}
