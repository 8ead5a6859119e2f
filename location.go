package relate

// Location is the topological location of a point relative to a geometry.
type Location int8

// see Location
const (
	Interior Location = iota
	Boundary
	Exterior
	Unknown Location = -1
)

func (loc Location) String() string {
	switch loc {
	case Interior:
		return "I"
	case Boundary:
		return "B"
	case Exterior:
		return "E"
	}
	return "?"
}

// Dimension is the dimension of a geometry or of the intersection of two point sets. False means the point sets do not intersect.
type Dimension int8

// see Dimension
const (
	False Dimension = -1
	P     Dimension = 0
	L     Dimension = 1
	A     Dimension = 2
)

func (dim Dimension) String() string {
	switch dim {
	case False:
		return "F"
	case P:
		return "0"
	case L:
		return "1"
	case A:
		return "2"
	}
	return "?"
}

// dimLocation is a location together with the dimension of the element that produced it.
type dimLocation struct {
	loc Location
	dim Dimension
}

var exteriorDimLocation = dimLocation{Exterior, False}

func areaDimLocation(loc Location) dimLocation {
	if loc == Exterior {
		return exteriorDimLocation
	}
	return dimLocation{loc, A}
}

func lineDimLocation(loc Location) dimLocation {
	if loc == Exterior {
		return exteriorDimLocation
	}
	return dimLocation{loc, L}
}

func pointDimLocation(loc Location) dimLocation {
	if loc != Interior {
		return exteriorDimLocation
	}
	return dimLocation{Interior, P}
}

// dimension returns the element dimension, or exteriorDim when the point lies in the exterior.
func (dl dimLocation) dimension(exteriorDim Dimension) Dimension {
	if dl.loc == Exterior {
		return exteriorDim
	}
	return dl.dim
}
